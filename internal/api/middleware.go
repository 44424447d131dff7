package api

import (
	"freight-match-service/internal/platform/obs"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// requestLogger tags each request with an id (taken from X-Request-ID when the
// client sends one) and logs end-to-end duration and response size.
// Errors returned by the chain are rendered here so the logged status is final.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		id := strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.SetUserContext(obs.WithRequestID(c.UserContext(), id))

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		log.Printf(
			"method=%s path=%s status=%d bytes=%d dur=%dms req_id=%s",
			c.Method(), c.OriginalURL(), c.Response().StatusCode(), len(c.Response().Body()),
			time.Since(start).Milliseconds(), id,
		)
		return nil
	}
}
