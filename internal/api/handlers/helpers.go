package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"freight-match-service/internal/api/dto"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/platform/obs"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func writeJSON(c *fiber.Ctx, status int, v any) error {
	if err := c.Status(status).JSON(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", c.Method(), c.Path(), err)
		return err
	}
	return nil
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return writeJSON(c, status, dto.ErrorResponse{
		Error:     msg,
		RequestID: obs.RequestID(c.UserContext()),
	})
}

// statusFor maps a service error onto the HTTP status the client sees.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrBookingNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrMaxShipmentsReached),
		errors.Is(err, domain.ErrAlreadyBooked),
		errors.Is(err, domain.ErrBookingCancelled),
		errors.Is(err, domain.ErrTripNotActive),
		errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrIncompatibleMatch):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

// writeServiceError hides internal failures behind a generic message and logs them.
func writeServiceError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("req_id=%s method=%s path=%s err=%v", obs.RequestID(c.UserContext()), c.Method(), c.Path(), err)
		return writeError(c, status, "internal error")
	}
	return writeError(c, status, err.Error())
}

// decodeJSON reads exactly one JSON object and rejects unknown fields.
func decodeJSON(c *fiber.Ctx, v any) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

func queryFloat(c *fiber.Ctx, key string) (float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative number", key)
	}
	return v, nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return v, nil
}

func queryBool(c *fiber.Ctx, key string) (bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be true or false", key)
	}
	return v, nil
}

// splitList parses a comma separated query value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
