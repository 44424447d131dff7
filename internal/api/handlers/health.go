package handlers

import "github.com/gofiber/fiber/v2"

// Health provides a minimal liveness check endpoint.
func Health(c *fiber.Ctx) error {
	return writeJSON(c, fiber.StatusOK, map[string]string{"status": "ok"})
}
