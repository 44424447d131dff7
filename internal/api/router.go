package api

import (
	"errors"
	"freight-match-service/internal/api/dto"
	"freight-match-service/internal/api/handlers"
	"freight-match-service/internal/platform/obs"
	"freight-match-service/internal/services"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewRouter wires HTTP handlers with the marketplace and returns the fiber app.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(m *services.Marketplace) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "freight-match-service",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          errorHandler,
	})

	app.Use(requestLogger())
	app.Use(recover.New())

	shipments := &handlers.ShipmentHandler{Market: m}
	carriers := &handlers.CarrierHandler{Market: m}
	trips := &handlers.TripHandler{Market: m}
	bookings := &handlers.BookingHandler{Market: m}
	quotes := &handlers.QuoteHandler{Market: m}

	app.Get("/health", handlers.Health)
	app.Get("/classify", handlers.Classify)

	app.Post("/shipments", shipments.Create)
	app.Get("/shipments/:id", shipments.Get)
	app.Get("/shipments/:id/matches", shipments.Matches)
	app.Get("/shipments/:id/trips", shipments.Trips)
	app.Get("/shipments/:id/prices", shipments.Prices)
	app.Post("/shipments/:id/status", shipments.UpdateStatus)

	app.Post("/carriers", carriers.Create)
	app.Get("/carriers/:id", carriers.Get)

	app.Post("/trips", trips.Create)
	app.Get("/trips", trips.Search)
	app.Get("/trips/:id", trips.Get)
	app.Get("/trips/:id/suggestions", trips.Suggestions)
	app.Get("/trips/:id/optimize", trips.Optimize)
	app.Get("/trips/:id/stats", trips.Stats)
	app.Get("/trips/:id/bookings", trips.Bookings)
	app.Get("/trips/:id/similar", trips.Similar)
	app.Post("/trips/:id/status", trips.UpdateStatus)

	app.Post("/bookings", bookings.Create)
	app.Get("/bookings/:id", bookings.Get)
	app.Delete("/bookings/:id", bookings.Cancel)
	app.Get("/bookings/:id/earnings", bookings.Earnings)

	app.Post("/quotes", quotes.Quote)
	app.Get("/quotes/estimate", quotes.Estimate)

	return app
}

// errorHandler renders errors that escape handlers (unknown routes, panics)
// in the same {"error": ...} shape the handlers use.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	}
	return c.Status(code).JSON(dto.ErrorResponse{
		Error:     msg,
		RequestID: obs.RequestID(c.UserContext()),
	})
}
