package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shebloom/shebloom/internal/journal"
	"github.com/shebloom/shebloom/internal/mood"
)

// RegisterWellnessRoutes wires the mood and journal endpoints.
func RegisterWellnessRoutes(api fiber.Router, moods *mood.Handler, journals *journal.Handler) {
	api.Post("/moods", moods.Record)
	api.Get("/moods", moods.Recent)
	api.Get("/moods/average", moods.Average)

	api.Post("/journal", journals.Create)
	api.Get("/journal", journals.List)
	api.Delete("/journal/:entryId", journals.Delete)
}
