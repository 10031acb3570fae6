package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shebloom/shebloom/internal/chat"
)

// RegisterChatRoutes wires the assistant endpoints.
func RegisterChatRoutes(api fiber.Router, h *chat.Handler, chatLimit fiber.Handler) {
	api.Post("/chat", chatLimit, h.Chat)
	api.Get("/chat/followups", h.Followups)
	api.Post("/chat/followups/:followupId/complete", h.CompleteFollowup)
}
