package chat

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the assistant endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a chat HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type chatRequest struct {
	Message             string           `json:"message"`
	Category            string           `json:"category"`
	ConversationHistory []HistoryMessage `json:"conversationHistory"`
	ConversationID      string           `json:"conversationId"`
}

type chatResponse struct {
	Response          string `json:"response"`
	NeedsExpert       bool   `json:"needsExpert"`
	ExpertReason      string `json:"expertReason,omitempty"`
	MoodTracked       bool   `json:"moodTracked,omitempty"`
	FollowupScheduled bool   `json:"followupScheduled,omitempty"`
	ConversationID    string `json:"conversationId"`
	Category          string `json:"category"`
}

type followupResponse struct {
	ID           string `json:"id"`
	Topic        string `json:"topic"`
	Context      string `json:"context,omitempty"`
	FollowupDate string `json:"followup_date"`
}

// Chat handles one turn with the assistant.
func (h *Handler) Chat(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Chat(c.UserContext(), ChatInput{
		UserID:         userID,
		Message:        req.Message,
		Category:       req.Category,
		History:        req.ConversationHistory,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyMessage):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrConversationNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrRateLimited):
			return fiber.NewError(http.StatusTooManyRequests, err.Error())
		case errors.Is(err, ErrPaymentRequired):
			return fiber.NewError(http.StatusPaymentRequired, err.Error())
		default:
			return fiber.NewError(http.StatusBadGateway, ErrGateway.Error())
		}
	}

	return c.Status(http.StatusOK).JSON(chatResponse{
		Response:          result.Response,
		NeedsExpert:       result.NeedsExpert,
		ExpertReason:      result.ExpertReason,
		MoodTracked:       result.MoodTracked,
		FollowupScheduled: result.FollowupScheduled,
		ConversationID:    result.ConversationID,
		Category:          result.Category,
	})
}

// Followups lists pending check-ins that are due.
func (h *Handler) Followups(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	followups, err := h.service.Followups(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]followupResponse, 0, len(followups))
	for _, f := range followups {
		out = append(out, followupResponse{
			ID:           f.ID,
			Topic:        f.Topic,
			Context:      f.Context,
			FollowupDate: f.FollowupDate,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"followups": out})
}

// CompleteFollowup marks one check-in handled.
func (h *Handler) CompleteFollowup(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := h.service.CompleteFollowup(c.UserContext(), userID, c.Params("followupId")); err != nil {
		if errors.Is(err, ErrFollowupNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}
