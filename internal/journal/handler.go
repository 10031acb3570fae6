package journal

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes journal endpoints.
type Handler struct {
	repo Repository
}

// NewHandler constructs a journal HTTP handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type createRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type entryResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Create stores a journal entry.
func (h *Handler) Create(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Content == "" {
		return fiber.NewError(http.StatusBadRequest, "content is required")
	}

	e := Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      req.Type,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.repo.Create(c.UserContext(), e); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(e))
}

// List returns the caller's entries, newest first.
func (h *Handler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	limit := c.QueryInt("limit", 50)

	entries, err := h.repo.List(c.UserContext(), userID, limit)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toResponse(e))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"entries": out})
}

// Delete removes one of the caller's entries.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := h.repo.Delete(c.UserContext(), userID, c.Params("entryId")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

func toResponse(e Entry) entryResponse {
	return entryResponse{ID: e.ID, Type: e.Type, Content: e.Content, CreatedAt: e.CreatedAt}
}
