package content

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the curated content endpoint.
type Handler struct {
	repo Repository
}

// NewHandler constructs a content HTTP handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type itemResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	ContentType  string    `json:"content_type"`
	ContentURL   string    `json:"content_url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Duration     string    `json:"duration"`
	CreatedAt    time.Time `json:"created_at"`
}

// List returns the active catalog, optionally filtered by category.
func (h *Handler) List(c *fiber.Ctx) error {
	items, err := h.repo.ListActive(c.UserContext(), c.Query("category"))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, itemResponse{
			ID:           it.ID,
			Title:        it.Title,
			Description:  it.Description,
			Category:     it.Category,
			ContentType:  it.ContentType,
			ContentURL:   it.ContentURL,
			ThumbnailURL: it.ThumbnailURL,
			Duration:     it.Duration,
			CreatedAt:    it.CreatedAt,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"content": out})
}
