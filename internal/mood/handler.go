package mood

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes mood endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a mood HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type recordRequest struct {
	Level int    `json:"level"`
	Note  string `json:"note"`
}

type moodResponse struct {
	ID        string    `json:"id"`
	Level     int       `json:"level"`
	Note      string    `json:"note,omitempty"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Record stores today's check-in.
func (h *Handler) Record(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req recordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	m, err := h.service.Record(c.UserContext(), userID, req.Level, req.Note)
	if err != nil {
		if errors.Is(err, ErrInvalidLevel) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(m))
}

// Recent lists check-ins over the requested window (default 7 days).
func (h *Handler) Recent(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	days := c.QueryInt("days", 7)

	moods, err := h.service.Recent(c.UserContext(), userID, days)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]moodResponse, 0, len(moods))
	for _, m := range moods {
		out = append(out, toResponse(m))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"moods": out})
}

// Average returns the 7-day mean mood level.
func (h *Handler) Average(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	avg, ok, err := h.service.Average(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"average":      avg,
		"has_checkins": ok,
	})
}

func toResponse(m Mood) moodResponse {
	return moodResponse{
		ID:        m.ID,
		Level:     m.Level,
		Note:      m.Note,
		Source:    m.Source,
		CreatedAt: m.CreatedAt,
	}
}
