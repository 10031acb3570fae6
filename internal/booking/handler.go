package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes mentor and booking endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a booking HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type bookRequest struct {
	MentorID string `json:"mentor_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

type mentorResponse struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Specialty            string  `json:"specialty"`
	Category             string  `json:"category"`
	Bio                  string  `json:"bio,omitempty"`
	AvatarEmoji          string  `json:"avatar_emoji,omitempty"`
	PricePerSessionCents int64   `json:"price_per_session_cents"`
	Rating               float64 `json:"rating"`
	ReviewsCount         int     `json:"reviews_count"`
	Verified             bool    `json:"verified"`
}

type bookingResponse struct {
	ID          string    `json:"id"`
	MentorID    string    `json:"mentor_id"`
	ServiceName string    `json:"service_name"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Mentors lists mentors, filtered by category and search query.
func (h *Handler) Mentors(c *fiber.Ctx) error {
	mentors, err := h.service.Mentors(c.UserContext(), c.Query("category"), c.Query("q"))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]mentorResponse, 0, len(mentors))
	for _, m := range mentors {
		out = append(out, mentorResponse{
			ID:                   m.ID,
			Name:                 m.Name,
			Specialty:            m.Specialty,
			Category:             m.Category,
			Bio:                  m.Bio,
			AvatarEmoji:          m.AvatarEmoji,
			PricePerSessionCents: m.PricePerSessionCents,
			Rating:               m.Rating,
			ReviewsCount:         m.ReviewsCount,
			Verified:             m.Verified,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"mentors": out})
}

// Book reserves and pays for a mentor session.
func (h *Handler) Book(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req bookRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	b, err := h.service.Book(c.UserContext(), BookInput{
		UserID:   userID,
		MentorID: req.MentorID,
		Date:     req.Date,
		Time:     req.Time,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrMentorNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInsufficientBalance):
			return fiber.NewError(http.StatusPaymentRequired, err.Error())
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	return c.Status(http.StatusCreated).JSON(toBookingResponse(b))
}

// List returns the caller's bookings.
func (h *Handler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	bookings, err := h.service.Bookings(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"bookings": out})
}

// Cancel cancels one of the caller's bookings.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	b, err := h.service.Cancel(c.UserContext(), userID, c.Params("bookingId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrAlreadyCancelled):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(toBookingResponse(b))
}

func toBookingResponse(b Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		MentorID:    b.MentorID,
		ServiceName: b.ServiceName,
		Date:        b.Date,
		Time:        b.Time,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
	}
}
