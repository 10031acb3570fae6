package profile

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes profile endpoints.
type Handler struct {
	repo Repository
}

// NewHandler constructs a profile HTTP handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type updateRequest struct {
	Name                *string   `json:"name"`
	Interests           *[]string `json:"interests"`
	Goals               *[]string `json:"goals"`
	FitnessLevel        *string   `json:"fitness_level"`
	SkinType            *string   `json:"skin_type"`
	Lifestyle           *string   `json:"lifestyle"`
	BirthYear           *int      `json:"birth_year"`
	OnboardingCompleted *bool     `json:"onboarding_completed"`
}

type profileResponse struct {
	UserID              string    `json:"user_id"`
	Name                string    `json:"name"`
	Interests           []string  `json:"interests"`
	Goals               []string  `json:"goals"`
	FitnessLevel        string    `json:"fitness_level,omitempty"`
	SkinType            string    `json:"skin_type,omitempty"`
	Lifestyle           string    `json:"lifestyle,omitempty"`
	BirthYear           int       `json:"birth_year,omitempty"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Get returns the caller's profile.
func (h *Handler) Get(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	p, err := h.repo.Get(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(p))
}

// Update merges a partial profile update.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p, err := h.repo.Update(c.UserContext(), userID, UpdateInput{
		Name:                req.Name,
		Interests:           req.Interests,
		Goals:               req.Goals,
		FitnessLevel:        req.FitnessLevel,
		SkinType:            req.SkinType,
		Lifestyle:           req.Lifestyle,
		BirthYear:           req.BirthYear,
		OnboardingCompleted: req.OnboardingCompleted,
	})
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(p))
}

func toResponse(p Profile) profileResponse {
	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}
	goals := p.Goals
	if goals == nil {
		goals = []string{}
	}
	return profileResponse{
		UserID:              p.UserID,
		Name:                p.Name,
		Interests:           interests,
		Goals:               goals,
		FitnessLevel:        p.FitnessLevel,
		SkinType:            p.SkinType,
		Lifestyle:           p.Lifestyle,
		BirthYear:           p.BirthYear,
		OnboardingCompleted: p.OnboardingCompleted,
		UpdatedAt:           p.UpdatedAt,
	}
}
