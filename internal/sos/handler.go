package sos

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the emergency contact endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an SOS HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type addContactRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
	Priority     int    `json:"priority"`
}

type updateContactRequest struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	Relationship *string `json:"relationship"`
	Priority     *int    `json:"priority"`
}

type contactResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship,omitempty"`
	Priority     int    `json:"priority"`
}

// List returns the caller's contacts in priority order.
func (h *Handler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	contacts, err := h.service.List(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]contactResponse, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, toContactResponse(contact))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"contacts": out})
}

// Add stores a new contact.
func (h *Handler) Add(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req addContactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	contact, err := h.service.Add(c.UserContext(), userID, req.Name, req.Phone, req.Relationship, req.Priority)
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toContactResponse(contact))
}

// Update merges fields into an existing contact.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req updateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	contact, err := h.service.Update(c.UserContext(), userID, c.Params("contactId"), UpdateInput{
		Name:         req.Name,
		Phone:        req.Phone,
		Relationship: req.Relationship,
		Priority:     req.Priority,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrContactNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrMissingFields):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(toContactResponse(contact))
}

// Delete removes a contact.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := h.service.Remove(c.UserContext(), userID, c.Params("contactId")); err != nil {
		if errors.Is(err, ErrContactNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

func toContactResponse(c Contact) contactResponse {
	return contactResponse{
		ID:           c.ID,
		Name:         c.Name,
		Phone:        c.Phone,
		Relationship: c.Relationship,
		Priority:     c.Priority,
	}
}
