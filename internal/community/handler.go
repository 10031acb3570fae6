package community

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the community feed endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a community HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createPostRequest struct {
	Category string `json:"category"`
	Type     string `json:"type"`
	Content  string `json:"content"`
}

type commentRequest struct {
	Content string `json:"content"`
}

type reactRequest struct {
	Kind string `json:"kind"`
}

type postResponse struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Category      string         `json:"category"`
	Type          string         `json:"type"`
	Content       string         `json:"content"`
	CommentsCount int            `json:"comments_count"`
	Reactions     map[string]int `json:"reactions"`
	CreatedAt     time.Time      `json:"created_at"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePost publishes a feed entry.
func (h *Handler) CreatePost(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p, err := h.service.CreatePost(c.UserContext(), userID, req.Category, req.Type, req.Content)
	if err != nil {
		if errors.Is(err, ErrEmptyContent) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toPostResponse(p))
}

// Posts lists the feed.
func (h *Handler) Posts(c *fiber.Ctx) error {
	posts, err := h.service.Posts(c.UserContext(), c.Query("category"))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"posts": out})
}

// Comment adds a reply under a post.
func (h *Handler) Comment(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	cm, err := h.service.Comment(c.UserContext(), userID, c.Params("postId"), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyContent):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrPostNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusCreated).JSON(commentResponse{
		ID:        cm.ID,
		PostID:    cm.PostID,
		UserID:    cm.UserID,
		Content:   cm.Content,
		CreatedAt: cm.CreatedAt,
	})
}

// Comments lists the replies under a post.
func (h *Handler) Comments(c *fiber.Ctx) error {
	comments, err := h.service.Comments(c.UserContext(), c.Params("postId"))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, commentResponse{
			ID:        cm.ID,
			PostID:    cm.PostID,
			UserID:    cm.UserID,
			Content:   cm.Content,
			CreatedAt: cm.CreatedAt,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"comments": out})
}

// React toggles a reaction on a post.
func (h *Handler) React(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req reactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	active, err := h.service.React(c.UserContext(), userID, c.Params("postId"), req.Kind)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidReaction):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrPostNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"active": active})
}

func toPostResponse(p Post) postResponse {
	return postResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		Category:      p.Category,
		Type:          p.Type,
		Content:       p.Content,
		CommentsCount: p.CommentsCount,
		Reactions:     p.Reactions,
		CreatedAt:     p.CreatedAt,
	}
}
