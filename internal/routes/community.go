package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shebloom/shebloom/internal/community"
	"github.com/shebloom/shebloom/internal/content"
)

// RegisterCommunityRoutes wires the feed and curated content endpoints.
func RegisterCommunityRoutes(api fiber.Router, posts *community.Handler, catalog *content.Handler) {
	api.Post("/posts", posts.CreatePost)
	api.Get("/posts", posts.Posts)
	api.Post("/posts/:postId/comments", posts.Comment)
	api.Get("/posts/:postId/comments", posts.Comments)
	api.Post("/posts/:postId/reactions", posts.React)

	api.Get("/content", catalog.List)
}
