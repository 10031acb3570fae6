package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shebloom/shebloom/internal/wallet"
)

// RegisterWalletRoutes wires the wallet endpoints.
func RegisterWalletRoutes(api fiber.Router, h *wallet.Handler) {
	w := api.Group("/wallet")
	w.Get("", h.Balance)
	w.Get("/transactions", h.Transactions)
	w.Post("/topup", h.TopUp)
	w.Post("/pay", h.Pay)
	w.Get("/preferences", h.Preferences)
	w.Patch("/preferences", h.UpdatePreferences)
}
