package wallet

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type topUpRequest struct {
	AmountCents   int64  `json:"amount_cents"`
	PaymentMethod string `json:"payment_method"`
}

type payRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type transactionResponse struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	AmountCents       int64     `json:"amount_cents"`
	Description       string    `json:"description"`
	Status            string    `json:"status"`
	PaymentMethod     string    `json:"payment_method,omitempty"`
	ExternalReference string    `json:"external_reference,omitempty"`
	ReceiptURL        string    `json:"receipt_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type preferencesRequest struct {
	AutoUseWallet           *bool   `json:"auto_use_wallet"`
	AutoTopUpEnabled        *bool   `json:"auto_topup_enabled"`
	AutoTopUpThresholdCents *int64  `json:"auto_topup_threshold_cents"`
	AutoTopUpAmountCents    *int64  `json:"auto_topup_amount_cents"`
	PreferredPaymentMethod  *string `json:"preferred_payment_method"`
	RefundToWallet          *bool   `json:"refund_to_wallet"`
}

type preferencesResponse struct {
	AutoUseWallet           bool   `json:"auto_use_wallet"`
	AutoTopUpEnabled        bool   `json:"auto_topup_enabled"`
	AutoTopUpThresholdCents int64  `json:"auto_topup_threshold_cents"`
	AutoTopUpAmountCents    int64  `json:"auto_topup_amount_cents"`
	PreferredPaymentMethod  string `json:"preferred_payment_method"`
	RefundToWallet          bool   `json:"refund_to_wallet"`
}

// Balance returns the caller's wallet balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	b, err := h.service.Balance(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"balance_cents": b.BalanceCents,
		"updated_at":    b.UpdatedAt,
	})
}

// TopUp processes a wallet top-up through the payment processor.
func (h *Handler) TopUp(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req topUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.TopUp(c.UserContext(), userID, req.AmountCents, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, ErrAmountTooSmall):
			return fiber.NewError(http.StatusBadRequest, "minimum top-up is 100 cents")
		case errors.Is(err, ErrPaymentDeclined):
			return fiber.NewError(http.StatusPaymentRequired, "payment declined, please try again")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"transaction":   toTransactionResponse(res.Transaction),
		"balance_cents": res.BalanceCents,
	})
}

// Pay debits the wallet balance for a service.
func (h *Handler) Pay(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req payRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.PayFromBalance(c.UserContext(), userID, req.AmountCents, req.Description, req.Type)
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientBalance):
			return fiber.NewError(http.StatusPaymentRequired, "insufficient wallet balance")
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidType):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"transaction":   toTransactionResponse(res.Transaction),
		"balance_cents": res.BalanceCents,
	})
}

// Transactions lists the caller's recent ledger entries.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	limit := c.QueryInt("limit", 50)

	txns, err := h.service.Transactions(c.UserContext(), userID, limit)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	out := make([]transactionResponse, 0, len(txns))
	for _, txn := range txns {
		out = append(out, toTransactionResponse(txn))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": out})
}

// Preferences returns the caller's wallet preferences.
func (h *Handler) Preferences(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	prefs, err := h.service.Preferences(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toPreferencesResponse(prefs))
}

// UpdatePreferences merges a partial preferences update.
func (h *Handler) UpdatePreferences(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req preferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	prefs, err := h.service.UpdatePreferences(c.UserContext(), userID, UpdatePreferencesInput{
		AutoUseWallet:           req.AutoUseWallet,
		AutoTopUpEnabled:        req.AutoTopUpEnabled,
		AutoTopUpThresholdCents: req.AutoTopUpThresholdCents,
		AutoTopUpAmountCents:    req.AutoTopUpAmountCents,
		PreferredPaymentMethod:  req.PreferredPaymentMethod,
		RefundToWallet:          req.RefundToWallet,
	})
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toPreferencesResponse(prefs))
}

func toTransactionResponse(txn Transaction) transactionResponse {
	return transactionResponse{
		ID:                txn.ID,
		Type:              txn.Type,
		AmountCents:       txn.AmountCents,
		Description:       txn.Description,
		Status:            txn.Status,
		PaymentMethod:     txn.PaymentMethod,
		ExternalReference: txn.ExternalReference,
		ReceiptURL:        txn.ReceiptURL,
		CreatedAt:         txn.CreatedAt,
	}
}

func toPreferencesResponse(p Preferences) preferencesResponse {
	return preferencesResponse{
		AutoUseWallet:           p.AutoUseWallet,
		AutoTopUpEnabled:        p.AutoTopUpEnabled,
		AutoTopUpThresholdCents: p.AutoTopUpThresholdCents,
		AutoTopUpAmountCents:    p.AutoTopUpAmountCents,
		PreferredPaymentMethod:  p.PreferredPaymentMethod,
		RefundToWallet:          p.RefundToWallet,
	}
}
