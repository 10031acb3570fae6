package notification

import (
	"context"
	"log/slog"
)

const (
	// KindTopUpSucceeded reports a successful wallet top-up.
	KindTopUpSucceeded = "top_up_succeeded"
	// KindTopUpFailed reports a declined or errored wallet top-up.
	KindTopUpFailed = "top_up_failed"
	// KindWalletPayment reports a completed payment from the wallet balance.
	KindWalletPayment = "wallet_payment"
	// KindWalletRefund reports a credit back to the wallet balance.
	KindWalletRefund = "wallet_refund"
	// KindBookingConfirmed reports a confirmed mentor session.
	KindBookingConfirmed = "booking_confirmed"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}
