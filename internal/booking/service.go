package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shebloom/shebloom/internal/metrics"
	"github.com/shebloom/shebloom/internal/notification"
	"github.com/shebloom/shebloom/internal/wallet"
)

var (
	// ErrInsufficientBalance indicates the wallet cannot cover the session
	// price; no booking is created.
	ErrInsufficientBalance = errors.New("insufficient wallet balance for session")

	// ErrAlreadyCancelled indicates a repeated cancellation.
	ErrAlreadyCancelled = errors.New("booking already cancelled")
)

// Service orchestrates mentor session bookings and their wallet payments.
type Service struct {
	repo     Repository
	wallets  *wallet.Service
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs a booking service.
func NewService(repo Repository, wallets *wallet.Service, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, wallets: wallets, notifier: notifier, logger: logger}
}

// BookInput captures the data needed to book a session.
type BookInput struct {
	UserID   string
	MentorID string
	Date     string
	Time     string
}

// Mentors lists mentors for a category with an optional text search.
func (s *Service) Mentors(ctx context.Context, category, search string) ([]Mentor, error) {
	return s.repo.ListMentors(ctx, category, search)
}

// Book reserves a session and pays for it from the wallet. The balance check
// runs before the booking insert; if the payment itself still fails the
// booking is cancelled rather than left confirmed without payment.
func (s *Service) Book(ctx context.Context, input BookInput) (Booking, error) {
	mentor, err := s.repo.GetMentor(ctx, input.MentorID)
	if err != nil {
		return Booking{}, err
	}
	if input.Date == "" || input.Time == "" {
		return Booking{}, fmt.Errorf("booking date and time are required")
	}

	price := mentor.PricePerSessionCents
	enough, err := s.wallets.HasEnoughBalance(ctx, input.UserID, price)
	if err != nil {
		return Booking{}, err
	}
	if !enough {
		return Booking{}, ErrInsufficientBalance
	}

	b := Booking{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		MentorID:    mentor.ID,
		ServiceName: fmt.Sprintf("%s session", mentor.Specialty),
		Date:        input.Date,
		Time:        input.Time,
		Status:      StatusConfirmed,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateBooking(ctx, b); err != nil {
		return Booking{}, err
	}

	_, err = s.wallets.PayFromBalance(ctx, input.UserID, price,
		fmt.Sprintf("Session with %s", mentor.Name), wallet.TypeSessionPayment)
	if err != nil {
		// The insert and the payment are separate operations; cancel the
		// booking so it never stays confirmed without a matching payment.
		if cancelErr := s.repo.UpdateBookingStatus(ctx, input.UserID, b.ID, StatusCancelled); cancelErr != nil {
			s.logger.Error("cancel unpaid booking", "booking_id", b.ID, "error", cancelErr)
		}
		metrics.BookingsTotal.WithLabelValues(StatusCancelled).Inc()
		if errors.Is(err, wallet.ErrInsufficientBalance) {
			return Booking{}, ErrInsufficientBalance
		}
		return Booking{}, err
	}

	metrics.BookingsTotal.WithLabelValues(StatusConfirmed).Inc()
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindBookingConfirmed,
			Destination: input.UserID,
			Body:        fmt.Sprintf("Your session with %s is booked for %s at %s.", mentor.Name, input.Date, input.Time),
		})
	}

	return b, nil
}

// Bookings lists the user's bookings, newest first.
func (s *Service) Bookings(ctx context.Context, userID string) ([]Booking, error) {
	return s.repo.ListBookings(ctx, userID)
}

// Cancel marks a booking cancelled and refunds the session price to the
// wallet when the user's preferences ask for it.
func (s *Service) Cancel(ctx context.Context, userID, bookingID string) (Booking, error) {
	b, err := s.repo.GetBooking(ctx, userID, bookingID)
	if err != nil {
		return Booking{}, err
	}
	if b.Status == StatusCancelled {
		return Booking{}, ErrAlreadyCancelled
	}

	if err := s.repo.UpdateBookingStatus(ctx, userID, bookingID, StatusCancelled); err != nil {
		return Booking{}, err
	}
	b.Status = StatusCancelled
	metrics.BookingsTotal.WithLabelValues(StatusCancelled).Inc()

	prefs, err := s.wallets.Preferences(ctx, userID)
	if err != nil {
		s.logger.Warn("load preferences for refund", "user_id", userID, "error", err)
		return b, nil
	}
	if prefs.RefundToWallet {
		mentor, err := s.repo.GetMentor(ctx, b.MentorID)
		if err != nil {
			s.logger.Warn("load mentor for refund", "mentor_id", b.MentorID, "error", err)
			return b, nil
		}
		if _, err := s.wallets.Refund(ctx, userID, mentor.PricePerSessionCents,
			fmt.Sprintf("Refund: session with %s", mentor.Name)); err != nil {
			s.logger.Error("refund cancelled booking", "booking_id", b.ID, "error", err)
		}
	}

	return b, nil
}
