package contracts

import (
	"context"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/dto/responses"
	"time"
)

type BookingUsecase interface {
	CreateBooking(ctx context.Context, request *requests.CreateBooking) (*responses.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*responses.Booking, error)
	ListBookings(ctx context.Context, request *requests.ListBookings) ([]responses.Booking, int, error)
	CancelBooking(ctx context.Context, request *requests.CancelBooking) (*responses.Booking, error)
}

type BookingRepository interface {
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, booking *models.Booking) error
	// FindByID returns nil, nil when the booking does not exist.
	FindByID(ctx context.Context, bookingID string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter, page, pageSize int) ([]models.Booking, int, error)
	// ListStalePending returns pending bookings holding a payment reference that were neither
	// updated nor reconciled since staleBefore, least recently reconciled first.
	ListStalePending(ctx context.Context, staleBefore time.Time, limit int) ([]models.Booking, error)
	// MarkReconcileAttempt stamps lastReconciledAt without touching updatedAt.
	MarkReconcileAttempt(ctx context.Context, bookingID string, at time.Time) error
	// IncrementPaymentAttempts atomically bumps the attempt counter and returns the new value.
	IncrementPaymentAttempts(ctx context.Context, bookingID string) (int, error)
	// TransitionPaymentStatus applies change only while the stored status still equals change.From.
	// It reports false when another writer got there first.
	TransitionPaymentStatus(ctx context.Context, bookingID string, change models.StatusChange, update *models.BookingPaymentUpdate) (bool, error)
	// UpdatePaymentDetails only writes to a pending booking.
	UpdatePaymentDetails(ctx context.Context, bookingID string, update models.BookingPaymentUpdate) error
}
