package booking

import (
	"context"
	"time"

	"appointment-booking-api/internal/model"
)

type UserReader interface {
	UserByID(ctx context.Context, id string) (*model.User, error)
}

// BookingTx holds the writes of a booking, which commit or roll back together.
type BookingTx interface {
	// InsertAppointment returns model.ErrSlotTaken when the provider already
	// has an active appointment at the same instant.
	InsertAppointment(ctx context.Context, a *model.Appointment) error
	NotificationStore
}

type Repository interface {
	UserReader
	SlotReader
	InBookingTx(ctx context.Context, fn func(tx BookingTx) error) error
	AppointmentDetail(ctx context.Context, id string) (*model.AppointmentDetail, error)
	// CancelAppointment sets canceled_at on an active appointment and returns
	// model.ErrNotFound when no active row matched.
	CancelAppointment(ctx context.Context, id string, at time.Time) error
	ListActiveForUser(ctx context.Context, userID string, limit, offset int) ([]model.AppointmentDetail, error)
}

// JobQueue defers work to a background worker.
type JobQueue interface {
	Enqueue(ctx context.Context, kind string, payload any) error
}

type Metrics interface {
	BookingCreated()
	BookingRejected(reason string)
	AppointmentCanceled()
}

type noopMetrics struct{}

func (noopMetrics) BookingCreated()        {}
func (noopMetrics) BookingRejected(string) {}
func (noopMetrics) AppointmentCanceled()   {}
