package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"appointment-booking-api/internal/model"
)

// PageSize is the number of appointments returned per listing page.
const PageSize = 20

// Scheduler books appointments with providers.
type Scheduler struct {
	repo    Repository
	avail   *Availability
	clock   Clock
	log     zerolog.Logger
	metrics Metrics
}

func NewScheduler(repo Repository, clock Clock, log zerolog.Logger, m Metrics) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if m == nil {
		m = noopMetrics{}
	}
	return &Scheduler{
		repo:    repo,
		avail:   NewAvailability(repo),
		clock:   clock,
		log:     log.With().Str("component", "scheduler").Logger(),
		metrics: m,
	}
}

// Create books the hour slot containing rawDate with providerID on behalf of
// ownerID and notifies the provider. The appointment row and the notification
// are written in one transaction.
func (s *Scheduler) Create(ctx context.Context, ownerID, providerID, rawDate string) (*model.Appointment, error) {
	provider, err := s.repo.UserByID(ctx, providerID)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return nil, s.reject(ErrInvalidProvider)
	case err != nil:
		return nil, fmt.Errorf("load provider: %w", err)
	case !provider.Provider:
		return nil, s.reject(ErrInvalidProvider)
	}

	date, err := Normalize(rawDate)
	if err != nil {
		return nil, s.reject(err)
	}
	now := s.clock.Now()
	if IsPast(date, now) {
		return nil, s.reject(ErrPastDate)
	}

	free, err := s.avail.IsAvailable(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	if !free {
		return nil, s.reject(ErrSlotUnavailable)
	}

	owner, err := s.repo.UserByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}

	appt := &model.Appointment{
		ID:         uuid.NewString(),
		UserID:     ownerID,
		ProviderID: providerID,
		Date:       date,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	content := fmt.Sprintf("New appointment from %s for %s", owner.Name, FormatSlot(date))

	err = s.repo.InBookingTx(ctx, func(tx BookingTx) error {
		if err := tx.InsertAppointment(ctx, appt); err != nil {
			return err
		}
		_, err := Notify(ctx, tx, providerID, content, now)
		return err
	})
	if errors.Is(err, model.ErrSlotTaken) {
		// lost the race against a concurrent booking of the same slot
		return nil, s.reject(ErrSlotUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("book slot: %w", err)
	}

	s.metrics.BookingCreated()
	s.log.Info().
		Str("appointment_id", appt.ID).
		Str("provider_id", providerID).
		Time("date", date).
		Msg("appointment booked")
	return appt, nil
}

// ListedAppointment is an active appointment with its read-time flags.
type ListedAppointment struct {
	model.AppointmentDetail
	Past       bool
	Cancelable bool
}

// List returns one page of the user's active appointments ordered by date.
// Pages start at 1.
func (s *Scheduler) List(ctx context.Context, userID string, page int) ([]ListedAppointment, error) {
	if page < 1 {
		page = 1
	}
	rows, err := s.repo.ListActiveForUser(ctx, userID, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	now := s.clock.Now()
	out := make([]ListedAppointment, len(rows))
	for i, r := range rows {
		out[i] = ListedAppointment{
			AppointmentDetail: r,
			Past:              r.Past(now),
			Cancelable:        r.Cancelable(now),
		}
	}
	return out, nil
}

func (s *Scheduler) reject(err error) error {
	s.metrics.BookingRejected(Kind(err))
	return err
}
