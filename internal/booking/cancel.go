package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"appointment-booking-api/internal/model"
)

// JobCancellationMail is the queue kind carrying a CancellationNotice.
const JobCancellationMail = "cancellation_mail"

const enqueueTimeout = 5 * time.Second

// CancellationNotice is the payload of the provider's cancellation email.
type CancellationNotice struct {
	AppointmentID string `json:"appointment_id"`
	ProviderName  string `json:"provider_name"`
	ProviderEmail string `json:"provider_email"`
	OwnerName     string `json:"owner_name"`
	Date          string `json:"date"`
}

// Canceler applies the cancellation rules: only the owner may cancel, and
// only up to model.CancelLeadTime before the appointment starts.
type Canceler struct {
	repo    Repository
	jobs    JobQueue
	clock   Clock
	log     zerolog.Logger
	metrics Metrics
}

func NewCanceler(repo Repository, jobs JobQueue, clock Clock, log zerolog.Logger, m Metrics) *Canceler {
	if clock == nil {
		clock = SystemClock{}
	}
	if m == nil {
		m = noopMetrics{}
	}
	return &Canceler{
		repo:    repo,
		jobs:    jobs,
		clock:   clock,
		log:     log.With().Str("component", "canceler").Logger(),
		metrics: m,
	}
}

func (c *Canceler) Cancel(ctx context.Context, requesterID, appointmentID string) (*model.AppointmentDetail, error) {
	appt, err := c.repo.AppointmentDetail(ctx, appointmentID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if appt.UserID != requesterID {
		return nil, ErrForbidden
	}
	if !appt.Active() {
		return nil, ErrAlreadyCanceled
	}

	now := c.clock.Now()
	if appt.Date.Add(-model.CancelLeadTime).Before(now) {
		return nil, ErrTooLateToCancel
	}

	err = c.repo.CancelAppointment(ctx, appt.ID, now)
	if errors.Is(err, model.ErrNotFound) {
		// canceled concurrently between load and update
		return nil, ErrAlreadyCanceled
	}
	if err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	out := *appt
	out.Appointment = appt.Appointment.Canceled(now)

	c.metrics.AppointmentCanceled()
	c.log.Info().Str("appointment_id", out.ID).Msg("appointment canceled")

	c.enqueueNotice(ctx, out)
	return &out, nil
}

// enqueueNotice hands the provider email to the queue. The cancellation is
// already committed, so failures here are logged and never returned.
func (c *Canceler) enqueueNotice(ctx context.Context, a model.AppointmentDetail) {
	notice := CancellationNotice{
		AppointmentID: a.ID,
		ProviderName:  a.Provider.Name,
		ProviderEmail: a.Provider.Email,
		OwnerName:     a.Owner.Name,
		Date:          FormatSlot(a.Date),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()

	if err := c.jobs.Enqueue(ctx, JobCancellationMail, notice); err != nil {
		c.log.Error().Err(err).Str("appointment_id", a.ID).Msg("enqueue cancellation mail")
	}
}
