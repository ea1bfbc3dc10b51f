package mail

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"appointment-booking-api/internal/booking"
	"appointment-booking-api/internal/queue"
)

const CancellationSubject = "Appointment canceled"

var cancellationTmpl = template.Must(template.New("cancellation").Parse(
	`Hello {{.ProviderName}},

{{.OwnerName}} canceled the appointment scheduled for {{.Date}}.

The slot is available for booking again.
`))

// RenderCancellation returns the body of the provider's cancellation email.
func RenderCancellation(n booking.CancellationNotice) (string, error) {
	var b strings.Builder
	if err := cancellationTmpl.Execute(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

// CancellationHandler returns the queue handler for booking.JobCancellationMail.
func CancellationHandler(s *Sender, log zerolog.Logger) queue.Handler {
	return func(ctx context.Context, job queue.Job) error {
		var n booking.CancellationNotice
		if err := job.Decode(&n); err != nil {
			return err
		}
		if n.ProviderEmail == "" {
			return fmt.Errorf("%w: notice %s has no recipient", queue.ErrPermanent, n.AppointmentID)
		}

		body, err := RenderCancellation(n)
		if err != nil {
			return fmt.Errorf("%w: render: %v", queue.ErrPermanent, err)
		}
		if err := s.Send(n.ProviderName, n.ProviderEmail, CancellationSubject, body); err != nil {
			return fmt.Errorf("send cancellation mail: %w", err)
		}

		log.Info().
			Str("appointment_id", n.AppointmentID).
			Str("to", n.ProviderEmail).
			Msg("cancellation mail sent")
		return nil
	}
}
