package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"appointment-booking-api/internal/booking"
	"appointment-booking-api/internal/model"
)

const detailColumns = `a.id, a.user_id, a.provider_id, a.date, a.canceled_at, a.created_at, a.updated_at,
		o.name, o.email, p.name, p.email
	 FROM appointments a
	 JOIN users o ON o.id = a.user_id
	 JOIN users p ON p.id = a.provider_id`

func (s *Store) ActiveAppointmentAt(ctx context.Context, providerID string, date time.Time) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE provider_id = $1 AND date = $2 AND canceled_at IS NULL
		)`, providerID, date,
	).Scan(&exists)
	return exists, err
}

// InBookingTx runs fn in a transaction. A unique violation on the active slot
// index surfaces as model.ErrSlotTaken and rolls everything back.
func (s *Store) InBookingTx(ctx context.Context, fn func(tx booking.BookingTx) error) error {
	return translate(pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(bookingTx{tx: tx})
	}))
}

type bookingTx struct {
	tx pgx.Tx
}

func (b bookingTx) InsertAppointment(ctx context.Context, a *model.Appointment) error {
	return insertAppointment(ctx, b.tx, a)
}

func (b bookingTx) AppendNotification(ctx context.Context, n *model.Notification) error {
	return appendNotification(ctx, b.tx, n)
}

func insertAppointment(ctx context.Context, q execer, a *model.Appointment) error {
	_, err := q.Exec(ctx,
		`INSERT INTO appointments (id, user_id, provider_id, date, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.UserID, a.ProviderID, a.Date, a.CreatedAt, a.UpdatedAt,
	)
	return translate(err)
}

func (s *Store) AppointmentDetail(ctx context.Context, id string) (*model.AppointmentDetail, error) {
	if !validID(id) {
		return nil, model.ErrNotFound
	}
	d, err := scanDetail(s.pool.QueryRow(ctx, `SELECT `+detailColumns+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

func (s *Store) CancelAppointment(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE appointments SET canceled_at=$2, updated_at=$2
		 WHERE id=$1 AND canceled_at IS NULL`, id, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *Store) ListActiveForUser(ctx context.Context, userID string, limit, offset int) ([]model.AppointmentDetail, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+detailColumns+`
		 WHERE a.user_id = $1 AND a.canceled_at IS NULL
		 ORDER BY a.date
		 LIMIT $2 OFFSET $3`, userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AppointmentDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func scanDetail(row pgx.Row) (*model.AppointmentDetail, error) {
	d := &model.AppointmentDetail{}
	err := row.Scan(
		&d.ID, &d.UserID, &d.ProviderID, &d.Date, &d.CanceledAt, &d.CreatedAt, &d.UpdatedAt,
		&d.Owner.Name, &d.Owner.Email, &d.Provider.Name, &d.Provider.Email,
	)
	if err != nil {
		return nil, err
	}
	d.Owner.ID = d.UserID
	d.Provider.ID = d.ProviderID
	d.Date = d.Date.UTC()
	return d, nil
}
