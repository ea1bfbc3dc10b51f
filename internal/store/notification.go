package store

import (
	"context"

	"appointment-booking-api/internal/model"
)

func (s *Store) AppendNotification(ctx context.Context, n *model.Notification) error {
	return appendNotification(ctx, s.pool, n)
}

func appendNotification(ctx context.Context, q execer, n *model.Notification) error {
	_, err := q.Exec(ctx,
		`INSERT INTO notifications (id, user_id, content, created_at) VALUES ($1,$2,$3,$4)`,
		n.ID, n.UserID, n.Content, n.CreatedAt,
	)
	return translate(err)
}
