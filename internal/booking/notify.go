package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"appointment-booking-api/internal/model"
)

// NotificationStore is the append-only log of in-app notices.
type NotificationStore interface {
	AppendNotification(ctx context.Context, n *model.Notification) error
}

// Notify appends a notice addressed to userID and returns its id.
func Notify(ctx context.Context, sink NotificationStore, userID, content string, at time.Time) (string, error) {
	n := &model.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		CreatedAt: at.UTC(),
	}
	if err := sink.AppendNotification(ctx, n); err != nil {
		return "", fmt.Errorf("append notification: %w", err)
	}
	return n.ID, nil
}
