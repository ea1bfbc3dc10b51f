package booking

import (
	"context"
	"time"
)

type SlotReader interface {
	ActiveAppointmentAt(ctx context.Context, providerID string, date time.Time) (bool, error)
}

// Availability answers whether a provider's hourly slot is free.
// Slots are discrete buckets, so this is a point lookup and not an overlap check.
type Availability struct {
	slots SlotReader
}

func NewAvailability(slots SlotReader) *Availability {
	return &Availability{slots: slots}
}

func (a *Availability) IsAvailable(ctx context.Context, providerID string, instant time.Time) (bool, error) {
	taken, err := a.slots.ActiveAppointmentAt(ctx, providerID, instant)
	if err != nil {
		return false, err
	}
	return !taken, nil
}
