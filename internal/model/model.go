package model

import (
	"errors"
	"time"
)

// CancelLeadTime is how long before the start an appointment may still be canceled.
const CancelLeadTime = 2 * time.Hour

// repository outcomes shared by every store implementation
var (
	ErrNotFound   = errors.New("record not found")
	ErrSlotTaken  = errors.New("slot already booked")
	ErrEmailTaken = errors.New("email already registered")
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Provider     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Appointment struct {
	ID         string
	UserID     string
	ProviderID string
	Date       time.Time
	CanceledAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (a Appointment) Active() bool { return a.CanceledAt == nil }

// Past reports whether the appointment starts before now.
func (a Appointment) Past(now time.Time) bool {
	return a.Date.Before(now)
}

// Cancelable reports whether the appointment is still active and starts more
// than CancelLeadTime after now.
func (a Appointment) Cancelable(now time.Time) bool {
	return a.Active() && now.Before(a.Date.Add(-CancelLeadTime))
}

// Canceled returns a copy of a marked as canceled at the given instant.
func (a Appointment) Canceled(at time.Time) Appointment {
	at = at.UTC()
	a.CanceledAt = &at
	a.UpdatedAt = at
	return a
}

// Party is the public identity of a user referenced by an appointment.
type Party struct {
	ID    string
	Name  string
	Email string
}

// AppointmentDetail is an appointment joined with its owner and provider.
type AppointmentDetail struct {
	Appointment
	Owner    Party
	Provider Party
}

type Notification struct {
	ID        string
	UserID    string
	Content   string
	Read      bool
	CreatedAt time.Time
}

type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	Revoked    bool
	ReplacedBy *string
	CreatedAt  time.Time
}
