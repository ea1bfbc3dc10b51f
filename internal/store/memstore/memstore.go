// Package memstore is an in-memory implementation of the store used by tests
// and by local runs without PostgreSQL.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"appointment-booking-api/internal/booking"
	"appointment-booking-api/internal/model"
)

type Store struct {
	mu            sync.Mutex
	users         map[string]model.User
	appointments  map[string]model.Appointment
	notifications []model.Notification
	tokens        map[string]model.RefreshToken
	notifyErr     error
}

func New() *Store {
	return &Store{
		users:        make(map[string]model.User),
		appointments: make(map[string]model.Appointment),
		tokens:       make(map[string]model.RefreshToken),
	}
}

// FailNotifications makes every later notification append return err.
func (s *Store) FailNotifications(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyErr = err
}

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return model.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	cp := *u
	cp.CreatedAt, cp.UpdatedAt = now, now
	s.users[u.ID] = cp
	return nil
}

func (s *Store) UserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return model.ErrNotFound
	}
	for id, other := range s.users {
		if id != u.ID && other.Email == u.Email {
			return model.ErrEmailTaken
		}
	}
	cur.Name, cur.Email, cur.PasswordHash = u.Name, u.Email, u.PasswordHash
	cur.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = cur
	return nil
}

func (s *Store) ActiveAppointmentAt(_ context.Context, providerID string, date time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slotTaken(providerID, date, nil), nil
}

func (s *Store) slotTaken(providerID string, date time.Time, staged []model.Appointment) bool {
	match := func(a model.Appointment) bool {
		return a.ProviderID == providerID && a.Date.Equal(date) && a.Active()
	}
	for _, a := range s.appointments {
		if match(a) {
			return true
		}
	}
	for _, a := range staged {
		if match(a) {
			return true
		}
	}
	return false
}

// InBookingTx holds the store lock for the whole of fn and applies its writes
// only when fn succeeds.
func (s *Store) InBookingTx(_ context.Context, fn func(tx booking.BookingTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{s: s}
	if err := fn(tx); err != nil {
		return err
	}
	for _, a := range tx.appointments {
		s.appointments[a.ID] = a
	}
	s.notifications = append(s.notifications, tx.notifications...)
	return nil
}

type memTx struct {
	s             *Store
	appointments  []model.Appointment
	notifications []model.Notification
}

func (t *memTx) InsertAppointment(_ context.Context, a *model.Appointment) error {
	if t.s.slotTaken(a.ProviderID, a.Date, t.appointments) {
		return model.ErrSlotTaken
	}
	t.appointments = append(t.appointments, *a)
	return nil
}

func (t *memTx) AppendNotification(_ context.Context, n *model.Notification) error {
	if t.s.notifyErr != nil {
		return t.s.notifyErr
	}
	t.notifications = append(t.notifications, *n)
	return nil
}

func (s *Store) AppendNotification(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notifyErr != nil {
		return s.notifyErr
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

// Notifications returns the notices addressed to userID in append order.
func (s *Store) Notifications(userID string) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (s *Store) AppointmentDetail(_ context.Context, id string) (*model.AppointmentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	d := s.detail(a)
	return &d, nil
}

func (s *Store) detail(a model.Appointment) model.AppointmentDetail {
	owner, provider := s.users[a.UserID], s.users[a.ProviderID]
	return model.AppointmentDetail{
		Appointment: a,
		Owner:       model.Party{ID: owner.ID, Name: owner.Name, Email: owner.Email},
		Provider:    model.Party{ID: provider.ID, Name: provider.Name, Email: provider.Email},
	}
}

func (s *Store) CancelAppointment(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok || !a.Active() {
		return model.ErrNotFound
	}
	s.appointments[id] = a.Canceled(at)
	return nil
}

func (s *Store) ListActiveForUser(_ context.Context, userID string, limit, offset int) ([]model.AppointmentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.AppointmentDetail
	for _, a := range s.appointments {
		if a.UserID == userID && a.Active() {
			all = append(all, s.detail(a))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	if offset >= len(all) {
		return nil, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (s *Store) CreateRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.tokens[tokenHash] = model.RefreshToken{
		ID: id, UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt, CreatedAt: time.Now().UTC(),
	}
	return id, nil
}

func (s *Store) RefreshTokenByHash(_ context.Context, tokenHash string) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.tokens[tokenHash]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &rt, nil
}

func (s *Store) RotateRefreshToken(_ context.Context, oldID, userID, newHash string, newExpiry time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	newID := uuid.NewString()
	rotated := false
	for h, rt := range s.tokens {
		if rt.ID == oldID && !rt.Revoked {
			rt.Revoked = true
			rt.ReplacedBy = &newID
			s.tokens[h] = rt
			rotated = true
		}
	}
	if !rotated {
		return "", model.ErrNotFound
	}
	s.tokens[newHash] = model.RefreshToken{
		ID: newID, UserID: userID, TokenHash: newHash, ExpiresAt: newExpiry, CreatedAt: time.Now().UTC(),
	}
	return newID, nil
}

func (s *Store) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, rt := range s.tokens {
		if rt.UserID == userID {
			rt.Revoked = true
			s.tokens[h] = rt
		}
	}
	return nil
}
