package booking_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointment-booking-api/internal/booking"
	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/store/memstore"
)

type fakeQueue struct {
	mu   sync.Mutex
	jobs []booking.CancellationNotice
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, kind string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	if kind == booking.JobCancellationMail {
		q.jobs = append(q.jobs, payload.(booking.CancellationNotice))
	}
	return nil
}

type fixture struct {
	st       *memstore.Store
	queue    *fakeQueue
	now      time.Time
	sched    *booking.Scheduler
	canceler *booking.Canceler
	owner    *model.User
	provider *model.User
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return v
}

func addUser(t *testing.T, st *memstore.Store, name string, provider bool) *model.User {
	t.Helper()
	u := &model.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    fmt.Sprintf("%s-%s@test.com", name, uuid.NewString()[:8]),
		Provider: provider,
	}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func setup(t *testing.T, now string) *fixture {
	t.Helper()
	f := &fixture{st: memstore.New(), queue: &fakeQueue{}, now: mustTime(t, now)}
	clock := booking.ClockFunc(func() time.Time { return f.now })
	f.sched = booking.NewScheduler(f.st, clock, zerolog.Nop(), nil)
	f.canceler = booking.NewCanceler(f.st, f.queue, clock, zerolog.Nop(), nil)
	f.owner = addUser(t, f.st, "customer", false)
	f.provider = addUser(t, f.st, "barber", true)
	return f
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"already aligned", "2025-06-22T08:00:00Z", "2025-06-22T08:00:00Z"},
		{"minutes and seconds", "2025-06-22T08:40:15Z", "2025-06-22T08:00:00Z"},
		{"fractional seconds", "2025-06-22T08:59:59.999Z", "2025-06-22T08:00:00Z"},
		{"offset", "2025-06-22T08:40:00-03:00", "2025-06-22T11:00:00Z"},
		{"half hour offset", "2025-06-22T08:40:00+05:30", "2025-06-22T03:00:00Z"},
		{"no zone", "2025-06-22T08:40:00", "2025-06-22T08:00:00Z"},
		{"date only", "2025-06-22", "2025-06-22T00:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := booking.Normalize(tt.raw)
			require.NoError(t, err)
			assert.True(t, got.Equal(mustTime(t, tt.want)), "got %s", got)

			again, err := booking.Normalize(got.Format(time.RFC3339))
			require.NoError(t, err)
			assert.True(t, again.Equal(got), "normalize is not idempotent")
		})
	}
}

func TestStartOfHourIsIdempotent(t *testing.T) {
	base := time.Date(2025, 6, 22, 8, 47, 13, 500, time.UTC)
	for _, offset := range []int{0, -3 * 3600, 5*3600 + 30*60, -(3*3600 + 30*60), 9*3600 + 30*60, 5*3600 + 45*60} {
		zone := time.FixedZone("z", offset)
		once := booking.StartOfHour(base.In(zone))
		assert.True(t, booking.StartOfHour(once).Equal(once), "offset %d", offset)
		assert.Zero(t, once.Minute(), "offset %d", offset)
		assert.Zero(t, once.Second(), "offset %d", offset)
		assert.Equal(t, time.UTC, once.Location())
		assert.True(t, once.Equal(time.Date(2025, 6, 22, 8, 0, 0, 0, time.UTC)), "offset %d: %s", offset, once)
	}
}

func TestHalfHourZoneSharesUTCSlot(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	other := addUser(t, f.st, "other", false)

	first, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-22T08:15:00+05:30")
	require.NoError(t, err)
	assert.True(t, first.Date.Equal(mustTime(t, "2025-06-22T02:00:00Z")), "got %s", first.Date)

	_, err = f.sched.Create(context.Background(), other.ID, f.provider.ID, "2025-06-22T02:45:00Z")
	assert.ErrorIs(t, err, booking.ErrSlotUnavailable)
}

func TestNormalizeInvalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "tomorrow", "2025-13-01T00:00:00Z", "22/06/2025"} {
		_, err := booking.Normalize(raw)
		assert.ErrorIs(t, err, booking.ErrInvalidArgument, "input %q", raw)
	}
}

func TestIsPast(t *testing.T) {
	ref := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	assert.True(t, booking.IsPast(ref.Add(-time.Nanosecond), ref))
	assert.False(t, booking.IsPast(ref, ref))
	assert.False(t, booking.IsPast(ref.Add(time.Hour), ref))
}

func TestFormatSlot(t *testing.T) {
	assert.Equal(t, "June 22, at 08:00h", booking.FormatSlot(time.Date(2025, 6, 22, 8, 0, 0, 0, time.UTC)))
}

func TestCreateBooksSlotAndNotifiesProvider(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")

	appt, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	require.NoError(t, err)
	assert.NotEmpty(t, appt.ID)
	assert.True(t, appt.Date.Equal(mustTime(t, "2025-06-22T08:00:00Z")))
	assert.Nil(t, appt.CanceledAt)
	assert.Equal(t, f.owner.ID, appt.UserID)
	assert.Equal(t, f.provider.ID, appt.ProviderID)

	notes := f.st.Notifications(f.provider.ID)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Content, f.owner.Name)
	assert.Contains(t, notes[0].Content, "June 22, at 08:00h")
}

func TestCreateSameSlotTwice(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	other := addUser(t, f.st, "other", false)

	_, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	require.NoError(t, err)

	_, err = f.sched.Create(context.Background(), other.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	assert.ErrorIs(t, err, booking.ErrSlotUnavailable)

	// same hour bucket, different minute
	_, err = f.sched.Create(context.Background(), other.ID, f.provider.ID, "2025-06-22T08:45:00Z")
	assert.ErrorIs(t, err, booking.ErrSlotUnavailable)

	// next hour is a different slot
	_, err = f.sched.Create(context.Background(), other.ID, f.provider.ID, "2025-06-22T09:00:00Z")
	assert.NoError(t, err)
}

func TestCreateSameSlotDifferentProviders(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	second := addUser(t, f.st, "dentist", true)

	_, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	require.NoError(t, err)
	_, err = f.sched.Create(context.Background(), f.owner.ID, second.ID, "2025-06-22T08:00:00Z")
	assert.NoError(t, err)
}

func TestCreatePastDate(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")

	_, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-19T08:00:00Z")
	assert.ErrorIs(t, err, booking.ErrPastDate)
	assert.Empty(t, f.st.Notifications(f.provider.ID))
}

func TestCreateCurrentHourBoundary(t *testing.T) {
	f := setup(t, "2025-06-20T10:30:00Z")

	// normalizes to 10:00, which is before now
	_, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-20T10:59:00Z")
	assert.ErrorIs(t, err, booking.ErrPastDate)

	_, err = f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-20T11:00:00Z")
	assert.NoError(t, err)

	// exactly on the boundary is not before now
	f.now = mustTime(t, "2025-06-20T12:00:00Z")
	_, err = f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-20T12:20:00Z")
	assert.NoError(t, err)
}

func TestCreateInvalidProvider(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	customer := addUser(t, f.st, "not-a-provider", false)

	_, err := f.sched.Create(context.Background(), f.owner.ID, customer.ID, "2025-06-22T08:00:00Z")
	assert.ErrorIs(t, err, booking.ErrInvalidProvider)

	_, err = f.sched.Create(context.Background(), f.owner.ID, uuid.NewString(), "2025-06-22T08:00:00Z")
	assert.ErrorIs(t, err, booking.ErrInvalidProvider)
}

func TestCreateInvalidDate(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")

	_, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "next tuesday")
	assert.ErrorIs(t, err, booking.ErrInvalidArgument)
}

func TestCreateRollsBackWhenNotificationFails(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	boom := errors.New("notification store down")
	f.st.FailNotifications(boom)

	_, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	require.ErrorIs(t, err, boom)
	assert.Empty(t, booking.Kind(err), "store failure must not look like a business error")

	f.st.FailNotifications(nil)
	_, err = f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	assert.NoError(t, err, "slot should still be free after rollback")
}

func TestConcurrentCreateSameSlot(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")

	const n = 10
	owners := make([]*model.User, n)
	for i := range owners {
		owners[i] = addUser(t, f.st, fmt.Sprintf("owner%d", i), false)
	}

	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.sched.Create(context.Background(), owners[i].ID, f.provider.ID, "2025-06-22T08:00:00Z")
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, booking.ErrSlotUnavailable):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
	assert.Len(t, f.st.Notifications(f.provider.ID), 1)
}

func TestCancelTooLate(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	appt, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	require.NoError(t, err)

	f.now = mustTime(t, "2025-06-22T07:00:00Z")
	_, err = f.canceler.Cancel(context.Background(), f.owner.ID, appt.ID)
	assert.ErrorIs(t, err, booking.ErrTooLateToCancel)
	assert.Empty(t, f.queue.jobs)
}

func TestCancelWithLeadTime(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	appt, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	require.NoError(t, err)

	f.now = mustTime(t, "2025-06-22T05:00:00Z")
	got, err := f.canceler.Cancel(context.Background(), f.owner.ID, appt.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CanceledAt)
	assert.True(t, got.CanceledAt.Equal(f.now))

	stored, err := f.st.AppointmentDetail(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.CanceledAt)

	require.Len(t, f.queue.jobs, 1)
	job := f.queue.jobs[0]
	assert.Equal(t, appt.ID, job.AppointmentID)
	assert.Equal(t, f.provider.Name, job.ProviderName)
	assert.Equal(t, f.provider.Email, job.ProviderEmail)
	assert.Equal(t, f.owner.Name, job.OwnerName)
	assert.Equal(t, "June 22, at 08:00h", job.Date)
}

func TestCancelLeadTimeBoundary(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	appt, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	require.NoError(t, err)

	f.now = mustTime(t, "2025-06-22T06:00:00Z").Add(time.Second)
	_, err = f.canceler.Cancel(context.Background(), f.owner.ID, appt.ID)
	assert.ErrorIs(t, err, booking.ErrTooLateToCancel)

	f.now = mustTime(t, "2025-06-22T06:00:00Z")
	_, err = f.canceler.Cancel(context.Background(), f.owner.ID, appt.ID)
	assert.NoError(t, err)
}

func TestCancelForbidden(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	appt, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	require.NoError(t, err)

	// the provider may not cancel, with or without lead time
	_, err = f.canceler.Cancel(context.Background(), f.provider.ID, appt.ID)
	assert.ErrorIs(t, err, booking.ErrForbidden)

	f.now = mustTime(t, "2025-06-22T07:30:00Z")
	_, err = f.canceler.Cancel(context.Background(), f.provider.ID, appt.ID)
	assert.ErrorIs(t, err, booking.ErrForbidden)
}

func TestCancelNotFound(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	_, err := f.canceler.Cancel(context.Background(), f.owner.ID, uuid.NewString())
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestCancelTwice(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	appt, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	require.NoError(t, err)

	_, err = f.canceler.Cancel(context.Background(), f.owner.ID, appt.ID)
	require.NoError(t, err)

	_, err = f.canceler.Cancel(context.Background(), f.owner.ID, appt.ID)
	assert.ErrorIs(t, err, booking.ErrAlreadyCanceled)
	assert.Len(t, f.queue.jobs, 1)
}

func TestCancelSurvivesQueueFailure(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	f.queue.err = errors.New("redis unreachable")
	appt, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	require.NoError(t, err)

	got, err := f.canceler.Cancel(context.Background(), f.owner.ID, appt.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.CanceledAt)
}

func TestCanceledSlotCanBeRebooked(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	appt, err := f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	require.NoError(t, err)
	_, err = f.canceler.Cancel(context.Background(), f.owner.ID, appt.ID)
	require.NoError(t, err)

	_, err = f.sched.Create(context.Background(), f.owner.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	assert.NoError(t, err)
}

func TestListPagesActiveAppointmentsByDate(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	ctx := context.Background()

	base := mustTime(t, "2025-06-21T00:00:00Z")
	// booked out of order so the listing has to sort
	for i := 24; i >= 0; i-- {
		_, err := f.sched.Create(ctx, f.owner.ID, f.provider.ID, base.Add(time.Duration(i)*time.Hour).Format(time.RFC3339))
		require.NoError(t, err)
	}
	canceled, err := f.sched.Create(ctx, f.owner.ID, f.provider.ID, "2025-06-25T08:00:00Z")
	require.NoError(t, err)
	_, err = f.canceler.Cancel(ctx, f.owner.ID, canceled.ID)
	require.NoError(t, err)

	first, err := f.sched.List(ctx, f.owner.ID, 1)
	require.NoError(t, err)
	require.Len(t, first, booking.PageSize)
	assert.True(t, first[0].Date.Equal(base))
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i-1].Date.Before(first[i].Date))
	}
	assert.Equal(t, f.provider.Name, first[0].Provider.Name)

	second, err := f.sched.List(ctx, f.owner.ID, 2)
	require.NoError(t, err)
	assert.Len(t, second, 5)
	for _, a := range second {
		assert.NotEqual(t, canceled.ID, a.ID)
	}

	zero, err := f.sched.List(ctx, f.owner.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, zero[0].ID)
}

func TestListDerivedFlags(t *testing.T) {
	f := setup(t, "2025-06-20T00:00:00Z")
	ctx := context.Background()

	soon, err := f.sched.Create(ctx, f.owner.ID, f.provider.ID, "2025-06-20T01:00:00Z")
	require.NoError(t, err)
	later, err := f.sched.Create(ctx, f.owner.ID, f.provider.ID, "2025-06-22T08:00:00Z")
	require.NoError(t, err)

	f.now = mustTime(t, "2025-06-20T02:00:00Z")
	list, err := f.sched.List(ctx, f.owner.ID, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, soon.ID, list[0].ID)
	assert.True(t, list[0].Past)
	assert.False(t, list[0].Cancelable)

	assert.Equal(t, later.ID, list[1].ID)
	assert.False(t, list[1].Past)
	assert.True(t, list[1].Cancelable)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "past_date", booking.Kind(booking.ErrPastDate))
	assert.Equal(t, "invalid_argument", booking.Kind(fmt.Errorf("%w: bad", booking.ErrInvalidArgument)))
	assert.Equal(t, "", booking.Kind(errors.New("db down")))
}
