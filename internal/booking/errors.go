package booking

import "errors"

// Business outcomes returned to callers. Anything else is an unexpected fault.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidProvider = errors.New("appointments can only be booked with providers")
	ErrPastDate        = errors.New("past dates are not permitted")
	ErrSlotUnavailable = errors.New("appointment date is not available")
	ErrNotFound        = errors.New("appointment not found")
	ErrForbidden       = errors.New("you don't have permission to cancel this appointment")
	ErrTooLateToCancel = errors.New("appointments can only be canceled 2 hours in advance")
	ErrAlreadyCanceled = errors.New("appointment is already canceled")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidArgument, "invalid_argument"},
	{ErrInvalidProvider, "invalid_provider"},
	{ErrPastDate, "past_date"},
	{ErrSlotUnavailable, "slot_unavailable"},
	{ErrNotFound, "not_found"},
	{ErrForbidden, "forbidden"},
	{ErrTooLateToCancel, "too_late_to_cancel"},
	{ErrAlreadyCanceled, "already_canceled"},
}

// Kind returns a stable label for a business error, or "" for anything else.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}
