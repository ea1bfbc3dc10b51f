package handler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	bookingv1 "appointment-booking-api/api/booking/v1"
	"appointment-booking-api/internal/auth"
	"appointment-booking-api/internal/booking"
	"appointment-booking-api/internal/middleware"
	"appointment-booking-api/internal/model"
)

// Accounts is the user and refresh token storage the auth RPCs need.
type Accounts interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error

	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	RefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, userID, newHash string, newExpiry time.Time) (string, error)
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

type Handler struct {
	bookingv1.UnimplementedBookingServiceServer

	accounts  Accounts
	scheduler *booking.Scheduler
	canceler  *booking.Canceler
	tokens    *auth.Tokens
	clock     booking.Clock
	verbose   bool
	log       zerolog.Logger
}

type Option func(*Handler)

// WithVerboseErrors returns unexpected fault text to callers instead of
// "internal error".
func WithVerboseErrors(on bool) Option {
	return func(h *Handler) { h.verbose = on }
}

func WithClock(c booking.Clock) Option {
	return func(h *Handler) { h.clock = c }
}

func WithLogger(log zerolog.Logger) Option {
	return func(h *Handler) { h.log = log }
}

func New(accounts Accounts, s *booking.Scheduler, c *booking.Canceler, tokens *auth.Tokens, opts ...Option) *Handler {
	h := &Handler{
		accounts:  accounts,
		scheduler: s,
		canceler:  c,
		tokens:    tokens,
		clock:     booking.SystemClock{},
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func uid(ctx context.Context) (string, error) {
	id, ok := middleware.UserID(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "not authenticated")
	}
	return id, nil
}

var codeFor = map[error]codes.Code{
	booking.ErrInvalidArgument: codes.InvalidArgument,
	booking.ErrInvalidProvider: codes.FailedPrecondition,
	booking.ErrPastDate:        codes.InvalidArgument,
	booking.ErrSlotUnavailable: codes.AlreadyExists,
	booking.ErrNotFound:        codes.NotFound,
	booking.ErrForbidden:       codes.PermissionDenied,
	booking.ErrTooLateToCancel: codes.FailedPrecondition,
	booking.ErrAlreadyCanceled: codes.FailedPrecondition,
}

// toStatus maps business errors to their status code with the sentinel's
// message. Anything else is logged and hidden unless verbose is on.
func (h *Handler) toStatus(op string, err error) error {
	for target, code := range codeFor {
		if errors.Is(err, target) {
			return status.Error(code, target.Error())
		}
	}
	h.log.Error().Err(err).Str("op", op).Msg("unexpected failure")
	if h.verbose {
		return status.Error(codes.Internal, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}
