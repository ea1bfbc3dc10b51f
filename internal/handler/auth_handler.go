package handler

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	bookingv1 "appointment-booking-api/api/booking/v1"
	"appointment-booking-api/internal/auth"
	"appointment-booking-api/internal/model"
)

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

func (h *Handler) Register(ctx context.Context, req *bookingv1.RegisterRequest) (*bookingv1.RegisterResponse, error) {
	name, email := strings.TrimSpace(req.Name), strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "all fields required")
	}
	if !validEmail(email) {
		return nil, status.Error(codes.InvalidArgument, "invalid email")
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrShortPassword) {
		return nil, status.Error(codes.InvalidArgument, "password too short")
	}
	if err != nil {
		return nil, h.toStatus("register", err)
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Provider:     req.Provider,
	}
	if err := h.accounts.CreateUser(ctx, u); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			// don't reveal which emails exist
			return nil, status.Error(codes.AlreadyExists, "registration failed")
		}
		return nil, h.toStatus("register", err)
	}

	access, refresh, err := h.issue(ctx, u.ID)
	if err != nil {
		return nil, h.toStatus("register", err)
	}
	return &bookingv1.RegisterResponse{UserId: u.ID, Token: access, RefreshToken: refresh}, nil
}

func (h *Handler) Login(ctx context.Context, req *bookingv1.LoginRequest) (*bookingv1.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password required")
	}

	u, err := h.accounts.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, h.toStatus("login", err)
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}

	access, refresh, err := h.issue(ctx, u.ID)
	if err != nil {
		return nil, h.toStatus("login", err)
	}
	return &bookingv1.LoginResponse{Token: access, RefreshToken: refresh, User: userProto(u)}, nil
}

func (h *Handler) RefreshToken(ctx context.Context, req *bookingv1.RefreshTokenRequest) (*bookingv1.RefreshTokenResponse, error) {
	if req.RefreshToken == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh token required")
	}

	rt, err := h.accounts.RefreshTokenByHash(ctx, auth.HashRefreshToken(req.RefreshToken))
	if errors.Is(err, model.ErrNotFound) {
		return nil, status.Error(codes.Unauthenticated, "invalid refresh token")
	}
	if err != nil {
		return nil, h.toStatus("refresh", err)
	}

	if rt.Revoked {
		// a rotated token came back: assume theft and end every session
		h.log.Warn().Str("user_id", rt.UserID).Msg("refresh token reuse")
		if err := h.accounts.RevokeAllRefreshTokens(ctx, rt.UserID); err != nil {
			return nil, h.toStatus("refresh", err)
		}
		return nil, status.Error(codes.Unauthenticated, "invalid refresh token")
	}
	now := h.clock.Now()
	if !now.Before(rt.ExpiresAt) {
		return nil, status.Error(codes.Unauthenticated, "refresh token expired")
	}

	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, h.toStatus("refresh", err)
	}
	_, err = h.accounts.RotateRefreshToken(ctx, rt.ID, rt.UserID, hash, now.Add(auth.RefreshTTL))
	if errors.Is(err, model.ErrNotFound) {
		// lost a race with another rotation of the same token
		return nil, status.Error(codes.Unauthenticated, "invalid refresh token")
	}
	if err != nil {
		return nil, h.toStatus("refresh", err)
	}

	access, err := h.tokens.Issue(rt.UserID)
	if err != nil {
		return nil, h.toStatus("refresh", err)
	}
	return &bookingv1.RefreshTokenResponse{Token: access, RefreshToken: raw}, nil
}

func (h *Handler) Logout(ctx context.Context, _ *bookingv1.LogoutRequest) (*bookingv1.LogoutResponse, error) {
	userID, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.accounts.RevokeAllRefreshTokens(ctx, userID); err != nil {
		return nil, h.toStatus("logout", err)
	}
	return &bookingv1.LogoutResponse{}, nil
}

// UpdateProfile changes any of name, email and password. Changing the
// password requires the current one and a matching confirmation.
func (h *Handler) UpdateProfile(ctx context.Context, req *bookingv1.UpdateProfileRequest) (*bookingv1.UpdateProfileResponse, error) {
	userID, err := uid(ctx)
	if err != nil {
		return nil, err
	}

	u, err := h.accounts.UserByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, status.Error(codes.NotFound, "user not found")
	}
	if err != nil {
		return nil, h.toStatus("update profile", err)
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		u.Name = name
	}

	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != u.Email {
		if !validEmail(email) {
			return nil, status.Error(codes.InvalidArgument, "invalid email")
		}
		other, err := h.accounts.UserByEmail(ctx, email)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return nil, h.toStatus("update profile", err)
		}
		if other != nil {
			return nil, status.Error(codes.AlreadyExists, "email already in use")
		}
		u.Email = email
	}

	if req.OldPassword != "" || req.Password != "" {
		if req.OldPassword == "" || req.Password == "" {
			return nil, status.Error(codes.InvalidArgument, "old and new password required")
		}
		if req.Password != req.ConfirmPassword {
			return nil, status.Error(codes.InvalidArgument, "password confirmation does not match")
		}
		if !auth.CheckPassword(u.PasswordHash, req.OldPassword) {
			return nil, status.Error(codes.PermissionDenied, "password does not match")
		}
		hash, err := auth.HashPassword(req.Password)
		if errors.Is(err, auth.ErrShortPassword) {
			return nil, status.Error(codes.InvalidArgument, "password too short")
		}
		if err != nil {
			return nil, h.toStatus("update profile", err)
		}
		u.PasswordHash = hash
	}

	if err := h.accounts.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return nil, status.Error(codes.AlreadyExists, "email already in use")
		}
		return nil, h.toStatus("update profile", err)
	}
	return &bookingv1.UpdateProfileResponse{User: userProto(u)}, nil
}

// issue returns a fresh access token and a stored refresh token for uid.
func (h *Handler) issue(ctx context.Context, userID string) (access, refresh string, err error) {
	access, err = h.tokens.Issue(userID)
	if err != nil {
		return "", "", err
	}
	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return "", "", err
	}
	if _, err := h.accounts.CreateRefreshToken(ctx, userID, hash, h.clock.Now().Add(auth.RefreshTTL)); err != nil {
		return "", "", err
	}
	return access, raw, nil
}

func userProto(u *model.User) *bookingv1.User {
	return &bookingv1.User{Id: u.ID, Name: u.Name, Email: u.Email, Provider: u.Provider}
}
