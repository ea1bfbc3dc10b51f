package handler

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	bookingv1 "appointment-booking-api/api/booking/v1"
	"appointment-booking-api/internal/booking"
	"appointment-booking-api/internal/model"
)

func (h *Handler) CreateAppointment(ctx context.Context, req *bookingv1.CreateAppointmentRequest) (*bookingv1.CreateAppointmentResponse, error) {
	userID, err := uid(ctx)
	if err != nil {
		return nil, err
	}

	appt, err := h.scheduler.Create(ctx, userID, req.ProviderId, req.Date)
	if err != nil {
		return nil, h.toStatus("create appointment", err)
	}
	return &bookingv1.CreateAppointmentResponse{Appointment: appointmentProto(*appt, h.clock.Now())}, nil
}

func (h *Handler) ListAppointments(ctx context.Context, req *bookingv1.ListAppointmentsRequest) (*bookingv1.ListAppointmentsResponse, error) {
	userID, err := uid(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := h.scheduler.List(ctx, userID, int(req.Page))
	if err != nil {
		return nil, h.toStatus("list appointments", err)
	}

	out := make([]*bookingv1.Appointment, len(rows))
	for i, r := range rows {
		out[i] = listedProto(r)
	}
	return &bookingv1.ListAppointmentsResponse{Appointments: out}, nil
}

func (h *Handler) CancelAppointment(ctx context.Context, req *bookingv1.CancelAppointmentRequest) (*bookingv1.CancelAppointmentResponse, error) {
	userID, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}

	d, err := h.canceler.Cancel(ctx, userID, req.Id)
	if err != nil {
		return nil, h.toStatus("cancel appointment", err)
	}

	p := appointmentProto(d.Appointment, h.clock.Now())
	p.Provider = partyProto(d.Provider)
	return &bookingv1.CancelAppointmentResponse{Appointment: p}, nil
}

func appointmentProto(a model.Appointment, now time.Time) *bookingv1.Appointment {
	p := &bookingv1.Appointment{
		Id:         a.ID,
		UserId:     a.UserID,
		ProviderId: a.ProviderID,
		Date:       timestamppb.New(a.Date),
		Past:       a.Past(now),
		Cancelable: a.Cancelable(now),
	}
	if a.CanceledAt != nil {
		p.CanceledAt = timestamppb.New(*a.CanceledAt)
	}
	return p
}

func listedProto(r booking.ListedAppointment) *bookingv1.Appointment {
	return &bookingv1.Appointment{
		Id:         r.ID,
		UserId:     r.UserID,
		ProviderId: r.ProviderID,
		Date:       timestamppb.New(r.Date),
		Past:       r.Past,
		Cancelable: r.Cancelable,
		Provider:   partyProto(r.Provider),
	}
}

func partyProto(p model.Party) *bookingv1.User {
	return &bookingv1.User{Id: p.ID, Name: p.Name, Provider: true}
}
