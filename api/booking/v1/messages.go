package bookingv1

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

type User struct {
	Id       string
	Name     string
	Email    string
	Provider bool
}

func (m *User) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.Id)
	b = appendString(b, 2, m.Name)
	b = appendString(b, 3, m.Email)
	b = appendBool(b, 4, m.Provider)
	return b
}

func (m *User) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		switch {
		case f.bytes(1):
			m.Id = string(f.raw)
		case f.bytes(2):
			m.Name = string(f.raw)
		case f.bytes(3):
			m.Email = string(f.raw)
		case f.varint(4):
			m.Provider = f.v != 0
		}
		return nil
	})
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Provider bool
}

func (m *RegisterRequest) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.Name)
	b = appendString(b, 2, m.Email)
	b = appendString(b, 3, m.Password)
	b = appendBool(b, 4, m.Provider)
	return b
}

func (m *RegisterRequest) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		switch {
		case f.bytes(1):
			m.Name = string(f.raw)
		case f.bytes(2):
			m.Email = string(f.raw)
		case f.bytes(3):
			m.Password = string(f.raw)
		case f.varint(4):
			m.Provider = f.v != 0
		}
		return nil
	})
}

type RegisterResponse struct {
	UserId       string
	Token        string
	RefreshToken string
}

func (m *RegisterResponse) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.UserId)
	b = appendString(b, 2, m.Token)
	b = appendString(b, 3, m.RefreshToken)
	return b
}

func (m *RegisterResponse) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		switch {
		case f.bytes(1):
			m.UserId = string(f.raw)
		case f.bytes(2):
			m.Token = string(f.raw)
		case f.bytes(3):
			m.RefreshToken = string(f.raw)
		}
		return nil
	})
}

type LoginRequest struct {
	Email    string
	Password string
}

func (m *LoginRequest) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.Email)
	b = appendString(b, 2, m.Password)
	return b
}

func (m *LoginRequest) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		switch {
		case f.bytes(1):
			m.Email = string(f.raw)
		case f.bytes(2):
			m.Password = string(f.raw)
		}
		return nil
	})
}

type LoginResponse struct {
	Token        string
	RefreshToken string
	User         *User
}

func (m *LoginResponse) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.Token)
	b = appendString(b, 2, m.RefreshToken)
	if m.User != nil {
		b = appendMessage(b, 3, m.User)
	}
	return b
}

func (m *LoginResponse) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		switch {
		case f.bytes(1):
			m.Token = string(f.raw)
		case f.bytes(2):
			m.RefreshToken = string(f.raw)
		case f.bytes(3):
			m.User = &User{}
			return m.User.unmarshalWire(f.raw)
		}
		return nil
	})
}

type RefreshTokenRequest struct {
	RefreshToken string
}

func (m *RefreshTokenRequest) marshalWire() []byte {
	return appendString(nil, 1, m.RefreshToken)
}

func (m *RefreshTokenRequest) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		if f.bytes(1) {
			m.RefreshToken = string(f.raw)
		}
		return nil
	})
}

type RefreshTokenResponse struct {
	Token        string
	RefreshToken string
}

func (m *RefreshTokenResponse) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.Token)
	b = appendString(b, 2, m.RefreshToken)
	return b
}

func (m *RefreshTokenResponse) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		switch {
		case f.bytes(1):
			m.Token = string(f.raw)
		case f.bytes(2):
			m.RefreshToken = string(f.raw)
		}
		return nil
	})
}

type LogoutRequest struct{}

func (m *LogoutRequest) marshalWire() []byte { return nil }

func (m *LogoutRequest) unmarshalWire(b []byte) error {
	return eachField(b, func(field) error { return nil })
}

type LogoutResponse struct{}

func (m *LogoutResponse) marshalWire() []byte { return nil }

func (m *LogoutResponse) unmarshalWire(b []byte) error {
	return eachField(b, func(field) error { return nil })
}

type UpdateProfileRequest struct {
	Name            string
	Email           string
	OldPassword     string
	Password        string
	ConfirmPassword string
}

func (m *UpdateProfileRequest) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.Name)
	b = appendString(b, 2, m.Email)
	b = appendString(b, 3, m.OldPassword)
	b = appendString(b, 4, m.Password)
	b = appendString(b, 5, m.ConfirmPassword)
	return b
}

func (m *UpdateProfileRequest) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		switch {
		case f.bytes(1):
			m.Name = string(f.raw)
		case f.bytes(2):
			m.Email = string(f.raw)
		case f.bytes(3):
			m.OldPassword = string(f.raw)
		case f.bytes(4):
			m.Password = string(f.raw)
		case f.bytes(5):
			m.ConfirmPassword = string(f.raw)
		}
		return nil
	})
}

type UpdateProfileResponse struct {
	User *User
}

func (m *UpdateProfileResponse) marshalWire() []byte {
	if m.User == nil {
		return nil
	}
	return appendMessage(nil, 1, m.User)
}

func (m *UpdateProfileResponse) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		if f.bytes(1) {
			m.User = &User{}
			return m.User.unmarshalWire(f.raw)
		}
		return nil
	})
}

type Appointment struct {
	Id         string
	UserId     string
	ProviderId string
	Date       *timestamppb.Timestamp
	CanceledAt *timestamppb.Timestamp
	Past       bool
	Cancelable bool
	Provider   *User
}

func (m *Appointment) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.Id)
	b = appendString(b, 2, m.UserId)
	b = appendString(b, 3, m.ProviderId)
	b = appendTimestamp(b, 4, m.Date)
	b = appendTimestamp(b, 5, m.CanceledAt)
	b = appendBool(b, 6, m.Past)
	b = appendBool(b, 7, m.Cancelable)
	if m.Provider != nil {
		b = appendMessage(b, 8, m.Provider)
	}
	return b
}

func (m *Appointment) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		var err error
		switch {
		case f.bytes(1):
			m.Id = string(f.raw)
		case f.bytes(2):
			m.UserId = string(f.raw)
		case f.bytes(3):
			m.ProviderId = string(f.raw)
		case f.bytes(4):
			m.Date, err = parseTimestamp(f.raw)
		case f.bytes(5):
			m.CanceledAt, err = parseTimestamp(f.raw)
		case f.varint(6):
			m.Past = f.v != 0
		case f.varint(7):
			m.Cancelable = f.v != 0
		case f.bytes(8):
			m.Provider = &User{}
			err = m.Provider.unmarshalWire(f.raw)
		}
		return err
	})
}

type CreateAppointmentRequest struct {
	ProviderId string
	Date       string
}

func (m *CreateAppointmentRequest) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.ProviderId)
	b = appendString(b, 2, m.Date)
	return b
}

func (m *CreateAppointmentRequest) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		switch {
		case f.bytes(1):
			m.ProviderId = string(f.raw)
		case f.bytes(2):
			m.Date = string(f.raw)
		}
		return nil
	})
}

type CreateAppointmentResponse struct {
	Appointment *Appointment
}

func (m *CreateAppointmentResponse) marshalWire() []byte {
	if m.Appointment == nil {
		return nil
	}
	return appendMessage(nil, 1, m.Appointment)
}

func (m *CreateAppointmentResponse) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		if f.bytes(1) {
			m.Appointment = &Appointment{}
			return m.Appointment.unmarshalWire(f.raw)
		}
		return nil
	})
}

type ListAppointmentsRequest struct {
	Page int32
}

func (m *ListAppointmentsRequest) marshalWire() []byte {
	return appendInt32(nil, 1, m.Page)
}

func (m *ListAppointmentsRequest) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		if f.varint(1) {
			m.Page = int32(f.v)
		}
		return nil
	})
}

type ListAppointmentsResponse struct {
	Appointments []*Appointment
}

func (m *ListAppointmentsResponse) marshalWire() []byte {
	var b []byte
	for _, a := range m.Appointments {
		b = appendMessage(b, 1, a)
	}
	return b
}

func (m *ListAppointmentsResponse) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		if f.bytes(1) {
			a := &Appointment{}
			if err := a.unmarshalWire(f.raw); err != nil {
				return err
			}
			m.Appointments = append(m.Appointments, a)
		}
		return nil
	})
}

type CancelAppointmentRequest struct {
	Id string
}

func (m *CancelAppointmentRequest) marshalWire() []byte {
	return appendString(nil, 1, m.Id)
}

func (m *CancelAppointmentRequest) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		if f.bytes(1) {
			m.Id = string(f.raw)
		}
		return nil
	})
}

type CancelAppointmentResponse struct {
	Appointment *Appointment
}

func (m *CancelAppointmentResponse) marshalWire() []byte {
	if m.Appointment == nil {
		return nil
	}
	return appendMessage(nil, 1, m.Appointment)
}

func (m *CancelAppointmentResponse) unmarshalWire(b []byte) error {
	return eachField(b, func(f field) error {
		if f.bytes(1) {
			m.Appointment = &Appointment{}
			return m.Appointment.unmarshalWire(f.raw)
		}
		return nil
	})
}
