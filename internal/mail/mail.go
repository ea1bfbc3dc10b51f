// Package mail delivers queued notices over SMTP.
package mail

import (
	gomail "gopkg.in/mail.v2"
)

// Dialer sends fully built messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Sender struct {
	dialer Dialer
	from   string
}

func NewSender(host string, port int, username, password, from string) *Sender {
	return NewSenderWithDialer(gomail.NewDialer(host, port, username, password), from)
}

func NewSenderWithDialer(d Dialer, from string) *Sender {
	return &Sender{dialer: d, from: from}
}

// Send delivers a plain-text message to name <address>.
func (s *Sender) Send(name, address, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetAddressHeader("To", address, name)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return s.dialer.DialAndSend(m)
}
