// Package mailer delivers outbound email over SMTP.
package mailer

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when neither the shop settings nor the environment
// provide an SMTP server.
var ErrNotConfigured = errors.New("mailer: smtp is not configured in settings or environment")

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Result describes an accepted message. MessageID is the Message-ID header we set.
type Result struct {
	Success   bool
	MessageID string
}

//go:generate mockgen -destination=mock/mock_sender.go -package=mock github.com/renelwllms/erepair1-sub001/mailer Sender

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Configured reports whether the config names a server and a sender address.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

// Resolve prefers the shop settings and falls back to the environment.
func Resolve(settings, env SMTPConfig) (SMTPConfig, error) {
	if settings.Configured() {
		if settings.Port == 0 {
			settings.Port = 587
		}
		return settings, nil
	}
	if env.Configured() {
		if env.Port == 0 {
			env.Port = 587
		}
		return env, nil
	}
	return SMTPConfig{}, ErrNotConfigured
}
