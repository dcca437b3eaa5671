package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/mail.v2"
)

type staticSettings struct {
	cfg SMTPConfig
	err error
}

func (s staticSettings) SMTPSettings(ctx context.Context) (SMTPConfig, error) {
	return s.cfg, s.err
}

var envConfig = SMTPConfig{Host: "smtp.env.test", Port: 2525, From: "env@shop.test"}

func TestResolve_PrefersSettings(t *testing.T) {
	settings := SMTPConfig{Host: "smtp.settings.test", From: "settings@shop.test"}

	cfg, err := Resolve(settings, envConfig)
	require.NoError(t, err)
	assert.Equal(t, "smtp.settings.test", cfg.Host)
	assert.Equal(t, 587, cfg.Port)
}

func TestResolve_FallsBackToEnv(t *testing.T) {
	cfg, err := Resolve(SMTPConfig{Host: "smtp.settings.test"}, envConfig)
	require.NoError(t, err)
	assert.Equal(t, envConfig, cfg)
}

func TestResolve_NotConfigured(t *testing.T) {
	_, err := Resolve(SMTPConfig{}, SMTPConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSend_BuildsMessage(t *testing.T) {
	var sent []*mail.Message
	var usedHost string
	s := NewSMTPSender(staticSettings{}, envConfig)
	s.dial = func(cfg SMTPConfig, msgs ...*mail.Message) error {
		usedHost = cfg.Host
		sent = append(sent, msgs...)
		return nil
	}

	res, err := s.Send(context.Background(), Message{
		To:      "jane@example.com",
		Subject: "Your repair is ready",
		HTML:    "<p>ready</p>",
		Text:    "ready",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, strings.HasSuffix(res.MessageID, "@shop.test>"))
	assert.Equal(t, "smtp.env.test", usedHost)

	require.Len(t, sent, 1)
	assert.Equal(t, []string{"jane@example.com"}, sent[0].GetHeader("To"))
	assert.Equal(t, []string{res.MessageID}, sent[0].GetHeader("Message-ID"))
	assert.Equal(t, []string{"env@shop.test"}, sent[0].GetHeader("From"))
}

func TestSend_DialFailure(t *testing.T) {
	s := NewSMTPSender(nil, envConfig)
	s.dial = func(cfg SMTPConfig, msgs ...*mail.Message) error {
		return errors.New("connection refused")
	}

	res, err := s.Send(context.Background(), Message{To: "jane@example.com", Subject: "x", Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, res.Success)
}

func TestSend_NotConfigured(t *testing.T) {
	s := NewSMTPSender(staticSettings{}, SMTPConfig{})
	s.dial = func(cfg SMTPConfig, msgs ...*mail.Message) error {
		t.Fatal("dial must not be called")
		return nil
	}

	_, err := s.Send(context.Background(), Message{To: "jane@example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSend_SettingsError(t *testing.T) {
	s := NewSMTPSender(staticSettings{err: errors.New("db down")}, envConfig)

	_, err := s.Send(context.Background(), Message{To: "jane@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestSend_EmptyRecipient(t *testing.T) {
	s := NewSMTPSender(nil, envConfig)

	_, err := s.Send(context.Background(), Message{Subject: "x"})
	assert.Error(t, err)
}

func TestSend_CancelledContext(t *testing.T) {
	s := NewSMTPSender(nil, envConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Send(ctx, Message{To: "jane@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}
