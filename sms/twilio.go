// Package sms sends text messages through twilio.
package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrNoRecipient = errors.New("sms: recipient has no phone number")

//go:generate mockgen -destination=mock/mock_sender.go -package=mock github.com/renelwllms/erepair1-sub001/sms Sender

// Sender sends one text message and returns the provider message id.
type Sender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

type messageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type Twilio struct {
	api  messageAPI
	from string
}

// NewTwilio returns nil when the account or the sending number is missing, so callers
// can treat SMS as disabled.
func NewTwilio(accountSID, authToken, from string) *Twilio {
	if accountSID == "" || authToken == "" || from == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Twilio{api: client.Api, from: from}
}

func (t *Twilio) SendSMS(ctx context.Context, to, body string) (string, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return "", ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio create message to %s: %w", to, err)
	}
	if resp == nil || resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}
