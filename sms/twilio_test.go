package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeAPI struct {
	params *twilioApi.CreateMessageParams
	sid    *string
	err    error
}

func (f *fakeAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &twilioApi.ApiV2010Message{Sid: f.sid}, nil
}

func TestNewTwilio_MissingCredentials(t *testing.T) {
	assert.Nil(t, NewTwilio("", "token", "+15550000"))
	assert.Nil(t, NewTwilio("AC123", "token", ""))
	assert.NotNil(t, NewTwilio("AC123", "token", "+15550000"))
}

func TestSendSMS(t *testing.T) {
	sid := "SM123"
	api := &fakeAPI{sid: &sid}
	tw := &Twilio{api: api, from: "+15550000"}

	got, err := tw.SendSMS(context.Background(), " +15551234 ", "ready for pickup")
	require.NoError(t, err)
	assert.Equal(t, "SM123", got)
	require.NotNil(t, api.params.To)
	assert.Equal(t, "+15551234", *api.params.To)
	assert.Equal(t, "+15550000", *api.params.From)
	assert.Equal(t, "ready for pickup", *api.params.Body)
}

func TestSendSMS_Errors(t *testing.T) {
	tw := &Twilio{api: &fakeAPI{err: errors.New("invalid number")}, from: "+15550000"}

	_, err := tw.SendSMS(context.Background(), "", "x")
	assert.ErrorIs(t, err, ErrNoRecipient)

	_, err = tw.SendSMS(context.Background(), "+15551234", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid number")
}
