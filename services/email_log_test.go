package services

import (
	"context"
	"testing"
	"time"

	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEmailLogs(t *testing.T) {
	f := newFixture(t)
	for _, l := range []models.EmailLog{
		{Recipient: "jane@example.com", Status: models.EmailStatusSent, Type: models.EmailTypeStatusChange, Channel: models.ChannelEmail},
		{Recipient: "jane@example.com", Status: models.EmailStatusFailed, ErrorMessage: "timeout", Type: models.EmailTypeReadyForPickup, Channel: models.ChannelEmail},
		{Recipient: "+15551234567", Status: models.EmailStatusSent, Type: models.EmailTypeReadyForPickup, Channel: models.ChannelSMS},
	} {
		l := l
		require.NoError(t, f.db.Create(&l).Error)
	}
	svc := NewEmailLogService(f.db)
	ctx := context.Background()

	_, _, err := svc.List(ctx, actorOf(f.tech), EmailLogFilter{})
	assert.ErrorIs(t, err, ErrForbidden)

	logs, total, err := svc.List(ctx, actorOf(f.admin), EmailLogFilter{Status: models.EmailStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "timeout", logs[0].ErrorMessage)

	_, total, err = svc.List(ctx, actorOf(f.admin), EmailLogFilter{Channel: models.ChannelSMS})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = svc.List(ctx, actorOf(f.admin), EmailLogFilter{Recipient: "JANE", From: time.Now(), To: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = svc.List(ctx, actorOf(f.admin), EmailLogFilter{To: time.Now().AddDate(0, 0, -2)})
	require.NoError(t, err)
	assert.Zero(t, total)
}
