package campaign

import (
	"testing"
	"time"

	domainErrors "restaurant-crm-api/src/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusProcessing, StatusProcessing, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusCancelled, false},
		{StatusProcessing, StatusPending, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusCancelled, StatusProcessing, false},
		{StatusCancelled, StatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			next, err := tt.from.TransitionTo(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, next)
				return
			}
			require.Error(t, err)
			assert.True(t, domainErrors.IsType(err, domainErrors.InvalidTransition))
			assert.Equal(t, tt.from, next)
		})
	}
}

func TestCampaignCompleteStampsOnce(t *testing.T) {
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := &Campaign{Status: StatusProcessing}

	require.NoError(t, c.Complete(first))
	assert.Equal(t, StatusCompleted, c.Status)
	assert.Equal(t, first, *c.CompletedAt)

	err := c.Complete(first.Add(time.Hour))
	assert.Error(t, err)
	assert.Equal(t, first, *c.CompletedAt)
}

func TestCampaignCancelOnlyWhilePending(t *testing.T) {
	pending := &Campaign{Status: StatusPending}
	require.NoError(t, pending.Cancel())
	assert.Equal(t, StatusCancelled, pending.Status)

	running := &Campaign{Status: StatusProcessing}
	err := running.Cancel()
	assert.True(t, domainErrors.IsType(err, domainErrors.InvalidTransition))
	assert.Equal(t, StatusProcessing, running.Status)
}

func TestCampaignIsDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, (&Campaign{Status: StatusPending, ScheduledFor: now}).IsDue(now))
	assert.True(t, (&Campaign{Status: StatusProcessing, ScheduledFor: now.Add(-time.Hour)}).IsDue(now))
	assert.False(t, (&Campaign{Status: StatusPending, ScheduledFor: now.Add(time.Second)}).IsDue(now))
	assert.False(t, (&Campaign{Status: StatusCancelled, ScheduledFor: now.Add(-time.Hour)}).IsDue(now))
	assert.False(t, (&Campaign{Status: StatusCompleted, ScheduledFor: now.Add(-time.Hour)}).IsDue(now))
}

func TestCampaignLeaseFree(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := now.Add(time.Minute)
	earlier := now.Add(-time.Minute)

	assert.True(t, (&Campaign{}).LeaseFree("a", now))
	assert.True(t, (&Campaign{LeaseOwner: "a", LeaseExpiresAt: &later}).LeaseFree("a", now))
	assert.False(t, (&Campaign{LeaseOwner: "b", LeaseExpiresAt: &later}).LeaseFree("a", now))
	assert.True(t, (&Campaign{LeaseOwner: "b", LeaseExpiresAt: &earlier}).LeaseFree("a", now))
}

func TestRecipientSucceed(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := Recipient{ID: 1, Status: RecipientFailed, RetryCount: 2, Version: 4, ErrorMessage: "x"}

	out, err := r.Succeed(at)
	require.NoError(t, err)
	assert.Equal(t, RecipientSent, out.Recipient.Status)
	assert.Equal(t, 2, out.Recipient.RetryCount)
	assert.Equal(t, at, *out.Recipient.SentAt)
	assert.Empty(t, out.Recipient.ErrorMessage)
	assert.Equal(t, 4, out.ExpectedVersion)
	assert.Equal(t, 5, out.Recipient.Version)
	assert.Equal(t, 1, out.SentDelta)
	assert.Equal(t, 0, out.FailedDelta)

	_, err = out.Recipient.Succeed(at)
	assert.True(t, domainErrors.IsType(err, domainErrors.InvalidTransition))
	_, err = out.Recipient.Fail(at, false, "late")
	assert.True(t, domainErrors.IsType(err, domainErrors.InvalidTransition))
}

func TestRecipientFailTransient(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := Recipient{ID: 1, Status: RecipientPending}

	out, err := r.Fail(at, false, "connection reset")
	require.NoError(t, err)
	assert.Equal(t, RecipientFailed, out.Recipient.Status)
	assert.Equal(t, 1, out.Recipient.RetryCount)
	assert.False(t, out.Recipient.Permanent)
	assert.True(t, out.Recipient.IsActionable())
	assert.Equal(t, "[attempt 1/3] connection reset", out.Recipient.ErrorMessage)
	assert.Equal(t, 0, out.FailedDelta)

	out, err = out.Recipient.Fail(at, false, "timeout")
	require.NoError(t, err)
	out, err = out.Recipient.Fail(at, false, "timeout")
	require.NoError(t, err)
	assert.Equal(t, 3, out.Recipient.RetryCount)
	assert.True(t, out.Recipient.Permanent)
	assert.True(t, out.Recipient.IsPermanentlyFailed())
	assert.False(t, out.Recipient.IsActionable())
	assert.Equal(t, 1, out.FailedDelta)
	assert.Equal(t, "[attempt 3/3] timeout (permanent)", out.Recipient.ErrorMessage)

	_, err = out.Recipient.Fail(at, false, "again")
	assert.Error(t, err)
}

func TestRecipientFailNonRecoverable(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	out, err := Recipient{Status: RecipientPending}.Fail(at, true, "invalid number")
	require.NoError(t, err)
	assert.Equal(t, 1, out.Recipient.RetryCount)
	assert.True(t, out.Recipient.Permanent)
	assert.False(t, out.Recipient.IsActionable())
	assert.Equal(t, 1, out.FailedDelta)
}

func TestCampaignPendingNeverNegative(t *testing.T) {
	assert.Equal(t, 3, (&Campaign{TotalRecipients: 5, SentCount: 1, FailedCount: 1}).Pending())
	assert.Zero(t, (&Campaign{TotalRecipients: 2, SentCount: 2, FailedCount: 1}).Pending())
}
