package queue

import (
	"context"
	"testing"
	"time"

	logger "restaurant-crm-api/src/infrastructure/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWakePayloadRoundTrip(t *testing.T) {
	data, err := encodeWake(42, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.JSONEq(t, `{"campaign_id":42,"published_at":"2026-03-01T12:00:00Z"}`, string(data))

	id, ok := decodeWake(string(data))
	assert.True(t, ok)
	assert.Equal(t, 42, id)
}

func TestDecodeWakeRejectsGarbage(t *testing.T) {
	_, ok := decodeWake(`{"hello":"world"}`)
	assert.False(t, ok)
}

func TestNewRedisWakeQueueRejectsBadURL(t *testing.T) {
	_, err := NewRedisWakeQueue("not-a-url", "", logger.NewNopLogger())
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}

func TestListenStopsOnCancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	q := &RedisWakeQueue{
		client: redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}),
		key:    DefaultKey,
		Logger: logger.NewNopLogger(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wake := make(chan int, 1)
	err := q.Listen(ctx, wake)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, wake)
	require.NoError(t, q.Close())
}
