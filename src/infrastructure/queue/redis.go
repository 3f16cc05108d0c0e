package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	logger "restaurant-crm-api/src/infrastructure/logger"

	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

const DefaultKey = "crm:campaigns:wake"

// WakeQueueInterface carries "a campaign became due" signals from the API to the worker.
type WakeQueueInterface interface {
	Publish(ctx context.Context, campaignID int) error
	Listen(ctx context.Context, wake chan<- int) error
	Close() error
}

type RedisWakeQueue struct {
	client *redis.Client
	key    string
	Logger *logger.Logger
}

func NewRedisWakeQueue(url, key string, loggerInstance *logger.Logger) (*RedisWakeQueue, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if key == "" {
		key = DefaultKey
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	loggerInstance.Info("Connected to Redis", zap.String("addr", opts.Addr), zap.String("queue", key))
	return &RedisWakeQueue{client: client, key: key, Logger: loggerInstance}, nil
}

func encodeWake(campaignID int, at time.Time) ([]byte, error) {
	payload, err := sjson.SetBytes([]byte(`{}`), "campaign_id", campaignID)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(payload, "published_at", at.UTC().Format(time.RFC3339))
}

func decodeWake(raw string) (int, bool) {
	id := gjson.Get(raw, "campaign_id")
	if !id.Exists() {
		return 0, false
	}
	return int(id.Int()), true
}

func (q *RedisWakeQueue) Publish(ctx context.Context, campaignID int) error {
	data, err := encodeWake(campaignID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to encode wake-up: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to push wake-up: %w", err)
	}
	q.Logger.Debug("Wake-up published", zap.Int("campaignID", campaignID))
	return nil
}

// Listen blocks until ctx is done, forwarding each wake-up without blocking on a busy receiver.
func (q *RedisWakeQueue) Listen(ctx context.Context, wake chan<- int) error {
	for {
		result, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			q.Logger.Error("Failed to pop from wake queue", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		campaignID, ok := decodeWake(result[1])
		if !ok {
			q.Logger.Warn("Dropping malformed wake-up", zap.String("data", result[1]))
			continue
		}
		select {
		case wake <- campaignID:
		default:
		}
	}
}

func (q *RedisWakeQueue) Close() error {
	return q.client.Close()
}
