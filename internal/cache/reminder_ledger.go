package cache

import (
	"context"
	"time"

	"github.com/SeakMengs/SignFlow/pkg/esign"
	"github.com/redis/go-redis/v9"
)

// Reminder claims outlive any sensible reminder interval; a request is
// expired or done long before.
const reminderClaimTTL = 90 * 24 * time.Hour

// RedisReminderLedger shares reminder claims between scheduler replicas.
type RedisReminderLedger struct {
	client *redis.Client
}

var _ esign.ReminderLedger = (*RedisReminderLedger)(nil)

func NewRedisReminderLedger(client *redis.Client) *RedisReminderLedger {
	return &RedisReminderLedger{client: client}
}

func ReminderLedgerKey(requestID, email string, n int) string {
	return keyPrefix + "reminder:" + esign.ReminderKey(requestID, email, n)
}

func (l *RedisReminderLedger) Claim(ctx context.Context, requestID, email string, n int) (bool, error) {
	ok, err := l.client.SetNX(ctx, ReminderLedgerKey(requestID, email, n), time.Now().UTC().Unix(), reminderClaimTTL).Result()
	if err != nil {
		return false, esign.NewTransientError("claim reminder", err)
	}
	return ok, nil
}

func (l *RedisReminderLedger) Release(ctx context.Context, requestID, email string, n int) error {
	if err := l.client.Del(ctx, ReminderLedgerKey(requestID, email, n)).Err(); err != nil {
		return esign.NewTransientError("release reminder", err)
	}
	return nil
}
