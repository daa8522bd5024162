package lock

import (
	"context"
	"fmt"
	"time"

	portsrepo "github.com/gigworks/gigtax/internal/core/ports/repositories"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	lockKeyPrefix = "gigtax:lock:"
	lockTTL       = 10 * time.Second
	retryInterval = 50 * time.Millisecond
)

// releaseScript deletes the lock only when the caller still owns it, so a
// holder that outlived its TTL cannot release someone else's lock.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// RedisSummaryLock serializes summary swaps across processes using a
// SET NX lease with an owner token.
type RedisSummaryLock struct {
	client *redis.Client
}

var _ portsrepo.SummaryLock = (*RedisSummaryLock)(nil)

func NewRedisSummaryLock(client *redis.Client) *RedisSummaryLock {
	return &RedisSummaryLock{client: client}
}

// Lock polls SET NX until the key is acquired or ctx is done.
func (l *RedisSummaryLock) Lock(ctx context.Context, key string) (portsrepo.Unlocker, error) {
	token := uuid.NewString()
	redisKey := lockKeyPrefix + key

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		acquired, err := l.client.SetNX(ctx, redisKey, token, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("error acquiring summary lock %s: %w", key, err)
		}
		if acquired {
			return &redisUnlocker{client: l.client, key: redisKey, token: token}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

type redisUnlocker struct {
	client *redis.Client
	key    string
	token  string
}

func (u *redisUnlocker) Unlock(ctx context.Context) error {
	if err := u.client.Eval(ctx, releaseScript, []string{u.key}, u.token).Err(); err != nil {
		return fmt.Errorf("error releasing summary lock %s: %w", u.key, err)
	}
	return nil
}
