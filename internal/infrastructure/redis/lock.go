package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/remp2020/crm-stripe-module/internal/application"
)

const (
	lockAttempts   = 5
	lockRetryDelay = 50 * time.Millisecond
	unlockTimeout  = 2 * time.Second
)

// Locker is a SET NX lock with a per-holder token. The TTL bounds how long a
// crashed holder can block the key.
type Locker struct {
	cli    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ application.Locker = (*Locker)(nil)

func NewLocker(c *Client, ttl time.Duration) *Locker {
	return &Locker{cli: c.cli, ttl: ttl, logger: c.logger}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	var lastErr error
	for i := 0; i < lockAttempts; i++ {
		ok, err := l.cli.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			lastErr = err
		} else if ok {
			return func() { l.unlock(key, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	if lastErr != nil {
		return nil, application.NewInternalError(lastErr)
	}
	return nil, application.NewLockedError(key)
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

// unlock runs detached from the request so a canceled request still releases the key
func (l *Locker) unlock(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
	defer cancel()

	if _, err := luaUnlock.Run(ctx, l.cli, []string{key}, token).Result(); err != nil {
		l.logger.Warn("failed to release lock",
			"key", key,
			"error", err)
	}
}
