package authinfra

import (
	"context"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/Abraxas-365/chatgate/pkg/logx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const stateKeyPrefix = "chatgate:oauth_state:"

// RedisStateManager stores OAuth states in Redis so any instance can serve
// the callback.
type RedisStateManager struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStateManager(client *redis.Client, ttl time.Duration) *RedisStateManager {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisStateManager{client: client, ttl: ttl}
}

func (m *RedisStateManager) GenerateState() string {
	return uuid.NewString()
}

func (m *RedisStateManager) StoreState(ctx context.Context, state string) error {
	ok, err := m.client.SetNX(ctx, stateKeyPrefix+state, "1", m.ttl).Result()
	if err != nil {
		return errx.Wrap(err, "failed to store oauth state", errx.TypeInternal)
	}
	if !ok {
		return errx.New("oauth state already exists", errx.TypeConflict)
	}
	return nil
}

// ValidateState consumes the state with GETDEL, so a replayed callback fails.
func (m *RedisStateManager) ValidateState(ctx context.Context, state string) bool {
	if state == "" {
		return false
	}
	_, err := m.client.GetDel(ctx, stateKeyPrefix+state).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		logx.WithError(err).Error("failed to validate oauth state")
		return false
	}
	return true
}
