package tenantcfg

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisStore persists documents as plain JSON values keyed by config URN.
// Entries carry no expiry: Redis here is durable storage, freshness is the
// cached store's concern.
type redisStore struct {
	cli *redis.Client
	log *zap.SugaredLogger
}

func NewRedisStore(cli *redis.Client, log *zap.SugaredLogger) Store {
	return &redisStore{cli: cli, log: log}
}

func (r *redisStore) Load(ctx context.Context, tenantID string) (map[string]any, error) {
	raw, err := r.cli.Get(ctx, ConfigURN(tenantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load config for %s: %w", tenantID, err)
	}
	return decodeDoc(raw)
}

func (r *redisStore) Save(ctx context.Context, tenantID string, doc map[string]any) error {
	raw, err := encodeDoc(doc)
	if err != nil {
		return err
	}
	if err := r.cli.Set(ctx, ConfigURN(tenantID), raw, 0).Err(); err != nil {
		return fmt.Errorf("save config for %s: %w", tenantID, err)
	}
	return nil
}
