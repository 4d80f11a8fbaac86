package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mohammad-safakhou/chatfusion/repository/redis_repository"
	"github.com/redis/go-redis/v9"
)

// CacheRepository stores JSON documents under string keys with a TTL.
type CacheRepository interface {
	// Get decodes the value under key into dst. found is false on a miss.
	Get(ctx context.Context, key string, dst any) (found bool, err error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}

type RepoType string

const (
	RepoTypeRedis RepoType = "redis"
)

// NewCacheRepository returns a cache whose keys are all prefixed with
// prefix.
func NewCacheRepository(t RepoType, client *redis.Client, prefix string) (CacheRepository, error) {
	switch t {
	case RepoTypeRedis:
		if client == nil {
			return nil, fmt.Errorf("redis cache requires a client")
		}
		return redis_repository.NewCacheRepository(client, prefix), nil
	}
	return nil, fmt.Errorf("invalid repository type: %s", t)
}
