package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "console:credential:"

type redisCredentialRepository struct {
	client redis.UniversalClient
	key    string
}

// NewRedisCredentialRepository stores the credential under a namespaced Redis key.
func NewRedisCredentialRepository(client redis.UniversalClient, key string) CredentialRepository {
	return &redisCredentialRepository{client: client, key: redisKeyPrefix + key}
}

func (r *redisCredentialRepository) Load(ctx context.Context) (string, error) {
	credential, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("redis get credential: %w", err)
	}
	if credential == "" {
		return "", ErrNoCredential
	}
	return credential, nil
}

func (r *redisCredentialRepository) Save(ctx context.Context, credential string) error {
	if err := r.client.Set(ctx, r.key, credential, 0).Err(); err != nil {
		return fmt.Errorf("redis set credential: %w", err)
	}
	return nil
}

func (r *redisCredentialRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del credential: %w", err)
	}
	return nil
}
