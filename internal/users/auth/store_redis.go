// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/uptowngym/internal/platform/apperr"
	"github.com/taibuivan/uptowngym/internal/platform/constants"
)

// RedisTokenRepository implements [OneTimeTokenRepository] on Redis keys
// that expire on their own.
type RedisTokenRepository struct {
	client *redis.Client
	prefix string
	label  string
}

// NewRecoveryTokenRepository stores password recovery tokens.
func NewRecoveryTokenRepository(client *redis.Client) *RedisTokenRepository {
	return &RedisTokenRepository{client: client, prefix: constants.RedisPrefixResetToken, label: "Recovery token"}
}

// NewConfirmationTokenRepository stores sign-up confirmation tokens.
func NewConfirmationTokenRepository(client *redis.Client) *RedisTokenRepository {
	return &RedisTokenRepository{client: client, prefix: constants.RedisPrefixVerifyToken, label: "Confirmation token"}
}

// Set stores the token with its account ID and TTL.
func (repository *RedisTokenRepository) Set(context context.Context, token string, accountID string, ttl time.Duration) error {
	if err := repository.client.Set(context, repository.prefix+token, accountID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_token_set_failed: %w", err)
	}
	return nil
}

/*
Consume atomically reads and deletes the token.

GETDEL makes a token single-use even when two verify requests race.

Returns:
  - string: Account ID
  - error: apperr.NotFound when absent or expired
*/
func (repository *RedisTokenRepository) Consume(context context.Context, token string) (string, error) {
	accountID, err := repository.client.GetDel(context, repository.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound(repository.label)
		}
		return "", fmt.Errorf("redis_token_consume_failed: %w", err)
	}
	return accountID, nil
}
