package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/tracker-console/internal/models"
)

// Hash fields of a session key.
const (
	fieldAuthToken    = "auth_token"
	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
	fieldProfile      = "profile"
	// fieldLegacyToken held the access token before the access/refresh split.
	fieldLegacyToken = "token"
)

// RedisSessionStore keeps each session in one Redis hash whose TTL slides on access.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSessionStore constructs a Redis-backed store.
func NewRedisSessionStore(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *RedisSessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSessionStore{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (r *RedisSessionStore) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisSessionStore) Get(ctx context.Context, sessionID string) (models.Session, error) {
	key := r.key(sessionID)

	var fields *redis.MapStringStringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		fields = pipe.HGetAll(ctx, key)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return models.Session{}, storeError("get", sessionID, fmt.Errorf("redis hgetall %s: %w", key, err))
	}

	values := fields.Val()
	session := models.Session{
		AuthToken:    values[fieldAuthToken],
		AccessToken:  values[fieldAccessToken],
		RefreshToken: values[fieldRefreshToken],
	}
	if session.AccessToken == "" {
		session.AccessToken = values[fieldLegacyToken]
	}
	if raw := values[fieldProfile]; raw != "" {
		var profile models.UserProfile
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			r.logger.Warn("discarding unreadable cached profile", zap.String("key", key), zap.Error(err))
		} else {
			session.Profile = &profile
		}
	}

	return session, nil
}

func (r *RedisSessionStore) SetAuthToken(ctx context.Context, sessionID, authToken string) error {
	return r.hset(ctx, "set auth token", sessionID, fieldAuthToken, authToken)
}

func (r *RedisSessionStore) SaveTokens(ctx context.Context, sessionID, access, refresh string) error {
	values := []interface{}{fieldAccessToken, access}
	if refresh != "" {
		values = append(values, fieldRefreshToken, refresh)
	}
	return r.hset(ctx, "save tokens", sessionID, values...)
}

func (r *RedisSessionStore) SaveProfile(ctx context.Context, sessionID string, profile *models.UserProfile) error {
	if profile == nil {
		key := r.key(sessionID)
		if err := r.client.HDel(ctx, key, fieldProfile).Err(); err != nil {
			return storeError("save profile", sessionID, fmt.Errorf("redis hdel %s: %w", key, err))
		}
		return nil
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile for session %s: %w", sessionID, err)
	}
	return r.hset(ctx, "save profile", sessionID, fieldProfile, string(payload))
}

func (r *RedisSessionStore) ClearTokens(ctx context.Context, sessionID string) error {
	key := r.key(sessionID)
	if err := r.client.HDel(ctx, key, fieldAccessToken, fieldRefreshToken, fieldLegacyToken, fieldProfile).Err(); err != nil {
		return storeError("clear tokens", sessionID, fmt.Errorf("redis hdel %s: %w", key, err))
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	key := r.key(sessionID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return storeError("delete", sessionID, fmt.Errorf("redis del %s: %w", key, err))
	}
	return nil
}

// Ping checks Redis connectivity.
func (r *RedisSessionStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection.
func (r *RedisSessionStore) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *RedisSessionStore) hset(ctx context.Context, op, sessionID string, values ...interface{}) error {
	key := r.key(sessionID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values...)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return storeError(op, sessionID, fmt.Errorf("redis hset %s: %w", key, err))
	}
	return nil
}
