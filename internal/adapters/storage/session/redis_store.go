package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domain "flipfit/internal/domain/session"
)

// RedisClient is the part of *redis.Client the store needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

const redisKeyPrefix = "flipfit:session:"

// RedisStore keeps sessions in Redis so several frontend instances can share them.
// Expiry is delegated to Redis key TTLs.
type RedisStore struct {
	client RedisClient
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a session store on client. ttl <= 0 means keys never expire.
func NewRedisStore(client RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

// NewRedisClient connects to Redis, retrying the ping up to attempts times.
func NewRedisClient(ctx context.Context, opts *redis.Options, attempts int, delay time.Duration) (*redis.Client, error) {
	client := redis.NewClient(opts)
	var err error
	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			return client, nil
		}
		select {
		case <-ctx.Done():
			client.Close()
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	client.Close()
	return nil, fmt.Errorf("connect to redis at %s after %d attempts: %w", opts.Addr, attempts, err)
}

type redisSession struct {
	UserID    int       `json:"userId"`
	Role      string    `json:"role"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func redisKey(token string) string {
	return redisKeyPrefix + hashToken(token)
}

// Create stores sess and returns its token.
func (s *RedisStore) Create(ctx context.Context, sess domain.Session) (string, error) {
	if err := sess.Validate(); err != nil {
		return "", err
	}
	token, err := newToken()
	if err != nil {
		return "", err
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now()
	}
	payload, err := json.Marshal(redisSession{
		UserID:    sess.UserID,
		Role:      string(sess.Role),
		FullName:  sess.FullName,
		Email:     sess.Email,
		CreatedAt: sess.CreatedAt.UTC(),
	})
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, redisKey(token), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set session: %w", err)
	}
	return token, nil
}

// Get returns the session for token.
func (s *RedisStore) Get(ctx context.Context, token string) (domain.Session, bool, error) {
	val, err := s.client.Get(ctx, redisKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("redis get session: %w", err)
	}
	var rs redisSession
	if err := json.Unmarshal([]byte(val), &rs); err != nil {
		return domain.Session{}, false, fmt.Errorf("decode session: %w", err)
	}
	return domain.Session{
		UserID:    rs.UserID,
		Role:      domain.Role(rs.Role),
		FullName:  rs.FullName,
		Email:     rs.Email,
		CreatedAt: rs.CreatedAt,
	}, true, nil
}

// Delete removes the session for token.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKey(token)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
