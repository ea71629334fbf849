package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "sessions::"
	bufferKeyPrefix  = "buffers::"
)

// defaultTTL bounds the lifetime of an orphaned session (spec §5, §6 —
// "a key/value entry TTL bounds the lifetime of orphaned sessions").
const defaultTTL = 10 * time.Minute

// RedisStore implements Store over a Redis (or Redis-compatible) server.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to the database identified by url (e.g.
// "redis://host:6379/0") and verifies the connection with a PING.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("session: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("session: ping redis: %w", err)
	}
	return &RedisStore{client: client, ttl: defaultTTL}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func sessionKey(token string) string { return sessionKeyPrefix + token }
func bufferKey(token string) string  { return bufferKeyPrefix + token }

func (s *RedisStore) PutSession(ctx context.Context, token string, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(token), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: put session: %w", err)
	}
	return nil
}

func (s *RedisStore) GetSession(ctx context.Context, token string) (Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("session: get session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("session: unmarshal: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) PutBuffer(ctx context.Context, token string, buf []byte) error {
	if err := s.client.Set(ctx, bufferKey(token), buf, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: put buffer: %w", err)
	}
	return nil
}

func (s *RedisStore) GetBuffer(ctx context.Context, token string) ([]byte, error) {
	data, err := s.client.Get(ctx, bufferKey(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("session: get buffer: %w", err)
	}
	return data, nil
}

// AppendBuffer appends data to the buffer in one round trip. Redis's
// APPEND command is atomic across concurrent callers, which is the
// property the flush protocol in the dispatcher depends on (spec §4.4,
// §5).
func (s *RedisStore) AppendBuffer(ctx context.Context, token string, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	pipe.Append(ctx, bufferKey(token), string(data))
	pipe.Expire(ctx, bufferKey(token), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: append buffer: %w", err)
	}
	return nil
}

// ListTokens enumerates all sessions currently online via SCAN, stripping
// the key prefix back to the bare token.
func (s *RedisStore) ListTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		tokens = append(tokens, strings.TrimPrefix(iter.Val(), sessionKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("session: list tokens: %w", err)
	}
	return tokens, nil
}

// Drop removes both the session and buffer records for token in one
// round trip.
func (s *RedisStore) Drop(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token), bufferKey(token)).Err(); err != nil {
		return fmt.Errorf("session: drop: %w", err)
	}
	return nil
}
