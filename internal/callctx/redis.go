package callctx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/garasindo/voice-crm-service/internal/domain"
	"github.com/garasindo/voice-crm-service/pkg/redis"
)

// DefaultContextTTL bounds how long an abandoned context can linger when the
// terminal status webhook is never delivered.
const DefaultContextTTL = time.Hour

// RedisStore is a Store backed by Redis with a per-entry TTL. A process
// restart mid-call can still resolve the next webhook, and stale entries
// expire on their own.
type RedisStore struct {
	redis redis.RedisServiceInterface
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store. A non-positive ttl falls back
// to DefaultContextTTL.
func NewRedisStore(redisSvc redis.RedisServiceInterface, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultContextTTL
	}
	return &RedisStore{redis: redisSvc, ttl: ttl}
}

func (s *RedisStore) key(callSID string) string {
	return s.redis.GenerateKey(redis.CALL_CONTEXT, callSID)
}

// Put inserts or replaces the context for a call, refreshing its TTL.
func (s *RedisStore) Put(ctx context.Context, callSID string, callContext *domain.CallContext) error {
	data, err := json.Marshal(callContext)
	if err != nil {
		return fmt.Errorf("failed to marshal call context: %w", err)
	}
	if err := s.redis.SetValue(ctx, s.key(callSID), string(data), s.ttl); err != nil {
		return fmt.Errorf("failed to store call context: %w", err)
	}
	return nil
}

// Get looks up the context for a call. An expired or absent key is a plain
// miss.
func (s *RedisStore) Get(ctx context.Context, callSID string) (*domain.CallContext, bool, error) {
	val, err := s.redis.GetValue(ctx, s.key(callSID))
	if err != nil {
		if errors.Is(err, redis.ErrKeyNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read call context: %w", err)
	}

	var callContext domain.CallContext
	if err := json.Unmarshal([]byte(val), &callContext); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal call context: %w", err)
	}
	return &callContext, true, nil
}

// Remove deletes the context for a call.
func (s *RedisStore) Remove(ctx context.Context, callSID string) error {
	if err := s.redis.DelValue(ctx, s.key(callSID)); err != nil {
		return fmt.Errorf("failed to delete call context: %w", err)
	}
	return nil
}
