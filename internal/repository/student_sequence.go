package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const studentSequenceKey = "pravah:seq:student:%s"

// MemoryStudentSequence hands out per-center counters inside the process.
type MemoryStudentSequence struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryStudentSequence constructs an empty sequence.
func NewMemoryStudentSequence() *MemoryStudentSequence {
	return &MemoryStudentSequence{counters: make(map[string]int64)}
}

// Next returns the next counter value of a center, starting at 1.
func (s *MemoryStudentSequence) Next(ctx context.Context, centerID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[centerID]++
	return s.counters[centerID], nil
}

// RedisStudentSequence shares counters between instances through Redis INCR.
// Without a client, or when Redis fails, it falls back to an in-process sequence.
type RedisStudentSequence struct {
	client   *redis.Client
	fallback *MemoryStudentSequence
	logger   *zap.Logger
}

// NewRedisStudentSequence constructs a sequence; client may be nil.
func NewRedisStudentSequence(client *redis.Client, logger *zap.Logger) *RedisStudentSequence {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStudentSequence{client: client, fallback: NewMemoryStudentSequence(), logger: logger}
}

// Next returns the next counter value of a center.
func (s *RedisStudentSequence) Next(ctx context.Context, centerID string) (int64, error) {
	if s.client == nil {
		return s.fallback.Next(ctx, centerID)
	}
	key := fmt.Sprintf(studentSequenceKey, centerID)
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.logger.Warn("redis student sequence unavailable, using local counter", zap.String("key", key), zap.Error(err))
		return s.fallback.Next(ctx, centerID)
	}
	return n, nil
}
