package likes

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Mirror is the durable per-device key-value store backing like membership.
// Get returns "" for an absent key.
type Mirror interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// RedisMirror persists membership sets in Redis. Entries never expire; the
// membership lifecycle is created-empty, grows and shrinks on toggle.
type RedisMirror struct {
	rdb *redis.Client
}

// NewRedisMirror creates a Redis-backed mirror.
func NewRedisMirror(rdb *redis.Client) *RedisMirror {
	return &RedisMirror{rdb: rdb}
}

func (m *RedisMirror) Get(ctx context.Context, key string) (string, error) {
	s, err := m.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return s, err
}

func (m *RedisMirror) Set(ctx context.Context, key, value string) error {
	return m.rdb.Set(ctx, key, value, 0).Err()
}

// MemoryMirror is an in-process mirror used when Redis is unavailable and in
// tests. Durable only for the process lifetime.
type MemoryMirror struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryMirror creates an empty in-memory mirror.
func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{values: make(map[string]string)}
}

func (m *MemoryMirror) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *MemoryMirror) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
