package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	// StorageName prefixes every persisted cart.
	StorageName = "cart-storage"
	// SnapshotVersion changes whenever Line changes shape. Snapshots with
	// any other version are discarded on load.
	SnapshotVersion = 1
)

type Snapshot struct {
	Version int    `json:"version"`
	Items   []Line `json:"items"`
}

func (c *Cart) Snapshot() Snapshot {
	return Snapshot{Version: SnapshotVersion, Items: append([]Line(nil), c.Lines...)}
}

// FromSnapshot restores a cart. ok is false for a foreign version, in which
// case the returned cart is empty.
func FromSnapshot(s Snapshot) (c *Cart, ok bool) {
	if s.Version != SnapshotVersion {
		return &Cart{}, false
	}
	return &Cart{Lines: append([]Line(nil), s.Items...)}, true
}

// Store persists carts per owner without expiry.
type Store interface {
	Load(ctx context.Context, owner string) (*Cart, error)
	Save(ctx context.Context, owner string, c *Cart) error
	Delete(ctx context.Context, owner string) error
}

func storageKey(owner string) string {
	return fmt.Sprintf("%s:%s", StorageName, owner)
}

type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, owner string) (*Cart, error) {
	raw, err := s.client.Get(ctx, storageKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return s.discard(ctx, owner)
	}
	c, ok := FromSnapshot(snap)
	if !ok {
		return s.discard(ctx, owner)
	}
	return c, nil
}

func (s *RedisStore) discard(ctx context.Context, owner string) (*Cart, error) {
	if err := s.client.Del(ctx, storageKey(owner)).Err(); err != nil {
		return nil, fmt.Errorf("failed to discard stale cart: %w", err)
	}
	return &Cart{}, nil
}

func (s *RedisStore) Save(ctx context.Context, owner string, c *Cart) error {
	if c.IsEmpty() {
		return s.Delete(ctx, owner)
	}
	raw, err := json.Marshal(c.Snapshot())
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, storageKey(owner), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, owner string) error {
	if err := s.client.Del(ctx, storageKey(owner)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// MemoryStore keeps snapshots in process. Used when no redis is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string][]byte{}}
}

func (s *MemoryStore) Load(_ context.Context, owner string) (*Cart, error) {
	s.mu.RLock()
	raw, ok := s.carts[storageKey(owner)]
	s.mu.RUnlock()
	if !ok {
		return &Cart{}, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return &Cart{}, nil
	}
	c, _ := FromSnapshot(snap)
	return c, nil
}

func (s *MemoryStore) Save(ctx context.Context, owner string, c *Cart) error {
	if c.IsEmpty() {
		return s.Delete(ctx, owner)
	}
	raw, err := json.Marshal(c.Snapshot())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.carts[storageKey(owner)] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, owner string) error {
	s.mu.Lock()
	delete(s.carts, storageKey(owner))
	s.mu.Unlock()
	return nil
}
