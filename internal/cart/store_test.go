package cart

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	pid := uuid.New()

	empty, err := s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	require.NoError(t, s.Save(ctx, "u1", New(line(pid, nil, 2, 5, "10"))))
	got, err := s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalItems())

	require.NoError(t, s.Save(ctx, "u1", New()))
	got, _ = s.Load(ctx, "u1")
	assert.True(t, got.IsEmpty())
}

type RedisStoreTestSuite struct {
	suite.Suite
	client *redis.Client
	store  *RedisStore
}

func TestRedisStoreTestSuite(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	suite.Run(t, &RedisStoreTestSuite{client: client})
}

func (s *RedisStoreTestSuite) SetupTest() {
	s.client.FlushDB(context.Background())
	s.store = NewRedisStore(s.client)
}

func (s *RedisStoreTestSuite) TearDownSuite() {
	s.client.Close()
}

func (s *RedisStoreTestSuite) TestSaveAndLoad() {
	ctx := context.Background()
	pid := uuid.New()
	require.NoError(s.T(), s.store.Save(ctx, "owner", New(line(pid, nil, 3, 5, "12.5"))))

	ttl, err := s.client.TTL(ctx, storageKey("owner")).Result()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), time.Duration(-1), ttl)

	got, err := s.store.Load(ctx, "owner")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, got.TotalItems())
	assert.Equal(s.T(), "37.5", got.TotalPrice().String())
}

func (s *RedisStoreTestSuite) TestStaleVersionIsDiscarded() {
	ctx := context.Background()
	err := s.client.Set(ctx, storageKey("owner"), `{"version":0,"items":[{"id":"x","quantity":1}]}`, 0).Err()
	require.NoError(s.T(), err)

	got, err := s.store.Load(ctx, "owner")
	require.NoError(s.T(), err)
	assert.True(s.T(), got.IsEmpty())

	exists, _ := s.client.Exists(ctx, storageKey("owner")).Result()
	assert.EqualValues(s.T(), 0, exists)
}

func (s *RedisStoreTestSuite) TestDelete() {
	ctx := context.Background()
	require.NoError(s.T(), s.store.Save(ctx, "owner", New(line(uuid.New(), nil, 1, 5, "1"))))
	require.NoError(s.T(), s.store.Delete(ctx, "owner"))

	got, err := s.store.Load(ctx, "owner")
	require.NoError(s.T(), err)
	assert.True(s.T(), got.IsEmpty())
}
