package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenjpais/diagram-generator/pkg/adapters/redis"
	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newTestClient(t)
	ports.RunStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_KeysUnderPrefix(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:run:"))

	require.NoError(t, store.Save(context.Background(), domain.RunRecord{
		ID:        "r1",
		Status:    domain.StatusSucceeded,
		CreatedAt: time.Now(),
	}))

	assert.True(t, mr.Exists("custom:run:r1"))
	assert.True(t, mr.Exists("custom:run:index"))
}

func TestRedisStore_ListPrunesExpiredEntries(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.RunRecord{
		ID: "stays", Status: domain.StatusSucceeded, CreatedAt: time.Now(),
	}))
	require.NoError(t, store.Save(ctx, domain.RunRecord{
		ID: "expires", Status: domain.StatusSucceeded, CreatedAt: time.Now().Add(time.Second),
	}))

	// Let the newer record's value expire; its index entry lingers until List.
	mr.FastForward(30 * time.Second)
	mr.Del("diagen:run:expires")

	records, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "stays", records[0].ID)

	again, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, again, 1, "pruned index entries do not come back")
}

func TestRedisStore_ListHonorsLimitNewestFirst(t *testing.T) {
	_, client := newTestClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, store.Save(ctx, domain.RunRecord{
			ID:        id,
			Status:    domain.StatusSucceeded,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	records, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "new", records[0].ID)
	assert.Equal(t, "mid", records[1].ID)
}
