package kvstore_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"studyai_go_backend/internal/database"
	"studyai_go_backend/internal/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newSQLiteStore(t *testing.T) kvstore.Store {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "kv_test.db"))
	require.NoError(t, err)
	store, err := kvstore.NewGormStore(db)
	require.NoError(t, err)
	return store
}

func testStores(t *testing.T) map[string]kvstore.Store {
	return map[string]kvstore.Store{
		"gorm":   newSQLiteStore(t),
		"memory": kvstore.NewMemoryStore(),
	}
}

func TestGetMissingKey(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "missing")
			assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
		})
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			original := testRecord{Name: "algebra", Count: 3}

			require.NoError(t, store.Set(ctx, "record:1", original))

			raw, err := store.Get(ctx, "record:1")
			require.NoError(t, err)

			var restored testRecord
			require.NoError(t, json.Unmarshal(raw, &restored))
			assert.Equal(t, original, restored)
		})
	}
}

func TestSetOverwrites(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, "record:1", testRecord{Name: "first"}))
			require.NoError(t, store.Set(ctx, "record:1", testRecord{Name: "second"}))

			raw, err := store.Get(ctx, "record:1")
			require.NoError(t, err)

			var restored testRecord
			require.NoError(t, json.Unmarshal(raw, &restored))
			assert.Equal(t, "second", restored.Name)
		})
	}
}

func TestGetByPrefix(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, "note:u1:001", testRecord{Name: "a"}))
			require.NoError(t, store.Set(ctx, "note:u1:003", testRecord{Name: "c"}))
			require.NoError(t, store.Set(ctx, "note:u1:002", testRecord{Name: "b"}))
			require.NoError(t, store.Set(ctx, "note:u2:001", testRecord{Name: "other user"}))
			require.NoError(t, store.Set(ctx, "quiz:u1:001", testRecord{Name: "other kind"}))

			values, err := store.GetByPrefix(ctx, "note:u1:")
			require.NoError(t, err)
			require.Len(t, values, 3)

			names := make([]string, 0, len(values))
			for _, raw := range values {
				var record testRecord
				require.NoError(t, json.Unmarshal(raw, &record))
				names = append(names, record.Name)
			}
			assert.Equal(t, []string{"a", "b", "c"}, names)
		})
	}
}

func TestGetByPrefixEmpty(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			values, err := store.GetByPrefix(context.Background(), "nothing:")
			require.NoError(t, err)
			assert.NotNil(t, values)
			assert.Empty(t, values)
		})
	}
}

func TestCompareAndSet(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, "counter", testRecord{Count: 1}))

			raw, err := store.Get(ctx, "counter")
			require.NoError(t, err)

			swapped, err := store.CompareAndSet(ctx, "counter", raw, testRecord{Count: 2})
			require.NoError(t, err)
			assert.True(t, swapped)

			// The pre-image is now stale; a second swap against it must fail.
			swapped, err = store.CompareAndSet(ctx, "counter", raw, testRecord{Count: 3})
			require.NoError(t, err)
			assert.False(t, swapped)

			current, err := store.Get(ctx, "counter")
			require.NoError(t, err)
			var record testRecord
			require.NoError(t, json.Unmarshal(current, &record))
			assert.Equal(t, 2, record.Count)
		})
	}
}

func TestDelete(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, "record:1", testRecord{Name: "gone"}))
			require.NoError(t, store.Delete(ctx, "record:1"))

			_, err := store.Get(ctx, "record:1")
			assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)

			// Deleting an absent key is not an error.
			assert.NoError(t, store.Delete(ctx, "record:1"))
		})
	}
}
