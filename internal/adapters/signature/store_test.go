package signature

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	initial := map[string]string{"default": "Jane"}
	store := NewMemoryStore(initial)
	initial["default"] = "mutated"

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jane", got["default"])

	got["default"] = "changed"
	again, _ := store.Load(ctx)
	assert.Equal(t, "Jane", again["default"])

	require.NoError(t, store.Save(ctx, map[string]string{"work": "J. Doe"}))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"work": "J. Doe"}, got)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "signatures.db"), zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	want := map[string]string{
		"default": "Best,\nJane",
		"work":    "Regards,\nJane Doe",
	}
	require.NoError(t, store.Save(ctx, want))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	delete(want, "work")
	require.NoError(t, store.Save(ctx, want))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"default": "Best,\nJane"}, got)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "signatures.db")

	first, err := NewSQLiteStore(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, map[string]string{"default": "Jane"}))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path, zap.NewNop())
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"default": "Jane"}, got)
}

func TestRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not-a-url://", "signatures", zap.NewNop())
	assert.Error(t, err)
}
