package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-service/internal/stores/migrations"
	"store-service/internal/stores/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Store {
		return newTestStore(t)
	})
}

func TestMigrateIsRepeatable(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))

	v, err := migrations.Version(context.Background(), s.DB(), migrations.SQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestTimestampsCompareAsText(t *testing.T) {
	a := formatTime(parseOrFail(t, "2024-01-02T03:04:05Z"))
	b := formatTime(parseOrFail(t, "2024-01-02T03:04:05.5Z"))
	assert.Less(t, a, b)
	assert.Len(t, a, len(b))
}

func parseOrFail(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := parseRFC3339(s)
	require.NoError(t, err)
	return v
}
