package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendsRoundTrip(t *testing.T) {
	for _, kind := range []string{KindSQLite, KindDiskv, KindMemory} {
		t.Run(kind, func(t *testing.T) {
			dir := t.TempDir()
			backend, err := Open(context.Background(), kind, dir)
			require.NoError(t, err)

			_, ok, err := backend.Get("calendarData")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, backend.Set("calendarData", `{"events":{}}`))
			require.NoError(t, backend.Set("calendarData", `{"events":{"2024-12-09":[]}}`))

			got, ok, err := backend.Get("calendarData")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"events":{"2024-12-09":[]}}`, got)
			require.NoError(t, backend.Close())
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calterm.db")
	ctx := context.Background()

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.SetContext(ctx, "calendarData", "blob"))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()
	got, ok, err := second.GetContext(ctx, "calendarData")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "blob", got)
	assert.Equal(t, path, second.Path())
}

func TestDiskvSurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "kv")
	require.NoError(t, OpenDiskv(dir).Set("calendarData", "blob"))

	got, ok, err := OpenDiskv(dir).Get("calendarData")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "blob", got)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "redis", t.TempDir())
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
