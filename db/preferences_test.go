package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "nested", "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestPreferenceRoundTrip(t *testing.T) {
	database := newTestDB(t)

	_, ok, err := database.GetPreference("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, database.SetPreference("theme", "dark"))
	require.NoError(t, database.SetPreference("theme", "light"))

	value, ok, err := database.GetPreference("theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", value)

	require.NoError(t, database.DeletePreference("theme"))
	_, ok, err = database.GetPreference("theme")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIntPreferenceFallsBackToDefault(t *testing.T) {
	database := newTestDB(t)

	assert.Equal(t, 1200, database.GetIntPreference(KeyWindowWidth, 1200))

	require.NoError(t, database.SetIntPreference(KeyWindowWidth, 900))
	assert.Equal(t, 900, database.GetIntPreference(KeyWindowWidth, 1200))

	require.NoError(t, database.SetPreference(KeyWindowHeight, "tall"))
	assert.Equal(t, 800, database.GetIntPreference(KeyWindowHeight, 800))
}

func TestLastSession(t *testing.T) {
	database := newTestDB(t)

	assert.Equal(t, "", database.LastSession())
	require.NoError(t, database.SetLastSession("20240101_120000"))
	assert.Equal(t, "20240101_120000", database.LastSession())

	require.NoError(t, database.SetLastSession(""))
	assert.Equal(t, "", database.LastSession())
}

func TestInMemoryDatabase(t *testing.T) {
	database, err := New(":memory:")
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.SetLastSession("abc"))
	assert.Equal(t, "abc", database.LastSession())
}
