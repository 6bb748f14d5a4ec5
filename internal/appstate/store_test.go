package appstate

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MissingFileUsesDefaults(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "state.yaml"))
	require.NoError(t, err)

	st := s.Snapshot()
	assert.Equal(t, ThemeSystem, st.Theme)
	assert.False(t, st.SidebarCollapsed)
	assert.Nil(t, st.SelectedDate)
}

func TestStore_PersistsOnlyDurableFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.yaml")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.SetTheme(ThemeDark))
	require.NoError(t, s.SetSidebarCollapsed(true))
	s.SetSearchQuery("  acme  ")
	d := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	s.SetSelectedDate(&d)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "theme: dark")
	assert.Contains(t, string(data), "sidebar_collapsed: true")
	assert.NotContains(t, string(data), "acme")

	reopened, err := Open(path)
	require.NoError(t, err)
	st := reopened.Snapshot()
	assert.Equal(t, ThemeDark, st.Theme)
	assert.True(t, st.SidebarCollapsed)
	assert.Empty(t, st.SearchQuery, "search query is session-only")
	assert.Nil(t, st.SelectedDate, "selected date is session-only")
}

func TestStore_SetValidates(t *testing.T) {
	s := NewMemoryStore()

	assert.Error(t, s.SetTheme("neon"))
	assert.Error(t, s.Set(KeySidebarCollapsed, "maybe"))
	assert.Error(t, s.Set(KeySelectedDate, "03/01/2024"))
	assert.ErrorIs(t, s.Set("font", "mono"), ErrUnknownKey)

	_, err := s.Get("font")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestStore_GetSetRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, s.Set(KeyTheme, "LIGHT"))
	require.NoError(t, s.Set(KeySidebarCollapsed, "true"))
	require.NoError(t, s.Set(KeySearchQuery, "deal"))
	require.NoError(t, s.Set(KeySelectedDate, "2024-03-01"))

	want := map[string]string{
		KeyTheme:            "light",
		KeySidebarCollapsed: "true",
		KeySearchQuery:      "deal",
		KeySelectedDate:     "2024-03-01",
	}
	for key, v := range want {
		got, err := s.Get(key)
		require.NoError(t, err)
		assert.Equal(t, v, got, key)
	}

	require.NoError(t, s.Set(KeySelectedDate, ""))
	got, err := s.Get(KeySelectedDate)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewMemoryStore()
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s.SetSelectedDate(&d)

	snap := s.Snapshot()
	*snap.SelectedDate = snap.SelectedDate.AddDate(0, 0, 5)

	again := s.Snapshot()
	assert.Equal(t, 1, again.SelectedDate.Day())
}

func TestStore_ToggleSidebarConcurrent(t *testing.T) {
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ToggleSidebar()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.False(t, s.Snapshot().SidebarCollapsed, "an even number of toggles restores the default")
}

func TestOpen_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: [unterminated"), 0644))

	_, err := Open(path)
	assert.Error(t, err)
}
