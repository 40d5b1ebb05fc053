package localstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/biniq/internal/client"
)

// stores returns one of each implementation
func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "nested", "state.json")),
	}
}

func TestStoreGetSetRemove(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.GetItem("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.SetItem("k", "v1"))
			require.NoError(t, s.SetItem("k", "v2"))
			got, err := s.GetItem("k")
			require.NoError(t, err)
			assert.Equal(t, "v2", got)

			require.NoError(t, s.RemoveItem("k"))
			_, err = s.GetItem("k")
			assert.ErrorIs(t, err, ErrNotFound)

			// removing twice is fine
			assert.NoError(t, s.RemoveItem("k"))
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	require.NoError(t, NewFileStore(path).SetItem(KeyAuthToken, "tok"))

	got, err := NewFileStore(path).GetItem(KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assertOnlyStoreFile(t, path)
}

// assertOnlyStoreFile checks that no temp files were left next to the store file
func assertOnlyStoreFile(t *testing.T, path string) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{filepath.Base(path)}, names)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := NewFileStore(path)
	_, err := s.GetItem("k")
	assert.Error(t, err)
	assert.Error(t, s.SetItem("k", "v"))
}

func TestFileStoreConcurrentWrites(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "state.json"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, AddToSet(s, KeyReadNotifications, string(rune('a'+i))))
		}(i)
	}
	wg.Wait()

	list, err := GetList(s, KeyReadNotifications)
	require.NoError(t, err)
	assert.Len(t, list, 20)
}

func TestFileStoreInstancesWriteConcurrently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	first, second := NewFileStore(path), NewFileStore(path)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, first.SetItem("first", "1"))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, second.SetItem("second", "2"))
		}()
	}
	wg.Wait()

	// Cross-instance writes are last-writer-wins, but the file is always whole
	_, err := NewFileStore(path).GetItem("first")
	if err != nil {
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assertOnlyStoreFile(t, path)
}

func TestRecentSearches(t *testing.T) {
	s := NewMemoryStore()

	list, err := AddRecentSearch(s, "  ")
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, q := range []string{"bins", "pallets", "Bins"} {
		_, err = AddRecentSearch(s, q)
		require.NoError(t, err)
	}
	list, err = GetList(s, KeyRecentSearches)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bins", "pallets"}, list)

	for i := 0; i < 15; i++ {
		_, err = AddRecentSearch(s, string(rune('a'+i)))
		require.NoError(t, err)
	}
	list, err = GetList(s, KeyRecentSearches)
	require.NoError(t, err)
	assert.Len(t, list, MaxRecentSearches)
	assert.Equal(t, "o", list[0])

	require.NoError(t, ClearRecentSearches(s))
	list, err = GetList(s, KeyRecentSearches)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSets(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, AddToSet(s, KeyFavoriteStores, "s1"))
	require.NoError(t, AddToSet(s, KeyFavoriteStores, "s1"))
	require.NoError(t, AddToSet(s, KeyFavoriteStores, "s2"))

	list, err := GetList(s, KeyFavoriteStores)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, list)

	ok, err := InSet(s, KeyFavoriteStores, "s2")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, RemoveFromSet(s, KeyFavoriteStores, "s2"))
	require.NoError(t, RemoveFromSet(s, KeyFavoriteStores, "nope"))
	ok, err = InSet(s, KeyFavoriteStores, "s2")
	require.NoError(t, err)
	assert.False(t, ok)

	raw, err := s.GetItem(KeyFavoriteStores)
	require.NoError(t, err)
	assert.JSONEq(t, `["s1"]`, raw)
}

func TestGetListRejectsNonArray(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.SetItem(KeyDeletedNotifications, `{"a":1}`))

	_, err := GetList(s, KeyDeletedNotifications)
	assert.Error(t, err)
}

func TestTokenManager(t *testing.T) {
	s := NewMemoryStore()
	tm := TokenManager(s)

	_, err := tm.GetToken()
	assert.ErrorIs(t, err, client.ErrNoToken)

	require.NoError(t, tm.SaveToken("abc"))
	raw, err := s.GetItem(KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", raw)

	got, err := tm.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	require.NoError(t, tm.ClearToken())
	_, err = tm.GetToken()
	assert.ErrorIs(t, err, client.ErrNoToken)
}

func TestTokenManagerWithClient(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "state.json")
	c := client.NewClient(client.Config{BaseURL: srv.URL, Timeout: time.Second}, TokenManager(NewFileStore(path)))
	c.SetAuthToken("persisted")

	// a fresh client on the same file picks the token up
	c2 := client.NewClient(client.Config{BaseURL: srv.URL, Timeout: time.Second}, TokenManager(NewFileStore(path)))
	_, err := c2.Get(context.Background(), srv.URL+"/api/users/profile", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer persisted", auth)

	c2.RemoveAuthToken()
	assert.Empty(t, c.GetAuthToken())
}
