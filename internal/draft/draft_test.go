package draft

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/patungan/internal/models"
)

type doc struct {
	Title string   `json:"title"`
	Names []string `json:"names"`
}

func stores(t *testing.T) map[string]Store {
	t.Helper()

	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Store{
		"file":   fs,
		"redis":  NewRedisStore(client, 0),
		"memory": NewMemoryStore(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			key := BillKey(models.BillKey{Owner: "sari@example.com", Kind: models.KindItemized, Title: "Makan / malam"})

			var got doc
			require.False(t, s.Get(key, &got), "absent key must read as absent")

			s.Set(key, doc{Title: "Makan", Names: []string{"Sari", "Budi"}})
			require.True(t, s.Get(key, &got))
			require.Equal(t, doc{Title: "Makan", Names: []string{"Sari", "Budi"}}, got)

			s.Set(key, doc{Title: "Updated"})
			got = doc{}
			require.True(t, s.Get(key, &got))
			require.Equal(t, "Updated", got.Title)

			s.Remove(key)
			s.Remove(key)
			require.False(t, s.Get(key, &got))
		})
	}
}

func TestKeysArePerOwner(t *testing.T) {
	a := NotesKey("sari@example.com")
	b := NotesKey("budi@example.com")
	require.NotEqual(t, a, b)
	require.Equal(t, a, NotesKey("  Sari@Example.com "), "owner is normalised")
	require.True(t, strings.HasPrefix(a, Prefix))
	require.NotContains(t, a, "sari")

	key := models.BillKey{Owner: "sari@example.com", Kind: models.KindEven, Title: "Trip"}
	other := key
	other.Kind = models.KindItemized
	require.NotEqual(t, BillKey(key), BillKey(other))
	require.NotEqual(t, BillIndexKey(key.Owner), ChatKey(key.Owner))
}

func TestFileStoreCorruptEntryReadsAbsent(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	key := NotesKey("sari@example.com")
	s.Set(key, []string{"a"})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("{not json"), 0o600))

	var got []string
	require.False(t, s.Get(key, &got))
}

func TestMemoryStoreCorruptEntryReadsAbsent(t *testing.T) {
	s := NewMemoryStore()
	s.SetRaw("k", []byte("]["))
	var got doc
	require.False(t, s.Get("k", &got))
}

func TestRedisStoreTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisStore(client, time.Minute)
	s.Set("k", doc{Title: "x"})

	var got doc
	require.True(t, s.Get("k", &got))
	mr.FastForward(2 * time.Minute)
	require.False(t, s.Get("k", &got))
}
