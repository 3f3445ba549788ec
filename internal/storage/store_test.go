package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/pequod/internal/config"
)

func setupTestStore(t *testing.T, backend string) (Store, func()) {
	tmpDir, err := os.MkdirTemp("", "store-test-*")
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.TestConfig()
	cfg.Database.Backend = backend
	cfg.Database.Path = filepath.Join(tmpDir, "test.db")
	store, err := Open(cfg)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatal(err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

var backends = []string{BackendBolt, BackendSQLite}

func forEachBackend(t *testing.T, fn func(t *testing.T, store Store)) {
	t.Helper()
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			store, cleanup := setupTestStore(t, backend)
			defer cleanup()
			fn(t, store)
		})
	}
}

var base = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func sampleFeed(id, title string, n int) *Feed {
	feed := &Feed{ID: id, Title: title, Link: "http://" + id + ".test/rss"}
	for i := 0; i < n; i++ {
		feed.Entries = append(feed.Entries, &Entry{
			ID:               id + ":" + string(rune('a'+i)),
			Title:            title + " entry",
			Authors:          []string{"Ishmael"},
			Content:          "body",
			ContentLineCount: 1,
			Link:             "http://" + id + ".test/" + string(rune('a'+i)),
			Published:        base.Add(-time.Duration(i) * time.Hour),
		})
	}
	return feed
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		feed := sampleFeed("whale", "Whaling News", 3)
		feed.Expanded = true
		feed.Entries[1].Read = true
		feed.Entries[2].Authors = nil

		require.NoError(t, store.SaveFeed(feed))

		loaded, err := store.LoadAll()
		require.NoError(t, err)
		require.Len(t, loaded, 1)

		got := loaded[0]
		assert.Equal(t, feed.ID, got.ID)
		assert.Equal(t, feed.Title, got.Title)
		assert.Equal(t, feed.Link, got.Link)
		assert.True(t, got.Expanded)
		require.Len(t, got.Entries, 3)
		for i, want := range feed.Entries {
			e := got.Entries[i]
			assert.Equal(t, want.ID, e.ID)
			assert.Equal(t, want.Title, e.Title)
			assert.Equal(t, want.Content, e.Content)
			assert.Equal(t, want.ContentLineCount, e.ContentLineCount)
			assert.Equal(t, want.Link, e.Link)
			assert.Equal(t, want.Read, e.Read)
			assert.True(t, want.Published.Equal(e.Published), "published %v != %v", want.Published, e.Published)
			assert.Len(t, e.Authors, len(want.Authors))
		}
	})
}

func TestStore_SaveFeedUpserts(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		feed := sampleFeed("whale", "Whaling News", 2)
		require.NoError(t, store.SaveFeed(feed))

		feed.Title = "Whaling Gazette"
		feed.Entries[0].Read = true
		require.NoError(t, store.SaveFeed(feed))

		loaded, err := store.LoadAll()
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, "Whaling Gazette", loaded[0].Title)
		require.Len(t, loaded[0].Entries, 2)
		assert.True(t, loaded[0].Entries[0].Read)
	})
}

func TestStore_LoadAllOrdering(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		undated := &Entry{ID: "b:undated", Title: "no date", Content: "x", Link: "l"}
		b := sampleFeed("b", "Beta", 2)
		b.Entries = append([]*Entry{undated}, b.Entries...)

		require.NoError(t, store.SaveAll([]*Feed{
			sampleFeed("c", "Gamma", 0),
			b,
			sampleFeed("a", "Alpha", 1),
		}))

		loaded, err := store.LoadAll()
		require.NoError(t, err)
		require.Len(t, loaded, 3)
		assert.Equal(t, "Alpha", loaded[0].Title)
		assert.Equal(t, "Beta", loaded[1].Title)
		assert.Equal(t, "Gamma", loaded[2].Title)
		assert.Empty(t, loaded[2].Entries)

		entries := loaded[1].Entries
		require.Len(t, entries, 3)
		assert.Equal(t, "b:a", entries[0].ID)
		assert.Equal(t, "b:b", entries[1].ID)
		assert.Equal(t, "b:undated", entries[2].ID)
		assert.True(t, entries[2].Published.IsZero())
	})
}

func TestStore_SaveEntry(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		feed := sampleFeed("whale", "Whaling News", 1)
		require.NoError(t, store.SaveFeed(feed))

		entry := feed.Entries[0].Clone()
		entry.Read = true
		entry.Content = "the full article"
		entry.ContentLineCount = 7
		require.NoError(t, store.SaveEntry(feed.ID, entry))

		loaded, err := store.LoadAll()
		require.NoError(t, err)
		got := loaded[0].Entries[0]
		assert.True(t, got.Read)
		assert.Equal(t, "the full article", got.Content)
		assert.Equal(t, 7, got.ContentLineCount)
	})
}

func TestStore_SaveEntryUnknownFeed(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		err := store.SaveEntry("missing", &Entry{ID: "missing:1"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFeedNotFound))
	})
}

func TestStore_DeleteFeedCascades(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		require.NoError(t, store.SaveAll([]*Feed{
			sampleFeed("a", "Alpha", 2),
			sampleFeed("b", "Beta", 2),
		}))

		require.NoError(t, store.DeleteFeed("a"))

		loaded, err := store.LoadAll()
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, "b", loaded[0].ID)
		assert.Len(t, loaded[0].Entries, 2)

		// re-adding the feed must not resurrect its old entries
		require.NoError(t, store.SaveFeed(&Feed{ID: "a", Title: "Alpha", Link: "l"}))
		loaded, err = store.LoadAll()
		require.NoError(t, err)
		require.Len(t, loaded, 2)
		assert.Empty(t, loaded[0].Entries)
	})
}

func TestStore_DeleteMissingFeed(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		assert.NoError(t, store.DeleteFeed("never-saved"))
	})
}

func TestStore_ExpireUnreadOlderThan(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		feed := &Feed{ID: "f", Title: "F", Link: "l"}
		feed.Entries = []*Entry{
			{ID: "f:new", Published: base, Link: "l"},
			{ID: "f:old-unread", Published: base.Add(-10 * 24 * time.Hour), Link: "l"},
			{ID: "f:old-read", Published: base.Add(-10 * 24 * time.Hour), Read: true, Link: "l"},
			{ID: "f:undated", Link: "l"},
		}
		require.NoError(t, store.SaveFeed(feed))

		n, err := store.ExpireUnreadOlderThan(base.Add(-5 * 24 * time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		loaded, err := store.LoadAll()
		require.NoError(t, err)
		var ids []string
		for _, e := range loaded[0].Entries {
			ids = append(ids, e.ID)
		}
		assert.ElementsMatch(t, []string{"f:new", "f:old-read", "f:undated"}, ids)
	})
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "x.db")
	cfg.Database.Backend = "postgres"

	_, err := Open(cfg)
	assert.Error(t, err)
}

func TestFeedHelpers(t *testing.T) {
	feed := sampleFeed("f", "F", 3)
	feed.Entries[0].Read = true

	assert.Equal(t, 2, feed.UnreadCount())
	assert.True(t, feed.Newest().Equal(base))
	assert.True(t, feed.HasEntry("f:b"))
	assert.False(t, feed.HasEntry("f:z"))
	assert.True(t, (&Feed{}).Newest().IsZero())

	clone := feed.Clone()
	clone.Entries[0].Title = "changed"
	clone.Entries[0].Authors[0] = "Queequeg"
	assert.Equal(t, "F entry", feed.Entries[0].Title)
	assert.Equal(t, "Ishmael", feed.Entries[0].Authors[0])
}

func TestSortEntriesIsStable(t *testing.T) {
	entries := []*Entry{
		{ID: "1", Published: base},
		{ID: "2", Published: base.Add(time.Hour)},
		{ID: "3", Published: base},
		{ID: "4"},
	}
	SortEntries(entries)
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"2", "1", "3", "4"}, ids)
}
