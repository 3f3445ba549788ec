package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/pequod/internal/storage"
)

func seededIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	feeds := []*storage.Feed{
		{
			ID:    "f1",
			Title: "Gopher Weekly",
			Entries: []*storage.Entry{
				{ID: "f1:a", Title: "Hello World", Content: "a greeting article", Link: "https://site.test/1",
					Published: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
				{ID: "f1:b", Title: "Golang Tips", Content: "Using bleve for full text search", Link: "https://site.test/2",
					Authors: []string{"Rob"}},
			},
		},
		{
			ID:    "f2",
			Title: "Whaling News",
			Entries: []*storage.Entry{
				{ID: "f2:a", Title: "Moby Dick sighted", Content: "Off the coast of Nantucket"},
			},
		},
	}
	require.NoError(t, idx.Add(feeds))
	return idx
}

func TestIndex_Search(t *testing.T) {
	idx := seededIndex(t)

	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"title match", "golang", "f1:b"},
		{"content match", "nantucket", "f2:a"},
		{"content prefix", "gree", "f1:a"},
		{"title prefix", "gola", "f1:b"},
		{"author match", "rob", "f1:b"},
		{"feed title", "whaling", "f2:a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := idx.Search(tt.query, 10)
			require.NoError(t, err)
			require.NotEmpty(t, res)
			assert.Equal(t, tt.expected, res[0].EntryID)
		})
	}
}

func TestIndex_ResultFields(t *testing.T) {
	idx := seededIndex(t)

	res, err := idx.Search("hello", 10)
	require.NoError(t, err)
	require.NotEmpty(t, res)

	r := res[0]
	assert.Equal(t, "Gopher Weekly", r.FeedTitle)
	assert.Equal(t, "Hello World", r.EntryTitle)
	assert.Equal(t, "https://site.test/1", r.Link)
	assert.True(t, r.Published.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.Greater(t, r.Score, 0.0)
}

func TestIndex_ShortAndEmptyQueries(t *testing.T) {
	idx := seededIndex(t)

	for _, q := range []string{"", " ", "a", "!?"} {
		res, err := idx.Search(q, 10)
		require.NoError(t, err)
		assert.Empty(t, res, "query %q", q)
	}
}

func TestIndex_NoMatch(t *testing.T) {
	idx := seededIndex(t)

	res, err := idx.Search("zzzzqqq", 10)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestIndex_Limit(t *testing.T) {
	idx := seededIndex(t)

	res, err := idx.Search("the article golang moby", 1)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestIndex_DocCountAndReindex(t *testing.T) {
	idx := seededIndex(t)

	n, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	// Re-adding the same entries replaces them.
	require.NoError(t, idx.Add([]*storage.Feed{{ID: "f2", Title: "Whaling News",
		Entries: []*storage.Entry{{ID: "f2:a", Title: "Moby Dick sunk"}}}}))
	n, err = idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"a b cd", []string{"cd"}},
		{"go1.22 release", []string{"go1", "22", "release"}},
		{"", nil},
		{"Ünïcode wörds", []string{"ünïcode", "wörds"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tokenize(tt.input), tt.input)
	}
}
