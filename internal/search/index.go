// Package search provides full-text search over stored entries.
package search

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/pequod/internal/storage"
)

// Result is one matching entry.
type Result struct {
	FeedTitle  string
	EntryID    string
	EntryTitle string
	Link       string
	Published  time.Time
	Score      float64
}

// Index is an in-memory bleve index rebuilt from the store on demand.
type Index struct {
	idx  bleve.Index
	docs map[string]Result
}

func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return &Index{idx: idx, docs: make(map[string]Result)}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.IncludeTermVectors = true

	content := bleve.NewTextFieldMapping()
	content.Analyzer = standard.Name
	content.Store = false
	content.IncludeTermVectors = false

	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	text.Store = false

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("content", content)
	dm.AddFieldMappingsAt("authors", text)
	dm.AddFieldMappingsAt("feed", text)
	dm.AddFieldMappingsAt("link", text)

	im.DefaultMapping = dm
	return im
}

// Add indexes every entry of feeds. Entries already indexed are replaced.
func (x *Index) Add(feeds []*storage.Feed) error {
	batch := x.idx.NewBatch()
	for _, f := range feeds {
		for _, e := range f.Entries {
			doc := map[string]any{
				"title":   e.Title,
				"content": e.Content,
				"authors": strings.Join(e.Authors, " "),
				"feed":    f.Title,
				"link":    e.Link,
			}
			if err := batch.Index(e.ID, doc); err != nil {
				return fmt.Errorf("indexing %s: %w", e.ID, err)
			}
			x.docs[e.ID] = Result{
				FeedTitle:  f.Title,
				EntryID:    e.ID,
				EntryTitle: e.Title,
				Link:       e.Link,
				Published:  e.Published,
			}
		}
	}
	return x.idx.Batch(batch)
}

// Search returns up to limit entries matching query, best match first.
// Queries shorter than two characters match nothing.
func (x *Index) Search(query string, limit int) ([]Result, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []Result{}, nil
	}
	if limit < 1 {
		limit = 10
	}

	var qs []bleveQuery.Query
	for _, tok := range tokens {
		qs = append(qs,
			fieldMatch("title", tok, 4.0),
			fieldPrefix("title", tok, 3.5),
			fieldMatch("feed", tok, 2.0),
			fieldMatch("authors", tok, 2.0),
			fieldMatch("content", tok, 1.0),
			fieldPrefix("content", tok, 0.8),
			fieldMatch("link", tok, 0.5),
		)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := x.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}

	out := make([]Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		r, ok := x.docs[h.ID]
		if !ok {
			continue
		}
		r.Score = h.Score
		out = append(out, r)
	}
	return out, nil
}

// DocCount reports the number of indexed entries.
func (x *Index) DocCount() (uint64, error) {
	return x.idx.DocCount()
}

func (x *Index) Close() error {
	return x.idx.Close()
}

func fieldMatch(field, tok string, boost float64) bleveQuery.Query {
	q := bleve.NewMatchQuery(tok)
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

func fieldPrefix(field, tok string, boost float64) bleveQuery.Query {
	q := bleve.NewPrefixQuery(tok)
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit, dropping single-character terms.
func tokenize(text string) []string {
	var terms []string
	var current strings.Builder

	flush := func() {
		if term := current.String(); len([]rune(term)) > 1 {
			terms = append(terms, term)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			flush()
		}
	}
	flush()
	return terms
}
