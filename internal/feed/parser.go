package feed

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pders01/pequod/internal/render"
	"github.com/pders01/pequod/internal/storage"
)

const untitled = "Untitled"

type Parser struct {
	parser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		parser: gofeed.NewParser(),
	}
}

// Parse decodes an RSS, Atom or JSON feed document fetched from sourceURL.
// Entry content is converted to unwrapped plain text and entries come back
// newest first.
func (p *Parser) Parse(data []byte, sourceURL string) (*storage.Feed, error) {
	parsed, err := p.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	feedID := generateFeedID(firstNonEmpty(parsed.FeedLink, sourceURL))
	feed := &storage.Feed{
		ID:      feedID,
		Title:   firstNonEmpty(strings.TrimSpace(parsed.Title), untitled),
		Link:    sourceURL,
		Entries: make([]*storage.Entry, 0, len(parsed.Items)),
	}

	seen := make(map[string]bool, len(parsed.Items))
	for _, item := range parsed.Items {
		entry, err := p.entry(feedID, item)
		if err != nil {
			return nil, err
		}
		if seen[entry.ID] {
			continue
		}
		seen[entry.ID] = true
		feed.Entries = append(feed.Entries, entry)
	}
	storage.SortEntries(feed.Entries)

	return feed, nil
}

// ParseEntries is Parse without the feed metadata, keyed to an existing
// feed id.
func (p *Parser) ParseEntries(data []byte, feedID string) ([]*storage.Entry, error) {
	parsed, err := p.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	entries := make([]*storage.Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entry, err := p.entry(feedID, item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (p *Parser) entry(feedID string, item *gofeed.Item) (*storage.Entry, error) {
	content, err := render.Text(getContent(item), 0)
	if err != nil {
		return nil, fmt.Errorf("rendering entry %q: %w", item.Title, err)
	}

	var authors []string
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	return &storage.Entry{
		ID:        generateID(feedID, item),
		Title:     firstNonEmpty(strings.TrimSpace(item.Title), untitled),
		Authors:   authors,
		Content:   content,
		Link:      item.Link,
		Published: published(item),
	}, nil
}

func getContent(item *gofeed.Item) string {
	if item.Content != "" {
		return item.Content
	}
	return item.Description
}

func published(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC()
	default:
		return time.Time{}
	}
}

func generateID(feedID string, item *gofeed.Item) string {
	if item.GUID != "" {
		return fmt.Sprintf("%s:%s", feedID, item.GUID)
	}
	if item.Link != "" {
		return fmt.Sprintf("%s:%s", feedID, item.Link)
	}
	sum := sha256.Sum256([]byte(item.Title + "\x00" + item.Published + "\x00" + item.Description))
	return fmt.Sprintf("%s:%x", feedID, sum[:8])
}

func generateFeedID(url string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(url)))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
