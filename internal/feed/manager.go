package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/mmcdole/gofeed"

	"github.com/pders01/pequod/internal/config"
	"github.com/pders01/pequod/internal/debuglog"
	"github.com/pders01/pequod/internal/plugins"
	"github.com/pders01/pequod/internal/plugins/sites"
	"github.com/pders01/pequod/internal/render"
	"github.com/pders01/pequod/internal/storage"
	"github.com/pders01/pequod/internal/validation"
)

// Manager performs the network side of the reader: adding feeds, syncing
// them and fetching full article content. It holds no feed state and is
// safe for concurrent use.
type Manager struct {
	fetcher      *Fetcher
	parser       *Parser
	syncer       *Syncer
	plugins      *plugins.Registry
	urlValidator *validation.FeedURLValidator
}

func NewManager(cfg *config.Config) *Manager {
	fetcher := NewFetcher(cfg)
	parser := NewParser()
	concurrency, allowPrivate := defaultSyncConcurrency, true
	if cfg != nil {
		concurrency = cfg.Feed.SyncConcurrency
		allowPrivate = cfg.Feed.AllowPrivateHosts
	}
	return &Manager{
		fetcher:      fetcher,
		parser:       parser,
		syncer:       NewSyncer(fetcher, parser, concurrency),
		plugins:      sites.Registry(),
		urlValidator: validation.NewFeedURLValidator(allowPrivate),
	}
}

// AddFeed fetches and parses the feed behind rawURL. It returns the parsed
// feed and the URL it was actually fetched from, which may differ from
// rawURL after normalization, site plugins or HTML feed discovery.
func (m *Manager) AddFeed(ctx context.Context, rawURL string) (*storage.Feed, string, error) {
	feedURL, err := m.urlValidator.ValidateAndNormalize(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to add feed: %w", err)
	}

	res, err := m.plugins.Resolve(ctx, feedURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to add feed: %w", err)
	}
	if res.Plugin != "" {
		debuglog.Infof("plugin %s resolved %s to %s", res.Plugin, feedURL, res.FeedURL)
	}
	feedURL = res.FeedURL

	data, err := m.fetcher.FetchFeed(ctx, feedURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to add feed: %w", err)
	}

	feed, err := m.parser.Parse(data, feedURL)
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		discovered, ok := discoverFeedURL(data, feedURL)
		if !ok {
			return nil, "", fmt.Errorf("failed to add feed: no feed found at %s", feedURL)
		}
		debuglog.Infof("discovered feed %s on %s", discovered, feedURL)
		feedURL = discovered
		if data, err = m.fetcher.FetchFeed(ctx, feedURL); err != nil {
			return nil, "", fmt.Errorf("failed to add feed: %w", err)
		}
		feed, err = m.parser.Parse(data, feedURL)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to add feed: %w", err)
	}

	debuglog.WithFields(map[string]any{"feed": feed.Title, "entries": len(feed.Entries)}).Infof("fetched feed %s", feedURL)
	return feed, feedURL, nil
}

// Sync refreshes every feed. See Syncer.Sync.
func (m *Manager) Sync(ctx context.Context, feeds []*storage.Feed) ([]*storage.Feed, error) {
	return m.syncer.Sync(ctx, feeds)
}

// FetchContent downloads the page at link, extracts the main article and
// renders it as plain text wrapped to width.
func (m *Manager) FetchContent(ctx context.Context, link string, width int) (string, error) {
	if strings.TrimSpace(link) == "" {
		return "", fmt.Errorf("failed to load full content: entry has no link")
	}
	page, err := m.fetcher.FetchPage(ctx, link)
	if err != nil {
		return "", fmt.Errorf("failed to load full content: %w", err)
	}

	content, err := render.Text(extractArticle(page, link), width)
	if err != nil {
		return "", fmt.Errorf("failed to load full content: %w", err)
	}
	return content, nil
}

// extractArticle returns the readable part of an HTML page, or the page
// itself when no article can be found.
func extractArticle(page []byte, link string) string {
	pageURL, _ := url.Parse(link)
	article, err := readability.FromReader(bytes.NewReader(page), pageURL)
	if err != nil {
		debuglog.Debugf("readability failed for %s: %v", link, err)
		return string(page)
	}

	var buf strings.Builder
	if err := article.RenderHTML(&buf); err != nil || strings.TrimSpace(buf.String()) == "" {
		return string(page)
	}
	return buf.String()
}
