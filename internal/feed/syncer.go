package feed

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/pequod/internal/debuglog"
	"github.com/pders01/pequod/internal/storage"
)

const defaultSyncConcurrency = 4

// Syncer refreshes a set of feeds. It never modifies the feeds it is
// given; results are returned as copies.
type Syncer struct {
	fetcher     *Fetcher
	parser      *Parser
	concurrency int
}

func NewSyncer(fetcher *Fetcher, parser *Parser, concurrency int) *Syncer {
	if concurrency < 1 {
		concurrency = defaultSyncConcurrency
	}
	return &Syncer{fetcher: fetcher, parser: parser, concurrency: concurrency}
}

// Sync fetches every feed and adds entries published after the feed's
// newest known entry. The first failure to happen cancels the remaining
// fetches and is returned on its own; no partial result is produced. With
// more than one worker that need not be the first failing feed in list
// order.
func (s *Syncer) Sync(ctx context.Context, feeds []*storage.Feed) ([]*storage.Feed, error) {
	out := storage.CloneFeeds(feeds)
	if len(out) == 0 {
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, feed := range out {
		g.Go(func() error {
			return s.syncFeed(ctx, feed)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// syncFeed owns feed exclusively; each goroutine works on a distinct copy.
func (s *Syncer) syncFeed(ctx context.Context, feed *storage.Feed) error {
	log := debuglog.WithFields(map[string]any{"feed": feed.Title, "link": feed.Link})

	data, err := s.fetcher.FetchFeed(ctx, feed.Link)
	if err != nil {
		log.Warnf("sync fetch failed: %v", err)
		return fmt.Errorf("syncing %s: %w", feed.Title, err)
	}
	fetched, err := s.parser.ParseEntries(data, feed.ID)
	if err != nil {
		log.Warnf("sync parse failed: %v", err)
		return fmt.Errorf("syncing %s: %w", feed.Title, err)
	}

	added := mergeEntries(feed, fetched)
	log.Debugf("sync added %d entries", added)
	return nil
}

// mergeEntries appends fetched entries that are strictly newer than the
// feed's newest entry and not already present, then re-sorts. It returns
// the number of entries added.
func mergeEntries(feed *storage.Feed, fetched []*storage.Entry) int {
	newest := feed.Newest()
	known := make(map[string]bool, len(feed.Entries))
	for _, e := range feed.Entries {
		known[e.ID] = true
	}

	added := 0
	for _, e := range fetched {
		if !e.Published.After(newest) || known[e.ID] {
			continue
		}
		known[e.ID] = true
		e.Read = false
		feed.Entries = append(feed.Entries, e)
		added++
	}
	storage.SortEntries(feed.Entries)
	return added
}
