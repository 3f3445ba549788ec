package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/pequod/internal/storage"
)

var ErrDuplicateFeed = errors.New("feed already exists")

// Tasks performs the network work behind add, sync and full-content fetch.
// feed.Manager implements it.
type Tasks interface {
	AddFeed(ctx context.Context, rawURL string) (*storage.Feed, string, error)
	Sync(ctx context.Context, feeds []*storage.Feed) ([]*storage.Feed, error)
	FetchContent(ctx context.Context, link string, width int) (string, error)
}

// Opener hands a link to an external program.
type Opener interface {
	Open(url string) error
}

// FeedAddedMsg reports the outcome of an add-feed command. URL is the
// address the feed was actually fetched from.
type FeedAddedMsg struct {
	Feed *storage.Feed
	URL  string
	Err  error
}

// EntryContentFetchedMsg carries full article content for one entry. The
// indices are where the entry was when the fetch started; the ids confirm
// it is still there.
type EntryContentFetchedMsg struct {
	FeedIndex  int
	EntryIndex int
	FeedID     string
	EntryID    string
	Content    string
	Err        error
}

// SyncCompletedMsg carries the complete replacement feed set, or the first
// error that stopped the sync.
type SyncCompletedMsg struct {
	Feeds []*storage.Feed
	Err   error
}

func (a *App) addFeedCmd(rawURL string) tea.Cmd {
	tasks := a.tasks
	return func() tea.Msg {
		feed, url, err := tasks.AddFeed(context.Background(), rawURL)
		return FeedAddedMsg{Feed: feed, URL: url, Err: err}
	}
}

func (a *App) syncCmd() tea.Cmd {
	tasks := a.tasks
	feeds := storage.CloneFeeds(a.feeds)
	return func() tea.Msg {
		synced, err := tasks.Sync(context.Background(), feeds)
		return SyncCompletedMsg{Feeds: synced, Err: err}
	}
}

func (a *App) fetchContentCmd(feedIndex, entryIndex int) tea.Cmd {
	tasks := a.tasks
	feed := a.feeds[feedIndex]
	entry := feed.Entries[entryIndex]
	msg := EntryContentFetchedMsg{
		FeedIndex:  feedIndex,
		EntryIndex: entryIndex,
		FeedID:     feed.ID,
		EntryID:    entry.ID,
	}
	link, width := entry.Link, a.contentWidth()
	return func() tea.Msg {
		msg.Content, msg.Err = tasks.FetchContent(context.Background(), link, width)
		return msg
	}
}
