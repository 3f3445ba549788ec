package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/pequod/internal/debuglog"
	"github.com/pders01/pequod/internal/render"
	"github.com/pders01/pequod/internal/storage"
)

// HandleEvent applies the result of a background command. Unknown messages
// are ignored.
func (a *App) HandleEvent(msg tea.Msg) tea.Cmd {
	cursorAt := a.keyForRow(BuildRows(a.feeds), a.cursor)
	viewing := a.keyForView()

	switch msg := msg.(type) {
	case FeedAddedMsg:
		a.onFeedAdded(msg)
	case EntryContentFetchedMsg:
		a.onContentFetched(msg)
	case SyncCompletedMsg:
		a.onSyncCompleted(msg)
	default:
		return nil
	}

	a.reanchor(cursorAt, viewing)
	return nil
}

func (a *App) onFeedAdded(msg FeedAddedMsg) {
	if msg.Err != nil {
		a.showError(msg.Err)
		return
	}
	for _, f := range a.feeds {
		if f.ID == msg.Feed.ID {
			a.showError(fmt.Errorf("failed to add %s: %w", msg.Feed.Title, ErrDuplicateFeed))
			return
		}
	}

	if msg.URL != "" {
		msg.Feed.Link = msg.URL
	}
	a.feeds = append(a.feeds, msg.Feed)
	storage.SortFeeds(a.feeds)
	if a.syncing {
		a.journal.noteAdded(msg.Feed.ID)
	}
	debuglog.Infof("added feed %s with %d entries", msg.Feed.Title, len(msg.Feed.Entries))
	a.saveFeed(msg.Feed)
}

func (a *App) onContentFetched(msg EntryContentFetchedMsg) {
	if msg.Err != nil {
		a.showError(msg.Err)
		return
	}
	f, e := a.locateEntry(msg)
	if e == nil {
		debuglog.Debugf("dropping content for vanished entry %s", msg.EntryID)
		return
	}

	e.Content = msg.Content
	e.ContentLineCount = render.LineCount(e.Content, a.contentWidth())
	a.statusErr = nil
	if a.syncing {
		a.journal.noteContent(rowKey{feedID: f.ID, entryID: e.ID})
	}
	a.saveEntry(f, e)
}

// locateEntry trusts the indices in msg only when the ids still match,
// then falls back to searching by id.
func (a *App) locateEntry(msg EntryContentFetchedMsg) (*storage.Feed, *storage.Entry) {
	if f, e := a.resolve(msg.FeedIndex, msg.EntryIndex); e != nil && f.ID == msg.FeedID && e.ID == msg.EntryID {
		return f, e
	}
	for _, f := range a.feeds {
		if f.ID != msg.FeedID {
			continue
		}
		for _, e := range f.Entries {
			if e.ID == msg.EntryID {
				return f, e
			}
		}
	}
	return nil, nil
}

func (a *App) onSyncCompleted(msg SyncCompletedMsg) {
	a.syncing = false
	journal := a.journal
	a.journal = syncJournal{}

	if msg.Err != nil {
		a.popup = PopupError
		a.errorMessage = strings.Join(append([]string{fmt.Sprintf("Sync failed: %v", msg.Err)}, journal.errors...), "\n")
		debuglog.Errorf("sync failed: %v", msg.Err)
		return
	}

	a.feeds = journal.replay(a.feeds, msg.Feeds)
	errs := journal.errors
	if err := a.store.SaveAll(a.feeds); err != nil {
		debuglog.Errorf("saving synced feeds: %v", err)
		errs = append(errs, fmt.Sprintf("failed to save synced feeds: %v", err))
	}

	a.popup = PopupNone
	if len(errs) > 0 {
		a.popup = PopupError
		a.errorMessage = strings.Join(errs, "\n")
	}
}

// syncJournal records what events changed while a sync was running, so the
// synced snapshot does not undo them.
type syncJournal struct {
	added   map[string]bool
	content map[rowKey]bool
	errors  []string
}

func (j *syncJournal) noteAdded(feedID string) {
	if j.added == nil {
		j.added = make(map[string]bool)
	}
	j.added[feedID] = true
}

func (j *syncJournal) noteContent(k rowKey) {
	if j.content == nil {
		j.content = make(map[rowKey]bool)
	}
	j.content[k] = true
}

// replay carries feeds added and content fetched since the sync started
// from current over to synced.
func (j syncJournal) replay(current, synced []*storage.Feed) []*storage.Feed {
	if synced == nil {
		synced = []*storage.Feed{}
	}
	for _, f := range current {
		if j.added[f.ID] && lookupFeed(synced, f.ID) == nil {
			synced = append(synced, f)
		}
	}
	for k := range j.content {
		src, dst := lookupEntry(current, k), lookupEntry(synced, k)
		if src == nil || dst == nil || src == dst {
			continue
		}
		dst.Content = src.Content
		dst.ContentLineCount = src.ContentLineCount
	}
	storage.SortFeeds(synced)
	return synced
}

func lookupFeed(feeds []*storage.Feed, id string) *storage.Feed {
	for _, f := range feeds {
		if f.ID == id {
			return f
		}
	}
	return nil
}

func lookupEntry(feeds []*storage.Feed, k rowKey) *storage.Entry {
	f := lookupFeed(feeds, k.feedID)
	if f == nil {
		return nil
	}
	for _, e := range f.Entries {
		if e.ID == k.entryID {
			return e
		}
	}
	return nil
}

// rowKey identifies a row by ids so it can be found again after the feed
// list is replaced or reordered.
type rowKey struct {
	feedID  string
	entryID string
}

func (a *App) keyForRow(rows []Row, i int) rowKey {
	if i < 0 || i >= len(rows) {
		return rowKey{}
	}
	f, e := a.resolve(rows[i].Feed, rows[i].Entry)
	k := rowKey{feedID: f.ID}
	if e != nil {
		k.entryID = e.ID
	}
	return k
}

func (a *App) keyForView() rowKey {
	if a.view.Kind != ViewEntry {
		return rowKey{}
	}
	f, e := a.resolve(a.view.Feed, a.view.Entry)
	if e == nil {
		return rowKey{}
	}
	return rowKey{feedID: f.ID, entryID: e.ID}
}

func (a *App) find(k rowKey) (Row, bool) {
	for i, f := range a.feeds {
		if f.ID != k.feedID {
			continue
		}
		if k.entryID == "" {
			return FeedRow(i), true
		}
		for j, e := range f.Entries {
			if e.ID == k.entryID {
				return EntryRow(i, j), true
			}
		}
	}
	return Row{}, false
}

// reanchor keeps the cursor and the entry view on the same feed and entry
// they showed before an event, clamping when those are gone.
func (a *App) reanchor(cursorAt, viewing rowKey) {
	rows := BuildRows(a.feeds)
	if row, ok := a.find(cursorAt); ok && cursorAt.feedID != "" {
		if i := indexOfRow(rows, row); i >= 0 {
			a.cursor = i
		}
	}
	a.cursor = clampCursor(a.cursor, rows)

	if a.view.Kind == ViewEntry {
		row, ok := a.find(viewing)
		if !ok || viewing.feedID == "" || row.IsFeed() {
			a.view = feedListView()
			a.entryScroll = 0
			return
		}
		a.view = entryView(row.Feed, row.Entry)
	}
	a.clampScroll()
}
