package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/pequod/internal/render"
)

// HandleKey applies one key press. rows must be BuildRows(feeds) as of
// this key. err is an immediate failure for the status line; failures of
// background work arrive later as messages.
func (a *App) HandleKey(msg tea.KeyMsg, rows []Row) (quit bool, cmd tea.Cmd, err error) {
	if a.popup != PopupNone {
		return false, a.handlePopupKey(msg, rows), nil
	}
	switch a.view.Kind {
	case ViewEntry:
		cmd, err = a.handleEntryKey(msg)
		return false, cmd, err
	default:
		return a.handleFeedListKey(msg, rows)
	}
}

func (a *App) handleFeedListKey(msg tea.KeyMsg, rows []Row) (bool, tea.Cmd, error) {
	prev := a.lastKey
	a.lastKey = msg.String()

	switch {
	case key.Matches(msg, a.keys.Up):
		a.cursor = clampCursor(a.cursor-1, rows)
	case key.Matches(msg, a.keys.Down):
		a.cursor = clampCursor(a.cursor+1, rows)
	case key.Matches(msg, a.keys.Top):
		if prev == "g" {
			a.cursor = 0
			a.lastKey = ""
		}
	case key.Matches(msg, a.keys.Bottom):
		a.cursor = clampCursor(len(rows)-1, rows)
	case key.Matches(msg, a.keys.HalfUp):
		a.cursor = clampCursor(a.cursor-a.halfPage(), rows)
	case key.Matches(msg, a.keys.HalfDown):
		a.cursor = clampCursor(a.cursor+a.halfPage(), rows)
	case key.Matches(msg, a.keys.Enter):
		a.activateRow(rows)
	case key.Matches(msg, a.keys.Collapse):
		a.collapseRow(rows)
	case key.Matches(msg, a.keys.Add):
		a.popup = PopupAddFeed
		a.input.Reset()
		return false, a.input.Focus(), nil
	case key.Matches(msg, a.keys.Delete):
		if len(rows) > 0 {
			a.popup = PopupConfirmDelete
		}
	case key.Matches(msg, a.keys.Help):
		a.popup = PopupFeedListHelp
	case key.Matches(msg, a.keys.Sync):
		if a.syncing {
			return false, nil, nil
		}
		a.syncing = true
		a.journal = syncJournal{}
		a.popup = PopupSync
		return false, tea.Batch(a.syncCmd(), a.spinner.Tick), nil
	case key.Matches(msg, a.keys.Quit):
		return true, nil, nil
	}
	return false, nil, nil
}

func (a *App) activateRow(rows []Row) {
	if a.cursor >= len(rows) {
		return
	}
	row := rows[a.cursor]
	f, e := a.resolve(row.Feed, row.Entry)
	if row.IsFeed() {
		f.Expanded = !f.Expanded
		a.saveFeed(f)
		return
	}

	e.Read = true
	e.ContentLineCount = render.LineCount(e.Content, a.contentWidth())
	a.view = entryView(row.Feed, row.Entry)
	a.entryScroll = 0
	a.saveEntry(f, e)
}

func (a *App) collapseRow(rows []Row) {
	if a.cursor >= len(rows) {
		return
	}
	row := rows[a.cursor]
	f := a.feeds[row.Feed]
	f.Expanded = false
	a.saveFeed(f)
	if !row.IsFeed() {
		collapsed := BuildRows(a.feeds)
		a.cursor = clampCursor(indexOfRow(collapsed, FeedRow(row.Feed)), collapsed)
	}
}

func (a *App) handleEntryKey(msg tea.KeyMsg) (tea.Cmd, error) {
	prev := a.lastKey
	a.lastKey = msg.String()

	switch {
	case key.Matches(msg, a.keys.Back):
		a.view = feedListView()
		a.entryScroll = 0
	case key.Matches(msg, a.keys.Down):
		a.scrollBy(1)
	case key.Matches(msg, a.keys.Up):
		a.scrollBy(-1)
	case key.Matches(msg, a.keys.Top):
		if prev == "g" {
			a.entryScroll = 0
			a.lastKey = ""
		}
	case key.Matches(msg, a.keys.End):
		a.entryScroll = a.maxScroll()
	case key.Matches(msg, a.keys.HalfUp):
		a.scrollBy(-a.halfPage())
	case key.Matches(msg, a.keys.HalfDown):
		a.scrollBy(a.halfPage())
	case key.Matches(msg, a.keys.Open):
		e := a.currentEntry()
		if e == nil {
			return nil, nil
		}
		if err := a.opener.Open(e.Link); err != nil {
			return nil, fmt.Errorf("failed to open link: %w", err)
		}
	case key.Matches(msg, a.keys.Fetch):
		if a.currentEntry() == nil {
			return nil, nil
		}
		return a.fetchContentCmd(a.view.Feed, a.view.Entry), nil
	case key.Matches(msg, a.keys.Help):
		a.popup = PopupEntryHelp
	}
	return nil, nil
}

func (a *App) scrollBy(n int) {
	a.entryScroll += n
	a.clampScroll()
}

func (a *App) handlePopupKey(msg tea.KeyMsg, rows []Row) tea.Cmd {
	switch a.popup {
	case PopupAddFeed:
		return a.handleAddFeedKey(msg)
	case PopupConfirmDelete:
		switch {
		case key.Matches(msg, a.keys.Yes):
			a.popup = PopupNone
			a.deleteFeedAtCursor(rows)
		case key.Matches(msg, a.keys.No):
			a.popup = PopupNone
		}
	case PopupError:
		if key.Matches(msg, a.keys.Dismiss) {
			a.popup = PopupNone
			a.errorMessage = ""
		}
	case PopupFeedListHelp, PopupEntryHelp:
		if key.Matches(msg, a.keys.Cancel) {
			a.popup = PopupNone
		}
	case PopupSync:
		// closed only by SyncCompletedMsg
	}
	return nil
}

func (a *App) handleAddFeedKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Submit):
		url := a.input.Value()
		a.input.Reset()
		a.input.Blur()
		a.popup = PopupNone
		return a.addFeedCmd(url)
	case key.Matches(msg, a.keys.Cancel):
		a.input.Reset()
		a.input.Blur()
		a.popup = PopupNone
		return nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return cmd
}

// deleteFeedAtCursor removes the feed owning the row under the cursor and
// leaves the cursor on the row that now occupies the feed's old position.
func (a *App) deleteFeedAtCursor(rows []Row) {
	if a.cursor >= len(rows) {
		return
	}
	fi := rows[a.cursor].Feed
	pos := indexOfRow(rows, FeedRow(fi))
	f := a.feeds[fi]

	a.feeds = slices.Delete(a.feeds, fi, fi+1)
	a.cursor = clampCursor(pos, BuildRows(a.feeds))

	if err := a.store.DeleteFeed(f.ID); err != nil {
		a.showError(fmt.Errorf("failed to delete feed %s: %w", f.Title, err))
	}
}
