package tui

import "github.com/pders01/pequod/internal/storage"

// Row is one visible line of the feed list. Entry is -1 for feed rows.
type Row struct {
	Feed  int
	Entry int
}

func FeedRow(feed int) Row { return Row{Feed: feed, Entry: -1} }

func EntryRow(feed, entry int) Row { return Row{Feed: feed, Entry: entry} }

func (r Row) IsFeed() bool { return r.Entry < 0 }

// BuildRows flattens feeds into display rows: every feed, followed by its
// entries when expanded.
func BuildRows(feeds []*storage.Feed) []Row {
	rows := make([]Row, 0, len(feeds))
	for i, f := range feeds {
		rows = append(rows, FeedRow(i))
		if !f.Expanded {
			continue
		}
		for j := range f.Entries {
			rows = append(rows, EntryRow(i, j))
		}
	}
	return rows
}

func indexOfRow(rows []Row, want Row) int {
	for i, r := range rows {
		if r == want {
			return i
		}
	}
	return -1
}

func clampCursor(cursor int, rows []Row) int {
	if len(rows) == 0 || cursor < 0 {
		return 0
	}
	if cursor >= len(rows) {
		return len(rows) - 1
	}
	return cursor
}
