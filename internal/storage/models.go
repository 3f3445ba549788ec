package storage

import (
	"sort"
	"time"
)

type Feed struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Link     string   `json:"link"`
	Entries  []*Entry `json:"-"`
	Expanded bool     `json:"expanded"`
}

// Entry is a single feed item. Content is plain text; a zero Published
// means the feed did not provide a date and sorts as the oldest.
type Entry struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Authors          []string  `json:"authors"`
	Content          string    `json:"content"`
	ContentLineCount int       `json:"content_line_count"`
	Link             string    `json:"link"`
	Published        time.Time `json:"published"`
	Read             bool      `json:"read"`
}

func (f *Feed) UnreadCount() int {
	n := 0
	for _, e := range f.Entries {
		if !e.Read {
			n++
		}
	}
	return n
}

// Newest returns the publish time of the first entry, or the zero time
// when the feed has no entries. Entries must already be sorted.
func (f *Feed) Newest() time.Time {
	if len(f.Entries) == 0 {
		return time.Time{}
	}
	return f.Entries[0].Published
}

func (f *Feed) HasEntry(id string) bool {
	for _, e := range f.Entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the feed and its entries.
func (f *Feed) Clone() *Feed {
	c := *f
	c.Entries = make([]*Entry, len(f.Entries))
	for i, e := range f.Entries {
		c.Entries[i] = e.Clone()
	}
	return &c
}

func (e *Entry) Clone() *Entry {
	c := *e
	if e.Authors != nil {
		c.Authors = append([]string(nil), e.Authors...)
	}
	return &c
}

func CloneFeeds(feeds []*Feed) []*Feed {
	out := make([]*Feed, len(feeds))
	for i, f := range feeds {
		out[i] = f.Clone()
	}
	return out
}

// SortEntries orders entries newest first. Entries with equal publish
// times keep their relative order.
func SortEntries(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Published.After(entries[j].Published)
	})
}

// SortFeeds orders feeds by title.
func SortFeeds(feeds []*Feed) {
	sort.SliceStable(feeds, func(i, j int) bool {
		return feeds[i].Title < feeds[j].Title
	})
}
