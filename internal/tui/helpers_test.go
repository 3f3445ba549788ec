package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/pders01/pequod/internal/config"
	"github.com/pders01/pequod/internal/storage"
)

type fakeTasks struct {
	mu sync.Mutex

	addFeed    *storage.Feed
	addURL     string
	addErr     error
	syncResult []*storage.Feed
	syncErr    error
	content    string
	contentErr error

	added   []string
	synced  [][]*storage.Feed
	fetched []string
	widths  []int
}

func (f *fakeTasks) AddFeed(_ context.Context, rawURL string) (*storage.Feed, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, rawURL)
	if f.addErr != nil {
		return nil, "", f.addErr
	}
	return f.addFeed, f.addURL, nil
}

func (f *fakeTasks) Sync(_ context.Context, feeds []*storage.Feed) ([]*storage.Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = append(f.synced, feeds)
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	if f.syncResult != nil {
		return f.syncResult, nil
	}
	return feeds, nil
}

func (f *fakeTasks) FetchContent(_ context.Context, link string, width int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, link)
	f.widths = append(f.widths, width)
	return f.content, f.contentErr
}

type fakeOpener struct {
	opened []string
	err    error
}

func (o *fakeOpener) Open(url string) error {
	o.opened = append(o.opened, url)
	return o.err
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// makeFeed builds a feed whose entries are newest first.
func makeFeed(id, title string, n int) *storage.Feed {
	f := &storage.Feed{ID: id, Title: title, Link: "https://" + id + ".test/rss"}
	for i := 0; i < n; i++ {
		f.Entries = append(f.Entries, &storage.Entry{
			ID:        fmt.Sprintf("%s:%d", id, i),
			Title:     fmt.Sprintf("%s entry %d", title, i),
			Content:   "short body",
			Link:      fmt.Sprintf("https://%s.test/%d", id, i),
			Published: t0.Add(-time.Duration(i) * time.Hour),
		})
	}
	return f
}

type harness struct {
	app    *App
	store  storage.Store
	tasks  *fakeTasks
	opener *fakeOpener
}

// newHarness persists feeds into a temp bolt store and builds an App over
// them with an 80x24 window.
func newHarness(t *testing.T, feeds ...*storage.Feed) *harness {
	t.Helper()
	store, err := storage.NewBoltStore(filepath.Join(t.TempDir(), "test.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.SaveAll(feeds))

	h := &harness{store: store, tasks: &fakeTasks{}, opener: &fakeOpener{}}
	h.app = NewApp(config.TestConfig(), store, h.tasks, h.opener, feeds)
	h.app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return h
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// press feeds keys through Update and returns the command of the last one.
func (h *harness) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = h.app.Update(keyMsg(k))
	}
	return cmd
}

// typeText sends s one rune at a time.
func (h *harness) typeText(s string) {
	for _, r := range s {
		h.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// deliver executes cmd, expanding batches, and delivers every resulting
// message of type T back to the App.
func deliver[T tea.Msg](h *harness, cmd tea.Cmd) []T {
	var out []T
	for _, msg := range collect(cmd) {
		if m, ok := msg.(T); ok {
			out = append(out, m)
			h.app.Update(m)
		}
	}
	return out
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func (h *harness) loadFromStore(t *testing.T) []*storage.Feed {
	t.Helper()
	feeds, err := h.store.LoadAll()
	require.NoError(t, err)
	return feeds
}

func longText(lines int) string {
	parts := make([]string, lines)
	for i := range parts {
		parts[i] = fmt.Sprintf("line %d", i)
	}
	return strings.Join(parts, "\n")
}
