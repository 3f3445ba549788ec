package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_FeedList(t *testing.T) {
	a := makeFeed("a", "Alpha", 2)
	a.Expanded = true
	a.Entries[1].Read = true
	h := newHarness(t, a, makeFeed("b", "Beta", 3))

	out := h.app.View()
	assert.Contains(t, out, "Feeds")
	assert.Contains(t, out, "▼ Alpha 1*")
	assert.Contains(t, out, "▶ Beta 3*")
	assert.Contains(t, out, "Alpha entry 0")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "add feed")
}

func TestView_FitsWindow(t *testing.T) {
	h := newHarness(t, makeFeed("a", "A", 40))
	h.app.feeds[0].Title = "A very long feed title that will certainly not fit in a narrow terminal window at all"
	h.app.feeds[0].Expanded = true
	h.app.cursor = 30

	out := h.app.View()
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 24)
	for _, l := range lines {
		assert.LessOrEqual(t, lipgloss.Width(l), 80)
	}
	// the cursor row is scrolled into view
	assert.Contains(t, out, "entry 29")
}

func TestView_Welcome(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.app.View(), "Press a to add your first feed")
}

func TestView_Entry(t *testing.T) {
	h := newHarness(t, makeFeed("a", "A", 1))
	h.app.feeds[0].Entries[0].Authors = []string{"Ishmael"}
	openEntry(t, h, longText(60))
	h.press("j", "j")

	out := h.app.View()
	assert.Contains(t, out, "A entry 0")
	assert.Contains(t, out, "Ishmael")
	assert.Contains(t, out, "line 2")
	assert.Contains(t, out, "line 22")
	assert.NotContains(t, out, "line 0")
	assert.NotContains(t, out, "line 23")
	assert.Contains(t, out, "open link")
}

func TestView_Popups(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(h *harness)
		expected []string
	}{
		{"add feed", func(h *harness) { h.press("a") }, []string{"Add feed", "esc: cancel"}},
		{"confirm delete", func(h *harness) { h.press("d") }, []string{"Delete feed?", "Alpha"}},
		{"error", func(h *harness) { h.app.showError(errors.New("failed to add feed: nope")) }, []string{"Error", "nope"}},
		{"help", func(h *harness) { h.press("h") }, []string{"Keys", "sync", "collapse"}},
		{"sync", func(h *harness) { h.press("s") }, []string{"Syncing 1 feeds"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, makeFeed("a", "Alpha", 1))
			tt.setup(h)
			require.NotEqual(t, PopupNone, h.app.popup)

			out := h.app.View()
			for _, want := range tt.expected {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestTitledBox(t *testing.T) {
	box := titledBox("Title", "a\nb", 20, 2, lipgloss.Color("#ffffff"))
	lines := strings.Split(box, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Title")
	for _, l := range lines {
		assert.Equal(t, 20, lipgloss.Width(l))
	}
}

func TestRenderRow_Entry(t *testing.T) {
	f := makeFeed("a", "A", 2)
	f.Entries[0].Title = strings.Repeat("a long title ", 12)
	f.Entries[1].Published = time.Time{}
	h := newHarness(t, f)
	width := h.app.contentWidth()

	row := h.app.renderRow(EntryRow(0, 0), false)
	assert.Contains(t, row, "● "+f.Entries[0].Published.Local().Format("2006-01-02")+" a long title")
	assert.True(t, strings.HasSuffix(row, "…"))
	assert.LessOrEqual(t, lipgloss.Width(row), width)

	undated := h.app.renderRow(EntryRow(0, 1), false)
	assert.Contains(t, undated, "●            A entry 1")

	selected := h.app.renderRow(EntryRow(0, 1), true)
	assert.Equal(t, width, lipgloss.Width(selected))
}
