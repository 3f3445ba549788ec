// Package tui is the interactive feed reader: a bubbletea model that owns
// navigation state, turns keys into transitions and applies the results of
// background work.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/pequod/internal/config"
	"github.com/pders01/pequod/internal/debuglog"
	"github.com/pders01/pequod/internal/render"
	"github.com/pders01/pequod/internal/storage"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// chrome is the border of the main box plus the status line.
	chrome = 3
)

type App struct {
	store  storage.Store
	tasks  Tasks
	opener Opener
	keys   keyMap
	theme  theme

	view         ViewState
	popup        Popup
	cursor       int
	feeds        []*storage.Feed
	input        textinput.Model
	lastKey      string
	syncing      bool
	entryScroll  int
	width        int
	height       int
	errorMessage string
	statusErr    error
	journal      syncJournal

	spinner spinner.Model
	help    help.Model
}

// NewApp builds the model around feeds already loaded from store. The App
// takes ownership of feeds.
func NewApp(cfg *config.Config, store storage.Store, tasks Tasks, opener Opener, feeds []*storage.Feed) *App {
	ti := textinput.New()
	ti.Placeholder = "https://example.com/feed.xml"
	ti.Prompt = "› "
	ti.CharLimit = 2048

	sp := spinner.New(spinner.WithSpinner(spinner.Line))
	var colors config.UIColors
	if cfg != nil {
		colors = cfg.UI.Colors
		if cfg.UI.TickInterval > 0 {
			sp.Spinner.FPS = cfg.UI.TickInterval
		}
	}
	th := newTheme(colors)
	sp.Style = th.accent

	if feeds == nil {
		feeds = []*storage.Feed{}
	}

	return &App{
		store:   store,
		tasks:   tasks,
		opener:  opener,
		keys:    defaultKeyMap(),
		theme:   th,
		view:    feedListView(),
		popup:   PopupNone,
		feeds:   feeds,
		input:   ti,
		width:   defaultWidth,
		height:  defaultHeight,
		spinner: sp,
		help:    help.New(),
	}
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.input.Width = max(a.popupWidth()-8, 10)
		a.help.Width = a.width
		if e := a.currentEntry(); e != nil {
			e.ContentLineCount = render.LineCount(e.Content, a.contentWidth())
		}
		a.clampScroll()
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, tea.Quit
		}
		quit, cmd, err := a.HandleKey(msg, BuildRows(a.feeds))
		a.statusErr = err
		if err != nil {
			debuglog.Warnf("key %s: %v", msg.String(), err)
		}
		if quit {
			return a, tea.Quit
		}
		return a, cmd

	case spinner.TickMsg:
		return a, a.OnTick(msg)
	}

	return a, a.HandleEvent(msg)
}

// OnTick advances the sync spinner. Ticks stop once no sync is running.
func (a *App) OnTick(msg spinner.TickMsg) tea.Cmd {
	if !a.syncing {
		return nil
	}
	var cmd tea.Cmd
	a.spinner, cmd = a.spinner.Update(msg)
	return cmd
}

// bodyHeight is the number of content lines inside the main box.
func (a *App) bodyHeight() int {
	return max(a.height-chrome, 0)
}

func (a *App) halfPage() int {
	return max(1, a.bodyHeight()/2)
}

// contentWidth is the text width inside the main box border.
func (a *App) contentWidth() int {
	return max(a.width-2, 1)
}

func (a *App) popupWidth() int {
	return min(max(a.width*3/5, 30), max(a.width-4, 10))
}

func (a *App) currentEntry() *storage.Entry {
	if a.view.Kind != ViewEntry {
		return nil
	}
	_, e := a.resolve(a.view.Feed, a.view.Entry)
	return e
}

func (a *App) resolve(feedIndex, entryIndex int) (*storage.Feed, *storage.Entry) {
	if feedIndex < 0 || feedIndex >= len(a.feeds) {
		return nil, nil
	}
	f := a.feeds[feedIndex]
	if entryIndex < 0 || entryIndex >= len(f.Entries) {
		return f, nil
	}
	return f, f.Entries[entryIndex]
}

func (a *App) maxScroll() int {
	e := a.currentEntry()
	if e == nil {
		return 0
	}
	return max(0, e.ContentLineCount-a.bodyHeight())
}

func (a *App) clampScroll() {
	a.entryScroll = min(max(a.entryScroll, 0), a.maxScroll())
}

// showError opens the error popup. While a sync runs the sync popup stays
// up and the message is shown once the sync completes.
func (a *App) showError(err error) {
	debuglog.Errorf("%v", err)
	if a.syncing {
		a.journal.errors = append(a.journal.errors, err.Error())
		return
	}
	a.popup = PopupError
	a.errorMessage = err.Error()
}

func (a *App) saveFeed(f *storage.Feed) {
	if err := a.store.SaveFeed(f); err != nil {
		a.showError(fmt.Errorf("failed to save feed %s: %w", f.Title, err))
	}
}

func (a *App) saveEntry(f *storage.Feed, e *storage.Entry) {
	if err := a.store.SaveEntry(f.ID, e); err != nil {
		a.showError(fmt.Errorf("failed to save entry %s: %w", e.Title, err))
	}
}
