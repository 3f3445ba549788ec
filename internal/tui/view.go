package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/pequod/internal/render"
	"github.com/pders01/pequod/internal/storage"
)

func (a *App) View() string {
	var body string
	switch {
	case a.popup != PopupNone:
		body = lipgloss.Place(a.width, a.bodyHeight()+2, lipgloss.Center, lipgloss.Center, a.renderPopup())
	case a.view.Kind == ViewEntry && a.currentEntry() != nil:
		body = a.renderEntry()
	default:
		body = a.renderFeedList()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, a.renderStatus())
}

func (a *App) renderFeedList() string {
	height := a.bodyHeight()
	if len(a.feeds) == 0 {
		welcome := lipgloss.Place(a.contentWidth(), height, lipgloss.Center, lipgloss.Center, a.theme.welcome())
		return titledBox("Feeds", welcome, a.width, height, a.theme.secondary)
	}

	rows := BuildRows(a.feeds)
	start := 0
	if height > 0 && a.cursor >= height {
		start = a.cursor - height + 1
	}
	end := min(start+height, len(rows))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, a.renderRow(rows[i], i == a.cursor))
	}
	return titledBox("Feeds", strings.Join(lines, "\n"), a.width, height, a.theme.secondary)
}

func (a *App) renderRow(row Row, selected bool) string {
	width := a.contentWidth()
	f, e := a.resolve(row.Feed, row.Entry)

	if row.IsFeed() {
		marker := "▶"
		if f.Expanded {
			marker = "▼"
		}
		line := marker + " " + f.Title
		if n := f.UnreadCount(); n > 0 {
			line += fmt.Sprintf(" %d*", n)
		}
		return a.styleRow(render.Truncate(line, width), a.theme.feed, selected)
	}

	mark, date := " ", "          "
	style := a.theme.read
	if !e.Read {
		mark = "●"
		style = a.theme.unread
	}
	if !e.Published.IsZero() {
		date = e.Published.Local().Format("2006-01-02")
	}
	head := fmt.Sprintf("    %s ", mark)
	room := width - lipgloss.Width(head) - lipgloss.Width(date) - 1
	if selected || room < 1 {
		return a.styleRow(render.Truncate(head+date+" "+e.Title, width), style, selected)
	}
	return style.Render(head) + a.theme.date.Render(date) + " " + style.Render(render.Truncate(e.Title, room))
}

func (a *App) styleRow(line string, style lipgloss.Style, selected bool) string {
	if selected {
		return a.theme.selected.Render(line + strings.Repeat(" ", max(a.contentWidth()-lipgloss.Width(line), 0)))
	}
	return style.Render(line)
}

func (a *App) renderEntry() string {
	_, e := a.resolve(a.view.Feed, a.view.Entry)
	width, height := a.contentWidth(), a.bodyHeight()

	title := e.Title
	if len(e.Authors) > 0 {
		title += " · " + strings.Join(e.Authors, ", ")
	}
	if !e.Published.IsZero() {
		title += " · " + e.Published.Local().Format("2006-01-02 15:04")
	}

	vp := viewport.New(width, height)
	vp.SetContent(strings.Join(render.Wrap(e.Content, width), "\n"))
	vp.SetYOffset(a.entryScroll)

	return titledBox(title, vp.View(), a.width, height, a.theme.accentC)
}

func (a *App) renderStatus() string {
	width := max(a.width, 1)
	if a.statusErr != nil {
		return a.theme.err.Render(render.Truncate("✗ "+a.statusErr.Error(), width))
	}

	var keys help.KeyMap = feedListHelp{a.keys}
	if a.view.Kind == ViewEntry {
		keys = entryHelp{a.keys}
	}
	hm := a.help
	hm.Width = width
	return hm.ShortHelpView(keys.ShortHelp())
}

func (a *App) renderPopup() string {
	width := a.popupWidth()
	if a.popup == PopupFeedListHelp || a.popup == PopupEntryHelp {
		width = max(a.width-4, 10)
	}
	inner := max(width-6, 1)

	var content string
	switch a.popup {
	case PopupAddFeed:
		content = lipgloss.JoinVertical(lipgloss.Left,
			a.theme.feed.Render("Add feed"),
			"",
			a.input.View(),
			"",
			a.theme.help.Render("enter: add • esc: cancel"),
		)
	case PopupConfirmDelete:
		name := "this feed"
		rows := BuildRows(a.feeds)
		if a.cursor < len(rows) {
			name = feedTitle(a.feeds[rows[a.cursor].Feed])
		}
		content = lipgloss.JoinVertical(lipgloss.Left,
			a.theme.err.Render("Delete feed?"),
			"",
			a.theme.text.Render(render.Truncate(name, inner)),
			a.theme.help.Render("All of its entries are removed too."),
			"",
			a.theme.help.Render("y: delete • n: cancel"),
		)
	case PopupError:
		content = lipgloss.JoinVertical(lipgloss.Left,
			a.theme.err.Render("Error"),
			"",
			strings.Join(render.Wrap(a.errorMessage, inner), "\n"),
			"",
			a.theme.help.Render("enter: dismiss"),
		)
	case PopupFeedListHelp, PopupEntryHelp:
		var keys help.KeyMap = feedListHelp{a.keys}
		if a.popup == PopupEntryHelp {
			keys = entryHelp{a.keys}
		}
		hm := a.help
		hm.Width = inner
		content = lipgloss.JoinVertical(lipgloss.Left,
			a.theme.feed.Render("Keys"),
			"",
			hm.FullHelpView(keys.FullHelp()),
			"",
			a.theme.help.Render("esc: close"),
		)
	case PopupSync:
		content = a.spinner.View() + " " + a.theme.success.Render(fmt.Sprintf("Syncing %d feeds…", len(a.feeds)))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.theme.accentC).
		Padding(1, 2).
		Width(width - 2).
		Render(content)
}

// titledBox draws a rounded box of the given outer width with title set
// into the top border. content must already fit height lines.
func titledBox(title, content string, width, height int, color lipgloss.Color) string {
	b := lipgloss.RoundedBorder()
	inner := max(width-2, 0)

	top := strings.Repeat(b.Top, inner)
	if title = render.Truncate(title, inner-4); title != "" && inner > 4 {
		top = b.Top + " " + title + " " + strings.Repeat(b.Top, max(inner-3-lipgloss.Width(title), 0))
	}
	border := lipgloss.NewStyle().Foreground(color)

	box := lipgloss.NewStyle().
		Border(b).
		BorderTop(false).
		BorderForeground(color).
		Width(inner).
		Height(height).
		Render(content)
	return border.Render(b.TopLeft+top+b.TopRight) + "\n" + box
}

func feedTitle(f *storage.Feed) string {
	if f.Title != "" {
		return f.Title
	}
	return f.Link
}
