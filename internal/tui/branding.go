package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/pequod/internal/config"
)

var LogoLines = []string{
	"█▀█ █▀▀ █▀█ █ █ █▀█ █▀▄",
	"█▀▀ ██▄ ▀▀█ █▄█ █▄█ █▄▀",
}

var BannerColors = []lipgloss.Color{
	lipgloss.Color("#4ECDC4"),
	lipgloss.Color("#95E1D3"),
	lipgloss.Color("#FF6B6B"),
}

var fallbackColors = config.UIColors{
	Primary:   "#FF6B6B",
	Secondary: "#4ECDC4",
	Accent:    "#95E1D3",
	Text:      "#EAEAEA",
	Muted:     "#94A3B8",
	Error:     "#F87171",
	Success:   "#4ADE80",
}

// theme holds the styles derived from the configured colors.
type theme struct {
	secondary lipgloss.Color
	accentC   lipgloss.Color

	logo     lipgloss.Style
	feed     lipgloss.Style
	unread   lipgloss.Style
	read     lipgloss.Style
	selected lipgloss.Style
	date     lipgloss.Style
	accent   lipgloss.Style
	help     lipgloss.Style
	err      lipgloss.Style
	success  lipgloss.Style
	text     lipgloss.Style
}

func newTheme(c config.UIColors) theme {
	pick := func(v, fallback string) lipgloss.Color {
		if v == "" {
			return lipgloss.Color(fallback)
		}
		return lipgloss.Color(v)
	}
	primary := pick(c.Primary, fallbackColors.Primary)
	secondary := pick(c.Secondary, fallbackColors.Secondary)
	accent := pick(c.Accent, fallbackColors.Accent)
	text := pick(c.Text, fallbackColors.Text)
	muted := pick(c.Muted, fallbackColors.Muted)
	errC := pick(c.Error, fallbackColors.Error)
	success := pick(c.Success, fallbackColors.Success)

	return theme{
		secondary: secondary,
		accentC:   accent,

		logo:     lipgloss.NewStyle().Foreground(primary).Bold(true),
		feed:     lipgloss.NewStyle().Foreground(secondary).Bold(true),
		unread:   lipgloss.NewStyle().Foreground(text).Bold(true),
		read:     lipgloss.NewStyle().Foreground(muted),
		selected: lipgloss.NewStyle().Reverse(true),
		date:     lipgloss.NewStyle().Foreground(muted).Faint(true),
		accent:   lipgloss.NewStyle().Foreground(accent),
		help:     lipgloss.NewStyle().Foreground(muted).Italic(true),
		err:      lipgloss.NewStyle().Foreground(errC).Bold(true),
		success:  lipgloss.NewStyle().Foreground(success),
		text:     lipgloss.NewStyle().Foreground(text),
	}
}

func (t theme) welcome() string {
	var lines []string
	for _, line := range LogoLines {
		lines = append(lines, t.logo.Render(line))
	}
	lines = append(lines, "", t.help.Render("Press a to add your first feed"))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// ShowBanner prints the startup banner to w.
func ShowBanner(w io.Writer, version string) {
	lines := make([]string, len(LogoLines), len(LogoLines)+2)
	copy(lines, LogoLines)
	lines = append(lines, "")

	tag := "terminal feed reader"
	if version != "" && version != "dev" {
		if version[0] != 'v' && version[0] != 'V' {
			version = "v" + version
		}
		tag += " " + version
	}
	lines = append(lines, tag)

	var colored []string
	for i, line := range lines {
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		colored = append(colored, style.Render(line))
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(BannerColors[0]).
		Padding(1, 3)

	fmt.Fprintln(w, border.Render(lipgloss.JoinVertical(lipgloss.Center, colored...)))
}
