// Package render turns feed markup into plain terminal text.
package render

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

var policy = bluemonday.UGCPolicy()

// Text converts HTML (or plain text) to readable plain text. A width of
// zero or less leaves lines unwrapped.
func Text(markup string, width int) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", nil
	}

	md, err := htmltomarkdown.ConvertString(policy.Sanitize(markup))
	if err != nil {
		return "", fmt.Errorf("converting html: %w", err)
	}

	style := styles.ASCIIStyleConfig
	var zero uint
	style.Document.Margin = &zero
	style.Document.BlockPrefix = ""
	style.Document.BlockSuffix = ""

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(max(width, 0)),
	)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return tidy(out), nil
}

// tidy strips trailing blanks from every line and collapses runs of empty
// lines left behind by block padding.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}

// Wrap breaks text into lines no wider than width, splitting at word
// boundaries and hard-breaking words that do not fit. Empty text is one
// empty line.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	wrapped := wrap.String(wordwrap.String(text, width), width)
	return strings.Split(wrapped, "\n")
}

// LineCount is the number of lines text occupies at the given width.
func LineCount(text string, width int) int {
	return len(Wrap(text, width))
}

// Truncate shortens s to width display cells, ending with an ellipsis when
// anything was cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return truncate.StringWithTail(s, uint(width), "…")
}
