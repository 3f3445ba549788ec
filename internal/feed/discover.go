package feed

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var feedTypes = []string{
	"application/rss+xml",
	"application/atom+xml",
	"application/feed+json",
	"application/json",
}

// discoverFeedURL looks for a <link rel="alternate"> feed reference in an
// HTML page and returns it resolved against pageURL.
func discoverFeedURL(page []byte, pageURL string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", false
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", false
	}

	var found string
	doc.Find(`link[rel~="alternate"][href]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		typ := strings.ToLower(strings.TrimSpace(s.AttrOr("type", "")))
		if !isFeedType(typ) {
			return true
		}
		ref, err := url.Parse(strings.TrimSpace(s.AttrOr("href", "")))
		if err != nil {
			return true
		}
		found = base.ResolveReference(ref).String()
		return false
	})
	return found, found != ""
}

func isFeedType(typ string) bool {
	for _, t := range feedTypes {
		if typ == t {
			return true
		}
	}
	return false
}
