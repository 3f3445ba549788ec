package feed

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type rssItem struct {
	guid    string
	title   string
	pubDate time.Time
	body    string
}

func rssDocument(title string, items ...rssItem) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
<title>` + title + `</title>
<link>http://site.test/</link>
<description>test feed</description>
`)
	for _, it := range items {
		fmt.Fprintf(&b, `<item>
<title>%s</title>
<link>http://site.test/%s</link>
<guid>%s</guid>
`, it.title, it.guid, it.guid)
		if !it.pubDate.IsZero() {
			fmt.Fprintf(&b, "<pubDate>%s</pubDate>\n", it.pubDate.Format(time.RFC1123Z))
		}
		if it.body != "" {
			fmt.Fprintf(&b, "<description><![CDATA[%s]]></description>\n", it.body)
		}
		b.WriteString("</item>\n")
	}
	b.WriteString("</channel>\n</rss>\n")
	return b.String()
}

// feedServer serves documents by path; documents can be swapped while the
// server runs.
type feedServer struct {
	*httptest.Server
	mu    sync.Mutex
	docs  map[string]string
	hits  map[string]int
	agent string
}

func newFeedServer(t *testing.T) *feedServer {
	fs := &feedServer{docs: map[string]string{}, hits: map[string]int{}}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		doc, ok := fs.docs[r.URL.Path]
		fs.hits[r.URL.Path]++
		fs.agent = r.Header.Get("User-Agent")
		fs.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		if strings.HasPrefix(strings.TrimSpace(doc), "<?xml") {
			w.Header().Set("Content-Type", "application/rss+xml")
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		fmt.Fprint(w, doc)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *feedServer) set(path, doc string) {
	fs.mu.Lock()
	fs.docs[path] = doc
	fs.mu.Unlock()
}

func (fs *feedServer) hitCount(path string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.hits[path]
}

func (fs *feedServer) userAgent() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.agent
}
