package sites

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// RedditPlugin turns subreddit and user page URLs into their .rss feeds.
type RedditPlugin struct{}

func NewRedditPlugin() *RedditPlugin {
	return &RedditPlugin{}
}

func (p *RedditPlugin) Name() string {
	return "reddit"
}

func (p *RedditPlugin) CanHandle(u *url.URL) bool {
	if !isRedditHost(u.Hostname()) {
		return false
	}
	parts := pathParts(u)
	return len(parts) >= 2 && (parts[0] == "r" || parts[0] == "user" || parts[0] == "u")
}

func (p *RedditPlugin) Priority() int {
	return 50
}

func (p *RedditPlugin) Resolve(_ context.Context, u *url.URL) (string, error) {
	path := strings.TrimSuffix(u.Path, "/")
	if strings.HasSuffix(path, ".rss") {
		return u.String(), nil
	}
	if path == "" {
		return "", fmt.Errorf("no subreddit in %s", u)
	}

	feed := *u
	feed.Path = path + ".rss"
	feed.RawPath = ""
	feed.Fragment = ""
	return feed.String(), nil
}

func isRedditHost(host string) bool {
	host = strings.ToLower(host)
	return host == "reddit.com" || host == "www.reddit.com" || host == "old.reddit.com"
}

func pathParts(u *url.URL) []string {
	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
