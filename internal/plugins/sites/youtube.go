package sites

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const youtubeFeedBase = "https://www.youtube.com/feeds/videos.xml"

// YouTubePlugin maps channel and playlist pages to the site's Atom feeds.
type YouTubePlugin struct{}

func NewYouTubePlugin() *YouTubePlugin {
	return &YouTubePlugin{}
}

func (p *YouTubePlugin) Name() string {
	return "youtube"
}

func (p *YouTubePlugin) CanHandle(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	if host != "youtube.com" && host != "www.youtube.com" && host != "m.youtube.com" {
		return false
	}
	parts := pathParts(u)
	switch {
	case len(parts) >= 2 && parts[0] == "channel":
		return true
	case len(parts) >= 1 && parts[0] == "playlist":
		return u.Query().Get("list") != ""
	}
	return false
}

func (p *YouTubePlugin) Priority() int {
	return 50
}

func (p *YouTubePlugin) Resolve(_ context.Context, u *url.URL) (string, error) {
	parts := pathParts(u)
	q := url.Values{}
	switch {
	case len(parts) >= 2 && parts[0] == "channel":
		q.Set("channel_id", parts[1])
	case len(parts) >= 1 && parts[0] == "playlist" && u.Query().Get("list") != "":
		q.Set("playlist_id", u.Query().Get("list"))
	default:
		return "", fmt.Errorf("no channel or playlist in %s", u)
	}
	return youtubeFeedBase + "?" + q.Encode(), nil
}
