// Package plugins maps site URLs that users tend to paste (a subreddit, a
// YouTube channel) to the feed URL the site publishes for them.
package plugins

import (
	"context"
	"fmt"
	"net/url"
	"sort"
)

// Resolution describes where a feed lives.
type Resolution struct {
	OriginalURL string
	FeedURL     string
	// Plugin is the name of the plugin that resolved the URL, empty when
	// the URL was used as given.
	Plugin string
}

type Plugin interface {
	Name() string
	CanHandle(u *url.URL) bool
	// Resolve returns the feed URL for u.
	Resolve(ctx context.Context, u *url.URL) (string, error)
	// Priority orders plugins that handle the same URL, higher first.
	Priority() int
}

type Registry struct {
	plugins []Plugin
}

func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{}
	for _, p := range plugins {
		r.Register(p)
	}
	return r
}

func (r *Registry) Register(plugin Plugin) {
	r.plugins = append(r.plugins, plugin)
	sort.SliceStable(r.plugins, func(i, j int) bool {
		return r.plugins[i].Priority() > r.plugins[j].Priority()
	})
}

// FindPlugin returns the highest priority plugin that handles rawURL, or
// nil.
func (r *Registry) FindPlugin(rawURL string) Plugin {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	for _, p := range r.plugins {
		if p.CanHandle(u) {
			return p
		}
	}
	return nil
}

// Resolve passes rawURL through the matching plugin. URLs no plugin
// handles resolve to themselves.
func (r *Registry) Resolve(ctx context.Context, rawURL string) (*Resolution, error) {
	res := &Resolution{OriginalURL: rawURL, FeedURL: rawURL}

	plugin := r.FindPlugin(rawURL)
	if plugin == nil {
		return res, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	feedURL, err := plugin.Resolve(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", plugin.Name(), err)
	}
	res.FeedURL = feedURL
	res.Plugin = plugin.Name()
	return res, nil
}

func (r *Registry) ListPlugins() []Plugin {
	return append([]Plugin(nil), r.plugins...)
}
