// Package sites holds the built-in feed URL plugins.
package sites

import "github.com/pders01/pequod/internal/plugins"

// Registry returns a registry with every built-in plugin registered.
func Registry() *plugins.Registry {
	return plugins.NewRegistry(
		NewRedditPlugin(),
		NewYouTubePlugin(),
	)
}
