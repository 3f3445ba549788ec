package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pders01/pequod/internal/config"
)

const (
	defaultUserAgent = "pequod/1.0 (RSS reader; github.com/pders01/pequod)"
	defaultTimeout   = 30 * time.Second
	defaultMaxBody   = 10 << 20

	feedAccept = "application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9, */*;q=0.8"
	pageAccept = "text/html, application/xhtml+xml;q=0.9, */*;q=0.8"
)

type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

func NewFetcher(cfg *config.Config) *Fetcher {
	timeout, ua, maxBody := defaultTimeout, defaultUserAgent, int64(defaultMaxBody)
	if cfg != nil {
		if cfg.Feed.HTTPTimeout > 0 {
			timeout = cfg.Feed.HTTPTimeout
		}
		if cfg.Feed.UserAgent != "" {
			ua = cfg.Feed.UserAgent
		}
		if cfg.Feed.MaxBodyBytes > 0 {
			maxBody = cfg.Feed.MaxBodyBytes
		}
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: ua,
		maxBody:   maxBody,
	}
}

// FetchFeed downloads a feed document.
func (f *Fetcher) FetchFeed(ctx context.Context, url string) ([]byte, error) {
	return f.get(ctx, url, feedAccept)
}

// FetchPage downloads an HTML page.
func (f *Fetcher) FetchPage(ctx context.Context, url string) ([]byte, error) {
	return f.get(ctx, url, pageAccept)
}

func (f *Fetcher) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, f.maxBody)
	}
	return body, nil
}
