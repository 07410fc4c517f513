package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	appLog "aviancal/internal/log"
	"aviancal/internal/model"
)

const maxFeedSize = 8 << 20

// Fetcher reads published calendar feeds over HTTP. It remembers each
// URL's ETag and body and sends If-None-Match, so re-reading an unchanged
// feed costs a 304.
type Fetcher struct {
	client *http.Client

	mu   sync.Mutex
	seen map[string]fetched
}

type fetched struct {
	etag string
	body []byte
}

// NewFetcher returns a Fetcher whose requests time out after timeout
// (15s when zero).
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		seen:   make(map[string]fetched),
	}
}

// Events fetches rawURL and parses it into events.
func (f *Fetcher) Events(ctx context.Context, rawURL string) ([]model.CalendarEvent, error) {
	body, _, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return ParseFeed(string(body))
}

// Fetch returns the feed body and whether it was served from the local copy
// after a 304.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, bool, error) {
	if rawURL == "" {
		return nil, false, errors.New("ics: feed URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "text/calendar")

	f.mu.Lock()
	prev, known := f.seen[rawURL]
	f.mu.Unlock()
	if known && prev.etag != "" {
		req.Header.Set("If-None-Match", prev.etag)
	}

	appLog.Debug("ics fetch start", "url", redactURL(rawURL), "conditional", known)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("ics: fetch %s: %w", redactURL(rawURL), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
		if err != nil {
			return nil, false, err
		}
		f.mu.Lock()
		f.seen[rawURL] = fetched{etag: resp.Header.Get("ETag"), body: body}
		f.mu.Unlock()
		appLog.Debug("ics fetch success", "url", redactURL(rawURL), "bytes", len(body))
		return body, false, nil

	case http.StatusNotModified:
		if !known {
			return nil, false, errors.New("ics: 304 Not Modified without a previous body")
		}
		appLog.Debug("ics fetch not modified", "url", redactURL(rawURL))
		return prev.body, true, nil
	}
	return nil, false, fmt.Errorf("ics: fetch %s: %s", redactURL(rawURL), resp.Status)
}

// redactURL keeps scheme and host only, so tokens in paths or queries stay
// out of logs.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
