// Package media resolves illustrative images for exercises. This is the
// engine's only suspending operation: a memory cache consulted first, then
// a remote fetch. Callers discard the result when the holder is gone; the
// context carries the cancellation.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Illustration is a fetched exercise image.
type Illustration struct {
	ContentType string
	Data        []byte
}

// Resolver fetches and caches exercise illustrations from a media server.
// Safe for concurrent use.
type Resolver struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.Mutex
	cache map[string]*Illustration
}

// NewResolver creates a Resolver against the given base URL.
func NewResolver(baseURL string) *Resolver {
	return &Resolver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      make(map[string]*Illustration),
	}
}

// Illustration returns the image for an exercise name, from cache when
// possible. A failed fetch is returned as an error and not cached, so a
// later attempt can succeed.
func (r *Resolver) Illustration(ctx context.Context, exerciseName string) (*Illustration, error) {
	key := slug(exerciseName)

	r.mu.Lock()
	if ill, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return ill, nil
	}
	r.mu.Unlock()

	ill, err := r.fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[key] = ill
	r.mu.Unlock()
	return ill, nil
}

func (r *Resolver) fetch(ctx context.Context, key string) (*Illustration, error) {
	u := r.baseURL + "/exercises/" + url.PathEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating media request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching illustration %q: %w", key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("illustration %q returned status %d", key, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading illustration %q: %w", key, err)
	}
	return &Illustration{ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}

// slug normalizes an exercise name into a cache/path key:
// "Bench Press" -> "bench-press".
func slug(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	return strings.Join(fields, "-")
}
