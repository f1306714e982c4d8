package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"edge-gateway/internal/domain"
)

const maxPackBytes = 1 << 20

// Loader fetches knowledge packs over HTTP and caches successful loads for
// the process lifetime, keyed by URL. Failures are not cached so a flaky
// pack host recovers on the next turn.
type Loader struct {
	httpClient *http.Client

	mu    sync.Mutex
	cache map[string]*domain.Pack
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient overrides the HTTP client used for pack fetches.
func WithHTTPClient(httpClient *http.Client) LoaderOption {
	return func(l *Loader) {
		l.httpClient = httpClient
	}
}

// NewLoader creates a Loader with a bounded-timeout HTTP client.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      make(map[string]*domain.Pack),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the pack at url, from cache when previously fetched.
func (l *Loader) Load(ctx context.Context, url string) (*domain.Pack, error) {
	l.mu.Lock()
	if p, ok := l.cache[url]; ok {
		l.mu.Unlock()
		return p, nil
	}
	l.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieval: create pack request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieval: fetch pack: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("retrieval: pack fetch returned status %d", res.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxPackBytes))
	if err != nil {
		return nil, fmt.Errorf("retrieval: read pack body: %w", err)
	}
	var pack domain.Pack
	if err := json.Unmarshal(raw, &pack); err != nil {
		return nil, fmt.Errorf("retrieval: decode pack: %w", err)
	}

	l.mu.Lock()
	l.cache[url] = &pack
	l.mu.Unlock()
	return &pack, nil
}

// Invalidate drops the cached pack for url, forcing a refetch on next Load.
func (l *Loader) Invalidate(url string) {
	l.mu.Lock()
	delete(l.cache, url)
	l.mu.Unlock()
}
