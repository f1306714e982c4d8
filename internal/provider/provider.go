// Package provider normalizes heterogeneous upstream completion APIs behind
// one capability interface and runs the ordered fallback chain over them.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// NameNone is the sentinel provider name for a turn no provider served.
const NameNone = "none"

// Descriptor is the configuration-derived identity of one upstream provider.
// It is immutable for the process lifetime; a missing BaseURL or ModelID
// disables the provider.
type Descriptor struct {
	Name    string
	BaseURL string
	ModelID string
	// APIKey is the statically configured key. When empty the key is
	// resolved from the secret source on first use.
	APIKey string
}

// Request is the normalized completion request. OpenAI-compatible callers
// consume Messages; the generate-content shape consumes SystemText/UserText.
type Request struct {
	SystemText string
	UserText   string
	Messages   []Message
}

// Message mirrors the chat role/content pair without importing the domain
// package into every caller.
type Message struct {
	Role    string
	Content string
}

// Result is a successful completion: the answer text and the token usage the
// provider reported (or the byte-length heuristic when it reported none).
type Result struct {
	Text string
	Used int
}

// Caller is one upstream provider normalized to the common call shape. The
// chain iterates Callers without knowing their wire differences.
type Caller interface {
	Name() string
	Configured() bool
	Call(ctx context.Context, req Request) (Result, error)
}

// SecretGetter resolves a named secret, e.g. from SSM Parameter Store.
type SecretGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// HTTPStatusError captures non-2xx upstream responses with status-aware
// context. The URL is stored with its query stripped so credentials passed
// as query parameters never reach logs.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("provider: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// keyResolver fetches the provider API key once per process: the static key
// when configured, otherwise the secret source.
type keyResolver struct {
	static    string
	getter    SecretGetter
	paramName string

	once sync.Once
	key  string
	err  error
}

func newKeyResolver(static string, getter SecretGetter, paramName string) *keyResolver {
	return &keyResolver{static: static, getter: getter, paramName: paramName}
}

func (r *keyResolver) configured() bool {
	return r.static != "" || (r.getter != nil && r.paramName != "")
}

func (r *keyResolver) resolve(ctx context.Context) (string, error) {
	r.once.Do(func() {
		if r.static != "" {
			r.key = r.static
			return
		}
		if r.getter == nil || r.paramName == "" {
			r.err = errors.New("provider: no api key source configured")
			return
		}
		key, err := r.getter.GetParameter(ctx, r.paramName)
		if err != nil {
			r.err = fmt.Errorf("provider: resolve api key: %w", err)
			return
		}
		key = strings.TrimSpace(key)
		if key == "" {
			r.err = errors.New("provider: resolved api key is empty")
			return
		}
		r.key = key
	})
	return r.key, r.err
}
