// Package stream serializes an answer as a server-sent-event body and
// carries the turn's decision metadata as response headers. This is the
// entire wire protocol: data events, one sentinel, no event types, no retry
// ids, no multiplexing.
package stream

import (
	"strconv"
	"strings"
)

const (
	// ChunkSize is the fixed event payload size, in characters.
	ChunkSize = 64
	// EndSentinel terminates every stream.
	EndSentinel = "[END]"
)

const (
	PackStatusOK          = "ok"
	PackStatusUnavailable = "pack-unavailable"
)

// Encode splits text into fixed-size data events followed by the sentinel.
// Chunking is by rune so multi-byte characters are never split.
func Encode(text string) string {
	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i += ChunkSize {
		end := i + ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		b.WriteString("data: ")
		b.WriteString(string(runes[i:end]))
		b.WriteString("\n\n")
	}
	b.WriteString("data: " + EndSentinel + "\n\n")
	return b.String()
}

// Meta is the out-of-band decision metadata for one turn: which path served
// the answer, what it cost, the running totals and the pack-load status.
type Meta struct {
	Provider       string
	TokensThisCall int
	ProviderTotal  int
	SessionTotal   int
	PackStatus     string
	PackURL        string
	Notice         string
}

// Headers renders the metadata as response headers, including the SSE
// content type. Empty optional fields are omitted.
func (m Meta) Headers() map[string]string {
	h := map[string]string{
		"Content-Type":       "text/event-stream; charset=utf-8",
		"Cache-Control":      "no-cache, no-transform",
		"X-Provider":         m.Provider,
		"X-Tokens-This-Call": strconv.Itoa(m.TokensThisCall),
		"X-Provider-Total":   strconv.Itoa(m.ProviderTotal),
		"X-Session-Total":    strconv.Itoa(m.SessionTotal),
	}
	if m.PackStatus != "" {
		h["X-Pack-Status"] = m.PackStatus
	}
	if m.PackURL != "" {
		h["X-Pack-URL"] = m.PackURL
	}
	if m.Notice != "" {
		h["X-Provider-Notice"] = m.Notice
	}
	return h
}
