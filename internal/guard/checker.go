package guard

import (
	"encoding/json"
	"errors"
	"strings"
)

// MaxBodyBytes is the request body ceiling. Both the declared Content-Length
// and the actual decoded length are held to it.
const MaxBodyBytes = 64 << 10

// Checker runs the cheap, terminal request checks shared by every route.
type Checker struct {
	limiter *RateLimiter
}

// NewChecker creates a Checker backed by the given rate limiter.
func NewChecker(limiter *RateLimiter) (*Checker, error) {
	if limiter == nil {
		return nil, errors.New("guard: rate limiter must not be nil")
	}
	return &Checker{limiter: limiter}, nil
}

// CheckTransport validates media type and declared size, then spends one
// rate-limit slot for ip. contentLength <= 0 means the header was absent.
func (c *Checker) CheckTransport(contentType string, contentLength int64, ip string) *Verdict {
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return fail(ReasonUnsupportedMedia)
	}
	if contentLength > MaxBodyBytes {
		return fail(ReasonPayloadTooLarge)
	}
	if !c.limiter.Allow(ip) {
		return fail(ReasonRateLimited)
	}
	return nil
}

// DecodeBody enforces the body ceiling on the actual bytes and unmarshals
// them into v. An empty body decodes as an empty JSON object.
func (c *Checker) DecodeBody(raw []byte, v any) *Verdict {
	if len(raw) > MaxBodyBytes {
		return fail(ReasonPayloadTooLarge)
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fail(ReasonBadJSON)
	}
	return nil
}

// CheckAuth runs the honeypot trap and the CSRF double-submit comparison.
// The CSRF check is byte equality of the header and body tokens, not a
// signed-token scheme; any client that can set both passes.
func (c *Checker) CheckAuth(csrfHeader, csrfBody, honeypot string) *Verdict {
	if strings.TrimSpace(honeypot) != "" {
		return fail(ReasonBotDetected)
	}
	if csrfHeader == "" || csrfBody == "" || csrfHeader != csrfBody {
		return fail(ReasonCSRFFailed)
	}
	return nil
}
