// Package guard validates an inbound turn before any expensive work: body
// size, media type, per-IP rate limiting, CSRF double-submit, honeypot and a
// static policy filter. Every failed check is terminal for the turn.
package guard

// Reason is the machine-readable code attached to a failed check. The codes
// are part of the wire contract and surface verbatim in error bodies.
type Reason string

const (
	ReasonPayloadTooLarge  Reason = "payload_too_large"
	ReasonBadJSON          Reason = "bad_json"
	ReasonUnsupportedMedia Reason = "unsupported_media_type"
	ReasonRateLimited      Reason = "rate_limited"
	ReasonCSRFFailed       Reason = "csrf_failed"
	ReasonBotDetected      Reason = "bot_detected"
	ReasonPolicyViolation  Reason = "policy_violation"
)

// Verdict reports a failed guard check. A nil *Verdict means pass.
type Verdict struct {
	Reason Reason
}

func fail(r Reason) *Verdict {
	return &Verdict{Reason: r}
}
