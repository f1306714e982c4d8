package usecase

import (
	"fmt"

	"edge-gateway/internal/guard"
)

type ErrorCode string

const (
	ErrorInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrorPayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrorUnsupportedMedia ErrorCode = "UNSUPPORTED_MEDIA_TYPE"
	ErrorRateLimited      ErrorCode = "RATE_LIMITED"
	ErrorForbidden        ErrorCode = "FORBIDDEN"
	ErrorInternal         ErrorCode = "INTERNAL_ERROR"
)

// Error is the pipeline error carrying the taxonomy code and the
// machine-readable reason that goes on the wire.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// ErrorForVerdict translates a failed guard check into the taxonomy. Security
// failures stay generic on the wire to avoid oracle leakage; the reason code
// is all a caller learns.
func ErrorForVerdict(v *guard.Verdict) *Error {
	reason := string(v.Reason)
	switch v.Reason {
	case guard.ReasonPayloadTooLarge:
		return newError(ErrorPayloadTooLarge, reason, nil)
	case guard.ReasonUnsupportedMedia:
		return newError(ErrorUnsupportedMedia, reason, nil)
	case guard.ReasonRateLimited:
		return newError(ErrorRateLimited, reason, nil)
	case guard.ReasonCSRFFailed:
		return newError(ErrorForbidden, reason, nil)
	case guard.ReasonBadJSON, guard.ReasonBotDetected:
		return newError(ErrorInvalidInput, reason, nil)
	default:
		return newError(ErrorInvalidInput, reason, nil)
	}
}
