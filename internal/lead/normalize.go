// Package lead validates and persists lead submissions from the conversation
// funnel: field scrubbing plus a key/value put, with an optional best-effort
// webhook fan-out.
package lead

import (
	"regexp"
	"strings"
)

const (
	maxFreeTextLen   = 4000
	maxPhoneDigits   = 18
	minPhoneDigits   = 9
	maxTranscript    = 24
	maxUserAgentLen  = 180
	maxEmailSpan     = 120
	minEmailSpan     = 3
)

var (
	nameRe     = regexp.MustCompile(`^[\p{L}.' -]{2,60}$`)
	emailRe    = regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
	nonDigitRe = regexp.MustCompile(`[^\d]`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// NormalizeName collapses whitespace and accepts 2-60 letters, dots,
// apostrophes, hyphens and spaces. Returns "" when invalid.
func NormalizeName(s string) string {
	v := strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	if !nameRe.MatchString(v) {
		return ""
	}
	return v
}

// NormalizeEmail extracts the first email-shaped substring, bounded to a
// 3-120 character span from the match start. Returns "" when none is found.
func NormalizeEmail(s string) string {
	loc := emailRe.FindStringIndex(s)
	if loc == nil {
		return ""
	}
	span := len(s) - loc[0]
	if span < minEmailSpan || span > maxEmailSpan {
		return ""
	}
	return s[loc[0]:loc[1]]
}

// NormalizePhone keeps digits only, requires at least 9 and truncates to 18.
// Returns "" when too short.
func NormalizePhone(s string) string {
	d := nonDigitRe.ReplaceAllString(s, "")
	if len(d) < minPhoneDigits {
		return ""
	}
	if len(d) > maxPhoneDigits {
		d = d[:maxPhoneDigits]
	}
	return d
}

// Scrub truncates free-text fields to the storage ceiling.
func Scrub(s string) string {
	if len(s) > maxFreeTextLen {
		return s[:maxFreeTextLen]
	}
	return s
}

// AnonymizeIP keeps only the first two octets of an IPv4 address. Anything
// else collapses to the fully masked form.
func AnonymizeIP(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) == 4 {
		return parts[0] + "." + parts[1] + ".x.x"
	}
	return "x.x.x.x"
}
