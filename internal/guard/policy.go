package guard

import "regexp"

// policyPatterns is the static filter for prompt-injection phrasing and
// sensitive-data solicitation, English and Spanish. Kept data-driven so new
// patterns are one line, not a new branch.
var policyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore (?:all|the) (?:previous|prior|above) (?:instructions|rules)`),
	regexp.MustCompile(`(?i)act as .* (?:system|developer)`),
	regexp.MustCompile(`(?i)reveal (?:the )?system prompt`),
	regexp.MustCompile(`(?i)olvida las instrucciones`),
	regexp.MustCompile(`(?i)actúa como .* sistema`),
	regexp.MustCompile(`(?i)\b(?:ssn|social security number)\b`),
	regexp.MustCompile(`(?i)\b(?:credit card|card number|tarjeta de crédito|cvv)\b`),
	regexp.MustCompile(`(?i)\b(?:password|contraseña|passcode|clave)\b`),
}

// cardRunPattern flags 13-19 digit runs with optional separators, the usual
// shape of a card number pasted into chat.
var cardRunPattern = regexp.MustCompile(`\b(?:\d[ -]?){13,19}\b`)

// ViolatesPolicy reports whether text matches any policy pattern. A match
// short-circuits the pipeline into a localized refusal; it is not an HTTP
// error and does not count against the token budget.
func ViolatesPolicy(text string) bool {
	for _, p := range policyPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return cardRunPattern.MatchString(text)
}
