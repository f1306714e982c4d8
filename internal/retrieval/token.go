// Package retrieval scores a small external knowledge pack against a query
// using exact term overlap and can compose a short extractive answer when
// coverage is sufficient. There is no semantic or vector retrieval here.
package retrieval

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// wordPattern defines the sole notion of a "word": maximal runs of ASCII
// letters/digits plus the accented Latin vowels and ñ used in Spanish text.
var wordPattern = regexp.MustCompile(`[a-z0-9áéíóúüñ]+`)

// Tokenize lowercases, NFKC-normalizes and extracts word runs from s.
func Tokenize(s string) []string {
	return wordPattern.FindAllString(norm.NFKC.String(strings.ToLower(s)), -1)
}

// ApproxTokens estimates the token cost of the concatenated pieces as
// ceil(byteLength/4). This is a fixed heuristic, not a tokenizer; it must
// stay exact so header values are reproducible across deployments.
func ApproxTokens(pieces ...string) int {
	n := 0
	for _, p := range pieces {
		n += len(p)
	}
	return (n + 3) / 4
}
