package retrieval

import (
	"fmt"
	"sort"
	"strings"

	"edge-gateway/internal/domain"
)

const (
	// MaxStrongHits caps the scored chunks returned per query.
	MaxStrongHits = 6
	// CoverageNeeded is the minimum number of strong hits for retrieval to be
	// considered sufficient for an extractive answer.
	CoverageNeeded = 2
	// extractiveChunks is how many top chunks the extractive answer cites.
	extractiveChunks = 3
)

// TopChunks scores every chunk of pack whose document language matches lang
// (or is unset) against query and returns the strong hits, best first.
// Score counts distinct query terms present in the chunk's token set; ties
// keep corpus order.
func TopChunks(pack *domain.Pack, query, lang string) []domain.ScoredChunk {
	if pack == nil {
		return nil
	}

	seen := make(map[string]bool)
	var terms []string
	for _, t := range Tokenize(query) {
		if !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}

	var hits []domain.ScoredChunk
	for _, d := range pack.Docs {
		if lang != "" && d.Lang != "" && d.Lang != lang {
			continue
		}
		for _, c := range d.Chunks {
			set := make(map[string]bool)
			for _, w := range Tokenize(c.Text) {
				set[w] = true
			}
			score := 0
			for _, w := range terms {
				if set[w] {
					score++
				}
			}
			if score > 0 {
				hits = append(hits, domain.ScoredChunk{ID: c.ID, Text: c.Text, Score: score})
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > MaxStrongHits {
		hits = hits[:MaxStrongHits]
	}
	return hits
}

// Sufficient reports whether the strong hits cover the query well enough to
// answer extractively, without any provider call.
func Sufficient(strong []domain.ScoredChunk) bool {
	return len(strong) >= CoverageNeeded
}

// ComposeExtractive builds an answer verbatim from the top chunks, each
// suffixed with its bracketed citation. Returns "" when there are no hits.
func ComposeExtractive(strong []domain.ScoredChunk) string {
	if len(strong) == 0 {
		return ""
	}
	n := len(strong)
	if n > extractiveChunks {
		n = extractiveChunks
	}
	parts := make([]string, 0, n)
	for _, t := range strong[:n] {
		parts = append(parts, fmt.Sprintf("%s [#%s]", strings.TrimSpace(t.Text), t.ID))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
