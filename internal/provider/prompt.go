package provider

import (
	"fmt"
	"strings"

	"edge-gateway/internal/domain"
)

// SystemPrompt builds the grounding system prompt: a localized instruction to
// answer only from context with citations, followed by the strong hits.
func SystemPrompt(lang string, strong []domain.ScoredChunk) string {
	policy := "Answer ONLY using the context. If info is missing, say so. Cite [#id]."
	if lang == "es" {
		policy = "Responde SOLO con el contexto. Si falta info, dilo. Cita [#id]."
	}

	lines := make([]string, 0, len(strong))
	for _, t := range strong {
		lines = append(lines, fmt.Sprintf("[#%s] %s", t.ID, t.Text))
	}
	return policy + "\n\nContext:\n" + strings.Join(lines, "\n")
}
