package domain

import "strings"

// ChatMessage is the provider-agnostic chat message shape used by the handler
// and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnRequest is the JSON body accepted by /api/chat. One instance per call,
// never persisted.
type TurnRequest struct {
	Messages []ChatMessage `json:"messages"`
	Lang     string        `json:"lang"`
	CSRF     string        `json:"csrf"`
	Honeypot string        `json:"hp"`
	PackURL  string        `json:"packUrl"`
}

// LatestUserMessage returns the content of the last message in the turn, or
// "" when the turn carries no messages.
func (r TurnRequest) LatestUserMessage() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1].Content
}

// NormalizeLang collapses the requested language to the two supported values.
// Anything that is not Spanish is served in English.
func NormalizeLang(lang string) string {
	if strings.TrimSpace(lang) == "es" {
		return "es"
	}
	return "en"
}
