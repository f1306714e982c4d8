package provider

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"edge-gateway/internal/budget"
	"edge-gateway/internal/domain"
)

// DefaultChainOrder is the provider order tried when none is configured.
var DefaultChainOrder = []string{"oss", "grok", "gemini", "openai"}

// ParseChainOrder splits a comma-separated chain spec, trimming blanks.
// Empty input yields the default order.
func ParseChainOrder(spec string) []string {
	var order []string
	for _, s := range strings.Split(spec, ",") {
		if s = strings.TrimSpace(s); s != "" {
			order = append(order, s)
		}
	}
	if len(order) == 0 {
		return append([]string(nil), DefaultChainOrder...)
	}
	return order
}

// Ledger is the budget surface the chain consults before and after a call.
type Ledger interface {
	Charge(sessionID, provider string, requested int) int
	ProviderSpent(sessionID, provider string) int
	Remaining(sessionID string) int
}

// Outcome is the chain result. Provider is NameNone when no provider served
// the turn; that is a valid terminal state, not an error.
type Outcome struct {
	Text     string
	Used     int
	Provider string
}

// Chain tries an ordered list of providers, skipping the unconfigured and
// the soft-capped, stopping hard when the session allowance is exhausted,
// and returning at the first success.
type Chain struct {
	enabled bool
	order   []string
	callers map[string]Caller
	ledger  Ledger
}

// NewChain wires the fallback chain. Unknown names in order are skipped at
// run time so a misconfigured chain degrades instead of failing.
func NewChain(enabled bool, order []string, callers map[string]Caller, ledger Ledger) (*Chain, error) {
	if ledger == nil {
		return nil, errors.New("provider: ledger must not be nil")
	}
	if len(order) == 0 {
		order = append([]string(nil), DefaultChainOrder...)
	}
	if callers == nil {
		callers = make(map[string]Caller)
	}
	return &Chain{enabled: enabled, order: order, callers: callers, ledger: ledger}, nil
}

// Run executes the fallback chain for one turn. Transport and non-2xx errors
// advance the chain; they are never surfaced to the caller individually.
func (c *Chain) Run(ctx context.Context, sessionID, lang string, strong []domain.ScoredChunk, userMsg string) Outcome {
	if !c.enabled {
		return Outcome{Provider: NameNone}
	}

	sys := SystemPrompt(lang, strong)
	req := Request{
		SystemText: sys,
		UserText:   userMsg,
		Messages: []Message{
			{Role: "system", Content: sys},
			{Role: "user", Content: userMsg},
		},
	}

	for _, name := range c.order {
		caller, ok := c.callers[name]
		if !ok || !caller.Configured() {
			continue
		}
		if c.ledger.ProviderSpent(sessionID, name) >= budget.ProviderSoftCap {
			continue
		}
		if c.ledger.Remaining(sessionID) == 0 {
			break
		}

		res, err := caller.Call(ctx, req)
		if err != nil {
			slog.Warn("provider call failed, trying next", "provider", name, "err", err)
			continue
		}

		charged := c.ledger.Charge(sessionID, name, res.Used)
		return Outcome{Text: res.Text, Used: charged, Provider: name}
	}
	return Outcome{Provider: NameNone}
}
