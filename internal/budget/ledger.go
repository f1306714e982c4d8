// Package budget tracks per-session token spend for the process lifetime.
// Nothing here is persisted; a restart starts every session at zero.
package budget

import (
	"strings"
	"sync"
)

const (
	// SessionHardCap is the per-session token ceiling. Once reached, no
	// further spend happens for that session.
	SessionHardCap = 35000
	// ProviderSoftCap disqualifies a provider from further invocation for a
	// session without halting the session itself.
	ProviderSoftCap = 25000
)

// SessionID derives the ledger key from the CSRF token; absent tokens share
// the anonymous bucket.
func SessionID(csrf string) string {
	if strings.TrimSpace(csrf) == "" {
		return "anon"
	}
	return csrf
}

type sessionRecord struct {
	total       int
	perProvider map[string]int
}

// Ledger is the process-wide token ledger, safe for concurrent turns.
// Invariant: for every session, total == sum(perProvider) and
// total <= SessionHardCap.
type Ledger struct {
	mu       sync.Mutex
	sessions map[string]*sessionRecord
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{sessions: make(map[string]*sessionRecord)}
}

func (l *Ledger) record(sessionID string) *sessionRecord {
	rec, ok := l.sessions[sessionID]
	if !ok {
		rec = &sessionRecord{perProvider: make(map[string]int)}
		l.sessions[sessionID] = rec
	}
	return rec
}

// Charge spends up to requested tokens against the session, clipped to what
// remains under the hard cap, and attributes the spend to provider when one
// is given. Returns the amount actually charged; the excess is dropped
// silently.
func (l *Ledger) Charge(sessionID, provider string, requested int) int {
	if requested < 0 {
		requested = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.record(sessionID)
	allowance := SessionHardCap - rec.total
	if allowance <= 0 {
		return 0
	}
	spend := requested
	if spend > allowance {
		spend = allowance
	}
	if provider != "" {
		rec.perProvider[provider] += spend
	}
	rec.total += spend
	return spend
}

// ProviderSpent returns the tokens attributed to provider for the session.
func (l *Ledger) ProviderSpent(sessionID, provider string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.sessions[sessionID]
	if !ok {
		return 0
	}
	return rec.perProvider[provider]
}

// SessionTotal returns the cumulative tokens spent by the session.
func (l *Ledger) SessionTotal(sessionID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.sessions[sessionID]
	if !ok {
		return 0
	}
	return rec.total
}

// Remaining returns the unspent allowance under the session hard cap.
func (l *Ledger) Remaining(sessionID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.sessions[sessionID]
	if !ok {
		return SessionHardCap
	}
	rem := SessionHardCap - rec.total
	if rem < 0 {
		return 0
	}
	return rem
}
