package budget

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionID(t *testing.T) {
	require.Equal(t, "anon", SessionID(""))
	require.Equal(t, "anon", SessionID("  "))
	require.Equal(t, "tok-123", SessionID("tok-123"))
}

func TestCharge_Accumulates(t *testing.T) {
	l := NewLedger()
	require.Equal(t, 100, l.Charge("s1", "oss", 100))
	require.Equal(t, 50, l.Charge("s1", "grok", 50))
	require.Equal(t, 100, l.ProviderSpent("s1", "oss"))
	require.Equal(t, 50, l.ProviderSpent("s1", "grok"))
	require.Equal(t, 150, l.SessionTotal("s1"))
	require.Equal(t, SessionHardCap-150, l.Remaining("s1"))
}

func TestCharge_NegativeRequestIsZero(t *testing.T) {
	l := NewLedger()
	require.Equal(t, 0, l.Charge("s1", "oss", -10))
	require.Equal(t, 0, l.SessionTotal("s1"))
}

func TestCharge_ClipsAtHardCap(t *testing.T) {
	l := NewLedger()
	require.Equal(t, SessionHardCap, l.Charge("s1", "oss", SessionHardCap+5000))
	require.Equal(t, SessionHardCap, l.SessionTotal("s1"))
	require.Equal(t, 0, l.Remaining("s1"))

	// Spend beyond the cap is dropped silently.
	require.Equal(t, 0, l.Charge("s1", "grok", 1))
	require.Equal(t, SessionHardCap, l.SessionTotal("s1"))
	require.Equal(t, 0, l.ProviderSpent("s1", "grok"))
}

func TestCharge_PartialClip(t *testing.T) {
	l := NewLedger()
	l.Charge("s1", "oss", SessionHardCap-100)
	require.Equal(t, 100, l.Charge("s1", "grok", 500))
	require.Equal(t, SessionHardCap, l.SessionTotal("s1"))
}

func TestInvariant_TotalEqualsProviderSum(t *testing.T) {
	l := NewLedger()
	charges := []struct {
		provider  string
		requested int
	}{
		{"oss", 12000}, {"grok", 9000}, {"oss", 8000}, {"gemini", 4000},
		{"openai", 7000}, {"grok", 3000},
	}
	for _, c := range charges {
		l.Charge("s1", c.provider, c.requested)
	}

	sum := 0
	for _, p := range []string{"oss", "grok", "gemini", "openai"} {
		sum += l.ProviderSpent("s1", p)
	}
	require.Equal(t, l.SessionTotal("s1"), sum)
	require.LessOrEqual(t, l.SessionTotal("s1"), SessionHardCap)
}

func TestCharge_SessionsAreIndependent(t *testing.T) {
	l := NewLedger()
	l.Charge("s1", "oss", SessionHardCap)
	require.Equal(t, 200, l.Charge("s2", "oss", 200))
}

func TestCharge_Concurrent(t *testing.T) {
	l := NewLedger()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Charge("s1", "oss", 1000)
		}()
	}
	wg.Wait()
	require.Equal(t, SessionHardCap, l.SessionTotal("s1"))
	require.Equal(t, SessionHardCap, l.ProviderSpent("s1", "oss"))
}
