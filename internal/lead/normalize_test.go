package lead

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "Ana María O'Brien-Smith", NormalizeName("  Ana   María  O'Brien-Smith "))
	require.Equal(t, "J. Doe", NormalizeName("J. Doe"))
	require.Equal(t, "", NormalizeName("A"))
	require.Equal(t, "", NormalizeName("name <script>"))
	require.Equal(t, "", NormalizeName(strings.Repeat("a", 61)))
	require.Equal(t, "", NormalizeName(""))
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "a@b.co", NormalizeEmail("a@b.co"))
	require.Equal(t, "user@example.com", NormalizeEmail("contact me at user@example.com thanks"))
	require.Equal(t, "", NormalizeEmail("no email here"))
	require.Equal(t, "", NormalizeEmail(""))

	// The span from the match start to end of input is bounded to 120.
	long := "user@example.com" + strings.Repeat("x", 120)
	require.Equal(t, "", NormalizeEmail(long))
}

func TestNormalizePhone(t *testing.T) {
	require.Equal(t, "34600111222", NormalizePhone("+34 600 111 222"))
	require.Equal(t, "600111222", NormalizePhone("600-111-222"))
	require.Equal(t, "", NormalizePhone("12345678"), "fewer than 9 digits is invalid")
	require.Equal(t, strings.Repeat("1", 18), NormalizePhone(strings.Repeat("1", 25)))
}

func TestScrub(t *testing.T) {
	require.Equal(t, "short", Scrub("short"))
	require.Len(t, Scrub(strings.Repeat("x", 5000)), maxFreeTextLen)
}

func TestAnonymizeIP(t *testing.T) {
	require.Equal(t, "203.0.x.x", AnonymizeIP("203.0.113.9"))
	require.Equal(t, "x.x.x.x", AnonymizeIP("2001:db8::1"))
	require.Equal(t, "x.x.x.x", AnonymizeIP(""))
}
