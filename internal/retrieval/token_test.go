package retrieval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"¿Qué servicios?", []string{"qué", "servicios"}},
		{"año-2024", []string{"año", "2024"}},
		{"  ", nil},
		{"", nil},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Tokenize(tc.in), "input=%q", tc.in)
	}
}

func TestTokenize_NFKCNormalization(t *testing.T) {
	// U+FF21 FULLWIDTH LATIN CAPITAL LETTER A folds to plain "a".
	require.Equal(t, []string{"abc"}, Tokenize("Ａbc"))
}

func TestApproxTokens(t *testing.T) {
	require.Equal(t, 1, ApproxTokens("test"))
	require.Equal(t, 2, ApproxTokens("tests"))
	require.Equal(t, 0, ApproxTokens(""))
	require.Equal(t, 0, ApproxTokens())
	require.Equal(t, 2, ApproxTokens("test", "test"))
	// Byte length, not rune count: "ñ" is two bytes.
	require.Equal(t, 1, ApproxTokens("ññ"))
}
