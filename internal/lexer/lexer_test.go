package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextBasicKinds(t *testing.T) {
	cases := []struct {
		title string
		input string
		kind  Kind
	}{
		{"quoted string", `'buy milk'`, KindString},
		{"number", "42", KindNumber},
		{"negative number", "-3.14", KindNumber},
		{"hex", "0x1F", KindHex},
		{"separator", "--", KindSeparator},
		{"list separator", ",", KindListSep},
		{"tag add", "+urgent", KindTag},
		{"tag remove", "-urgent", KindTag},
		{"pair", "project:Home", KindPair},
		{"substitution", "/foo/bar/g", KindSubstitution},
		{"pattern", "/foo/", KindPattern},
		{"operator and", "and", KindOperator},
		{"operator lt", "<", KindOperator},
		{"identifier", "status", KindIdentifier},
		{"full uuid", "550e8400-e29b-41d4-a716-446655440000", KindUUID},
		{"partial uuid", "550e8400-e29b", KindUUID},
		{"date", "2026-07-31", KindDate},
		{"duration iso", "P1DT2H", KindDuration},
		{"duration colloquial", "2d", KindDuration},
	}

	for _, c := range cases {
		t.Run(c.title, func(t *testing.T) {
			tok, ok, err := New(c.input).Next()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, c.kind, tok.Kind, "text=%q", tok.Text)
		})
	}
}

func TestHexWithNoDigitsFallsThrough(t *testing.T) {
	tok, ok, err := New("0x").Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, KindHex, tok.Kind)
}

func TestPartialUUIDBelowMinLengthIsNotUUID(t *testing.T) {
	tok, ok, err := New("550e840").Next() // 7 chars, below the 8-char floor
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, KindUUID, tok.Kind)
}

func TestAndOrXorRequireBoundary(t *testing.T) {
	toks, err := All("bandana and foo")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "bandana", toks[0].Text)
	assert.NotEqual(t, KindOperator, toks[0].Kind)
	assert.Equal(t, "and", toks[1].Text)
	assert.Equal(t, KindOperator, toks[1].Kind)
}

func TestQuotedStringEscapes(t *testing.T) {
	tok, ok, err := New(`'line\nbreak'`).Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KindString, tok.Kind)
}

func TestUnterminatedStringIsLexError(t *testing.T) {
	_, _, err := New(`'unterminated`).Next()
	assert.Error(t, err)
}

func TestAllMultipleTokens(t *testing.T) {
	toks, err := All("project:Home +urgent due.before:eom")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, KindPair, toks[0].Kind)
	assert.Equal(t, KindTag, toks[1].Kind)
	assert.Equal(t, KindPair, toks[2].Kind)
}
