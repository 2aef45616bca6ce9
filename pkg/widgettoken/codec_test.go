package widgettoken

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptySecret(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
	_, err = New("   ")
	assert.Error(t, err)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	c, err := New("topsecret")
	require.NoError(t, err)

	for _, id := range []string{"abc123", "xyz456", "a", "account-with-dashes", "üñïçødé", strings.Repeat("x", 500)} {
		tok, err := c.Issue(id)
		require.NoError(t, err, id)
		got, err := c.Verify(tok)
		require.NoError(t, err, id)
		assert.Equal(t, id, got)
	}
}

func TestIssueDeterministic(t *testing.T) {
	c, err := New("topsecret")
	require.NoError(t, err)
	a, _ := c.Issue("abc123")
	b, _ := c.Issue("abc123")
	assert.Equal(t, a, b)

	other, _ := c.Issue("abc124")
	assert.NotEqual(t, a, other)
}

func TestIssueEmptyAccountID(t *testing.T) {
	c, err := New("topsecret")
	require.NoError(t, err)
	_, err = c.Issue("")
	assert.ErrorIs(t, err, ErrEmptyAccountID)
}

func TestVerifyTamperedToken(t *testing.T) {
	c, err := New("topsecret")
	require.NoError(t, err)
	tok, err := c.Issue("abc123")
	require.NoError(t, err)

	// Flipping any single character in either segment must invalidate.
	for i := 0; i < len(tok); i++ {
		if tok[i] == '.' {
			continue
		}
		flip := byte('A')
		if tok[i] == 'A' {
			flip = 'B'
		}
		mutated := tok[:i] + string(flip) + tok[i+1:]
		_, err := c.Verify(mutated)
		assert.ErrorIs(t, err, ErrInvalidToken, "position %d", i)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	c1, err := New("secret-one")
	require.NoError(t, err)
	c2, err := New("secret-two")
	require.NoError(t, err)

	tok, err := c1.Issue("abc123")
	require.NoError(t, err)
	_, err = c2.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformedInput(t *testing.T) {
	c, err := New("topsecret")
	require.NoError(t, err)
	valid, err := c.Issue("abc123")
	require.NoError(t, err)
	parts := strings.SplitN(valid, ".", 2)

	cases := []string{
		"",
		".",
		"justonesegment",
		"a.b.c",
		valid + ".extra",
		"." + parts[1],
		parts[0] + ".",
		parts[0] + ".not-hex-at-all",
		"\x00\xff.deadbeef",
	}
	for _, tc := range cases {
		_, err := c.Verify(tc)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", tc)
	}
}

func TestVerifyTrimsWhitespace(t *testing.T) {
	c, err := New("topsecret")
	require.NoError(t, err)
	tok, err := c.Issue("abc123")
	require.NoError(t, err)

	got, err := c.Verify("  " + tok + "\n")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)
}
