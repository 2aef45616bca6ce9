package origins

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"dammi/pkg/accounts"
)

type fakeProvider struct {
	accounts.Provider
	origins map[string][]string
	err     error
	calls   int
}

func (f *fakeProvider) ListWidgetOrigins(ctx context.Context, accountID string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.origins[accountID], nil
}

func newTestResolver(p accounts.Provider) *Resolver {
	return NewResolver(p, nil, zap.NewNop().Sugar(), time.Second, 0)
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"https://example.com":                "https://example.com",
		"https://example.com/":               "https://example.com",
		"https://example.com/some/page?x=1":  "https://example.com",
		"http://localhost:3000/index.html":   "http://localhost:3000",
		"HTTPS://EXAMPLE.COM/About":          "https://example.com",
		"https://example.com:8443/dashboard": "https://example.com:8443",
	}
	for in, want := range cases {
		got, err := Normalize(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "   ", "example.com", "ftp://example.com", "javascript:alert(1)", "https://", "://nope"} {
		_, err := Normalize(bad)
		assert.ErrorIs(t, err, ErrBadOrigin, bad)
	}
}

func TestIsAllowedExactMatch(t *testing.T) {
	p := &fakeProvider{origins: map[string][]string{
		"abc123": {"https://example.com", "http://localhost:3000"},
	}}
	r := newTestResolver(p)
	ctx := context.Background()

	assert.True(t, r.IsAllowed(ctx, "abc123", "https://example.com"))
	assert.True(t, r.IsAllowed(ctx, "abc123", "http://localhost:3000"))

	// Exact scheme+host+port only, no prefix or suffix containment.
	assert.False(t, r.IsAllowed(ctx, "abc123", "https://example.com.evil.com"))
	assert.False(t, r.IsAllowed(ctx, "abc123", "http://example.com"))
	assert.False(t, r.IsAllowed(ctx, "abc123", "https://example.com:8443"))
	assert.False(t, r.IsAllowed(ctx, "abc123", "https://sub.example.com"))
}

func TestIsAllowedZeroOriginsDeniesAll(t *testing.T) {
	p := &fakeProvider{origins: map[string][]string{}}
	r := newTestResolver(p)
	assert.False(t, r.IsAllowed(context.Background(), "empty-acct", "https://example.com"))
}

func TestIsAllowedFailsClosedOnLookupError(t *testing.T) {
	p := &fakeProvider{err: errors.New("store unreachable")}
	r := newTestResolver(p)
	assert.False(t, r.IsAllowed(context.Background(), "abc123", "https://example.com"))
	// One retry, then deny.
	assert.Equal(t, 2, p.calls)
}

func TestIsAllowedRejectsUnnormalizedInput(t *testing.T) {
	p := &fakeProvider{origins: map[string][]string{
		"abc123": {"https://example.com"},
	}}
	r := newTestResolver(p)
	ctx := context.Background()

	// Full URLs must be reduced to origins by the caller first.
	assert.False(t, r.IsAllowed(ctx, "abc123", "https://example.com/page"))
	assert.False(t, r.IsAllowed(ctx, "abc123", ""))
	assert.False(t, r.IsAllowed(ctx, "", "https://example.com"))
}
