package adminapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dammi/pkg/accounts"
	"dammi/pkg/config"
	"dammi/pkg/widgettoken"
)

func newTestApp(t *testing.T) (*App, *widgettoken.Codec) {
	t.Helper()
	log := zap.NewNop().Sugar()
	codec, err := widgettoken.New("topsecret")
	require.NoError(t, err)
	provider := accounts.NewMemoryProviderFromEnv(log)
	return New(log, nil, provider, codec, nil, nil, config.Config{}), codec
}

func do(h http.Handler, method, target, accountID, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if accountID != "" {
		r.Header.Set("X-Account-ID", accountID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestDevAuthRequiresKnownAccount(t *testing.T) {
	app, _ := newTestApp(t)
	h := app.Handler()

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/admin/widget-token", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/admin/widget-token", "no-such-account", "").Code)
}

func TestWidgetTokenRoundTripsThroughCodec(t *testing.T) {
	app, codec := newTestApp(t)
	h := app.Handler()

	rec := do(h, http.MethodPost, "/admin/widget-token", "abc123", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	// The minted token verifies back to the authenticated account.
	accountID, err := codec.Verify(out.Token)
	require.NoError(t, err)
	assert.Equal(t, "abc123", accountID)
}

func TestWidgetDomainCRUD(t *testing.T) {
	app, _ := newTestApp(t)
	h := app.Handler()

	rec := do(h, http.MethodPost, "/admin/widget-domains", "abc123", `{"origin":"https://Example.com/some/path"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	// Stored normalized: origin only, lowercased.
	assert.Contains(t, rec.Body.String(), `"https://example.com"`)

	rec = do(h, http.MethodGet, "/admin/widget-domains", "abc123", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"https://example.com"`)

	rec = do(h, http.MethodDelete, "/admin/widget-domains?origin=https%3A%2F%2Fexample.com", "abc123", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/admin/widget-domains", "abc123", "")
	assert.NotContains(t, rec.Body.String(), `"https://example.com"`)
}

func TestRemoveWidgetDomainNormalizes(t *testing.T) {
	app, _ := newTestApp(t)
	h := app.Handler()

	rec := do(h, http.MethodPost, "/admin/widget-domains", "abc123", `{"origin":"https://example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Deleting with an unnormalized variant removes the stored row.
	rec = do(h, http.MethodDelete, "/admin/widget-domains?origin=https%3A%2F%2FExample.com%2Fsome%2Fpath", "abc123", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/admin/widget-domains", "abc123", "")
	assert.NotContains(t, rec.Body.String(), `"https://example.com"`)

	rec = do(h, http.MethodDelete, "/admin/widget-domains?origin=not%20a%20url", "abc123", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddWidgetDomainRejectsBadOrigin(t *testing.T) {
	app, _ := newTestApp(t)
	h := app.Handler()

	for _, body := range []string{`{}`, `{"origin":"not a url"}`, `{"origin":"ftp://example.com"}`} {
		rec := do(h, http.MethodPost, "/admin/widget-domains", "abc123", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestAssetRoutesWithoutStorage(t *testing.T) {
	app, _ := newTestApp(t)
	h := app.Handler()

	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodGet, "/admin/assets", "abc123", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodPost, "/admin/assets/sign", "abc123", `{"filename":"a.png","content_type":"image/png"}`).Code)
}

func TestSplitSections(t *testing.T) {
	assert.Empty(t, SplitSections(""))
	assert.Equal(t, []string{"one paragraph"}, SplitSections("one paragraph"))

	long := strings.Repeat("word ", 150) // ~750 chars
	sections := SplitSections(long + "\n\n" + long + "\n\n" + long)
	require.Len(t, sections, 3)

	merged := SplitSections("short one\n\nshort two")
	require.Len(t, merged, 1)
	assert.Contains(t, merged[0], "short one")
	assert.Contains(t, merged[0], "short two")
}
