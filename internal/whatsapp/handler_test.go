package whatsapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dammi/internal/query"
)

type fakeAnswerer struct {
	questions []string
	answer    string
}

func (f *fakeAnswerer) Answer(ctx context.Context, accountID, question string, topK int, channel string) (query.Answer, error) {
	f.questions = append(f.questions, question)
	return query.Answer{Answer: f.answer, AccountID: accountID}, nil
}

type fakeSender struct {
	sent map[string]string
}

func (f *fakeSender) SendText(ctx context.Context, to, text string) error {
	if f.sent == nil {
		f.sent = map[string]string{}
	}
	f.sent[to] = text
	return nil
}

func newRouter(a Answerer, s Sender) *chi.Mux {
	h := NewHandler(a, s, "verify-me", "abc123", zap.NewNop().Sugar())
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func TestWebhookVerification(t *testing.T) {
	r := newRouter(&fakeAnswerer{}, &fakeSender{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whatsapp/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whatsapp/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whatsapp/webhook", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookRelaysTextMessages(t *testing.T) {
	answerer := &fakeAnswerer{answer: "We open at 9am."}
	sender := &fakeSender{}
	r := newRouter(answerer, sender)

	payload := `{
	  "object": "whatsapp_business_account",
	  "entry": [{"changes": [{"field": "messages", "value": {"messages": [
	    {"from": "15551234567", "type": "text", "text": {"body": "when do you open?"}},
	    {"from": "15557654321", "type": "image"}
	  ]}}]}]
	}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/whatsapp/webhook", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EVENT_RECEIVED", rec.Body.String())
	// Only the text message reaches the pipeline.
	assert.Equal(t, []string{"when do you open?"}, answerer.questions)
	assert.Equal(t, "We open at 9am.", sender.sent["15551234567"])
	_, replied := sender.sent["15557654321"]
	assert.False(t, replied)
}

func TestWebhookIgnoresOtherObjects(t *testing.T) {
	answerer := &fakeAnswerer{}
	r := newRouter(answerer, &fakeSender{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/whatsapp/webhook", strings.NewReader(`{"object":"page"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, answerer.questions)
}
