package query

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dammi/internal/knowledge"
)

type fakeRetriever struct {
	results []knowledge.Result
	err     error
}

func (f *fakeRetriever) Search(ctx context.Context, accountID, query string, topK int) ([]knowledge.Result, error) {
	return f.results, f.err
}

type fakeGenerator struct {
	answer string
	err    error
}

func (f *fakeGenerator) GenerateAnswer(ctx context.Context, question, contextText string) (string, error) {
	return f.answer, f.err
}

func newHandler(r Retriever, g AnswerGenerator) *Handler {
	log := zap.NewNop().Sugar()
	return NewHandler(NewService(r, g, nil, log), log)
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQueryMissingFields(t *testing.T) {
	h := newHandler(&fakeRetriever{}, &fakeGenerator{})
	assert.Equal(t, http.StatusBadRequest, post(t, h, `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, `{"question":"hi"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, `{"account_id":"abc123"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, `not json`).Code)
}

func TestQueryNoRelevantChunks(t *testing.T) {
	h := newHandler(&fakeRetriever{}, &fakeGenerator{answer: "unused"})
	rec := post(t, h, `{"question":"when are you open?","account_id":"abc123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "don't have enough information")
	assert.Contains(t, rec.Body.String(), `"sources":[]`)
}

func TestQueryGeneratesAnswer(t *testing.T) {
	r := &fakeRetriever{results: []knowledge.Result{
		{SectionTitle: "HOURS", Content: "We open 9-5 weekdays.", Score: 0.91},
		{SectionTitle: "LOCATION", Content: strings.Repeat("long text ", 40), Score: 0.72},
	}}
	h := newHandler(r, &fakeGenerator{answer: "We are open 9 to 5 on weekdays."})
	rec := post(t, h, `{"question":"when are you open?","account_id":"abc123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "We are open 9 to 5 on weekdays.")
	assert.Contains(t, body, `"confidence":0.91`)
	// Long source texts are truncated for the response.
	assert.Contains(t, body, "...")
}

func TestQueryUpstreamFailure(t *testing.T) {
	h := newHandler(&fakeRetriever{err: errors.New("vector store down")}, &fakeGenerator{})
	rec := post(t, h, `{"question":"q","account_id":"abc123"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	h = newHandler(
		&fakeRetriever{results: []knowledge.Result{{Content: "c", Score: 0.5}}},
		&fakeGenerator{err: errors.New("llm down")},
	)
	rec = post(t, h, `{"question":"q","account_id":"abc123"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
