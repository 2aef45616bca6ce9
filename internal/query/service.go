// internal/query/service.go
package query

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"dammi/internal/knowledge"
)

const noInfoAnswer = "I don't have enough information to answer that question. Please make sure your documents have been uploaded and processed."

// Retriever finds relevant content chunks for an account.
type Retriever interface {
	Search(ctx context.Context, accountID, query string, topK int) ([]knowledge.Result, error)
}

// AnswerGenerator produces an answer grounded in retrieved context.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question, contextText string) (string, error)
}

type Source struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type Answer struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	Confidence float64  `json:"confidence"`
	AccountID  string   `json:"account_id"`
}

type Service struct {
	retriever Retriever
	generator AnswerGenerator
	pool      *pgxpool.Pool
	log       *zap.SugaredLogger
}

func NewService(retriever Retriever, generator AnswerGenerator, pool *pgxpool.Pool, log *zap.SugaredLogger) *Service {
	return &Service{retriever: retriever, generator: generator, pool: pool, log: log}
}

// Answer runs the retrieve-then-generate pipeline for one question.
func (s *Service) Answer(ctx context.Context, accountID, question string, topK int, channel string) (Answer, error) {
	start := time.Now()
	status := http.StatusOK
	defer func() { s.recordEvent(ctx, accountID, channel, len(question), status, time.Since(start)) }()

	chunks, err := s.retriever.Search(ctx, accountID, question, topK)
	if err != nil {
		status = http.StatusBadGateway
		return Answer{}, fmt.Errorf("retrieval: %w", err)
	}
	if len(chunks) == 0 {
		return Answer{Answer: noInfoAnswer, Sources: []Source{}, AccountID: accountID}, nil
	}

	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Context %d:\n%s", i+1, c.Content)
	}
	answer, err := s.generator.GenerateAnswer(ctx, question, b.String())
	if err != nil {
		status = http.StatusBadGateway
		return Answer{}, fmt.Errorf("generation: %w", err)
	}

	out := Answer{Answer: answer, AccountID: accountID, Confidence: chunks[0].Score}
	for _, c := range chunks {
		text := c.Content
		if len(text) > 200 {
			text = text[:200] + "..."
		}
		out.Sources = append(out.Sources, Source{Text: text, Score: c.Score})
	}
	return out, nil
}

func (s *Service) recordEvent(ctx context.Context, accountID, channel string, questionChars, status int, dur time.Duration) {
	if s.pool == nil || accountID == "" {
		return
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO query_events(account_id, channel, question_chars, status_code, duration_ms)
		VALUES ($1,$2,$3,$4,$5)`,
		accountID, channel, questionChars, status, dur.Milliseconds())
	if err != nil {
		s.log.Debugw("query event insert failed", "err", err)
	}
}
