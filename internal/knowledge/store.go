// Package knowledge stores and searches an account's embedded content.
// Vectors live in PostgreSQL (pgvector); embeddings come from the injected
// Embedder.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when the store was built without a database,
// which happens in memory-provider dev mode.
var ErrNotConfigured = errors.New("knowledge: store not configured")

// Embedder turns text into a vector. Defined here, by the consumer, so the
// store can be tested without any upstream API.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Chunk is one embeddable section of an account's content.
type Chunk struct {
	AccountID    string
	SectionTitle string
	Content      string
}

// Result is a retrieved chunk with its similarity score (0..1, higher is
// more similar).
type Result struct {
	SectionTitle string
	Content      string
	Score        float64
}

type Store struct {
	pool     *pgxpool.Pool
	embedder Embedder
	log      *zap.SugaredLogger
}

func NewStore(pool *pgxpool.Pool, embedder Embedder, log *zap.SugaredLogger) *Store {
	return &Store{pool: pool, embedder: embedder, log: log}
}

// Upsert embeds the chunk and writes it, keyed by account + section so
// re-submitting a questionnaire overwrites the prior answer.
func (s *Store) Upsert(ctx context.Context, chunk Chunk) error {
	if s.pool == nil {
		return ErrNotConfigured
	}
	if strings.TrimSpace(chunk.Content) == "" {
		return nil
	}
	vec, err := s.embedder.Embed(ctx, chunk.Content)
	if err != nil {
		return fmt.Errorf("embed chunk: %w", err)
	}
	id := ChunkID(chunk.AccountID, chunk.SectionTitle)
	_, err = s.pool.Exec(ctx, `
		INSERT INTO knowledge_chunks(id, account_id, section_title, content, embedding, created_at)
		VALUES ($1,$2,$3,$4,$5::vector,NOW())
		ON CONFLICT (id) DO UPDATE SET section_title=EXCLUDED.section_title, content=EXCLUDED.content, embedding=EXCLUDED.embedding`,
		id, chunk.AccountID, chunk.SectionTitle, chunk.Content, pgvector.NewVector(vec).String())
	if err != nil {
		return fmt.Errorf("upsert chunk %q: %w", id, err)
	}
	s.log.Debugw("chunk upserted", "id", id, "content_len", len(chunk.Content))
	return nil
}

// Search embeds the query and returns the topK most similar chunks for the
// account. Vector search is bounded by a 10s timeout.
func (s *Store) Search(ctx context.Context, accountID, query string, topK int) ([]Result, error) {
	if s.pool == nil {
		return nil, ErrNotConfigured
	}
	if topK <= 0 {
		topK = 3
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(section_title,''), content, 1 - (embedding <=> $1::vector) AS score
		FROM knowledge_chunks
		WHERE account_id=$2 AND embedding IS NOT NULL
		ORDER BY embedding <=> $1::vector
		LIMIT $3`,
		pgvector.NewVector(vec).String(), accountID, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.SectionTitle, &r.Content, &r.Score); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

var nonSlug = regexp.MustCompile(`\s+`)

// ChunkID builds the stable id "<accountID>-<section>" the original data
// used, lowercased with whitespace collapsed to dashes.
func ChunkID(accountID, sectionTitle string) string {
	return strings.ToLower(nonSlug.ReplaceAllString(strings.TrimSpace(accountID+"-"+sectionTitle), "-"))
}

// SanitizeText normalizes questionnaire text before embedding. The rupee
// sign confuses downstream tokenizers, so it becomes "INR".
func SanitizeText(text string) string {
	return strings.ReplaceAll(text, "₹", "INR")
}

// SectionTitle turns a questionnaire field key into its display title.
func SectionTitle(key string) string {
	if key == "additional_info" {
		return "ADDITIONAL INFORMATION"
	}
	return strings.ToUpper(strings.ReplaceAll(key, "_", " "))
}
