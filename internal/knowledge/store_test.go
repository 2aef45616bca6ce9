package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type staticEmbedder struct{}

func (staticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func TestStoreWithoutDatabase(t *testing.T) {
	// Memory-provider dev mode builds the store with no pool; calls must
	// return a typed error, not dereference the nil pool.
	s := NewStore(nil, staticEmbedder{}, zap.NewNop().Sugar())

	_, err := s.Search(context.Background(), "abc123", "when are you open?", 3)
	assert.ErrorIs(t, err, ErrNotConfigured)

	err = s.Upsert(context.Background(), Chunk{AccountID: "abc123", SectionTitle: "HOURS", Content: "9-5"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "abc123-business-hours", ChunkID("abc123", "BUSINESS HOURS"))
	assert.Equal(t, "abc123-pricing", ChunkID("abc123", "pricing"))
	assert.Equal(t, "acct-a-b", ChunkID("acct", "a  b"))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Plans from INR500", SanitizeText("Plans from ₹500"))
	assert.Equal(t, "no change", SanitizeText("no change"))
}

func TestSectionTitle(t *testing.T) {
	assert.Equal(t, "ADDITIONAL INFORMATION", SectionTitle("additional_info"))
	assert.Equal(t, "BUSINESS HOURS", SectionTitle("business_hours"))
	assert.Equal(t, "PRICING", SectionTitle("pricing"))
}
