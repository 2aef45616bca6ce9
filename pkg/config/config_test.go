package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvDurFallsBackOnBadValue(t *testing.T) {
	t.Setenv("ORIGIN_CACHE_TTL_SEC", "thirty")
	t.Setenv("ORIGIN_LOOKUP_TIMEOUT_SEC", "5")

	cfg := Load()
	// A malformed value must not silently disable the cache.
	assert.Equal(t, 30*time.Second, cfg.OriginCacheTTL)
	assert.Equal(t, 5*time.Second, cfg.OriginLookupTimeout)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("DAMMI_TEST_STR", "")
	assert.Equal(t, "fallback", env("DAMMI_TEST_STR", "fallback"))

	t.Setenv("DAMMI_TEST_INT", "not-a-number")
	assert.Equal(t, int64(42), envInt64("DAMMI_TEST_INT", 42))

	t.Setenv("DAMMI_TEST_DUR", "7")
	assert.Equal(t, time.Duration(7), envDur("DAMMI_TEST_DUR", 2))
}
