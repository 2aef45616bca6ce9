// pkg/accounts/memory.go
package accounts

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type memProvider struct {
	log *zap.SugaredLogger

	mu      sync.RWMutex
	byID    map[string]Account
	origins map[string][]string
	assets  map[string][]Asset
}

// NewMemoryProviderFromEnv builds an in-memory provider for local bring-up
// without Postgres, seeded from ACCOUNT_SEED_JSON.
func NewMemoryProviderFromEnv(log *zap.SugaredLogger) Provider {
	p := &memProvider{log: log, byID: map[string]Account{}, origins: map[string][]string{}, assets: map[string][]Asset{}}
	seed := os.Getenv("ACCOUNT_SEED_JSON")
	if seed != "" {
		var entries []struct {
			ID      string   `json:"id"`
			Name    string   `json:"name"`
			Origins []string `json:"origins"`
		}
		_ = json.Unmarshal([]byte(seed), &entries)
		for _, e := range entries {
			p.byID[e.ID] = Account{ID: e.ID, Name: e.Name, CreatedAt: time.Now()}
			p.origins[e.ID] = append([]string(nil), e.Origins...)
		}
	} else {
		// sensible localhost default for dev
		p.byID["abc123"] = Account{ID: "abc123", Name: "dev", CreatedAt: time.Now()}
		p.origins["abc123"] = []string{"http://localhost:3000"}
	}
	return p
}

func (m *memProvider) ResolveAccountByID(ctx context.Context, id string) (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.byID[id]; ok {
		return a, nil
	}
	return Account{}, ErrNotFound
}

func (m *memProvider) ListWidgetOrigins(ctx context.Context, accountID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.origins[accountID]...), nil
}

func (m *memProvider) AddWidgetOrigin(ctx context.Context, accountID, origin string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.origins[accountID] {
		if o == origin {
			return nil
		}
	}
	m.origins[accountID] = append(m.origins[accountID], origin)
	sort.Strings(m.origins[accountID])
	return nil
}

func (m *memProvider) RemoveWidgetOrigin(ctx context.Context, accountID, origin string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.origins[accountID][:0]
	for _, o := range m.origins[accountID] {
		if o != origin {
			kept = append(kept, o)
		}
	}
	m.origins[accountID] = kept
	return nil
}

func (m *memProvider) ListImageAssets(ctx context.Context, accountID string) ([]Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Asset(nil), m.assets[accountID]...), nil
}
