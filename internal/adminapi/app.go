package adminapi

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"go.uber.org/zap"

	"dammi/internal/assetstore"
	"dammi/internal/knowledge"
	"dammi/pkg/accounts"
	"dammi/pkg/config"
	"dammi/pkg/widgettoken"
)

// App is the admin-api application container.
// Handlers and middleware have methods on this type.
//
// Keep it lean: shared deps and config only.
// Request-scoped work should use context.
type App struct {
	log         *zap.SugaredLogger
	db          *pgxpool.Pool
	provider    accounts.Provider
	codec       *widgettoken.Codec
	assets      *assetstore.Store
	know        *knowledge.Store
	adminJWKS   jwk.Set
	adminIssuer string
	adminAud    string
}

// New constructs App and performs one-time startup tasks (schema, seeds).
func New(log *zap.SugaredLogger, db *pgxpool.Pool, provider accounts.Provider, codec *widgettoken.Codec, assets *assetstore.Store, know *knowledge.Store, cfg config.Config) *App {
	app := &App{
		log:         log,
		db:          db,
		provider:    provider,
		codec:       codec,
		assets:      assets,
		know:        know,
		adminIssuer: cfg.OIDCIssuer,
		adminAud:    cfg.OIDCAudience,
	}
	if cfg.JWKSURL != "" {
		app.adminJWKS = mustJWKS(cfg.JWKSURL)
	}

	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := accounts.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		if err := accounts.SeedFromEnv(ctx, db, os.Getenv("ACCOUNT_SEED_JSON")); err != nil {
			log.Warnf("account seed failed: %v", err)
		}
	}
	return app
}
