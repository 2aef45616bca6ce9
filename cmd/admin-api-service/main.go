// cmd/admin-api-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dammi/internal/adminapi"
	"dammi/internal/assetstore"
	"dammi/internal/knowledge"
	"dammi/internal/llm"
	"dammi/pkg/accounts"
	"dammi/pkg/config"
	"dammi/pkg/db"
	"dammi/pkg/logger"
	"dammi/pkg/widgettoken"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	codec, err := widgettoken.New(cfg.WidgetSecret)
	if err != nil {
		log.Fatalw("widget secret", "err", err)
	}

	pool := db.MustConnect(cfg, log)

	var prov accounts.Provider
	if pool != nil {
		prov = accounts.NewPostgresProvider(pool, log)
	} else {
		prov = accounts.NewMemoryProviderFromEnv(log)
	}

	var know *knowledge.Store
	if pool != nil {
		know = knowledge.NewStore(pool, llm.NewEmbeddingClient(cfg.OpenAIAPIKey, cfg.EmbeddingModel), log)
	}
	store := assetstore.New(cfg)
	if store == nil {
		log.Warnw("R2 not configured; asset routes disabled")
	}

	app := adminapi.New(log, pool, prov, codec, store, know, cfg)

	srv := &http.Server{Addr: cfg.AdminAddr, Handler: app.Handler()}
	go func() {
		log.Infow("admin-api-service listening", "addr", cfg.AdminAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("admin-api-service stopped")
}
