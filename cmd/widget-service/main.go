// cmd/widget-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dammi/internal/knowledge"
	"dammi/internal/llm"
	"dammi/internal/query"
	"dammi/internal/whatsapp"
	"dammi/internal/widget"
	"dammi/pkg/accounts"
	"dammi/pkg/config"
	"dammi/pkg/db"
	"dammi/pkg/logger"
	"dammi/pkg/middleware"
	"dammi/pkg/origins"
	"dammi/pkg/widgettoken"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	// No secret means no verifiable tokens; refuse to start rather than
	// serve a widget endpoint that rejects everything.
	codec, err := widgettoken.New(cfg.WidgetSecret)
	if err != nil {
		log.Fatalw("widget secret", "err", err)
	}

	pool := db.MustConnect(cfg, log)
	rdb := db.MustRedis(cfg, log)

	var prov accounts.Provider
	if pool != nil {
		prov = accounts.NewPostgresProvider(pool, log)
		if err := accounts.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
		if err := accounts.SeedFromEnv(context.Background(), pool, os.Getenv("ACCOUNT_SEED_JSON")); err != nil {
			log.Warnw("seed", "err", err)
		}
	} else {
		prov = accounts.NewMemoryProviderFromEnv(log)
	}

	resolver := origins.NewResolver(prov, rdb, log, cfg.OriginLookupTimeout, cfg.OriginCacheTTL)
	widgetHandler := widget.NewHandler(codec, resolver, prov, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(log))
	r.Use(middleware.PublicCORS())
	r.Use(middleware.Tracing(cfg))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	widgetHandler.Routes(r)
	if pool != nil {
		embedder := llm.NewEmbeddingClient(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		chat := llm.NewChatClient(cfg.GroqAPIKey, cfg.ChatModel)
		know := knowledge.NewStore(pool, embedder, log)
		querySvc := query.NewService(know, chat, pool, log)
		queryHandler := query.NewHandler(querySvc, log)
		r.Post("/query", queryHandler.ServeHTTP)

		waClient := whatsapp.NewClient(cfg.WhatsAppAccessToken, cfg.WhatsAppPhoneNumberID)
		waHandler := whatsapp.NewHandler(querySvc, waClient, cfg.WhatsAppVerifyToken, cfg.DefaultAccountID, log)
		waHandler.Routes(r)
	} else {
		// The query pipeline needs the vector store; without a database the
		// widget script still serves but questions get an explicit 503.
		log.Warnw("no database; query and whatsapp endpoints disabled")
		r.Post("/query", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "query pipeline not configured", http.StatusServiceUnavailable)
		})
	}
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Infow("widget-service listening", "addr", cfg.HTTPAddr)
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
	fmt.Println("widget-service stopped")
}
