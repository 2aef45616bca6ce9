// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	HTTPAddr  string // widget-service
	AdminAddr string // admin-api-service

	// Widget token signing secret. Verification fails closed without it,
	// so the widget service refuses to start when unset.
	WidgetSecret string

	// OIDC admin bearer validation (admin-api-service)
	OIDCIssuer   string
	OIDCAudience string
	JWKSURL      string

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string

	// Origin allow-list lookup bounds
	OriginLookupTimeout time.Duration
	OriginCacheTTL      time.Duration

	// Upstream AI services
	OpenAIAPIKey   string
	EmbeddingModel string
	GroqAPIKey     string
	ChatModel      string

	// WhatsApp Business API relay
	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string
	DefaultAccountID      string

	// R2 / S3-compatible object storage
	R2Endpoint   string
	R2AccessKey  string
	R2SecretKey  string
	R2Bucket     string
	R2PublicURL  string
	R2QuotaBytes int64
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:                   env("DAMMI_ENV", "dev"),
		HTTPAddr:              env("DAMMI_HTTP_ADDR", ":8080"),
		AdminAddr:             env("DAMMI_ADMIN_ADDR", ":8081"),
		WidgetSecret:          os.Getenv("WIDGET_SECRET"),
		OIDCIssuer:            env("OIDC_ISSUER", ""),
		OIDCAudience:          env("OIDC_AUDIENCE", "dammi-admin"),
		JWKSURL:               env("JWKS_URL", ""),
		RedisURL:              env("REDIS_URL", ""),
		DatabaseURL:           env("DATABASE_URL", ""),
		OriginLookupTimeout:   envDur("ORIGIN_LOOKUP_TIMEOUT_SEC", 2) * time.Second,
		OriginCacheTTL:        envDur("ORIGIN_CACHE_TTL_SEC", 30) * time.Second,
		OpenAIAPIKey:          env("OPENAI_API_KEY", ""),
		EmbeddingModel:        env("EMBEDDING_MODEL", "text-embedding-3-small"),
		GroqAPIKey:            env("GROQ_API_KEY", ""),
		ChatModel:             env("CHAT_MODEL", "llama3-8b-8192"),
		WhatsAppAccessToken:   env("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneNumberID: env("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppVerifyToken:   env("WHATSAPP_VERIFY_TOKEN", ""),
		DefaultAccountID:      env("DEFAULT_ACCOUNT_ID", ""),
		R2Endpoint:            env("R2_ENDPOINT", ""),
		R2AccessKey:           env("R2_ACCESS_KEY", ""),
		R2SecretKey:           env("R2_SECRET_KEY", ""),
		R2Bucket:              env("R2_BUCKET_NAME", ""),
		R2PublicURL:           env("R2_PUBLIC_URL", ""),
		R2QuotaBytes:          envInt64("R2_QUOTA_BYTES", 10<<30),
	}
	if cfg.DatabaseURL == "" {
		log.Println("[WARN] DATABASE_URL not set, using in-memory account provider for dev")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func envInt64(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}
func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i)
		}
		log.Printf("[WARN] %s=%q is not an integer, using default %d", k, v, def)
	}
	return time.Duration(def)
}
