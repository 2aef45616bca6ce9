package adminapi

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handler builds the HTTP handler with routes and middleware.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Logger, chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	allowed := []string{"http://localhost:3001"}
	if v := strings.TrimSpace(os.Getenv("ADMIN_CORS_ORIGINS")); v != "" {
		parts := strings.Split(v, ",")
		tmp := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				tmp = append(tmp, s)
			}
		}
		if len(tmp) > 0 {
			allowed = tmp
		}
	}

	r.Route("/admin", func(ar chi.Router) {
		ar.Use(cors(allowed))
		ar.Use(a.adminAuth)
		ar.Post("/widget-token", a.postWidgetToken)
		ar.Get("/widget-domains", a.listWidgetDomains)
		ar.Post("/widget-domains", a.addWidgetDomain)
		ar.Delete("/widget-domains", a.removeWidgetDomain)
		ar.Get("/assets", a.listAssets)
		ar.Delete("/assets", a.deleteAsset)
		ar.Put("/assets", a.renameAsset)
		ar.Post("/assets/sign", a.signAssetUpload)
		ar.Post("/questionnaire", a.postQuestionnaire)
		ar.Post("/uploads", a.postUpload)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
