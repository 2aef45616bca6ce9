// internal/widget/handler.go
package widget

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dammi/pkg/accounts"
	"dammi/pkg/origins"
	"dammi/pkg/widgettoken"
)

// Handler serves the embeddable scripts. Every request is checked
// statelessly: token proves the account, then the requesting origin must be
// on the account's allow-list. Nothing is kept between requests.
type Handler struct {
	codec    *widgettoken.Codec
	resolver *origins.Resolver
	provider accounts.Provider
	log      *zap.SugaredLogger
}

func NewHandler(codec *widgettoken.Codec, resolver *origins.Resolver, provider accounts.Provider, log *zap.SugaredLogger) *Handler {
	return &Handler{codec: codec, resolver: resolver, provider: provider, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/widget.js", h.serveWidget)
	r.Get("/widget/gallery.js", h.serveGallery)
}

// authorize runs the shared decision procedure for script endpoints:
// token present -> token valid -> origin known -> origin allowed.
// On failure it writes the terminal response and returns ok=false.
// The three reject paths use distinct status codes (400/401/403) so embed
// scripts and tests can branch on cause, but a 401 never says which
// verification step failed.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, endpoint string) (accountID string, ok bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		requestOutcomes.WithLabelValues(endpoint, outcomeMissingToken).Inc()
		http.Error(w, "missing token", http.StatusBadRequest)
		return "", false
	}

	accountID, err := h.codec.Verify(token)
	if err != nil {
		requestOutcomes.WithLabelValues(endpoint, outcomeInvalidToken).Inc()
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return "", false
	}

	origin, err := requestOrigin(r)
	if err != nil {
		requestOutcomes.WithLabelValues(endpoint, outcomeMissingOrigin).Inc()
		http.Error(w, "missing or unparseable origin", http.StatusBadRequest)
		return "", false
	}

	if !h.resolver.IsAllowed(r.Context(), accountID, origin) {
		requestOutcomes.WithLabelValues(endpoint, outcomeDenied).Inc()
		http.Error(w, "domain not allowed for this account", http.StatusForbidden)
		return "", false
	}
	return accountID, true
}

// requestOrigin extracts the requesting page's origin, preferring the
// Origin header and falling back to Referer.
func requestOrigin(r *http.Request) (string, error) {
	if o := r.Header.Get("Origin"); o != "" {
		return origins.Normalize(o)
	}
	return origins.Normalize(r.Header.Get("Referer"))
}

// baseURL derives this server's externally visible base URL from the
// incoming request so the generated script calls back to the right place
// in every environment.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (h *Handler) serveWidget(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.authorize(w, r, "widget")
	if !ok {
		return
	}
	script, err := renderChatScript(accountID, baseURL(r))
	if err != nil {
		h.log.Errorw("widget script render", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	requestOutcomes.WithLabelValues("widget", outcomeServed).Inc()
	w.Header().Set("Content-Type", "application/javascript")
	_, _ = w.Write(script)
}

func (h *Handler) serveGallery(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.authorize(w, r, "gallery")
	if !ok {
		return
	}
	assets, err := h.provider.ListImageAssets(r.Context(), accountID)
	if err != nil {
		h.log.Errorw("gallery asset lookup", "account_id", accountID, "err", err)
		http.Error(w, "error fetching images", http.StatusInternalServerError)
		return
	}
	script, err := renderGalleryScript(assets)
	if err != nil {
		h.log.Errorw("gallery script render", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	requestOutcomes.WithLabelValues("gallery", outcomeServed).Inc()
	w.Header().Set("Content-Type", "application/javascript")
	_, _ = w.Write(script)
}
