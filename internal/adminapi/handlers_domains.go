package adminapi

import (
	"encoding/json"
	"net/http"

	"dammi/pkg/origins"
)

// listWidgetDomains returns the origins allowed to embed this account's
// widget.
func (a *App) listWidgetDomains(w http.ResponseWriter, r *http.Request) {
	accountID := AccountIDFrom(r.Context())
	list, err := a.provider.ListWidgetOrigins(r.Context(), accountID)
	if err != nil {
		a.log.Errorw("list widget domains", "account_id", accountID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list domains")
		return
	}
	if list == nil {
		list = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"origins": list})
}

// addWidgetDomain registers a new allowed origin. The input is normalized
// to scheme://host[:port] before persisting so the serving-time exact-match
// check sees canonical values.
func (a *App) addWidgetDomain(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Origin string `json:"origin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Origin == "" {
		writeError(w, http.StatusBadRequest, "missing origin")
		return
	}
	origin, err := origins.Normalize(body.Origin)
	if err != nil {
		writeError(w, http.StatusBadRequest, "origin must be a valid http(s) URL")
		return
	}
	accountID := AccountIDFrom(r.Context())
	if err := a.provider.AddWidgetOrigin(r.Context(), accountID, origin); err != nil {
		a.log.Errorw("add widget domain", "account_id", accountID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to add domain")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"origin": origin})
}

// removeWidgetDomain normalizes the same way the add path does, so a
// "https://Example.com/" request removes the stored "https://example.com".
func (a *App) removeWidgetDomain(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("origin")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing origin")
		return
	}
	origin, err := origins.Normalize(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "origin must be a valid http(s) URL")
		return
	}
	accountID := AccountIDFrom(r.Context())
	if err := a.provider.RemoveWidgetOrigin(r.Context(), accountID, origin); err != nil {
		a.log.Errorw("remove widget domain", "account_id", accountID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to remove domain")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}
