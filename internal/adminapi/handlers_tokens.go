package adminapi

import "net/http"

// postWidgetToken mints the embed token for the authenticated account. The
// dashboard shows it inside the copy-paste snippet.
func (a *App) postWidgetToken(w http.ResponseWriter, r *http.Request) {
	accountID := AccountIDFrom(r.Context())
	token, err := a.codec.Issue(accountID)
	if err != nil {
		a.log.Errorw("widget token issue", "account_id", accountID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
