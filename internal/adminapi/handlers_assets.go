package adminapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"dammi/internal/assetstore"
)

// listAssets returns stored objects plus storage usage for the dashboard.
func (a *App) listAssets(w http.ResponseWriter, r *http.Request) {
	if a.assets == nil {
		writeError(w, http.StatusServiceUnavailable, "asset storage not configured")
		return
	}
	objects, usage, err := a.assets.List(r.Context())
	if err != nil {
		a.log.Errorw("list assets", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}
	if objects == nil {
		objects = []assetstore.Object{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": objects, "storage": usage})
}

func (a *App) deleteAsset(w http.ResponseWriter, r *http.Request) {
	if a.assets == nil {
		writeError(w, http.StatusServiceUnavailable, "asset storage not configured")
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing asset key")
		return
	}
	if err := a.assets.Delete(r.Context(), key); err != nil {
		a.log.Errorw("delete asset", "key", key, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to delete asset")
		return
	}
	if a.db != nil {
		_, _ = a.db.Exec(r.Context(), `DELETE FROM assets WHERE account_id=$1 AND key=$2`, AccountIDFrom(r.Context()), key)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (a *App) renameAsset(w http.ResponseWriter, r *http.Request) {
	if a.assets == nil {
		writeError(w, http.StatusServiceUnavailable, "asset storage not configured")
		return
	}
	var body struct {
		OldKey string `json:"old_key"`
		NewKey string `json:"new_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.OldKey == "" || body.NewKey == "" {
		writeError(w, http.StatusBadRequest, "missing old_key or new_key")
		return
	}
	if err := a.assets.Rename(r.Context(), body.OldKey, body.NewKey); err != nil {
		a.log.Errorw("rename asset", "old", body.OldKey, "new", body.NewKey, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to rename asset")
		return
	}
	if a.db != nil {
		_, _ = a.db.Exec(r.Context(), `UPDATE assets SET key=$1, url=$2 WHERE account_id=$3 AND key=$4`,
			body.NewKey, a.assets.PublicURL(body.NewKey), AccountIDFrom(r.Context()), body.OldKey)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// signAssetUpload hands the browser a one-minute presigned PUT URL so file
// bodies never pass through this service. The metadata row is written up
// front; size stays zero until a later listing reconciles it.
func (a *App) signAssetUpload(w http.ResponseWriter, r *http.Request) {
	if a.assets == nil {
		writeError(w, http.StatusServiceUnavailable, "asset storage not configured")
		return
	}
	var body struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Filename == "" || body.ContentType == "" {
		writeError(w, http.StatusBadRequest, "missing filename or content_type")
		return
	}
	accountID := AccountIDFrom(r.Context())
	key := accountID + "/" + body.Filename
	uploadURL, publicURL, err := a.assets.PresignPut(r.Context(), key, body.ContentType)
	if err != nil {
		a.log.Errorw("presign upload", "key", key, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to sign upload")
		return
	}
	if a.db != nil {
		_, err := a.db.Exec(r.Context(), `
			INSERT INTO assets(id, account_id, key, url, name, content_type)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (account_id, key) DO UPDATE SET url=EXCLUDED.url, content_type=EXCLUDED.content_type, uploaded_at=NOW()`,
			uuid.NewString(), accountID, key, publicURL, body.Filename, body.ContentType)
		if err != nil {
			a.log.Warnw("asset metadata insert failed", "key", key, "err", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": uploadURL, "public_url": publicURL})
}
