// internal/query/handler.go
package query

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
	log *zap.SugaredLogger
}

func NewHandler(svc *Service, log *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

type request struct {
	Question  string `json:"question"`
	AccountID string `json:"account_id"`
	TopK      int    `json:"top_k"`
}

// ServeHTTP handles POST /query: visitor questions from the embedded widget.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" || req.AccountID == "" {
		writeJSONError(w, http.StatusBadRequest, "missing required fields: question and account_id")
		return
	}
	if req.TopK <= 0 || req.TopK > 10 {
		req.TopK = 3
	}

	ans, err := h.svc.Answer(r.Context(), req.AccountID, req.Question, req.TopK, "widget")
	if err != nil {
		h.log.Errorw("query failed", "account_id", req.AccountID, "err", err)
		writeJSONError(w, http.StatusBadGateway, "failed to process query")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ans)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
