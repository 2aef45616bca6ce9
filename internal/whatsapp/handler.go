// internal/whatsapp/handler.go
package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dammi/internal/query"
)

// Answerer runs the RAG pipeline for a relayed message.
type Answerer interface {
	Answer(ctx context.Context, accountID, question string, topK int, channel string) (query.Answer, error)
}

// Sender delivers a reply to a WhatsApp number.
type Sender interface {
	SendText(ctx context.Context, to, text string) error
}

// Handler relays WhatsApp Business webhook messages through the query
// pipeline. Incoming numbers map to the configured default account; the
// platform retries on non-200, so message-level failures are logged and
// acknowledged rather than surfaced.
type Handler struct {
	answerer         Answerer
	sender           Sender
	verifyToken      string
	defaultAccountID string
	log              *zap.SugaredLogger
}

func NewHandler(answerer Answerer, sender Sender, verifyToken, defaultAccountID string, log *zap.SugaredLogger) *Handler {
	return &Handler{answerer: answerer, sender: sender, verifyToken: verifyToken, defaultAccountID: defaultAccountID, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/whatsapp/webhook", h.verify)
	r.Post("/whatsapp/webhook", h.receive)
}

// verify answers the platform's subscription handshake.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "" || token == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if mode != "subscribe" || token != h.verifyToken {
		http.Error(w, "verification failed", http.StatusForbidden)
		return
	}
	_, _ = w.Write([]byte(challenge))
}

type webhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Messages []message `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type message struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text"`
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&payload); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if payload.Object == "whatsapp_business_account" {
		for _, entry := range payload.Entry {
			for _, change := range entry.Changes {
				if change.Field != "messages" {
					continue
				}
				for _, msg := range change.Value.Messages {
					h.handleMessage(r.Context(), msg)
				}
			}
		}
	}
	_, _ = w.Write([]byte("EVENT_RECEIVED"))
}

func (h *Handler) handleMessage(ctx context.Context, msg message) {
	if msg.Text == nil || msg.Text.Body == "" {
		h.log.Debugw("non-text whatsapp message, skipping", "from", msg.From, "type", msg.Type)
		return
	}
	ans, err := h.answerer.Answer(ctx, h.defaultAccountID, msg.Text.Body, 3, "whatsapp")
	if err != nil {
		h.log.Errorw("whatsapp answer failed", "from", msg.From, "err", err)
		return
	}
	if err := h.sender.SendText(ctx, msg.From, ans.Answer); err != nil {
		h.log.Errorw("whatsapp reply failed", "from", msg.From, "err", err)
	}
}
