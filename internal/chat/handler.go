package chat

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinicport/patient-portal/pkg/logging"
)

var validSenders = map[string]bool{
	"user":      true,
	"assistant": true,
	"doctor":    true,
}

// Handler serves the chat transcript endpoints.
type Handler struct {
	store  Store
	logger *logging.Logger
}

func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

type AddMessageRequest struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

type MessageResponse struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.store.ListMessages(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("list chat messages failed", "session_id", sessionID, "error", err)
		writeChatError(w, http.StatusInternalServerError, "could not load messages")
		return
	}

	resp := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, toMessageResponse(m))
	}

	writeChatJSON(w, http.StatusOK, resp)
}

func (h *Handler) AddMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req AddMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeChatError(w, http.StatusBadRequest, "could not parse JSON")
		return
	}

	req.Sender = strings.TrimSpace(req.Sender)
	if !validSenders[req.Sender] {
		writeChatError(w, http.StatusBadRequest, "sender must be user, assistant or doctor")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeChatError(w, http.StatusBadRequest, "message is required")
		return
	}

	msg, err := h.store.AddMessage(r.Context(), sessionID, req.Sender, req.Message)
	if err != nil {
		h.logger.Error("add chat message failed", "session_id", sessionID, "error", err)
		writeChatError(w, http.StatusInternalServerError, "could not store message")
		return
	}

	writeChatJSON(w, http.StatusCreated, toMessageResponse(*msg))
}

func toMessageResponse(m Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		SessionID: m.SessionID,
		Sender:    m.Sender,
		Message:   m.Body,
		Timestamp: m.CreatedAt,
	}
}

func writeChatJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeChatError(w http.ResponseWriter, status int, msg string) {
	writeChatJSON(w, status, map[string]string{"error": msg})
}
