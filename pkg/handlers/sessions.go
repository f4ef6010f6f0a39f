package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tably-ai/tably-engine/pkg/models"
	"github.com/tably-ai/tably-engine/pkg/services"
)

// SessionHandler exposes the engine's three boundary operations:
// initialize a session, run a query turn, and sweep expired sessions.
type SessionHandler struct {
	chat   services.ChatService
	logger *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(chat services.ChatService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{chat: chat, logger: logger.Named("sessions")}
}

// RegisterRoutes registers the session routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.Initialize)
	mux.HandleFunc("POST /api/sessions/query", h.Query)
	mux.HandleFunc("POST /api/sessions/sweep", h.Sweep)
}

// Initialize handles POST /api/sessions: create a session from a dataset.
func (h *SessionHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req models.SessionInitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}

	resp, err := h.chat.InitializeSession(r.Context(), req.Name, req.Rows, req.Columns)
	if err != nil {
		h.logger.Debug("Session initialization rejected", zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode init response", zap.Error(err))
	}
}

// Query handles POST /api/sessions/query: one conversational turn.
func (h *SessionHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}

	resp, err := h.chat.Query(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.logger.Debug("Query turn failed",
			zap.String("session_id", req.SessionID),
			zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode query response", zap.Error(err))
	}
}

// Sweep handles POST /api/sessions/sweep: best-effort maintenance.
func (h *SessionHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	removed := h.chat.Sweep()
	if err := WriteJSON(w, http.StatusOK, map[string]int{"removed": removed}); err != nil {
		h.logger.Error("Failed to encode sweep response", zap.Error(err))
	}
}
