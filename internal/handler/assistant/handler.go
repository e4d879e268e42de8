package assistant

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	assistantservice "github.com/Subhajitincareer/sahayata-kiran-india/internal/service/assistant"
	"github.com/Subhajitincareer/sahayata-kiran-india/pkg/utils"
)

// Handler exposes the hosted supportive responder. The chat service's
// responder client points here when no external endpoint is configured.
type Handler struct {
	assistantSvc *assistantservice.Service
}

// New creates the assistant handler.
func New(assistantSvc *assistantservice.Service) *Handler {
	return &Handler{assistantSvc: assistantSvc}
}

// RegisterRoutes registers the assistant routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/assistant/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req assistantservice.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	resp := h.assistantSvc.Chat(r.Context(), req)
	utils.RespondJSON(w, http.StatusOK, resp)
}
