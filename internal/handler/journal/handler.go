package journal

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Subhajitincareer/sahayata-kiran-india/internal/i18n"
	journalservice "github.com/Subhajitincareer/sahayata-kiran-india/internal/service/journal"
	"github.com/Subhajitincareer/sahayata-kiran-india/pkg/utils"
)

// Handler exposes journal draft checks, daily saves and the counselor alert
// feed over HTTP.
type Handler struct {
	journalSvc  *journalservice.Service
	defaultLang i18n.Language
}

// New creates the journal handler.
func New(journalSvc *journalservice.Service, defaultLang i18n.Language) *Handler {
	return &Handler{journalSvc: journalSvc, defaultLang: defaultLang}
}

// RegisterRoutes registers the journal routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/journal/check", h.handleCheck)
	r.Put("/journal/entry", h.handleSave)
	r.Get("/journal/entry/today", h.handleToday)
	r.Get("/journal/alerts", h.handleAlerts)
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	detection, actions, message := h.journalSvc.CheckDraft(payload.Text, h.language(payload.Language))

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"detection": detection,
		"actions":   actions,
		"message":   message,
	})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID  string `json:"userId"`
		Date    string `json:"date"`
		Mood    string `json:"mood"`
		Journal string `json:"journal"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.journalSvc.Save(r.Context(), journalservice.SaveParams{
		UserID:  payload.UserID,
		Date:    payload.Date,
		Mood:    payload.Mood,
		Journal: payload.Journal,
	})
	if err != nil {
		if errors.Is(err, journalservice.ErrUserIDRequired) || errors.Is(err, journalservice.ErrMoodRequired) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "save failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	entry, err := h.journalSvc.Today(r.Context(), userID)
	if err != nil {
		if errors.Is(err, journalservice.ErrEntryNotFound) {
			utils.RespondError(w, http.StatusNotFound, "no entry for today")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	entries, err := h.journalSvc.CrisisEntries(r.Context(), limit)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "listing failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) language(raw string) i18n.Language {
	if raw == "" {
		return h.defaultLang
	}
	return i18n.Language(raw)
}
