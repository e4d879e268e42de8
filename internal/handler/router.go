package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	assistantHandler "github.com/Subhajitincareer/sahayata-kiran-india/internal/handler/assistant"
	chatHandler "github.com/Subhajitincareer/sahayata-kiran-india/internal/handler/chat"
	journalHandler "github.com/Subhajitincareer/sahayata-kiran-india/internal/handler/journal"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/i18n"
	assistantService "github.com/Subhajitincareer/sahayata-kiran-india/internal/service/assistant"
	chatService "github.com/Subhajitincareer/sahayata-kiran-india/internal/service/chat"
	journalService "github.com/Subhajitincareer/sahayata-kiran-india/internal/service/journal"
	"github.com/Subhajitincareer/sahayata-kiran-india/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, journalSvc *journalService.Service, assistantSvc *assistantService.Service, defaultLang i18n.Language) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		chat := chatHandler.New(chatSvc)
		chat.RegisterRoutes(api)

		chatWS := chatHandler.NewWebSocketHandler(chatSvc)
		chatWS.RegisterWebSocketRoutes(api)

		journal := journalHandler.New(journalSvc, defaultLang)
		journal.RegisterRoutes(api)

		if assistantSvc != nil {
			assistant := assistantHandler.New(assistantSvc)
			assistant.RegisterRoutes(api)
		}
	})

	return r
}
