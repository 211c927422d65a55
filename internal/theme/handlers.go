package theme

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"go-chi-widgets/internal/handlers"
	"go-chi-widgets/internal/observability"
)

// Response is the JSON body for theme endpoints.
type Response struct {
	Mode    Mode `json:"mode"`
	Pressed bool `json:"pressed"`
}

// RegisterRoutes mounts GET /theme and POST /theme/toggle.
func RegisterRoutes(r chi.Router, m *Manager) {
	r.Route("/theme", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			handlers.WriteJSON(w, http.StatusOK, Response{Mode: m.Mode(), Pressed: m.Pressed()})
		})

		r.Post("/toggle", func(w http.ResponseWriter, r *http.Request) {
			logger := observability.LoggerWithTrace(r.Context())

			mode, err := m.Toggle()
			if err != nil {
				logger.Error("toggle contrast mode", zap.Error(err))
				handlers.WriteError(w, http.StatusInternalServerError, "could not save contrast mode")
				return
			}

			logger.Info("contrast mode toggled",
				zap.String("mode", string(mode)),
				zap.String("request_id", observability.RequestIDFromContext(r.Context())),
			)
			handlers.WriteJSON(w, http.StatusOK, Response{Mode: mode, Pressed: mode == High})
		})
	})
}
