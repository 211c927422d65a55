package todo

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"go-chi-widgets/internal/handlers"
	"go-chi-widgets/internal/observability"
)

// AddRequest is the JSON body for POST /todos.
type AddRequest struct {
	Text string `json:"text"`
}

// RegisterRoutes mounts the to-do endpoints under /todos.
func RegisterRoutes(r chi.Router, l *List) {
	r.Route("/todos", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			handlers.WriteJSON(w, http.StatusOK, l.Items())
		})

		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			logger := observability.LoggerWithTrace(r.Context())

			var req AddRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				handlers.WriteError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			item, err := l.Add(req.Text)
			switch {
			case errors.Is(err, ErrEmptyTask):
				handlers.WriteError(w, http.StatusBadRequest, "Please enter a task")
				return
			case err != nil:
				logger.Error("add todo", zap.Error(err))
				handlers.WriteError(w, http.StatusInternalServerError, "could not save task")
				return
			}

			logger.Info("todo added",
				zap.String("todo_id", item.ID),
				zap.String("request_id", observability.RequestIDFromContext(r.Context())),
			)
			handlers.WriteJSON(w, http.StatusCreated, item)
		})

		r.Post("/{id}/toggle", func(w http.ResponseWriter, r *http.Request) {
			item, err := l.Toggle(chi.URLParam(r, "id"))
			if err != nil {
				writeMutationError(w, r, err)
				return
			}
			handlers.WriteJSON(w, http.StatusOK, item)
		})

		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := l.Delete(chi.URLParam(r, "id")); err != nil {
				writeMutationError(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

func writeMutationError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		handlers.WriteError(w, http.StatusNotFound, "task not found")
		return
	}
	observability.LoggerWithTrace(r.Context()).Error("update todo", zap.Error(err))
	handlers.WriteError(w, http.StatusInternalServerError, "could not save task")
}
