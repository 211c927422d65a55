package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"go-chi-widgets/internal/calculator"
	"go-chi-widgets/internal/handlers"
	"go-chi-widgets/internal/notify"
	"go-chi-widgets/internal/observability"
	"go-chi-widgets/internal/theme"
	"go-chi-widgets/internal/todo"
	"go-chi-widgets/internal/validate"
)

// Deps are the domain services the router exposes.
type Deps struct {
	Sessions *calculator.Store
	Theme    *theme.Manager
	Todos    *todo.List
	// Notifications collects toasts raised outside a calculator session and
	// is drained by GET /notifications.
	Notifications *notify.Queue
	// Notifier receives notifications raised by form validation. It should
	// include Notifications; nil means Notifications alone.
	Notifier notify.Notifier
	Metrics  prometheus.Gatherer
}

func NewRouter(d Deps) http.Handler {

	if d.Notifications == nil {
		d.Notifications = notify.NewQueue(0)
	}
	if d.Notifier == nil {
		d.Notifier = d.Notifications
	}
	if d.Metrics == nil {
		d.Metrics = prometheus.NewRegistry()
	}

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler(d.Metrics))

	calculator.RegisterRoutes(r, calculator.NewHandler(d.Sessions))
	theme.RegisterRoutes(r, d.Theme)
	todo.RegisterRoutes(r, d.Todos)
	r.Post("/forms/validate", validate.SubmitHandler(d.Notifier))

	r.Get("/notifications", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, http.StatusOK, d.Notifications.Drain())
	})

	return r
}
