package validate

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"go-chi-widgets/internal/handlers"
	"go-chi-widgets/internal/notify"
	"go-chi-widgets/internal/observability"
)

// SubmitResponse is the JSON body returned by POST /forms/validate.
type SubmitResponse struct {
	Outcome
	Notifications []notify.Notification `json:"notifications"`
}

// SubmitHandler handles POST /forms/validate. Notifications go to n as well
// as the response.
func SubmitHandler(n notify.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := observability.LoggerWithTrace(r.Context())

		var form Form
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			handlers.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		q := notify.NewQueue(0)
		out := form.Submit(notify.Multi(q, n))

		status := http.StatusOK
		if !out.Valid {
			status = http.StatusUnprocessableEntity
		}

		logger.Info("form validated",
			zap.Bool("valid", out.Valid),
			zap.Int("fields", len(out.Fields)),
			zap.String("request_id", observability.RequestIDFromContext(r.Context())),
		)

		handlers.WriteJSON(w, status, SubmitResponse{Outcome: out, Notifications: q.Drain()})
	}
}
