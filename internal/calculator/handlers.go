package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-widgets/internal/handlers"
	"go-chi-widgets/internal/notify"
	"go-chi-widgets/internal/observability"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handler serves the session-based calculator API.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// ---------------------------------------------------------------------------
// Handlers: sessions
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.session.create")
	defer span.End()

	s, err := h.store.Create()
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.create", "session limit reached", err, http.StatusServiceUnavailable, w)
		return
	}
	sessionsCount.Add(ctx, 1)

	span.SetAttributes(attribute.String("calculator.session.id", s.ID))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session created",
		zap.String("session_id", s.ID),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusCreated, SessionResponse{ID: s.ID, Snapshot: s.Snapshot()})
}

// GetSession handles GET /calculator/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.get",
		trace.WithAttributes(attribute.String("calculator.session.id", id)),
	)
	defer span.End()

	s, err := h.store.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.get", "session not found", err, http.StatusNotFound, w)
		return
	}

	snap := s.Snapshot()
	span.SetAttributes(attribute.String("calculator.display", snap.Display))
	span.SetStatus(codes.Ok, "")

	handlers.WriteJSON(w, http.StatusOK, SessionResponse{ID: s.ID, Snapshot: snap})
}

// DeleteSession handles DELETE /calculator/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.delete",
		trace.WithAttributes(attribute.String("calculator.session.id", id)),
	)
	defer span.End()

	if err := h.store.Delete(id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.delete", "session not found", err, http.StatusNotFound, w)
		return
	}
	sessionsCount.Add(ctx, -1)
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session deleted",
		zap.String("session_id", id),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	w.WriteHeader(http.StatusNoContent)
}

// PostEvent handles POST /calculator/sessions/{id}/events. It applies one input
// event to the session and returns the rendered display.
func (h *Handler) PostEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.event",
		trace.WithAttributes(
			attribute.String("calculator.session.id", id),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	s, err := h.store.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "event", "session not found", err, http.StatusNotFound, w)
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "event", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	ev, err := ParseEvent(req.Type, req.Value)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "event", "invalid event", err, http.StatusBadRequest, w)
		return
	}
	span.SetAttributes(attribute.String("calculator.event", ev.String()))

	start := time.Now()
	res, err := s.Apply(ev, evaluationRecorder(ctx, span, logger))
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "event", "invalid event", err, http.StatusBadRequest, w)
		return
	}

	attrs := metric.WithAttributes(attribute.String("event", ev.Kind.String()))
	eventsCounter.Add(ctx, 1, attrs)
	eventHistogram.Record(ctx, elapsed, attrs)

	reportNotifications(span, logger, res.Notifications)
	span.SetAttributes(attribute.String("calculator.display", res.Display))

	logger.Debug("calculator event handled",
		zap.String("session_id", s.ID),
		zap.Stringer("event", ev),
		zap.String("display", res.Display),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, EventResponse{
		SessionID:     s.ID,
		Event:         ev.String(),
		Display:       res.Display,
		Notifications: res.Notifications,
	})
}

// ---------------------------------------------------------------------------
// Handlers: stateless
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate: a single binary operation
// without a session.
func Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	op, err := ParseOperator(req.Op)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "unknown operator", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.String("calculator.operation", op.Name()),
		attribute.Float64("calculator.operand.a", req.A),
		attribute.Float64("calculator.operand.b", req.B),
	)

	start := time.Now()
	result, err := Apply(op, req.A, req.B)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		msg := err.Error()
		if errors.Is(err, ErrDivideByZero) {
			msg = divideByZeroMessage
		}
		observability.RecordError(ctx, span, logger, errorCounter, op.Name(), msg, err, http.StatusBadRequest, w)
		return
	}

	attrs := metric.WithAttributes(attribute.String("operation", op.Name()))
	eventHistogram.Record(ctx, elapsed, attrs)
	resultGauge.Record(ctx, result, attrs)

	span.SetAttributes(attribute.Float64("calculator.result", result))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator evaluation completed",
		zap.String("operation", op.Name()),
		zap.Float64("a", req.A),
		zap.Float64("b", req.B),
		zap.Float64("result", result),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Operation: op.Name(),
		A:         req.A,
		B:         req.B,
		Result:    result,
		Display:   FormatNumber(result),
	})
}

// Replay handles POST /calculator/replay. It feeds a sequence of events to a
// fresh calculator, creating a child span for every event.
func Replay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.replay",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	var req ReplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "replay", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	if len(req.Events) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "replay", "no events provided", errors.New("events array is empty"), http.StatusBadRequest, w)
		return
	}

	// Parse everything up front so a bad event never leaves a partial replay.
	events := make([]Event, 0, len(req.Events))
	for i, er := range req.Events {
		ev, err := ParseEvent(er.Type, er.Value)
		if err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, "replay", fmt.Sprintf("invalid event at step %d", i), err, http.StatusBadRequest, w)
			return
		}
		events = append(events, ev)
	}
	span.SetAttributes(attribute.Int("replay.events_count", len(events)))

	queue := notify.NewQueue(0)
	ctrl := NewController(nil, queue)
	steps := make([]ReplayStep, 0, len(events))

	for i, ev := range events {
		stepCtx, stepSpan := tracer.Start(ctx, fmt.Sprintf("calculator.replay.step.%d.%s", i, ev.Kind),
			trace.WithAttributes(
				attribute.Int("replay.step.index", i),
				attribute.String("replay.step.event", ev.String()),
			),
		)
		ctrl.SetObserver(evaluationRecorder(stepCtx, stepSpan, logger))

		// Validated above; Handle cannot fail here.
		_ = ctrl.Handle(ev)
		eventsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", ev.Kind.String())))

		stepSpan.SetAttributes(attribute.String("replay.step.display", ctrl.Display()))
		stepSpan.End()

		steps = append(steps, ReplayStep{Event: ev.String(), Display: ctrl.Display()})
	}

	notes := queue.Drain()
	reportNotifications(span, logger, notes)

	logger.Info("calculator replay completed",
		zap.Int("events", len(events)),
		zap.String("display", ctrl.Display()),
		zap.Int("notifications", len(notes)),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, ReplayResponse{
		Steps:         steps,
		Display:       ctrl.Display(),
		Notifications: notes,
	})
}

// evaluationRecorder returns an Observer that records each evaluation on
// span, in metrics, and in the log.
func evaluationRecorder(ctx context.Context, span trace.Span, logger *zap.Logger) Observer {
	return func(e Evaluation) {
		attrs := metric.WithAttributes(attribute.String("operation", e.Op.Name()))

		if e.Err != nil {
			errorCounter.Add(ctx, 1, attrs)
			span.RecordError(e.Err)
			span.SetStatus(codes.Error, e.Err.Error())
			logger.Debug("calculator evaluation failed",
				zap.String("operation", e.Op.Name()),
				zap.Float64("left", e.Left),
				zap.Float64("right", e.Right),
				zap.Error(e.Err),
			)
			return
		}

		resultGauge.Record(ctx, e.Result, attrs)
		span.AddEvent("evaluation.complete", trace.WithAttributes(
			attribute.String("operation", e.Op.Name()),
			attribute.Float64("left", e.Left),
			attribute.Float64("right", e.Right),
			attribute.Float64("result", e.Result),
		))
		logger.Info("calculator evaluation completed",
			zap.String("operation", e.Op.Name()),
			zap.Float64("left", e.Left),
			zap.Float64("right", e.Right),
			zap.Float64("result", e.Result),
		)
	}
}

// reportNotifications copies user notifications into the trace and log.
func reportNotifications(span trace.Span, logger *zap.Logger, notes []notify.Notification) {
	log := notify.LogNotifier{Logger: logger}
	for _, n := range notes {
		span.AddEvent("notification", trace.WithAttributes(
			attribute.String("message", n.Message),
			attribute.String("severity", string(n.Severity)),
		))
		log.Notify(n.Message, n.Severity)
	}
}
