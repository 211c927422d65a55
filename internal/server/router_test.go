package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"go-chi-widgets/internal/calculator"
	"go-chi-widgets/internal/notify"
	"go-chi-widgets/internal/observability"
	"go-chi-widgets/internal/storage"
	"go-chi-widgets/internal/testutil"
	"go-chi-widgets/internal/theme"
	"go-chi-widgets/internal/todo"
)

func newTestRouter(t *testing.T) (http.Handler, *notify.Queue) {
	t.Helper()
	observability.Logger = zap.NewNop()

	store := storage.NewMemory()
	hub := notify.NewQueue(0)

	todos, err := todo.Open(store, hub)
	if err != nil {
		t.Fatalf("opening todo list: %v", err)
	}

	sessions := calculator.NewStore(time.Hour, 10)
	reg := prometheus.NewRegistry()
	if err := calculator.RegisterSessionGauge(reg, sessions); err != nil {
		t.Fatalf("registering session gauge: %v", err)
	}

	return NewRouter(Deps{
		Sessions:      sessions,
		Theme:         theme.Load(store, nil),
		Todos:         todos,
		Notifications: hub,
		Metrics:       reg,
	}), hub
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterEvaluateSetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/evaluate", map[string]any{"op": "+", "a": 2, "b": 3})
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	testutil.DecodeJSONBody(t, w.Body, &payload)

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}
	if got, ok := payload["result"].(float64); !ok || got != 5 {
		t.Fatalf("expected result 5, got %#v", payload["result"])
	}
	if got := payload["display"]; got != "5" {
		t.Fatalf("expected display %q, got %#v", "5", got)
	}
}

func TestNewRouterSessionFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), router)
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var created calculator.SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &created)
	if created.Display != "0" {
		t.Fatalf("expected new session display %q, got %q", "0", created.Display)
	}

	events := []calculator.EventRequest{
		{Type: "digit", Value: "1"},
		{Type: "digit", Value: "2"},
		{Type: "operator", Value: "+"},
		{Type: "digit", Value: "3"},
		{Type: "equals"},
	}
	var last calculator.EventResponse
	for _, ev := range events {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/sessions/"+created.ID+"/events", ev)
		w := testutil.ExecuteRequest(req, router)
		testutil.CheckResponseCode(t, http.StatusOK, w.Code)
		testutil.DecodeJSONBody(t, w.Body, &last)
	}
	if last.Display != "15" {
		t.Fatalf("expected display %q, got %q", "15", last.Display)
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/sessions/"+created.ID, nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/calculator/sessions/"+created.ID, nil), router)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/sessions/"+created.ID, nil), router)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
}

func TestNewRouterMetricsExposeSessionGauge(t *testing.T) {
	router, _ := newTestRouter(t)

	testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), router)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/metrics", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if body := w.Body.String(); !strings.Contains(body, "widgets_calculator_sessions_active 1") {
		t.Fatalf("expected session gauge in metrics output, got:\n%s", body)
	}
}

func TestNewRouterFormNotificationsReachHub(t *testing.T) {
	router, _ := newTestRouter(t)

	form := map[string]any{"fields": []map[string]any{
		{"name": "email", "type": "email", "value": "nope", "required": true},
	}}
	w := testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/forms/validate", form), router)
	testutil.CheckResponseCode(t, http.StatusUnprocessableEntity, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/notifications", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var notes []notify.Notification
	testutil.DecodeJSONBody(t, w.Body, &notes)
	if len(notes) != 1 || notes[0].Severity != notify.Error {
		t.Fatalf("expected one error notification, got %+v", notes)
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/notifications", nil), router)
	var again []notify.Notification
	if err := json.NewDecoder(w.Body).Decode(&again); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected drained hub, got %+v", again)
	}
}

func TestNewRouterThemeAndTodos(t *testing.T) {
	router, _ := newTestRouter(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/theme/toggle", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var th theme.Response
	testutil.DecodeJSONBody(t, w.Body, &th)
	if th.Mode != theme.High || !th.Pressed {
		t.Fatalf("expected high contrast after toggle, got %+v", th)
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/todos", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var items []todo.Item
	testutil.DecodeJSONBody(t, w.Body, &items)
	if len(items) != len(todo.SampleTasks) {
		t.Fatalf("expected %d sample tasks, got %d", len(todo.SampleTasks), len(items))
	}
}

func TestNewRouterFormNotificationsAreLogged(t *testing.T) {
	observability.Logger = zap.NewNop()
	core, logs := observer.New(zapcore.InfoLevel)
	hub := notify.NewQueue(0)

	router := NewRouter(Deps{
		Sessions:      calculator.NewStore(time.Hour, 0),
		Theme:         theme.Load(storage.NewMemory(), nil),
		Todos:         mustOpenTodos(t),
		Notifications: hub,
		Notifier:      notify.Multi(hub, notify.LogNotifier{Logger: zap.New(core)}),
	})

	form := map[string]any{"fields": []map[string]any{
		{"name": "name", "value": "Ada", "required": true},
	}}
	w := testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/forms/validate", form), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if hub.Len() != 1 {
		t.Fatalf("expected 1 notification in hub, got %d", hub.Len())
	}
	entries := logs.FilterMessage("notification").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 notification log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["message"]; got != "Form submitted successfully!" {
		t.Fatalf("expected logged message %q, got %#v", "Form submitted successfully!", got)
	}
}

func TestNewRouterWithoutNotificationQueue(t *testing.T) {
	observability.Logger = zap.NewNop()

	router := NewRouter(Deps{
		Sessions: calculator.NewStore(time.Hour, 0),
		Theme:    theme.Load(storage.NewMemory(), nil),
		Todos:    mustOpenTodos(t),
	})

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/notifications", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}

	form := map[string]any{"fields": []map[string]any{{"name": "email", "type": "email", "value": "a@b.co"}}}
	w = testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/forms/validate", form), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
}

func mustOpenTodos(t *testing.T) *todo.List {
	t.Helper()
	l, err := todo.Open(storage.NewMemory(), nil)
	if err != nil {
		t.Fatalf("opening todo list: %v", err)
	}
	return l
}
