package calculator

import "go-chi-widgets/internal/notify"

// EventRequest is the JSON body for POST /calculator/sessions/{id}/events.
type EventRequest struct {
	Type  string `json:"type"`            // "digit", "decimal", "operator", "equals", "clear", "delete"
	Value string `json:"value,omitempty"` // digit "0".."9" or operator "+", "-", "*", "/"
}

// SessionResponse describes a session and its current state.
type SessionResponse struct {
	ID string `json:"id"`
	Snapshot
}

// EventResponse is returned after applying one event.
type EventResponse struct {
	SessionID     string                `json:"session_id"`
	Event         string                `json:"event"`
	Display       string                `json:"display"`
	Notifications []notify.Notification `json:"notifications"`
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Op string  `json:"op"` // "+", "-", "*", "/" or "add", "subtract", "multiply", "divide"
	A  float64 `json:"a"`
	B  float64 `json:"b"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Operation string  `json:"operation"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	Result    float64 `json:"result"`
	Display   string  `json:"display"`
}

// ReplayRequest is the JSON body for POST /calculator/replay.
type ReplayRequest struct {
	Events []EventRequest `json:"events"`
}

// ReplayStep records the display after one replayed event.
type ReplayStep struct {
	Event   string `json:"event"`
	Display string `json:"display"`
}

// ReplayResponse is the JSON response for POST /calculator/replay.
type ReplayResponse struct {
	Steps         []ReplayStep          `json:"steps"`
	Display       string                `json:"display"`
	Notifications []notify.Notification `json:"notifications"`
}
