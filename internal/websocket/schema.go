package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
	// ActionSync asks for an immediate tick instead of waiting for the next one.
	ActionSync Action = "sync"
)

// RequestEnvelope is used to peek at the action.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventTick  Event = "tick"
	EventState Event = "state"
	EventPong  Event = "pong"
)

// TickResponse carries one countdown update.
type TickResponse struct {
	Event            Event  `json:"event"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Display          string `json:"display"`
	Urgency          string `json:"urgency"`
	Expired          bool   `json:"expired"`
}

// StateResponse is sent on connect and whenever the exam leaves IN_PROGRESS.
type StateResponse struct {
	Event            Event  `json:"event"`
	State            string `json:"state"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
