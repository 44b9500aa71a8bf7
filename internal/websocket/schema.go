package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError      Event = "error"
	EventEngagement Event = "engagement"
	EventPong       Event = "pong"
)

// EngagementResponse pushes a module's current star and vote totals to
// everyone watching its page.
type EngagementResponse struct {
	Event    Event `json:"event"`
	ModuleID int   `json:"module_id"`
	Votes    int   `json:"votes"`
	Stars    int   `json:"stars"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
