package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoggedIn       EventType = "session.logged_in"
	EventLoggedOut      EventType = "session.logged_out"
	EventSessionExpired EventType = "session.expired"
	EventAccessDenied   EventType = "access.denied"
	EventAdminPrompt    EventType = "admin.prompt"
	EventRedirected     EventType = "navigation.redirected"
)

// Event represents something the core wants the presentation layer to know about.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// LoggedInPayload payload.
type LoggedInPayload struct {
	UserID  int64 `json:"user_id"`
	IsAdmin bool  `json:"is_admin"`
}

// Reasons carried by LoggedOutPayload.
const (
	LogoutReasonUser    = "user"
	LogoutReasonExpired = "expired"
	LogoutReasonPrompt  = "admin_prompt"
)

// LoggedOutPayload payload.
type LoggedOutPayload struct {
	Reason string `json:"reason"`
}

// SessionExpiredPayload payload.
type SessionExpiredPayload struct {
	Path string `json:"path"`
}

// AccessDeniedPayload payload.
type AccessDeniedPayload struct {
	Route   string `json:"route"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// AdminPromptPayload asks the user to pick one of Choices for prompt PromptID.
type AdminPromptPayload struct {
	PromptID string   `json:"prompt_id"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
	Choices  []string `json:"choices"`
}

// RedirectedPayload payload.
type RedirectedPayload struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}
