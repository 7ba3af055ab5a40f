package domain

import "time"

// ConversationState models where a session is in the meeting-bot dialogue.
type ConversationState string

const (
	StateIdle            ConversationState = "idle"
	StateListening       ConversationState = "listening"
	StateSpellingEmail   ConversationState = "spelling_email"
	StateConfirmingEmail ConversationState = "confirming_email"
	StateToolExecuting   ConversationState = "tool_executing"
)

// Route is the classifier's top-level dispatch decision.
type Route string

const (
	RouteSilentIgnore     Route = "silent_ignore"
	RouteGreetingDirect   Route = "greeting_direct"
	RouteToolCall         Route = "tool_call"
	RouteChatAgent        Route = "chat_agent"
	RouteSpellingMode     Route = "spelling_mode"
	RouteConfirmationMode Route = "confirmation_mode"
)

// Intent tags carried on classification results.
const (
	IntentGreeting         = "greeting"
	IntentEmailRequest     = "email_request"
	IntentQuestion         = "question"
	IntentCommand          = "command"
	IntentIrrelevant       = "irrelevant"
	IntentToolInProgress   = "tool_in_progress"
	IntentSpellingContinue = "spelling_continue"
	IntentSpellingComplete = "spelling_complete"
	IntentConfirmYes       = "confirm_yes"
	IntentConfirmNo        = "confirm_no"
	IntentConfirmUnclear   = "confirm_unclear"
)

// PendingAction values recorded on sessions and directives. Informational,
// never used for control flow.
const (
	ActionAwaitConfirmation       = "await_confirmation"
	ActionRestartSpelling         = "restart_spelling"
	ActionSendEmail               = "send_email"
	ActionAwaitingCompleteThought = "awaiting_complete_thought"
)

// ErrorCode identifies backend faults surfaced through the event sink.
type ErrorCode string

const (
	ErrorCodeStore        ErrorCode = "store"
	ErrorCodeAgent        ErrorCode = "agent"
	ErrorCodeUnknownState ErrorCode = "unknown_state"
)

// TranscriptEvent is one speech-to-text fragment delivered by the host.
type TranscriptEvent struct {
	EventID     string    `json:"eventId,omitempty"`
	SessionID   string    `json:"sessionId"`
	Transcript  string    `json:"transcript"`
	SpeakerName string    `json:"speakerName,omitempty"`
	BotID       string    `json:"botId,omitempty"`
	IsFinal     bool      `json:"isFinal"`
	ReceivedAt  time.Time `json:"receivedAt,omitempty"`
}

// Classification is the routing decision produced once per event.
type Classification struct {
	Route             Route   `json:"route"`
	Intent            string  `json:"intent"`
	IsCompleteThought bool    `json:"isCompleteThought"`
	ShouldRespond     bool    `json:"shouldRespond"`
	Confidence        float64 `json:"confidence"`

	// Route-specific metadata.
	BotAddressed bool     `json:"botAddressed,omitempty"`
	Chars        []string `json:"chars,omitempty"`
	Recipient    string   `json:"recipient,omitempty"`
}

// Directive is a handler's instruction to the host: what to speak and where
// the session goes next. Empty ResponseText means stay silent.
type Directive struct {
	ResponseText  string            `json:"responseText"`
	NewState      ConversationState `json:"newState"`
	SkipAI        bool              `json:"skipAI"`
	PendingAction string            `json:"pendingAction,omitempty"`

	// Handler-specific fields.
	Recipient        string   `json:"recipient,omitempty"`
	EmailChars       []string `json:"emailChars,omitempty"`
	ConfirmedEmail   string   `json:"confirmedEmail,omitempty"`
	AgentInstruction string   `json:"agentInstruction,omitempty"`

	// AgentPrompt is what the downstream agent receives when SkipAI is
	// false; defaults to the event transcript.
	AgentPrompt string `json:"-"`
}

// Session is the per-conversation state record. EmailBuffer is non-empty only
// while spelling or confirming.
type Session struct {
	ID            string            `json:"id"`
	State         ConversationState `json:"state"`
	MessageCount  int               `json:"messageCount"`
	EmailBuffer   string            `json:"emailBuffer,omitempty"`
	PendingEmail  string            `json:"pendingEmail,omitempty"`
	PendingAction string            `json:"pendingAction,omitempty"`
	Fragments     []string          `json:"fragments,omitempty"`
	LastEventID   string            `json:"lastEventId,omitempty"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// NewSession returns the default record created on a session's first event.
func NewSession(id string) Session {
	return Session{ID: id, State: StateIdle}
}
