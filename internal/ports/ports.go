package ports

import (
	"context"

	"voxbot/internal/domain"
)

// SessionStore loads and saves per-conversation state. Implementations must
// tolerate concurrent calls for different sessions; the controller serializes
// access per session.
type SessionStore interface {
	// Load returns the session record and whether it already existed.
	Load(ctx context.Context, sessionID string) (domain.Session, bool, error)
	Save(ctx context.Context, session domain.Session) error
}

// AgentRequest carries everything the downstream language-model agent needs
// to produce a spoken reply.
type AgentRequest struct {
	SessionID   string
	Transcript  string
	Instruction string
	Session     domain.Session
}

// Agent is the general-purpose AI collaborator invoked only when a directive
// hands off with SkipAI=false.
type Agent interface {
	Invoke(ctx context.Context, req AgentRequest) (string, error)
}

// EventSink emits orchestrator decisions and faults to the host.
type EventSink interface {
	SessionStateChanged(sessionID string, from, to domain.ConversationState, intent string)
	DirectiveIssued(sessionID string, directive domain.Directive)
	SessionError(sessionID string, code domain.ErrorCode, detail string)
}
