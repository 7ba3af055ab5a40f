package usecase

import (
	"errors"
	"fmt"

	"voxbot/internal/domain"
)

// ErrUnknownState signals a corrupted session record. It is surfaced to the
// host, never silently routed.
var ErrUnknownState = errors.New("unknown conversation state")

// Handler processes one classified event for the state it owns. It may
// mutate the session's buffers; the controller applies the directive's
// NewState and bookkeeping afterwards.
type Handler interface {
	Handle(event domain.TranscriptEvent, cls domain.Classification, session *domain.Session) domain.Directive
}

// Router dispatches each event to exactly one handler based on the current
// conversation state.
type Router struct {
	handlers map[domain.ConversationState]Handler
}

func NewRouter(normal, spelling, confirm Handler) *Router {
	return &Router{handlers: map[domain.ConversationState]Handler{
		domain.StateIdle:            normal,
		domain.StateListening:       normal,
		domain.StateSpellingEmail:   spelling,
		domain.StateConfirmingEmail: confirm,
	}}
}

// Dispatch returns the handler owning the state. TOOL_EXECUTING returns a
// nil handler: the classifier already resolved it as silent.
func (r *Router) Dispatch(state domain.ConversationState) (Handler, error) {
	if state == domain.StateToolExecuting {
		return nil, nil
	}
	handler, ok := r.handlers[state]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownState, state)
	}
	return handler, nil
}

// CheckComplete verifies at startup that every conversation state is routable,
// so an unknown-state fault can only come from corrupted data.
func (r *Router) CheckComplete() error {
	states := []domain.ConversationState{
		domain.StateIdle,
		domain.StateListening,
		domain.StateSpellingEmail,
		domain.StateConfirmingEmail,
		domain.StateToolExecuting,
	}
	for _, state := range states {
		if state == domain.StateToolExecuting {
			continue
		}
		if _, ok := r.handlers[state]; !ok {
			return fmt.Errorf("%w: no handler registered for %q", ErrUnknownState, state)
		}
	}
	return nil
}
