package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"voxbot/internal/classify"
	"voxbot/internal/domain"
	"voxbot/internal/normalize"
	"voxbot/internal/ports"
)

// Controller runs the read-state, classify, handle, write-state cycle for
// every transcript event. Events for the same session are serialized by a
// per-session lock; different sessions proceed in parallel.
type Controller struct {
	store      ports.SessionStore
	classifier *classify.Classifier
	normalizer *normalize.Engine
	router     *Router
	responder  responder
	events     ports.EventSink

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewController(
	store ports.SessionStore,
	classifier *classify.Classifier,
	normalizer *normalize.Engine,
	agent ports.Agent,
	events ports.EventSink,
) (*Controller, error) {
	router := NewRouter(NewNormalHandler(), NewSpellingHandler(), NewConfirmationHandler())
	if err := router.CheckComplete(); err != nil {
		return nil, err
	}
	return &Controller{
		store:      store,
		classifier: classifier,
		normalizer: normalizer,
		router:     router,
		responder:  newResponder(agent, events),
		events:     events,
		locks:      map[string]*sync.Mutex{},
	}, nil
}

// Process handles one transcript event to completion and returns the
// directive for the host's TTS path. An event whose id matches the session's
// last processed id is treated as a duplicate delivery and acknowledged with
// a silent directive.
func (c *Controller) Process(ctx context.Context, event domain.TranscriptEvent) (domain.Directive, error) {
	if event.SessionID == "" {
		return domain.Directive{}, fmt.Errorf("transcript event has no session id")
	}

	lock := c.sessionLock(event.SessionID)
	lock.Lock()
	defer lock.Unlock()

	session, found, err := c.store.Load(ctx, event.SessionID)
	if err != nil {
		c.events.SessionError(event.SessionID, domain.ErrorCodeStore, err.Error())
		return domain.Directive{}, fmt.Errorf("failed to load session %s: %w", event.SessionID, err)
	}
	if !found {
		session = domain.NewSession(event.SessionID)
	}

	if event.EventID != "" && event.EventID == session.LastEventID {
		return domain.Directive{NewState: session.State, SkipAI: true}, nil
	}

	event.Transcript = c.normalizer.Apply(event.Transcript)
	cls := c.classifier.Classify(event, session)

	directive, err := c.dispatch(event, cls, &session)
	if err != nil {
		c.events.SessionError(event.SessionID, domain.ErrorCodeUnknownState, err.Error())
		return domain.Directive{}, err
	}

	c.responder.Respond(ctx, event, &directive, session)

	if session.State != directive.NewState {
		c.events.SessionStateChanged(event.SessionID, session.State, directive.NewState, cls.Intent)
	}

	session.State = directive.NewState
	session.PendingAction = directive.PendingAction
	session.MessageCount++
	session.LastEventID = event.EventID
	session.UpdatedAt = time.Now()

	if err := c.store.Save(ctx, session); err != nil {
		c.events.SessionError(event.SessionID, domain.ErrorCodeStore, err.Error())
		return domain.Directive{}, fmt.Errorf("failed to save session %s: %w", event.SessionID, err)
	}

	c.events.DirectiveIssued(event.SessionID, directive)
	return directive, nil
}

// CompleteTool releases a session once the downstream tool call finishes,
// returning it to LISTENING. Called by the host when the agent reports
// completion; without it the session would suppress input forever.
func (c *Controller) CompleteTool(ctx context.Context, sessionID string) (domain.Session, error) {
	lock := c.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, found, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if !found {
		return domain.Session{}, fmt.Errorf("session %s not found", sessionID)
	}

	if session.State == domain.StateToolExecuting {
		c.events.SessionStateChanged(sessionID, session.State, domain.StateListening, domain.ActionSendEmail)
		session.State = domain.StateListening
		session.PendingAction = ""
		session.PendingEmail = ""
		session.UpdatedAt = time.Now()
		if err := c.store.Save(ctx, session); err != nil {
			return domain.Session{}, fmt.Errorf("failed to save session %s: %w", sessionID, err)
		}
	}
	return session, nil
}

// Status returns the current session record without mutating it.
func (c *Controller) Status(ctx context.Context, sessionID string) (domain.Session, bool, error) {
	return c.store.Load(ctx, sessionID)
}

func (c *Controller) dispatch(event domain.TranscriptEvent, cls domain.Classification, session *domain.Session) (domain.Directive, error) {
	handler, err := c.router.Dispatch(session.State)
	if err != nil {
		return domain.Directive{}, err
	}
	if handler == nil {
		// Tool call in flight: the classifier already decided to stay silent.
		return domain.Directive{NewState: session.State, SkipAI: true}, nil
	}
	return handler.Handle(event, cls, session), nil
}

func (c *Controller) sessionLock(sessionID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[sessionID] = lock
	}
	return lock
}
