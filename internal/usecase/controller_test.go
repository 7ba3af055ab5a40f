package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"voxbot/internal/classify"
	"voxbot/internal/domain"
	"voxbot/internal/normalize"
	"voxbot/internal/ports"
)

type fakeStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	saveErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]domain.Session{}}
}

func (s *fakeStore) Load(_ context.Context, sessionID string) (domain.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	return session, ok, nil
}

func (s *fakeStore) Save(_ context.Context, session domain.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *fakeStore) get(t *testing.T, sessionID string) domain.Session {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		t.Fatalf("session %s was never saved", sessionID)
	}
	return session
}

type fakeAgent struct {
	mu       sync.Mutex
	requests []ports.AgentRequest
	reply    string
	err      error
}

func (a *fakeAgent) Invoke(_ context.Context, req ports.AgentRequest) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, req)
	return a.reply, a.err
}

type fakeSink struct {
	mu     sync.Mutex
	states []string
	errors []domain.ErrorCode
}

func (s *fakeSink) SessionStateChanged(_ string, _, to domain.ConversationState, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, string(to))
}

func (s *fakeSink) DirectiveIssued(string, domain.Directive) {}

func (s *fakeSink) SessionError(_ string, code domain.ErrorCode, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, code)
}

func newTestController(t *testing.T, store ports.SessionStore, agent ports.Agent, sink ports.EventSink) *Controller {
	t.Helper()
	normalizer, err := normalize.NewEngine("", 0)
	if err != nil {
		t.Fatalf("failed to create normalizer: %v", err)
	}
	controller, err := NewController(store, classify.New(nil), normalizer, agent, sink)
	if err != nil {
		t.Fatalf("failed to create controller: %v", err)
	}
	return controller
}

func process(t *testing.T, c *Controller, sessionID, eventID, transcript string) domain.Directive {
	t.Helper()
	directive, err := c.Process(context.Background(), domain.TranscriptEvent{
		EventID:    eventID,
		SessionID:  sessionID,
		Transcript: transcript,
		IsFinal:    true,
	})
	if err != nil {
		t.Fatalf("process %q failed: %v", transcript, err)
	}
	return directive
}

func TestControllerFullEmailFlow(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	agent := &fakeAgent{reply: "Email to John is drafted and sent."}
	sink := &fakeSink{}
	controller := newTestController(t, store, agent, sink)

	directive := process(t, controller, "s1", "e1", "hey bot send an email to John")
	if directive.NewState != domain.StateSpellingEmail {
		t.Fatalf("step 1: state = %s, want spelling_email", directive.NewState)
	}
	if !strings.Contains(strings.ToLower(directive.ResponseText), "spell") {
		t.Fatalf("step 1: expected spelling instructions, got %q", directive.ResponseText)
	}
	if directive.Recipient != "John" {
		t.Fatalf("step 1: recipient = %q, want John", directive.Recipient)
	}

	directive = process(t, controller, "s1", "e2", "alpha bravo charlie at gmail dot com")
	if !strings.Contains(directive.ResponseText, "So far I have") {
		t.Fatalf("step 2: expected running echo, got %q", directive.ResponseText)
	}
	if got := store.get(t, "s1").EmailBuffer; got != "abc@gmail.com" {
		t.Fatalf("step 2: buffer = %q, want abc@gmail.com", got)
	}

	directive = process(t, controller, "s1", "e3", "done")
	if directive.NewState != domain.StateConfirmingEmail {
		t.Fatalf("step 3: state = %s, want confirming_email", directive.NewState)
	}
	if !strings.Contains(directive.ResponseText, "a b c at g m a i l dot c o m") {
		t.Fatalf("step 3: expected address read-back, got %q", directive.ResponseText)
	}

	directive = process(t, controller, "s1", "e4", "yes that's right")
	if directive.NewState != domain.StateToolExecuting {
		t.Fatalf("step 4: state = %s, want tool_executing", directive.NewState)
	}
	if directive.SkipAI {
		t.Fatalf("step 4: confirmed email must hand off to the agent")
	}
	if directive.ResponseText != "Email to John is drafted and sent." {
		t.Fatalf("step 4: agent reply must become the response, got %q", directive.ResponseText)
	}
	if len(agent.requests) != 1 || !strings.Contains(agent.requests[0].Instruction, "abc@gmail.com") {
		t.Fatalf("step 4: agent must receive the confirmed address, got %+v", agent.requests)
	}

	// While the tool is executing, everything is suppressed.
	directive = process(t, controller, "s1", "e5", "bot are you there?")
	if directive.ResponseText != "" || directive.NewState != domain.StateToolExecuting {
		t.Fatalf("step 5: expected silence during tool execution, got %+v", directive)
	}
}

func TestControllerDuplicateEventIsIgnored(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	controller := newTestController(t, store, &fakeAgent{}, &fakeSink{})

	process(t, controller, "s1", "e1", "hey bot send an email to John")
	process(t, controller, "s1", "e2", "alpha bravo")
	before := store.get(t, "s1")

	directive := process(t, controller, "s1", "e2", "alpha bravo")
	if directive.ResponseText != "" {
		t.Fatalf("duplicate must be silent, got %q", directive.ResponseText)
	}
	after := store.get(t, "s1")
	if after.EmailBuffer != before.EmailBuffer {
		t.Fatalf("duplicate delivery appended characters: %q vs %q", after.EmailBuffer, before.EmailBuffer)
	}
	if after.MessageCount != before.MessageCount {
		t.Fatalf("duplicate delivery incremented message count")
	}
}

func TestControllerCancellationIsIdempotent(t *testing.T) {
	t.Parallel()

	for _, state := range []domain.ConversationState{domain.StateSpellingEmail, domain.StateConfirmingEmail} {
		store := newFakeStore()
		store.sessions["s1"] = domain.Session{
			ID: "s1", State: state, EmailBuffer: "abc@x.io", PendingEmail: "abc@x.io", MessageCount: 4,
		}
		controller := newTestController(t, store, &fakeAgent{}, &fakeSink{})

		directive := process(t, controller, "s1", "e1", "cancel")
		if directive.NewState != domain.StateIdle {
			t.Fatalf("state %s: cancel must reach idle, got %s", state, directive.NewState)
		}
		saved := store.get(t, "s1")
		if saved.State != domain.StateIdle || saved.EmailBuffer != "" {
			t.Fatalf("state %s: expected idle with empty buffer, got %+v", state, saved)
		}
	}
}

func TestControllerUnknownStateIsSurfaced(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.sessions["s1"] = domain.Session{ID: "s1", State: domain.ConversationState("corrupted")}
	sink := &fakeSink{}
	controller := newTestController(t, store, &fakeAgent{}, sink)

	_, err := controller.Process(context.Background(), domain.TranscriptEvent{
		EventID: "e1", SessionID: "s1", Transcript: "hey bot",
	})
	if !errors.Is(err, ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
	if len(sink.errors) == 0 || sink.errors[0] != domain.ErrorCodeUnknownState {
		t.Fatalf("unknown state must be reported to the sink, got %v", sink.errors)
	}
}

func TestControllerAgentFailureFallsBack(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	agent := &fakeAgent{err: errors.New("upstream timeout")}
	sink := &fakeSink{}
	controller := newTestController(t, store, agent, sink)

	directive := process(t, controller, "s1", "e1", "hey bot what is the agenda today?")
	if directive.ResponseText == "" {
		t.Fatalf("agent failure must degrade to a fallback line, not silence")
	}
	if len(sink.errors) == 0 || sink.errors[0] != domain.ErrorCodeAgent {
		t.Fatalf("agent failure must be reported, got %v", sink.errors)
	}
}

func TestControllerMishearNormalization(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.sessions["s1"] = domain.Session{ID: "s1", State: domain.StateSpellingEmail, MessageCount: 2}
	controller := newTestController(t, store, &fakeAgent{}, &fakeSink{})

	process(t, controller, "s1", "e1", "alpha at sine bravo")
	if got := store.get(t, "s1").EmailBuffer; got != "a@b" {
		t.Fatalf("buffer = %q, want a@b", got)
	}
}

func TestControllerCompleteToolReleasesSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.sessions["s1"] = domain.Session{
		ID: "s1", State: domain.StateToolExecuting,
		PendingEmail: "abc@gmail.com", PendingAction: domain.ActionSendEmail,
	}
	controller := newTestController(t, store, &fakeAgent{}, &fakeSink{})

	session, err := controller.CompleteTool(context.Background(), "s1")
	if err != nil {
		t.Fatalf("complete tool failed: %v", err)
	}
	if session.State != domain.StateListening {
		t.Fatalf("state = %s, want listening", session.State)
	}
	if session.PendingEmail != "" || session.PendingAction != "" {
		t.Fatalf("pending fields must be cleared, got %+v", session)
	}

	// The bot listens again afterwards.
	directive := process(t, controller, "s1", "e9", "bot what is next?")
	if directive.SkipAI {
		t.Fatalf("expected agent hand-off after tool completion")
	}
}

func TestControllerCompleteToolUnknownSession(t *testing.T) {
	t.Parallel()

	controller := newTestController(t, newFakeStore(), &fakeAgent{}, &fakeSink{})
	if _, err := controller.CompleteTool(context.Background(), "ghost"); err == nil {
		t.Fatalf("expected error for unknown session")
	}
}

func TestControllerRequiresSessionID(t *testing.T) {
	t.Parallel()

	controller := newTestController(t, newFakeStore(), &fakeAgent{}, &fakeSink{})
	if _, err := controller.Process(context.Background(), domain.TranscriptEvent{Transcript: "hi"}); err == nil {
		t.Fatalf("expected error for missing session id")
	}
}
