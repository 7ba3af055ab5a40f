package usecase

import (
	"strings"
	"testing"

	"voxbot/internal/domain"
)

func confirmingSession(pending string) domain.Session {
	session := domain.NewSession("s1")
	session.State = domain.StateConfirmingEmail
	session.EmailBuffer = pending
	session.PendingEmail = pending
	return session
}

func TestConfirmationYesFinalizes(t *testing.T) {
	t.Parallel()

	handler := NewConfirmationHandler()
	session := confirmingSession("abc@gmail.com")
	cls := domain.Classification{Intent: domain.IntentConfirmYes, IsCompleteThought: true}

	directive := handler.Handle(domain.TranscriptEvent{Transcript: "yes that's right"}, cls, &session)
	if directive.NewState != domain.StateToolExecuting {
		t.Fatalf("newState = %s, want tool_executing", directive.NewState)
	}
	if directive.SkipAI {
		t.Fatalf("confirmed email must hand composition to the agent")
	}
	if directive.ConfirmedEmail != "abc@gmail.com" {
		t.Fatalf("confirmedEmail = %q", directive.ConfirmedEmail)
	}
	if directive.PendingAction != domain.ActionSendEmail {
		t.Fatalf("pendingAction = %q", directive.PendingAction)
	}
	if !strings.Contains(directive.AgentInstruction, "abc@gmail.com") {
		t.Fatalf("instruction must carry the confirmed address, got %q", directive.AgentInstruction)
	}
	if directive.ResponseText == "" {
		t.Fatalf("expected a short acknowledgment")
	}
	if session.EmailBuffer != "" {
		t.Fatalf("buffer must be cleared after confirmation")
	}
}

func TestConfirmationYesWithoutValidBufferResets(t *testing.T) {
	t.Parallel()

	handler := NewConfirmationHandler()
	session := confirmingSession("")
	cls := domain.Classification{Intent: domain.IntentConfirmYes}

	directive := handler.Handle(domain.TranscriptEvent{Transcript: "yes"}, cls, &session)
	if directive.NewState != domain.StateIdle {
		t.Fatalf("newState = %s, want idle", directive.NewState)
	}
	if directive.ResponseText == "" {
		t.Fatalf("expected an error message")
	}
	if !directive.SkipAI {
		t.Fatalf("must not hand off without a confirmed address")
	}
}

func TestConfirmationNoRestartsSpelling(t *testing.T) {
	t.Parallel()

	handler := NewConfirmationHandler()
	session := confirmingSession("abc@gmail.com")
	cls := domain.Classification{Intent: domain.IntentConfirmNo, IsCompleteThought: true}

	directive := handler.Handle(domain.TranscriptEvent{Transcript: "nope, wrong"}, cls, &session)
	if directive.NewState != domain.StateSpellingEmail {
		t.Fatalf("newState = %s, want spelling_email", directive.NewState)
	}
	if session.EmailBuffer != "" || session.PendingEmail != "" {
		t.Fatalf("buffers must be cleared for a re-spell")
	}
	if directive.PendingAction != domain.ActionRestartSpelling {
		t.Fatalf("pendingAction = %q", directive.PendingAction)
	}
}

func TestConfirmationUnclearReasksWithAddress(t *testing.T) {
	t.Parallel()

	handler := NewConfirmationHandler()
	session := confirmingSession("abc@gmail.com")
	cls := domain.Classification{Intent: domain.IntentConfirmUnclear}

	directive := handler.Handle(domain.TranscriptEvent{Transcript: "hmm maybe"}, cls, &session)
	if directive.NewState != domain.StateConfirmingEmail {
		t.Fatalf("unclear answer must not change state, got %s", directive.NewState)
	}
	if session.EmailBuffer != "abc@gmail.com" || session.PendingEmail != "abc@gmail.com" {
		t.Fatalf("unclear answer must not touch buffers")
	}
	if !strings.Contains(directive.ResponseText, "a b c at g m a i l dot c o m") {
		t.Fatalf("re-ask must restate the address in spoken form, got %q", directive.ResponseText)
	}
}

func TestConfirmationUnclearWithoutAddressReasksPlainly(t *testing.T) {
	t.Parallel()

	handler := NewConfirmationHandler()
	session := confirmingSession("")
	cls := domain.Classification{Intent: domain.IntentConfirmUnclear}

	directive := handler.Handle(domain.TranscriptEvent{Transcript: "hmm maybe"}, cls, &session)
	if directive.NewState != domain.StateConfirmingEmail {
		t.Fatalf("newState = %s, want confirming_email", directive.NewState)
	}
	if strings.Contains(directive.ResponseText, "I have") {
		t.Fatalf("re-ask must not restate a missing address, got %q", directive.ResponseText)
	}
	if directive.ResponseText == "" {
		t.Fatalf("re-ask must still speak")
	}
}

func TestConfirmationCancellationReturnsToIdle(t *testing.T) {
	t.Parallel()

	handler := NewConfirmationHandler()
	session := confirmingSession("abc@gmail.com")
	// Even though "cancel" classifies as a no, cancellation wins.
	cls := domain.Classification{Intent: domain.IntentConfirmNo, IsCompleteThought: true}

	directive := handler.Handle(domain.TranscriptEvent{Transcript: "cancel"}, cls, &session)
	if directive.NewState != domain.StateIdle {
		t.Fatalf("newState = %s, want idle", directive.NewState)
	}
	if session.EmailBuffer != "" || session.PendingEmail != "" {
		t.Fatalf("buffers must be cleared on cancellation")
	}
}
