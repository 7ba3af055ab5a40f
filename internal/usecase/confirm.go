package usecase

import (
	"fmt"

	"voxbot/internal/domain"
	"voxbot/internal/phonetic"
)

// ConfirmationHandler interprets yes/no answers while an address is awaiting
// confirmation.
type ConfirmationHandler struct{}

func NewConfirmationHandler() *ConfirmationHandler {
	return &ConfirmationHandler{}
}

func (h *ConfirmationHandler) Handle(event domain.TranscriptEvent, cls domain.Classification, session *domain.Session) domain.Directive {
	if containsCancellation(event.Transcript) {
		return cancelDirective(session)
	}

	switch cls.Intent {
	case domain.IntentConfirmYes:
		return h.confirm(session)
	case domain.IntentConfirmNo:
		session.EmailBuffer = ""
		session.PendingEmail = ""
		return domain.Directive{
			ResponseText:  "No problem, let's try again. " + spellingPrompt,
			NewState:      domain.StateSpellingEmail,
			SkipAI:        true,
			PendingAction: domain.ActionRestartSpelling,
		}
	default:
		// Never guess: re-ask, restating the address when there is one.
		if session.PendingEmail == "" {
			return domain.Directive{
				ResponseText:  "Sorry, was that a yes or a no?",
				NewState:      domain.StateConfirmingEmail,
				SkipAI:        true,
				PendingAction: domain.ActionAwaitConfirmation,
			}
		}
		return domain.Directive{
			ResponseText: fmt.Sprintf("Sorry, was that a yes or a no? I have %s.",
				phonetic.SpokenForm(session.PendingEmail)),
			NewState:      domain.StateConfirmingEmail,
			SkipAI:        true,
			PendingAction: domain.ActionAwaitConfirmation,
		}
	}
}

func (h *ConfirmationHandler) confirm(session *domain.Session) domain.Directive {
	address := session.PendingEmail
	if address == "" || !phonetic.LooksLikeEmail(address) {
		// A confirmation with no valid pending address resets the session.
		session.EmailBuffer = ""
		session.PendingEmail = ""
		return domain.Directive{
			ResponseText: "Something went wrong with the address I had. Let's start over when you're ready.",
			NewState:     domain.StateIdle,
			SkipAI:       true,
		}
	}

	session.EmailBuffer = ""
	return domain.Directive{
		ResponseText:     "Great, I'll get that email drafted now.",
		NewState:         domain.StateToolExecuting,
		SkipAI:           false,
		PendingAction:    domain.ActionSendEmail,
		ConfirmedEmail:   address,
		AgentInstruction: fmt.Sprintf("The user confirmed the email address %s. Compose and send the email.", address),
		AgentPrompt:      fmt.Sprintf("Draft the email to %s that the user asked for.", address),
	}
}
