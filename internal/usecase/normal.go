package usecase

import (
	"fmt"
	"math/rand"

	"voxbot/internal/domain"
	"voxbot/internal/phonetic"
)

var greetings = []string{
	"Hi there! I'm listening.",
	"Hello! How can I help?",
	"Hey! What can I do for you?",
}

const spellingPrompt = "Please spell the address for me phonetically, " +
	"like alpha bravo charlie, and say at sign and dot for the symbols. Say done when you're finished."

// NormalHandler owns the IDLE and LISTENING states: greetings, email-intent
// detection, and routing complete questions or commands to the agent.
type NormalHandler struct{}

func NewNormalHandler() *NormalHandler {
	return &NormalHandler{}
}

func (h *NormalHandler) Handle(event domain.TranscriptEvent, cls domain.Classification, session *domain.Session) domain.Directive {
	switch cls.Intent {
	case domain.IntentGreeting:
		return domain.Directive{
			ResponseText: greetings[rand.Intn(len(greetings))],
			NewState:     domain.StateListening,
			SkipAI:       true,
		}
	case domain.IntentEmailRequest:
		return h.handleEmailRequest(event, cls, session)
	case domain.IntentQuestion, domain.IntentCommand:
		return h.handleAgentBound(event, cls, session)
	default:
		// Background chatter: stay silent, change nothing.
		return domain.Directive{NewState: session.State, SkipAI: true}
	}
}

func (h *NormalHandler) handleEmailRequest(event domain.TranscriptEvent, cls domain.Classification, session *domain.Session) domain.Directive {
	session.Fragments = nil

	if address := phonetic.ExtractAddress(event.Transcript); address != "" {
		// The user dictated a full address; skip spelling entirely.
		session.EmailBuffer = address
		session.PendingEmail = address
		return domain.Directive{
			ResponseText:  fmt.Sprintf("I heard %s. Is that correct?", phonetic.SpokenForm(address)),
			NewState:      domain.StateConfirmingEmail,
			SkipAI:        true,
			PendingAction: domain.ActionAwaitConfirmation,
			Recipient:     cls.Recipient,
		}
	}

	session.EmailBuffer = ""
	if cls.Recipient != "" {
		return domain.Directive{
			ResponseText: fmt.Sprintf("Sure, an email to %s. %s", cls.Recipient, spellingPrompt),
			NewState:     domain.StateSpellingEmail,
			SkipAI:       true,
			Recipient:    cls.Recipient,
		}
	}

	return domain.Directive{
		ResponseText: "Okay, let's set up that email. " + spellingPrompt,
		NewState:     domain.StateSpellingEmail,
		SkipAI:       true,
	}
}

func (h *NormalHandler) handleAgentBound(event domain.TranscriptEvent, cls domain.Classification, session *domain.Session) domain.Directive {
	if !cls.IsCompleteThought {
		// Hold the fragment; the agent is only invoked on a finished thought.
		session.Fragments = append(session.Fragments, event.Transcript)
		return domain.Directive{
			NewState:      domain.StateListening,
			SkipAI:        true,
			PendingAction: domain.ActionAwaitingCompleteThought,
		}
	}

	prompt := joinUtterance(session.Fragments, event.Transcript)
	session.Fragments = nil
	return domain.Directive{
		NewState:    domain.StateListening,
		SkipAI:      false,
		AgentPrompt: prompt,
	}
}
