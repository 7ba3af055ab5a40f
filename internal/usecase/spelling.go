package usecase

import (
	"fmt"
	"strings"

	"voxbot/internal/domain"
	"voxbot/internal/phonetic"
)

var cancellationPhrases = []string{"cancel", "start over", "restart"}

// containsCancellation is shared by the spelling and confirmation handlers:
// cancellation takes precedence over every intent-specific branch.
func containsCancellation(transcript string) bool {
	lower := strings.ToLower(transcript)
	for _, phrase := range cancellationPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func cancelDirective(session *domain.Session) domain.Directive {
	session.EmailBuffer = ""
	session.PendingEmail = ""
	session.Fragments = nil
	return domain.Directive{
		ResponseText: "Okay, I've cancelled that.",
		NewState:     domain.StateIdle,
		SkipAI:       true,
	}
}

// SpellingHandler accumulates phonetically spelled characters into the
// session's email buffer across turns in SPELLING_EMAIL.
type SpellingHandler struct{}

func NewSpellingHandler() *SpellingHandler {
	return &SpellingHandler{}
}

func (h *SpellingHandler) Handle(event domain.TranscriptEvent, cls domain.Classification, session *domain.Session) domain.Directive {
	if containsCancellation(event.Transcript) {
		return cancelDirective(session)
	}

	if cls.Intent == domain.IntentSpellingComplete {
		return h.complete(session)
	}
	return h.accumulate(cls, session)
}

func (h *SpellingHandler) complete(session *domain.Session) domain.Directive {
	if session.EmailBuffer == "" {
		return domain.Directive{
			ResponseText: "I don't have any characters yet. " + spellingPrompt,
			NewState:     domain.StateSpellingEmail,
			SkipAI:       true,
		}
	}

	if !phonetic.LooksLikeEmail(session.EmailBuffer) {
		return domain.Directive{
			ResponseText: fmt.Sprintf(
				"So far I have %s, which doesn't look like a complete address yet. Keep spelling, or say start over.",
				phonetic.SpokenForm(session.EmailBuffer)),
			NewState: domain.StateSpellingEmail,
			SkipAI:   true,
		}
	}

	session.PendingEmail = session.EmailBuffer
	return domain.Directive{
		ResponseText: fmt.Sprintf("I have %s. Is that correct?",
			phonetic.SpokenForm(session.EmailBuffer)),
		NewState:      domain.StateConfirmingEmail,
		SkipAI:        true,
		PendingAction: domain.ActionAwaitConfirmation,
	}
}

func (h *SpellingHandler) accumulate(cls domain.Classification, session *domain.Session) domain.Directive {
	if len(cls.Chars) == 0 {
		return domain.Directive{
			ResponseText: "I didn't catch any letters there. Try phonetic words like alpha or bravo, or say done.",
			NewState:     domain.StateSpellingEmail,
			SkipAI:       true,
		}
	}

	session.EmailBuffer += strings.Join(cls.Chars, "")
	return domain.Directive{
		ResponseText: fmt.Sprintf("So far I have: %s", phonetic.SpokenForm(session.EmailBuffer)),
		NewState:     domain.StateSpellingEmail,
		SkipAI:       true,
		EmailChars:   cls.Chars,
	}
}
