// Package classify turns a transcript plus the current session state into a
// routing decision. Classification is deterministic pattern matching: no
// model, no I/O, no side effects.
package classify

import (
	"regexp"
	"strings"

	"voxbot/internal/domain"
	"voxbot/internal/phonetic"
)

// DefaultBotNames matches the bot across common meeting-platform display
// names. Overridable via configuration.
var DefaultBotNames = []string{"bot", "assistant", "voxbot", "vox"}

var terminationPhrases = []string{
	"okay done", "that's it", "thats it",
	"done", "finished", "complete", "end", "stop",
}

var affirmativeWords = []string{
	"yes", "yeah", "yep", "correct", "right", "confirmed",
	"absolutely", "definitely",
}

var negativeWords = []string{
	"no", "nope", "incorrect", "wrong", "cancel", "restart",
	"start over", "try again",
}

var greetingPattern = regexp.MustCompile(`(?i)\b(hello|hi|hey|greetings|good (morning|afternoon|evening))\b`)

var emailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(send|compose|draft|write)\b.*\b(an?\s+)?e?mail\b`),
	regexp.MustCompile(`(?i)\be?mail\b.*\b(to|about)\b`),
}

// recipientPatterns pull a capitalized recipient name out of an email
// request, tried in order.
var recipientPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bemail to ([A-Z][a-zA-Z]+)`),
	regexp.MustCompile(`\bsend ([A-Z][a-zA-Z]+) an email\b`),
	regexp.MustCompile(`\bmessage to ([A-Z][a-zA-Z]+)`),
}

var questionStarters = []string{
	"what", "who", "when", "where", "why", "how", "which",
	"can", "could", "would", "should", "will", "do", "does", "is", "are",
}

var politenessClosers = []string{"please", "thanks", "thank you"}

// Classifier is safe for concurrent use; its tables are read-only after New.
type Classifier struct {
	botNames []string
}

func New(botNames []string) *Classifier {
	if len(botNames) == 0 {
		botNames = DefaultBotNames
	}
	lowered := make([]string, len(botNames))
	for i, name := range botNames {
		lowered[i] = strings.ToLower(strings.TrimSpace(name))
	}
	return &Classifier{botNames: lowered}
}

// Classify produces the routing decision for one transcript event. It never
// fails: any string input, including empty or non-ASCII text, yields a
// decision.
func (c *Classifier) Classify(event domain.TranscriptEvent, session domain.Session) domain.Classification {
	text := strings.TrimSpace(event.Transcript)
	lower := strings.ToLower(text)

	switch session.State {
	case domain.StateToolExecuting:
		// A tool call in flight suppresses all new input until it completes.
		return domain.Classification{
			Route:      domain.RouteSilentIgnore,
			Intent:     domain.IntentToolInProgress,
			Confidence: 0.99,
		}
	case domain.StateSpellingEmail:
		return c.classifySpelling(lower)
	case domain.StateConfirmingEmail:
		return c.classifyConfirmation(lower)
	default:
		return c.classifyNormal(text, lower, session)
	}
}

func (c *Classifier) classifySpelling(lower string) domain.Classification {
	for _, phrase := range terminationPhrases {
		if strings.Contains(lower, phrase) {
			return domain.Classification{
				Route:             domain.RouteSpellingMode,
				Intent:            domain.IntentSpellingComplete,
				IsCompleteThought: true,
				ShouldRespond:     true,
				Confidence:        0.95,
			}
		}
	}

	chars := phonetic.Extract(lower)
	return domain.Classification{
		Route:         domain.RouteSpellingMode,
		Intent:        domain.IntentSpellingContinue,
		ShouldRespond: len(chars) > 0,
		Confidence:    0.9,
		Chars:         chars,
	}
}

func (c *Classifier) classifyConfirmation(lower string) domain.Classification {
	result := domain.Classification{
		Route:      domain.RouteConfirmationMode,
		Confidence: 0.95,
	}

	switch {
	case containsAnyWord(lower, negativeWords):
		// Negatives win: "no, that's not right" contains "right".
		result.Intent = domain.IntentConfirmNo
	case containsAnyWord(lower, affirmativeWords):
		result.Intent = domain.IntentConfirmYes
	default:
		result.Intent = domain.IntentConfirmUnclear
		result.Confidence = 0.4
	}

	result.IsCompleteThought = result.Intent != domain.IntentConfirmUnclear
	result.ShouldRespond = true
	return result
}

// intentMatcher is one step of the fixed precedence order:
// greeting > email request > question > command.
type intentMatcher struct {
	intent string
	route  domain.Route
	match  func(lower string, session domain.Session) bool
}

var intentMatchers = []intentMatcher{
	{
		intent: domain.IntentGreeting,
		route:  domain.RouteGreetingDirect,
		match: func(lower string, session domain.Session) bool {
			// A greeting is a short standalone salutation on the session's
			// first message; "hey bot send an email" is not a greeting.
			return session.MessageCount == 0 &&
				len(strings.Fields(lower)) <= 4 &&
				greetingPattern.MatchString(lower)
		},
	},
	{
		intent: domain.IntentEmailRequest,
		route:  domain.RouteToolCall,
		match: func(lower string, _ domain.Session) bool {
			for _, pattern := range emailPatterns {
				if pattern.MatchString(lower) {
					return true
				}
			}
			return false
		},
	},
	{
		intent: domain.IntentQuestion,
		route:  domain.RouteChatAgent,
		match: func(lower string, _ domain.Session) bool {
			if strings.HasSuffix(strings.TrimSpace(lower), "?") {
				return true
			}
			if strings.Contains(lower, "explain") || strings.Contains(lower, "help me") {
				return true
			}
			first := firstWord(lower)
			for _, starter := range questionStarters {
				if first == starter {
					return true
				}
			}
			return false
		},
	},
	{
		// Fallback: every addressed, unclassified utterance is a command.
		intent: domain.IntentCommand,
		route:  domain.RouteChatAgent,
		match:  func(string, domain.Session) bool { return true },
	},
}

func (c *Classifier) classifyNormal(text, lower string, session domain.Session) domain.Classification {
	addressed := c.botAddressed(lower)
	if !addressed || text == "" {
		// Background meeting chatter must never trigger a response.
		return domain.Classification{
			Route:      domain.RouteSilentIgnore,
			Intent:     domain.IntentIrrelevant,
			Confidence: 0.85,
		}
	}

	complete := isCompleteThought(text, lower, addressed)

	for _, matcher := range intentMatchers {
		if !matcher.match(lower, session) {
			continue
		}
		result := domain.Classification{
			Route:             matcher.route,
			Intent:            matcher.intent,
			IsCompleteThought: complete,
			ShouldRespond:     true,
			Confidence:        intentConfidence(matcher.intent),
			BotAddressed:      true,
		}
		if matcher.intent == domain.IntentEmailRequest {
			result.Recipient = extractRecipient(text)
		}
		// Never hand a fragment to the downstream agent; wait for more
		// speech instead.
		if result.Route == domain.RouteChatAgent && !complete {
			result.ShouldRespond = false
		}
		return result
	}

	// Unreachable: the command matcher always matches.
	return domain.Classification{Route: domain.RouteSilentIgnore, Intent: domain.IntentIrrelevant}
}

// articleWords mark a bot name as a mention rather than a direct address:
// "the bot is muted" talks about the bot, "hey bot" talks to it.
var articleWords = map[string]bool{
	"the": true, "a": true, "an": true, "this": true, "that": true,
}

func (c *Classifier) botAddressed(lower string) bool {
	fields := strings.Fields(lower)
	for _, name := range c.botNames {
		if name == "" {
			continue
		}
		if strings.Contains(name, " ") {
			if strings.Contains(lower, name) {
				return true
			}
			continue
		}
		for i, field := range fields {
			if !strings.Contains(strings.Trim(field, ".,!?'\""), name) {
				continue
			}
			if i > 0 && articleWords[strings.Trim(fields[i-1], ".,!?'\"")] {
				continue
			}
			return true
		}
	}
	return false
}

func isCompleteThought(text, lower string, addressed bool) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return true
	}
	for _, closer := range politenessClosers {
		if strings.Contains(lower, closer) {
			return true
		}
	}
	if containsAnyWord(lower, affirmativeWords) || containsAnyWord(lower, negativeWords) {
		if len(strings.Fields(lower)) <= 2 {
			return true
		}
	}
	return addressed && len(strings.Fields(trimmed)) <= 3
}

// extractRecipient works on the original-case text: the patterns rely on the
// capitalization speech-to-text gives proper names.
func extractRecipient(text string) string {
	for _, pattern := range recipientPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			return match[1]
		}
	}
	return ""
}

func intentConfidence(intent string) float64 {
	switch intent {
	case domain.IntentGreeting:
		return 0.9
	case domain.IntentEmailRequest:
		return 0.9
	case domain.IntentQuestion:
		return 0.85
	default:
		return 0.7
	}
}

func containsAnyWord(lower string, words []string) bool {
	for _, word := range words {
		if strings.Contains(word, " ") {
			if strings.Contains(lower, word) {
				return true
			}
			continue
		}
		for _, field := range strings.Fields(lower) {
			if strings.Trim(field, ".,!?'\"") == word {
				return true
			}
		}
	}
	return false
}

func firstWord(lower string) string {
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,!?'\"")
}
