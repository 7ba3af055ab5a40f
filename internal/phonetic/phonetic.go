// Package phonetic maps spoken tokens to email-address characters and back.
// All tables are built once at init and never mutated.
package phonetic

import (
	"regexp"
	"strings"
)

// wordChars resolves single spoken words to characters: NATO code words,
// digit words, and punctuation words.
var wordChars = map[string]string{
	"alpha": "a", "bravo": "b", "charlie": "c", "delta": "d", "echo": "e",
	"foxtrot": "f", "golf": "g", "hotel": "h", "india": "i", "juliet": "j",
	"juliett": "j", "kilo": "k", "lima": "l", "mike": "m", "november": "n",
	"oscar": "o", "papa": "p", "quebec": "q", "romeo": "r", "sierra": "s",
	"tango": "t", "uniform": "u", "victor": "v", "whiskey": "w", "xray": "x",
	"yankee": "y", "zulu": "z",

	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",

	"at": "@", "dot": ".", "period": ".", "point": ".",
	"dash": "-", "hyphen": "-", "minus": "-", "underscore": "_",
}

// phraseChars resolves two-word phrases, checked before single tokens.
var phraseChars = map[string]string{
	"at sign":     "@",
	"at symbol":   "@",
	"under score": "_",
	"x ray":       "x",
}

// fillerWords are spoken noise around a spelled address, skipped silently.
var fillerWords = map[string]bool{
	"um": true, "uh": true, "er": true, "ah": true, "hmm": true,
	"okay": true, "ok": true, "so": true, "like": true, "yeah": true,
	"please": true, "the": true, "a": true, "an": true, "and": true,
	"then": true, "next": true, "my": true, "is": true, "it": true,
	"its": true, "email": true, "address": true, "letter": true,
	"spell": true, "spelling": true, "that": true, "thats": true,
}

var (
	addressPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	wordToken      = regexp.MustCompile(`^[a-z0-9]+$`)
	tokenCleaner   = regexp.MustCompile(`[^a-z0-9]+`)
)

// Extract resolves a transcript into the ordered characters it spells out.
// Pure: the result depends only on the input. Unrecognized tokens are
// skipped, never an error.
func Extract(transcript string) []string {
	tokens := tokenize(transcript)
	chars := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) {
			if ch, ok := phraseChars[tokens[i]+" "+tokens[i+1]]; ok {
				chars = append(chars, ch)
				i++
				continue
			}
		}

		token := tokens[i]
		if len(token) == 1 {
			chars = append(chars, token)
			continue
		}
		if ch, ok := wordChars[token]; ok {
			chars = append(chars, ch)
			continue
		}
		if fillerWords[token] {
			continue
		}
		// A plain word like "gmail" or "com" is taken literally; anything
		// else is filler.
		if wordToken.MatchString(token) {
			chars = append(chars, strings.Split(token, "")...)
		}
	}

	return chars
}

func tokenize(transcript string) []string {
	fields := strings.Fields(strings.ToLower(transcript))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		cleaned := tokenCleaner.ReplaceAllString(field, "")
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}
	return tokens
}

// SpokenForm renders an address for text-to-speech, with punctuation read as
// words: "abc@x.io" becomes "a b c at x dot i o".
func SpokenForm(address string) string {
	var words []string
	for _, r := range address {
		switch r {
		case '@':
			words = append(words, "at")
		case '.':
			words = append(words, "dot")
		case '-':
			words = append(words, "dash")
		case '_':
			words = append(words, "underscore")
		default:
			words = append(words, string(r))
		}
	}
	return strings.Join(words, " ")
}

// LooksLikeEmail reports whether the accumulated buffer has basic
// local@domain.tld shape: exactly one @, a dot after it, non-empty segments.
func LooksLikeEmail(candidate string) bool {
	at := strings.Index(candidate, "@")
	if at <= 0 || at != strings.LastIndex(candidate, "@") {
		return false
	}
	domain := candidate[at+1:]
	lastDot := strings.LastIndex(domain, ".")
	if lastDot <= 0 || lastDot == len(domain)-1 {
		return false
	}
	for _, segment := range strings.Split(domain, ".") {
		if segment == "" {
			return false
		}
	}
	return true
}

// ExtractAddress pulls the first well-formed email address out of free text,
// or "" when none is present.
func ExtractAddress(text string) string {
	return strings.ToLower(addressPattern.FindString(text))
}
