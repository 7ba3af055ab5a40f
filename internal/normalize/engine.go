// Package normalize corrects recurring speech-to-text mishears before
// classification ("at sine" -> "at sign"). Rules load once at startup;
// application is deterministic and pure.
package normalize

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

const defaultIterationLimit = 10

type rule struct {
	re          *regexp.Regexp
	replacement string
	global      bool
}

func (r rule) apply(input string) string {
	if r.global {
		return r.re.ReplaceAllString(input, r.replacement)
	}
	loc := r.re.FindStringIndex(input)
	if loc == nil {
		return input
	}
	segment := input[loc[0]:loc[1]]
	return input[:loc[0]] + r.re.ReplaceAllString(segment, r.replacement) + input[loc[1]:]
}

// Engine applies substitution rules until the text stops changing.
type Engine struct {
	rules     []rule
	iterLimit int
}

// builtinRules cover mishears the phonetic extractor cannot absorb on its own.
var builtinRules = []string{
	"at sine => at sign",
	"at the rate => at",
	"under score => underscore",
	"full stop => dot",
	"g mail => gmail",
}

// NewEngine loads rules from path, layered on top of the built-in set. An
// empty or missing path means built-ins only.
func NewEngine(path string, iterLimit int) (*Engine, error) {
	if iterLimit <= 0 {
		iterLimit = defaultIterationLimit
	}

	lines := append([]string(nil), builtinRules...)
	if strings.TrimSpace(path) != "" {
		contents, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read substitutions file %q: %w", path, err)
		}
		if err == nil {
			lines = append(lines, strings.Split(string(contents), "\n")...)
		}
	}

	rules, err := parseLines(lines)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: rules, iterLimit: iterLimit}, nil
}

// Apply rewrites the transcript, iterating until no rule changes it.
func (e *Engine) Apply(text string) string {
	result := text
	for i := 0; i < e.iterLimit; i++ {
		changed := false
		for _, r := range e.rules {
			next := r.apply(result)
			if next != result {
				result = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return result
}

func parseLines(lines []string) ([]rule, error) {
	rules := make([]rule, 0, len(lines))
	for index, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parsed, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("substitution line %d: %w", index+1, err)
		}
		rules = append(rules, parsed)
	}
	return rules, nil
}

// parseLine accepts "from => to" literals and "s/pattern/replacement/flags"
// regex rules (any non-alphanumeric delimiter, backslash escapes it inside
// the pattern). Literals match case-insensitively and replace every
// occurrence; regex rules replace the first match unless the g flag is set.
func parseLine(line string) (rule, error) {
	if looksLikeRegexRule(line) {
		return parseRegexLine(line)
	}

	parts := strings.SplitN(line, "=>", 2)
	if len(parts) != 2 {
		return rule{}, errors.New("expected \"from => to\"")
	}
	from := strings.TrimSpace(parts[0])
	if from == "" {
		return rule{}, errors.New("literal source cannot be empty")
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(from))
	return rule{re: re, replacement: strings.TrimSpace(parts[1]), global: true}, nil
}

func parseRegexLine(line string) (rule, error) {
	delim := line[1]

	pattern, pos, err := parseDelimited(line, 2, delim)
	if err != nil {
		return rule{}, fmt.Errorf("invalid pattern: %w", err)
	}
	replacement, pos, err := parseDelimited(line, pos, delim)
	if err != nil {
		return rule{}, fmt.Errorf("invalid replacement: %w", err)
	}

	ignoreCase, global, multiLine, dotAll := true, false, false, false
	for _, flag := range strings.TrimSpace(line[pos:]) {
		switch flag {
		case 'i':
			ignoreCase = true
		case 'g':
			global = true
		case 'm':
			multiLine = true
		case 's':
			dotAll = true
		case ' ':
		default:
			return rule{}, fmt.Errorf("unsupported flag %q", flag)
		}
	}

	prefix := ""
	if ignoreCase {
		prefix += "i"
	}
	if multiLine {
		prefix += "m"
	}
	if dotAll {
		prefix += "s"
	}
	if prefix != "" {
		pattern = "(?" + prefix + ")" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return rule{}, fmt.Errorf("invalid pattern: %w", err)
	}
	return rule{re: re, replacement: replacement, global: global}, nil
}

// parseDelimited reads up to the next unescaped delimiter, keeping escape
// sequences intact for the regexp compiler.
func parseDelimited(line string, start int, delim byte) (string, int, error) {
	if start >= len(line) {
		return "", 0, errors.New("unexpected end of expression")
	}

	var builder strings.Builder
	escaped := false
	for index := start; index < len(line); index++ {
		char := line[index]
		if escaped {
			builder.WriteByte(char)
			escaped = false
			continue
		}
		if char == '\\' {
			escaped = true
			builder.WriteByte(char)
			continue
		}
		if char == delim {
			return builder.String(), index + 1, nil
		}
		builder.WriteByte(char)
	}
	return "", 0, errors.New("unterminated expression")
}

func looksLikeRegexRule(line string) bool {
	return len(line) > 1 && line[0] == 's' && !isAlphaNumericOrSpace(line[1])
}

func isAlphaNumericOrSpace(char byte) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9') ||
		char == ' ' || char == '\t'
}
