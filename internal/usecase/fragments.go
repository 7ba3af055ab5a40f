package usecase

import "strings"

// joinUtterance stitches held fragments and the current transcript into one
// utterance for the agent. Streaming recognizers often resend a grown version
// of the previous fragment; a part that extends the accumulated text replaces
// it instead of being appended.
func joinUtterance(fragments []string, current string) string {
	parts := make([]string, 0, len(fragments)+1)
	parts = append(parts, fragments...)
	parts = append(parts, current)

	var joined string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch {
		case joined == "":
			joined = part
		case strings.HasPrefix(part, joined):
			joined = part
		case strings.HasSuffix(joined, part):
			// already contained
		default:
			joined = joined + " " + part
		}
	}
	return joined
}
