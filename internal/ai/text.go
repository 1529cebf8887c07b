package ai

import (
	"errors"
	"strings"
)

// ErrNoJSONObject is returned when a model response contains no JSON object.
var ErrNoJSONObject = errors.New("no JSON object found in response")

// ExtractJSONObject pulls the outermost JSON object out of an LLM response.
// Models wrap JSON in markdown fences or prose more often than not, so the
// raw response cannot be unmarshalled directly.
func ExtractJSONObject(s string) (string, error) {
	s = strings.TrimSpace(s)

	// Strip markdown code fences
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	if start < 0 {
		return "", ErrNoJSONObject
	}

	// Walk to the matching close brace, ignoring braces inside strings.
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], nil
				}
			}
		}
	}

	return "", ErrNoJSONObject
}
