package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject pulls a JSON object out of a model response. Models wrap
// JSON in Markdown fences or surround it with prose more often than they
// return it bare, so the extraction is tolerant: try the trimmed text as-is,
// then with code fences stripped, then fall back to the first balanced {...}
// substring. The second return value is false when no valid object was found.
func ExtractJSONObject(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if isJSONObject(s) {
		return s, true
	}

	stripped := stripFences(s)
	if isJSONObject(stripped) {
		return stripped, true
	}

	if inner, ok := firstBalancedObject(s); ok {
		return inner, true
	}
	return "", false
}

func isJSONObject(s string) bool {
	return strings.HasPrefix(s, "{") && json.Valid([]byte(s))
}

// stripFences removes a leading ```json / ``` / json marker and a trailing
// ``` fence, covering the variants models actually emit.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop a language tag on the opening fence line.
		if idx := strings.IndexByte(s, '\n'); idx >= 0 && len(strings.TrimSpace(s[:idx])) <= 8 {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	s = strings.TrimSpace(strings.TrimPrefix(s, "json"))
	return s
}

// firstBalancedObject scans for the first brace-balanced substring, honouring
// string literals and escapes, and returns it if it parses as JSON.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}
