// Package jsonx pulls the first usable JSON value out of a noisy text blob,
// the kind a text-completion oracle returns. Priority order: fenced
// ```json block, then the whole string, then the first balanced {...} or
// [...] span. Callers get json.RawMessage and decide the shape themselves.
package jsonx

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// Extract returns the first JSON value found in text and true on success.
func Extract(text string) (json.RawMessage, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, " ", " "))
	if cleaned == "" {
		return nil, false
	}

	if m := fencedBlock.FindStringSubmatch(cleaned); m != nil {
		if raw, ok := tryParse(m[1]); ok {
			return raw, true
		}
	}

	if raw, ok := tryParse(cleaned); ok {
		return raw, true
	}

	for _, open := range []byte{'{', '['} {
		if raw, ok := balancedSpan(cleaned, open); ok {
			return raw, true
		}
	}
	return nil, false
}

// ExtractInto extracts and unmarshals into v in one step.
func ExtractInto(text string, v any) bool {
	raw, ok := Extract(text)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func tryParse(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	if !json.Valid([]byte(s)) {
		return nil, false
	}
	// Only objects and arrays count; a bare string or number in prose is
	// almost never the payload the caller wants.
	if s[0] != '{' && s[0] != '[' {
		return nil, false
	}
	return json.RawMessage(s), true
}

// balancedSpan scans for the first balanced bracket/brace span and parses it.
// Quotes and escapes are honored so braces inside strings don't confuse the
// depth count.
func balancedSpan(s string, open byte) (json.RawMessage, bool) {
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}

	start := strings.IndexByte(s, open)
	for start >= 0 {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			c := s[i]
			if escaped {
				escaped = false
				continue
			}
			switch {
			case c == '\\' && inString:
				escaped = true
			case c == '"':
				inString = !inString
			case inString:
			case c == open:
				depth++
			case c == closing:
				depth--
				if depth == 0 {
					if raw, ok := tryParse(s[start : i+1]); ok {
						return raw, true
					}
					i = len(s) // abandon this start position
				}
			}
		}
		next := strings.IndexByte(s[start+1:], open)
		if next < 0 {
			break
		}
		start = start + 1 + next
	}
	return nil, false
}
