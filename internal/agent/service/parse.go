package service

import (
	"encoding/json"
	"strings"
)

// ParseToolOutput coerces an LLM reply into a JSON document. Models are
// asked for bare JSON but routinely wrap it in markdown fences or prose;
// anything that still refuses to parse is preserved verbatim under
// raw_text so no generation is ever lost.
func ParseToolOutput(reply string) json.RawMessage {
	candidate := strings.TrimSpace(reply)
	candidate = stripCodeFence(candidate)

	if json.Valid([]byte(candidate)) && looksLikeDocument(candidate) {
		return json.RawMessage(candidate)
	}

	// salvage an embedded object from surrounding prose
	if start := strings.Index(candidate, "{"); start >= 0 {
		if end := strings.LastIndex(candidate, "}"); end > start {
			inner := candidate[start : end+1]
			if json.Valid([]byte(inner)) {
				return json.RawMessage(inner)
			}
		}
	}

	fallback, _ := json.Marshal(map[string]string{"raw_text": reply})
	return fallback
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// language tag on the fence line
	if idx := strings.Index(s, "\n"); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "json" || first == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// looksLikeDocument rejects bare scalars like "42" or a quoted sentence,
// which are valid JSON but useless as tool output.
func looksLikeDocument(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
