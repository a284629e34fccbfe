// Package ai provides recovery parsing for raw generative-model output.
package ai

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
)

var trailingJunk = regexp.MustCompile(`[:,\s]+$`)

// RecoverJSON converts a text payload that is supposed to be JSON, but may be
// wrapped in Markdown code fences or truncated mid-structure, into a parsed
// object. It returns false when neither the direct parse nor the repair pass
// yields a valid object. The repair is best-effort: a structurally valid but
// semantically incomplete object is an acceptable outcome, and the normalizer
// downstream must tolerate it. Pure in-memory transformation, never panics.
func RecoverJSON(raw string) (map[string]any, bool) {
	text := strings.TrimSpace(stripFences(raw))

	var doc map[string]any
	if err := json.Unmarshal([]byte(text), &doc); err == nil {
		return doc, true
	}
	slog.Warn("initial JSON parse failed, attempting recovery", slog.Int("len", len(text)))

	repaired := repair(text)
	doc = nil
	if err := json.Unmarshal([]byte(repaired), &doc); err != nil {
		slog.Error("JSON recovery failed", slog.Any("error", err))
		return nil, false
	}
	return doc, true
}

// stripFences extracts the payload from Markdown code fences. A ```json fence
// wins over a plain fence; with fewer than two plain fence markers the whole
// text is kept.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```json"); idx >= 0 {
		rest := text[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return rest[:end]
		}
		return rest
	}
	if strings.Contains(text, "```") {
		parts := strings.Split(text, "```")
		if len(parts) >= 3 {
			return parts[1]
		}
		return parts[0]
	}
	return text
}

// repair applies the structural fixes for truncated output: strip trailing
// malformed fragments, balance an odd unescaped-quote count, then close every
// bracket still open at end of text in LIFO order.
func repair(text string) string {
	repaired := trailingJunk.ReplaceAllString(text, "")

	if countUnescapedQuotes(repaired)%2 != 0 {
		repaired += `"`
	}

	var stack []byte
	for i := 0; i < len(repaired); i++ {
		switch repaired[i] {
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == repaired[i] {
				stack = stack[:len(stack)-1]
			}
		}
	}
	for len(stack) > 0 {
		repaired += string(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
	return repaired
}

func countUnescapedQuotes(s string) int {
	n := 0
	escaped := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == '"':
			n++
		}
	}
	return n
}
