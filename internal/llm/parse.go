package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSONCandidate locates the most likely JSON span in model output.
// Search order: a fenced code block (with or without a language hint), then
// the widest syntactically balanced curly-brace span in the full text.
// Returns "" when neither is found. The candidate is NOT validated here.
func ExtractJSONCandidate(text string) string {
	if inner, ok := fencedBlock(text); ok {
		return inner
	}
	if span, ok := balancedBraceSpan(text); ok {
		return span
	}
	return ""
}

// ParseJSON extracts and strictly parses a JSON candidate from model output.
// Malformed JSON yields a *ParseError carrying the raw text and the candidate;
// no repair (trailing-comma stripping, quote-guessing) is attempted.
func ParseJSON(text string) (json.RawMessage, error) {
	candidate := ExtractJSONCandidate(text)
	if candidate == "" {
		return nil, &ParseError{Raw: text}
	}

	var probe any
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil, &ParseError{Raw: text, Candidate: candidate, Cause: err}
	}

	return json.RawMessage(candidate), nil
}

// fencedBlock returns the inner span of the first ``` fence, skipping a
// language hint on the opening line.
func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]

	// Drop the language hint (e.g. "json") up to the first newline.
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		firstLine := strings.TrimSpace(rest[:nl])
		if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
			rest = rest[nl+1:]
		}
	}

	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}

	inner := strings.TrimSpace(rest[:end])
	if inner == "" {
		return "", false
	}
	return inner, true
}

// balancedBraceSpan scans for the widest balanced {...} span, tracking string
// literals and escapes so braces inside JSON strings do not confuse the depth
// count. Starting from the earliest opening brace yields the widest enclosing
// span; unbalanced openers are skipped.
func balancedBraceSpan(text string) (string, bool) {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}

		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(text); i++ {
			ch := text[i]
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
						return text[start : i+1], true
					}
				}
			}
		}
		// This opener never closes; a later one cannot be wider but may
		// still be balanced.
	}
	return "", false
}
