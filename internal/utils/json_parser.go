package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseModelJSON extracts and parses a JSON object from vision-model output
// that may contain:
// - Pure JSON
// - JSON wrapped in markdown code fences (```json ... ```)
// - JSON with surrounding prose
//
// The extracted text is parsed as-is; no structural repair is attempted, so a
// syntactically broken object stays an error rather than being laundered into
// a parseable one.
func ParseModelJSON(input string, target interface{}) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("empty input")
	}

	// Try direct parsing first (most common case)
	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	// Try to extract JSON from markdown code fences
	if extracted := StripCodeFences(input); extracted != input {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	// Try to find a balanced JSON object in surrounding prose
	if extracted := extractJSONObject(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*[ \t]*\r?\n?(.+?)\\s*```$")

// StripCodeFences removes a leading/trailing markdown fence pair, with or
// without a language tag. Input without a fence wrapper is returned unchanged
// apart from whitespace trimming.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return s
}

// extractJSONObject finds the first balanced JSON object in text.
func extractJSONObject(input string) string {
	start := strings.Index(input, "{")
	if start < 0 {
		return ""
	}
	return extractBalancedBraces(input[start:])
}

// extractBalancedBraces extracts content with balanced braces, respecting
// string literals and escapes.
func extractBalancedBraces(input string) string {
	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}

		if ch == '\\' {
			escape = true
			continue
		}

		if ch == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if ch == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == '}' {
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
