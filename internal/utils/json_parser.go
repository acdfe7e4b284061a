package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedBlock   = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKey   = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	controlChars  = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON decodes a JSON object out of model output. It accepts a bare
// object, a ```json fenced block, an object embedded in prose, and objects
// with trailing commas or unquoted keys.
func ParseAIJSON(input string, target any) error {
	input = strings.TrimSpace(strings.TrimPrefix(input, "\uFEFF"))
	if input == "" {
		return fmt.Errorf("empty input")
	}

	candidates := []string{input}
	if m := fencedBlock.FindStringSubmatch(input); len(m) > 1 {
		candidates = append(candidates, m[1])
	}
	if obj := extractBalanced(input, '{', '}'); obj != "" {
		candidates = append(candidates, obj)
	}

	for _, c := range candidates {
		if json.Unmarshal([]byte(c), target) == nil {
			return nil
		}
	}
	for _, c := range candidates {
		if json.Unmarshal([]byte(repairJSON(c)), target) == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// extractBalanced returns the first balanced open...close span, skipping
// delimiters inside string literals.
func extractBalanced(input string, open, close rune) string {
	start := strings.IndexRune(input, open)
	if start < 0 {
		return ""
	}
	depth := 0
	inString, escape := false, false
	for i, ch := range input[start:] {
		switch {
		case escape:
			escape = false
		case ch == '\\' && inString:
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return input[start : start+i+1]
			}
		}
	}
	return ""
}

func repairJSON(s string) string {
	s = trailingComma.ReplaceAllString(s, "$1")
	s = unquotedKey.ReplaceAllString(s, `$1"$2"$3`)
	return controlChars.ReplaceAllString(s, "")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
