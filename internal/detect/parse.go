package detect

import (
	"encoding/json"
	"fmt"
	"strings"

	"docaudit/internal/models"
)

// ParseFindings turns a raw model response into findings. Two tiers:
// a strict parse of the trimmed response, then a scan for the first
// well-formed array-of-objects substring embedded in surrounding prose.
// The fallback is a documented part of the contract. Models routinely
// wrap the array in text despite instructions.
func ParseFindings(raw string) ([]models.Finding, error) {
	trimmed := strings.TrimSpace(raw)

	var elems []map[string]string
	if err := json.Unmarshal([]byte(trimmed), &elems); err != nil {
		candidate, ok := firstJSONArray(trimmed)
		if !ok {
			return nil, fmt.Errorf("%w: no JSON findings array in response", models.ErrMalformedOutput)
		}
		if err := json.Unmarshal([]byte(candidate), &elems); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrMalformedOutput, err)
		}
	}

	// Validate after either tier: every element must carry all three
	// fields, and one bad element fails the whole array.
	findings := make([]models.Finding, 0, len(elems))
	for _, elem := range elems {
		for _, key := range []string{"term", "error", "location"} {
			if _, ok := elem[key]; !ok {
				return nil, fmt.Errorf("%w: finding missing %q field", models.ErrMalformedOutput, key)
			}
		}
		findings = append(findings, models.Finding{
			Term:     elem["term"],
			Error:    elem["error"],
			Location: elem["location"],
		})
	}
	return findings, nil
}

// firstJSONArray extracts the first bracket-balanced array of objects (or
// empty-array literal) from text. Brackets inside JSON strings are ignored
// by tracking quote and escape state; arrays that are not arrays of objects
// are skipped.
func firstJSONArray(text string) (string, bool) {
	for start := 0; start < len(text); start++ {
		if text[start] != '[' {
			continue
		}
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(text); i++ {
			c := text[i]
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
			case c == '[':
				depth++
			case c == ']':
				depth--
				if depth == 0 {
					candidate := text[start : i+1]
					if isObjectArray(candidate) {
						return candidate, true
					}
					i = len(text) // not a findings array, try the next '['
				}
			}
		}
	}
	return "", false
}

func isObjectArray(candidate string) bool {
	var elems []map[string]json.RawMessage
	return json.Unmarshal([]byte(candidate), &elems) == nil
}
