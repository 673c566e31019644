// Package extract isolates a single JSON object from raw model output that
// may carry markdown fences, surrounding prose, or several brace-delimited
// fragments.
package extract

import (
	"encoding/json"
	"errors"
	"strings"

	"incidentparse/internal/logging"
)

// ErrNoValidJSON is returned when every extraction strategy is exhausted.
var ErrNoValidJSON = errors.New("no valid JSON object found in response")

// Object returns the first parseable JSON object in response. Strategies are
// tried in order of strictness: the whole fence-stripped string, the span
// from first '{' to last '}', then every balanced-brace candidate in textual
// order. The simplest interpretation that parses wins.
func Object(response string) (map[string]interface{}, error) {
	cleaned := StripFences(response)

	if obj, ok := tryParse(cleaned); ok {
		logging.ExtractDebug("direct parse succeeded len=%d", len(cleaned))
		return obj, nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if obj, ok := tryParse(cleaned[start : end+1]); ok {
			logging.ExtractDebug("outer-brace parse succeeded span=[%d,%d]", start, end)
			return obj, nil
		}
	}

	for _, candidate := range findJSONCandidates(cleaned) {
		if obj, ok := tryParse(candidate); ok {
			logging.ExtractDebug("candidate scan succeeded len=%d", len(candidate))
			return obj, nil
		}
	}

	logging.Extract("no valid JSON in response len=%d", len(response))
	return nil, ErrNoValidJSON
}

func tryParse(s string) (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &obj); err != nil {
		return nil, false
	}
	if obj == nil {
		return nil, false
	}
	return obj, true
}

// StripFences removes markdown code-fence markers and trims whitespace.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// findJSONCandidates scans the input for top-level JSON object candidates.
// It handles nested braces and string escaping to correctly identify
// boundaries, using a byte-level state machine rather than regex.
//
// Note: iterating bytes for ASCII delimiters ({, }, ", \) is safe because
// UTF-8 guarantees ASCII bytes never appear inside a multi-byte sequence.
func findJSONCandidates(s string) []string {
	var candidates []string
	var depth int
	start := -1
	var inString bool
	var escape bool

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		if b == '"' {
			inString = true
			continue
		}

		if b == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if b == '}' {
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}

	return candidates
}
