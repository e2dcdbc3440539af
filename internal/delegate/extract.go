package delegate

import (
	"encoding/json"
	"strings"

	"github.com/capstanhq/capstan/internal/errors"
)

// ExtractJSON defensively extracts a JSON object from a delegate reply.
// Delegates are asked to answer with bare JSON but routinely wrap it in
// markdown code fences or surrounding prose.
func ExtractJSON(reply string) ([]byte, error) {
	str := stripCodeFences(reply)

	if json.Valid([]byte(str)) {
		return []byte(str), nil
	}

	// Fall back to the outermost object boundaries.
	start := strings.Index(str, "{")
	end := strings.LastIndex(str, "}")
	if start == -1 || end == -1 || start >= end {
		return nil, errors.New("no JSON object found in delegate reply")
	}

	extracted := str[start : end+1]
	if !json.Valid([]byte(extracted)) {
		return nil, errors.New("extracted content is not valid JSON")
	}
	return []byte(extracted), nil
}

// stripCodeFences removes a surrounding markdown code block, if present.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if cut, found := strings.CutPrefix(s, "```json"); found {
		s = cut
	} else if cut, found := strings.CutPrefix(s, "```"); found {
		s = cut
	}
	if cut, found := strings.CutSuffix(s, "```"); found {
		s = cut
	}
	return strings.TrimSpace(s)
}
