package repair

import (
	"encoding/json"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
)

// FirstJSONObject returns the first balanced JSON object substring in s.
// Language models wrap JSON in prose or code fences; this scans for the
// first '{' and tracks brace depth, honouring string literals and escapes.
// The second return is false when no balanced object exists.
func FirstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range s {
		if start == -1 {
			if r == '{' {
				start = i
				depth = 1
			}
			continue
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// DecodeMapping extracts the first JSON object from a model response and
// decodes it as a string-to-string mapping. Any parse failure yields
// (nil, false): unparseable escalation output means "no additional
// mappings", never a hard error.
func DecodeMapping(response string) (domain.RepairMap, bool) {
	obj, ok := FirstJSONObject(response)
	if !ok {
		return nil, false
	}

	var m domain.RepairMap
	if err := json.Unmarshal([]byte(obj), &m); err != nil {
		return nil, false
	}
	if len(m) == 0 {
		return nil, false
	}
	return m, true
}
