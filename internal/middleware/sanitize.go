package middleware

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	scriptURIPattern    = regexp.MustCompile(`(?i)javascript\s*:`)
	eventHandlerPattern = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)
)

// SanitizeJSON parses body as JSON, strips script-injection patterns from
// every string value recursively, and returns the re-encoded document.
// Returns an error if the body is not valid JSON.
func SanitizeJSON(body []byte) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(sanitizeValue(doc))
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return sanitizeString(val)
	case map[string]any:
		for k, item := range val {
			val[k] = sanitizeValue(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = sanitizeValue(item)
		}
		return val
	default:
		return v
	}
}

func sanitizeString(s string) string {
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	s = scriptURIPattern.ReplaceAllString(s, "")
	s = eventHandlerPattern.ReplaceAllString(s, "")
	return s
}
