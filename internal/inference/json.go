package inference

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// CleanJSON strips code fences and surrounding prose from a response and
// removes trailing commas before closing brackets.
func CleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	text = trailingComma.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// DecodeObject cleans text and decodes it as a single JSON object.
func DecodeObject(text string) (map[string]any, error) {
	cleaned := CleanJSON(text)
	if cleaned == "" {
		return nil, eris.New("inference: empty response")
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, eris.Wrap(err, "inference: decode json object")
	}
	if obj == nil {
		return nil, eris.New("inference: response is not a json object")
	}
	return obj, nil
}
