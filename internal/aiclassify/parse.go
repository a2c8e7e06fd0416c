package aiclassify

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// verdictPayload is the JSON object backends must return. Pointer
// fields distinguish absent from zero-valued; extra fields are
// ignored.
type verdictPayload struct {
	IsServiceProvider *bool    `json:"is_service_provider"`
	Confidence        *float64 `json:"confidence"`
	Reason            string   `json:"reason"`
}

// parseVerdict extracts and validates the strict verdict object from
// model output. Missing required fields or wrong types are errors:
// the caller treats them as a classification failure for that item.
func parseVerdict(text string) (provider bool, confidence float64, reason string, err error) {
	cleaned := cleanJSON(text)
	if cleaned == "" {
		return false, 0, "", eris.New("aiclassify: empty response")
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return false, 0, "", eris.Wrap(err, "aiclassify: parse verdict")
	}

	if payload.IsServiceProvider == nil {
		return false, 0, "", eris.New("aiclassify: verdict missing is_service_provider")
	}
	if payload.Confidence == nil {
		return false, 0, "", eris.New("aiclassify: verdict missing confidence")
	}

	confidence = *payload.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return *payload.IsServiceProvider, confidence, payload.Reason, nil
}

// cleanJSON attempts to extract a JSON object from text that may
// contain markdown code fences or other wrapping.
func cleanJSON(text string) string {
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

	return strings.TrimSpace(text)
}
