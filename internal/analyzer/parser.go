package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/malawibank/analyzer/internal/domain"
)

// parseAnalysis decodes the raw model reply into an AnalysisResult. The
// schema is enforced on the model side, but the transport payload is still
// treated as untrusted text: empty or malformed JSON is an error, never a
// silent default.
func parseAnalysis(raw string) (*domain.AnalysisResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("parseAnalysis: empty response from model")
	}

	clean := cleanModelJSON(raw)

	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return nil, fmt.Errorf("parseAnalysis: unmarshal JSON: %w", err)
	}

	if err := domain.ValidateResult(&result); err != nil {
		return nil, fmt.Errorf("parseAnalysis: %w", err)
	}

	return &result, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the JSON-only instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: keep only from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
