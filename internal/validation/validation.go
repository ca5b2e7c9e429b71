package validation

import (
	"encoding/json"
	"strings"
)

// Kind classifies a validation failure so the caller can pick a response
// category (and decide whether retrying makes sense).
type Kind string

const (
	// Pre-call failures: detected before any external API call is made.
	KindMissingRequiredData Kind = "MISSING_REQUIRED_DATA"
	KindInvalidInput        Kind = "INVALID_INPUT"
	KindMissingAPIKey       Kind = "MISSING_API_KEY"

	// External-call failure: the generation request itself did not complete.
	KindGenerationFailed Kind = "GENERATION_FAILED"

	// Response failures: the model answered but the payload is unusable.
	KindProcessingError       Kind = "PROCESSING_ERROR"
	KindInvalidResponseFormat Kind = "INVALID_RESPONSE_FORMAT"
	KindInvalidResumeFormat   Kind = "INVALID_RESUME_FORMAT"
	KindInvalidChangesSummary Kind = "INVALID_CHANGES_SUMMARY"
	KindInvalidContentLength  Kind = "INVALID_CONTENT_LENGTH"
	KindInvalidSummaryLength  Kind = "INVALID_SUMMARY_LENGTH"
)

// Error is a tagged validation failure. It never wraps a panic and is the only
// error type the optimize flow lets cross its boundary.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// OptimizationResult is the validated payload of a successful generation call.
type OptimizationResult struct {
	OptimizedResume string `json:"optimizedResume"`
	ChangesSummary  string `json:"changesSummary"`
}

const (
	// Minimum lengths for the generated fields.
	MinResumeLength  = 100
	MinSummaryLength = 20

	// Minimum length for caller-supplied inputs, checked before any call.
	MinInputLength = 10
)

// ExtractJSON pulls a JSON object candidate out of raw model output. Models
// routinely wrap the payload in markdown fences or surrounding prose, so the
// fences are stripped first and the text is then narrowed to the span between
// the first '{' and the last '}' unless it already starts and ends with braces.
func ExtractJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if strings.HasPrefix(cleaned, "{") && strings.HasSuffix(cleaned, "}") {
		return cleaned
	}
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return cleaned
	}
	return cleaned[start : end+1]
}

// Validate converts raw generation output into an OptimizationResult or a
// tagged *Error. Checks run in a fixed order and short-circuit at the first
// failure; the function is a pure transformation over its input.
func Validate(raw string) (*OptimizationResult, error) {
	cleaned := ExtractJSON(raw)

	var parsed any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, newError(KindProcessingError, "AI response was not valid JSON")
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, newError(KindInvalidResponseFormat, "AI response is not a JSON object")
	}

	resume, ok := obj["optimizedResume"].(string)
	if !ok {
		return nil, newError(KindInvalidResumeFormat, "optimizedResume is missing or not text")
	}
	summary, ok := obj["changesSummary"].(string)
	if !ok {
		return nil, newError(KindInvalidChangesSummary, "changesSummary is missing or not text")
	}

	if len(resume) < MinResumeLength {
		return nil, newError(KindInvalidContentLength, "optimized resume is too short to be usable")
	}
	if len(summary) < MinSummaryLength {
		return nil, newError(KindInvalidSummaryLength, "changes summary is too short to be usable")
	}

	return &OptimizationResult{OptimizedResume: resume, ChangesSummary: summary}, nil
}

// ValidateInputs runs the pre-call checks on the caller-supplied resume and job
// description. It exists so the optimize flow can reject bad input without
// spending an external call.
func ValidateInputs(baseResume, jobDescription string) error {
	if strings.TrimSpace(baseResume) == "" {
		return newError(KindMissingRequiredData, "job has no base resume to optimize")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return newError(KindMissingRequiredData, "job has no job description")
	}
	if len(baseResume) < MinInputLength {
		return newError(KindInvalidInput, "base resume is too short to optimize")
	}
	if len(jobDescription) < MinInputLength {
		return newError(KindInvalidInput, "job description is too short to optimize against")
	}
	return nil
}
