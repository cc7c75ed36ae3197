package llm

import (
	"context"

	"health-tracker/pkg"
)

// Client is the assessment client consumed by the pipeline and the report
// builder. Every operation is total: on transport failure or unusable model
// output it returns a conservative default instead of an error, and the
// second return value (or the Fallback field on assessments) reports whether
// the model actually produced the value.
type Client interface {
	// ScoreSeverity turns symptom text into a severity score in [0,100].
	// Returns DefaultSeverityScore with fromModel=false when the response is
	// not a parseable integer or the call fails.
	ScoreSeverity(ctx context.Context, symptoms string) (score int, fromModel bool)

	// AssessTriage produces the structured five-field triage verdict in the
	// same language as the input. Ambiguous or failed analysis never escalates:
	// the fallback verdict is always self-monitor.
	AssessTriage(ctx context.Context, symptoms, language string) pkg.TriageAssessment

	// ChatReply answers a user message given the most recent history turns.
	ChatReply(ctx context.Context, message string, history []pkg.ChatMessage, language string) (reply string, fromModel bool)

	// SummarizeForReport writes the short narrative block of a medical report
	// from a bounded window of recent records.
	SummarizeForReport(ctx context.Context, profile *pkg.Profile, logs []pkg.HealthLogEntry, triage []pkg.TriageResult) (narrative string, fromModel bool)

	// DetectLanguage returns a two-letter language code for the text,
	// defaulting to "en".
	DetectLanguage(ctx context.Context, text string) string
}

// DefaultSeverityScore is returned whenever severity scoring cannot trust the
// model output. Severity is advisory only, never fatal.
const DefaultSeverityScore = 50

// Fixed strings returned on the degraded paths.
const (
	chatUnavailableReply = "I'm having trouble responding right now. Please try again."
	reportUnavailable    = "Unable to generate report at this time. Please try again later."
)

// FallbackAssessment is the conservative terminal verdict used when the model
// is unreachable or its output is unusable. It deliberately never defaults to
// a more urgent category.
func FallbackAssessment() pkg.TriageAssessment {
	return pkg.TriageAssessment{
		TriageLevel:       pkg.TriageSelfMonitor,
		Confidence:        pkg.ConfidenceMedium,
		Reasoning:         "Automated analysis was unavailable for these symptoms.",
		RecommendedAction: "Monitor your symptoms and consult a healthcare professional if they persist or worsen.",
		DetailedAnalysis:  "Unable to generate a detailed analysis at this time.",
		Fallback:          true,
	}
}
