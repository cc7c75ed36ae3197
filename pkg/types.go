package pkg

import (
	"errors"
	"time"
)

// Sentinel errors surfaced to callers as distinguishable outcomes rather than
// generic failures.
var (
	// ErrEmailTaken is returned when registration hits an existing email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when a user id has no matching row.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound is returned when a chat session does not exist or
	// does not belong to the requesting user.
	ErrSessionNotFound = errors.New("chat session not found")
)

// TriageLevel is the categorical urgency verdict attached to a symptom report.
type TriageLevel string

const (
	TriageSelfMonitor TriageLevel = "self-monitor"
	TriageVisitDoctor TriageLevel = "visit-doctor"
	TriageUrgentCare  TriageLevel = "urgent-care"
	TriageEmergency   TriageLevel = "emergency"
)

// Valid reports whether the level is one of the recognised verdicts.
func (t TriageLevel) Valid() bool {
	switch t {
	case TriageSelfMonitor, TriageVisitDoctor, TriageUrgentCare, TriageEmergency:
		return true
	}
	return false
}

// Confidence expresses how certain the model was about a triage verdict.
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// Valid reports whether the confidence is one of the recognised grades.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// MessageRole describes who authored a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// User is an account row. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
	LastLogin    time.Time `json:"last_login"`
}

// Profile holds the mutable health-profile attributes of a user. Dates are
// ISO-8601 strings to match how they are entered and compared.
type Profile struct {
	Email             string  `json:"email"`
	FullName          string  `json:"full_name"`
	DateOfBirth       string  `json:"date_of_birth"`
	BloodGroup        string  `json:"blood_group"`
	Height            float64 `json:"height"`
	Weight            float64 `json:"weight"`
	Allergies         string  `json:"allergies"`
	Medications       string  `json:"medications"`
	ChronicConditions string  `json:"chronic_conditions"`
	EmergencyContact  string  `json:"emergency_contact"`
}

// HealthLogEntry is a single daily check-in. SeverityScore is nil when the
// model response could not be parsed into an integer.
type HealthLogEntry struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Date          string    `json:"date"`
	Symptoms      string    `json:"symptoms"`
	SeverityScore *int      `json:"severity_score"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TriageResult is the persisted outcome of one triage request. Rows are
// append-only and immutable.
type TriageResult struct {
	ID                int64       `json:"id"`
	UserID            int64       `json:"user_id"`
	Symptoms          string      `json:"symptoms"`
	TriageLevel       TriageLevel `json:"triage_level"`
	Confidence        Confidence  `json:"confidence"`
	Reasoning         string      `json:"reasoning"`
	RecommendedAction string      `json:"recommended_action"`
	DetailedAnalysis  string      `json:"detailed_analysis"`
	CreatedAt         time.Time   `json:"created_at"`
}

// TriageAssessment is the structured verdict produced by the assessment
// client. The JSON tags match the object the model is instructed to emit.
// Fallback marks assessments that were substituted for an unusable or absent
// model response, so callers and tests can tell the two apart.
type TriageAssessment struct {
	TriageLevel       TriageLevel `json:"triage_level"`
	Confidence        Confidence  `json:"confidence"`
	Reasoning         string      `json:"reasoning"`
	RecommendedAction string      `json:"recommended_action"`
	DetailedAnalysis  string      `json:"detailed_analysis"`
	Fallback          bool        `json:"-"`
}

// ChatSession groups an ordered conversation for one user. Token is the
// public identifier handed to clients; ID stays internal.
type ChatSession struct {
	ID          int64     `json:"id"`
	Token       string    `json:"token"`
	UserID      int64     `json:"user_id"`
	SessionType string    `json:"session_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChatMessage is one turn in a session. Conversation order is defined by
// non-decreasing CreatedAt.
type ChatMessage struct {
	ID        int64       `json:"id"`
	SessionID int64       `json:"session_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// StreakSummary is the derived streak state shown on the dashboard.
type StreakSummary struct {
	CurrentStreak  int  `json:"current_streak"`
	LongestStreak  int  `json:"longest_streak"`
	TotalLogs      int  `json:"total_logs"`
	CheckedInToday bool `json:"checked_in_today"`
}

// ReportDocument is the artifact produced by the report builder. PDF is nil
// when the rendering backend was unavailable; HTML is always populated and is
// a legitimate artifact on its own.
type ReportDocument struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Narrative   string    `json:"narrative"`
	HTML        string    `json:"html"`
	PDF         []byte    `json:"-"`
	ContentType string    `json:"content_type"`
}

// ExportResult is the flat export artifact. Unsupported formats are signalled
// as a value, not an error.
type ExportResult struct {
	Format      string `json:"format"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
	Unsupported bool   `json:"unsupported,omitempty"`
}

// ExportPayload is the structured export shape; it round-trips all fields.
type ExportPayload struct {
	HealthLogs    []HealthLogEntry `json:"health_logs"`
	TriageHistory []TriageResult   `json:"triage_history"`
}
