package core

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"health-tracker/internal/llm"
	"health-tracker/pkg"
)

// HistoryStore is the read contract shared by the report builder and the
// exporter.
type HistoryStore interface {
	GetProfile(ctx context.Context, userID int64) (*pkg.Profile, error)
	RecentHealthLogs(ctx context.Context, userID int64, limit int) ([]pkg.HealthLogEntry, error)
	RecentTriageResults(ctx context.Context, userID int64, limit int) ([]pkg.TriageResult, error)
}

// Renderer converts an HTML document into PDF bytes. Rendering is optional:
// a failed render degrades the report to its HTML form, it never aborts it.
type Renderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// Bounded windows over stored history; the narrative prompt truncates further.
const (
	reportLogLimit    = 100
	reportTriageLimit = 20
	reportLogItems    = 10
	reportTriageItems = 5
)

// ReportService assembles the narrative medical report from stored history.
type ReportService struct {
	store    HistoryStore
	ai       llm.Client
	renderer Renderer
	log      *zap.Logger
	now      func() time.Time
}

func NewReportService(store HistoryStore, ai llm.Client, renderer Renderer, log *zap.Logger) *ReportService {
	return &ReportService{store: store, ai: ai, renderer: renderer, log: log, now: time.Now}
}

// Build produces the report document for the inclusive [startDate, endDate]
// range. Dates are ISO-8601 strings, so the range filter is a lexicographic
// comparison. The returned document always carries HTML; PDF bytes are
// attached only when the rendering backend succeeded.
func (s *ReportService) Build(ctx context.Context, userID int64, startDate, endDate string) (*pkg.ReportDocument, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.store.RecentHealthLogs(ctx, userID, reportLogLimit)
	if err != nil {
		return nil, err
	}
	triage, err := s.store.RecentTriageResults(ctx, userID, reportTriageLimit)
	if err != nil {
		return nil, err
	}

	logs = FilterLogsByDate(logs, startDate, endDate)
	triage = FilterTriageByDate(triage, startDate, endDate)

	narrative, fromModel := s.ai.SummarizeForReport(ctx, profile, logs, triage)
	if !fromModel {
		s.log.Warn("report narrative fell back", zap.Int64("user_id", userID))
	}

	doc := &pkg.ReportDocument{
		ID:          uuid.NewString(),
		GeneratedAt: s.now(),
		StartDate:   startDate,
		EndDate:     endDate,
		Narrative:   narrative,
		ContentType: "text/html",
	}

	html, err := renderReportHTML(doc, profile, narrative, logs, triage)
	if err != nil {
		return nil, err
	}
	doc.HTML = html

	if s.renderer != nil {
		if pdf, err := s.renderer.RenderPDF(ctx, html); err == nil {
			doc.PDF = pdf
			doc.ContentType = "application/pdf"
		} else {
			s.log.Warn("pdf rendering unavailable, returning html",
				zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return doc, nil
}

// FilterLogsByDate keeps entries with startDate <= date <= endDate. ISO-8601
// date strings sort lexicographically in chronological order, and both ends
// are inclusive. Empty bounds disable the filter.
func FilterLogsByDate(logs []pkg.HealthLogEntry, startDate, endDate string) []pkg.HealthLogEntry {
	if startDate == "" && endDate == "" {
		return logs
	}
	out := make([]pkg.HealthLogEntry, 0, len(logs))
	for _, l := range logs {
		if inDateRange(l.Date, startDate, endDate) {
			out = append(out, l)
		}
	}
	return out
}

// FilterTriageByDate keeps results whose creation date falls in the inclusive
// range.
func FilterTriageByDate(triage []pkg.TriageResult, startDate, endDate string) []pkg.TriageResult {
	if startDate == "" && endDate == "" {
		return triage
	}
	out := make([]pkg.TriageResult, 0, len(triage))
	for _, t := range triage {
		if inDateRange(t.CreatedAt.Format("2006-01-02"), startDate, endDate) {
			out = append(out, t)
		}
	}
	return out
}

func inDateRange(date, startDate, endDate string) bool {
	if startDate != "" && date < startDate {
		return false
	}
	if endDate != "" && date > endDate {
		return false
	}
	return true
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Medical Health Report</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; margin: 40px; }
.header { text-align: center; margin-bottom: 30px; }
.section { margin-bottom: 20px; }
.section-title { font-weight: bold; font-size: 18px; margin-bottom: 10px; border-bottom: 2px solid #333; padding-bottom: 5px; }
.summary-box { background-color: #f5f5f5; padding: 15px; border-radius: 5px; white-space: pre-line; }
</style>
</head>
<body>
<div class="header">
<h1>Medical Health Report</h1>
<p>Generated on: {{.GeneratedAt}}</p>
<p>Period: {{.StartDate}} to {{.EndDate}}</p>
</div>
<div class="section">
<div class="section-title">Patient Information</div>
<div><strong>Name:</strong> {{.Profile.FullName}}</div>
<div><strong>Date of Birth:</strong> {{.Profile.DateOfBirth}}</div>
<div><strong>Blood Group:</strong> {{.Profile.BloodGroup}}</div>
<div><strong>Height:</strong> {{.Profile.Height}}</div>
<div><strong>Weight:</strong> {{.Profile.Weight}}</div>
<div><strong>Allergies:</strong> {{.Profile.Allergies}}</div>
<div><strong>Medications:</strong> {{.Profile.Medications}}</div>
<div><strong>Chronic Conditions:</strong> {{.Profile.ChronicConditions}}</div>
</div>
<div class="section">
<div class="section-title">Report Summary</div>
<div class="summary-box">{{.Narrative}}</div>
</div>
<div class="section">
<div class="section-title">Recent Health Logs ({{len .Logs}} entries)</div>
<ul>
{{range .Logs}}<li><strong>{{.Date}}:</strong> {{.Symptoms}} (Severity: {{if .SeverityScore}}{{.SeverityScore}}{{else}}N/A{{end}}/100)</li>
{{end}}</ul>
</div>
<div class="section">
<div class="section-title">Recent Triage Assessments</div>
<ul>
{{range .Triage}}<li><strong>{{.CreatedAt.Format "2006-01-02"}}:</strong> {{.Symptoms}} -&gt; {{.TriageLevel}} ({{.Confidence}} confidence)</li>
{{end}}</ul>
</div>
</body>
</html>
`))

func renderReportHTML(doc *pkg.ReportDocument, profile *pkg.Profile, narrative string, logs []pkg.HealthLogEntry, triage []pkg.TriageResult) (string, error) {
	if len(logs) > reportLogItems {
		logs = logs[:reportLogItems]
	}
	if len(triage) > reportTriageItems {
		triage = triage[:reportTriageItems]
	}
	if profile == nil {
		profile = &pkg.Profile{}
	}
	data := struct {
		GeneratedAt string
		StartDate   string
		EndDate     string
		Profile     *pkg.Profile
		Narrative   string
		Logs        []pkg.HealthLogEntry
		Triage      []pkg.TriageResult
	}{
		GeneratedAt: doc.GeneratedAt.Format("2006-01-02 15:04"),
		StartDate:   doc.StartDate,
		EndDate:     doc.EndDate,
		Profile:     profile,
		Narrative:   narrative,
		Logs:        logs,
		Triage:      triage,
	}
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
