package core

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"health-tracker/pkg"
)

// Export formats. Anything else yields the unsupported sentinel.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

const exportLimit = 1000

// ExportService flattens a user's full history into a portable artifact.
type ExportService struct {
	store HistoryStore
}

func NewExportService(store HistoryStore) *ExportService {
	return &ExportService{store: store}
}

// Export loads up to 1000 logs and 1000 triage results and serializes them.
// An unrecognised format returns a sentinel result with Unsupported set, not
// an error; only storage failures propagate.
func (s *ExportService) Export(ctx context.Context, userID int64, format string) (*pkg.ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case FormatCSV, FormatJSON:
	default:
		return &pkg.ExportResult{Format: format, Content: "Unsupported format", Unsupported: true}, nil
	}

	logs, err := s.store.RecentHealthLogs(ctx, userID, exportLimit)
	if err != nil {
		return nil, err
	}
	triage, err := s.store.RecentTriageResults(ctx, userID, exportLimit)
	if err != nil {
		return nil, err
	}

	if format == FormatJSON {
		payload := pkg.ExportPayload{HealthLogs: logs, TriageHistory: triage}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, err
		}
		return &pkg.ExportResult{
			Format:      FormatJSON,
			Filename:    "health_data_export.json",
			ContentType: "application/json",
			Content:     string(data),
		}, nil
	}

	content, err := buildCSV(logs, triage)
	if err != nil {
		return nil, err
	}
	return &pkg.ExportResult{
		Format:      FormatCSV,
		Filename:    "health_data_export.csv",
		ContentType: "text/csv",
		Content:     content,
	}, nil
}

// buildCSV emits one row per log and one per triage result under a shared
// header. encoding/csv handles quoting of free-text fields.
func buildCSV(logs []pkg.HealthLogEntry, triage []pkg.TriageResult) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"Type", "Date", "Content", "Score", "Additional Info"}); err != nil {
		return "", err
	}
	for _, l := range logs {
		score := ""
		if l.SeverityScore != nil {
			score = fmt.Sprintf("%d", *l.SeverityScore)
		}
		if err := w.Write([]string{"Health Log", l.Date, l.Symptoms, score, l.Notes}); err != nil {
			return "", err
		}
	}
	for _, t := range triage {
		info := fmt.Sprintf("%s (%s)", t.TriageLevel, t.Confidence)
		if err := w.Write([]string{"Triage", t.CreatedAt.Format("2006-01-02 15:04:05"), t.Symptoms, "", info}); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
