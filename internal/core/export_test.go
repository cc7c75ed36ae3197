package core

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-tracker/pkg"
)

func TestExportJSONRoundTrip(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	score := 42
	_, err := store.InsertHealthLog(ctx, 1, "2024-05-01", "headache", "after screen time", &score)
	require.NoError(t, err)
	_, err = store.InsertHealthLog(ctx, 1, "2024-05-02", "fatigue", "", nil)
	require.NoError(t, err)
	_, err = store.InsertTriageResult(ctx, 1, "chest tightness", pkg.TriageAssessment{
		TriageLevel:       pkg.TriageUrgentCare,
		Confidence:        pkg.ConfidenceHigh,
		Reasoning:         "possible cardiac involvement",
		RecommendedAction: "seek urgent care now",
		DetailedAnalysis:  "symptom pattern warrants prompt evaluation",
	})
	require.NoError(t, err)

	svc := NewExportService(store)
	res, err := svc.Export(ctx, 1, "json")
	require.NoError(t, err)
	assert.False(t, res.Unsupported)
	assert.Equal(t, "application/json", res.ContentType)
	assert.Equal(t, "health_data_export.json", res.Filename)

	var payload pkg.ExportPayload
	require.NoError(t, json.Unmarshal([]byte(res.Content), &payload))
	require.Len(t, payload.HealthLogs, 2)
	require.Len(t, payload.TriageHistory, 1)

	// Most recent log first. Every field survives the round trip.
	got := payload.HealthLogs[1]
	assert.Equal(t, "2024-05-01", got.Date)
	assert.Equal(t, "headache", got.Symptoms)
	assert.Equal(t, "after screen time", got.Notes)
	require.NotNil(t, got.SeverityScore)
	assert.Equal(t, 42, *got.SeverityScore)

	tr := payload.TriageHistory[0]
	assert.Equal(t, "chest tightness", tr.Symptoms)
	assert.Equal(t, pkg.TriageUrgentCare, tr.TriageLevel)
	assert.Equal(t, pkg.ConfidenceHigh, tr.Confidence)
	assert.Equal(t, "possible cardiac involvement", tr.Reasoning)
	assert.Equal(t, "seek urgent care now", tr.RecommendedAction)
}

func TestExportCSV(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	score := 10
	_, err := store.InsertHealthLog(ctx, 1, "2024-05-01", "cough, with \"quotes\"", "notes", &score)
	require.NoError(t, err)
	_, err = store.InsertTriageResult(ctx, 1, "dizziness", pkg.TriageAssessment{
		TriageLevel: pkg.TriageSelfMonitor,
		Confidence:  pkg.ConfidenceLow,
		Reasoning:   "r", RecommendedAction: "a", DetailedAnalysis: "d",
	})
	require.NoError(t, err)

	res, err := NewExportService(store).Export(ctx, 1, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", res.ContentType)

	records, err := csv.NewReader(strings.NewReader(res.Content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + one log + one triage
	assert.Equal(t, []string{"Type", "Date", "Content", "Score", "Additional Info"}, records[0])
	assert.Equal(t, []string{"Health Log", "2024-05-01", "cough, with \"quotes\"", "10", "notes"}, records[1])
	assert.Equal(t, "Triage", records[2][0])
	assert.Equal(t, "dizziness", records[2][2])
	assert.Equal(t, "self-monitor (Low)", records[2][4])
}

func TestExportUnsupportedFormat(t *testing.T) {
	store := newMemStore()
	svc := NewExportService(store)

	for _, format := range []string{"xml", "pdf", "", "yaml"} {
		res, err := svc.Export(context.Background(), 1, format)
		require.NoError(t, err)
		assert.True(t, res.Unsupported)
		assert.Equal(t, "Unsupported format", res.Content)
	}
}

func TestExportFormatIsCaseInsensitive(t *testing.T) {
	store := newMemStore()
	res, err := NewExportService(store).Export(context.Background(), 1, " JSON ")
	require.NoError(t, err)
	assert.False(t, res.Unsupported)
	assert.Equal(t, FormatJSON, res.Format)
}

func TestExportEmptyHistory(t *testing.T) {
	store := newMemStore()
	res, err := NewExportService(store).Export(context.Background(), 1, "json")
	require.NoError(t, err)

	var payload pkg.ExportPayload
	require.NoError(t, json.Unmarshal([]byte(res.Content), &payload))
	assert.Empty(t, payload.HealthLogs)
	assert.Empty(t, payload.TriageHistory)
}
