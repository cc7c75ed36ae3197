package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"health-tracker/internal/llm"
	"health-tracker/pkg"
)

func TestTriageSubmitPersistsAssessment(t *testing.T) {
	store := newMemStore()
	ai := &fakeAI{
		language: "en",
		assessment: pkg.TriageAssessment{
			TriageLevel:       pkg.TriageVisitDoctor,
			Confidence:        pkg.ConfidenceHigh,
			Reasoning:         "Persistent headache with neurological signs.",
			RecommendedAction: "See a doctor within 24 hours.",
			DetailedAnalysis:  "Duration and photophobia suggest medical review.",
		},
	}
	svc := NewTriageService(store, ai, zap.NewNop())

	before := time.Now()
	symptoms := "persistent headache, 3 days, nausea, light sensitivity"
	assessment, err := svc.Submit(context.Background(), 1, symptoms)
	require.NoError(t, err)

	assert.True(t, assessment.TriageLevel.Valid())
	assert.True(t, assessment.Confidence.Valid())
	assert.Equal(t, pkg.TriageVisitDoctor, assessment.TriageLevel)

	require.Len(t, store.triage, 1)
	row := store.triage[0]
	assert.Equal(t, symptoms, row.Symptoms)
	assert.Equal(t, assessment.TriageLevel, row.TriageLevel)
	assert.Equal(t, assessment.Confidence, row.Confidence)
	assert.Equal(t, assessment.Reasoning, row.Reasoning)
	assert.Equal(t, assessment.RecommendedAction, row.RecommendedAction)
	assert.Equal(t, assessment.DetailedAnalysis, row.DetailedAnalysis)
	assert.False(t, row.CreatedAt.Before(before))
}

func TestTriageFallbackIsPersisted(t *testing.T) {
	store := newMemStore()
	ai := &fakeAI{assessment: llm.FallbackAssessment()}
	svc := NewTriageService(store, ai, zap.NewNop())

	assessment, err := svc.Submit(context.Background(), 1, "something vague")
	require.NoError(t, err)

	// The fallback is a valid terminal resolution and is written like any other.
	assert.True(t, assessment.Fallback)
	assert.Equal(t, pkg.TriageSelfMonitor, assessment.TriageLevel)
	assert.Equal(t, pkg.ConfidenceMedium, assessment.Confidence)
	assert.NotEmpty(t, assessment.Reasoning)
	assert.NotEmpty(t, assessment.RecommendedAction)
	require.Len(t, store.triage, 1)
	assert.Equal(t, pkg.TriageSelfMonitor, store.triage[0].TriageLevel)
}

func TestTriageStorageFailurePropagates(t *testing.T) {
	store := newMemStore()
	store.failWrite = fmt.Errorf("connection refused")
	svc := NewTriageService(store, &fakeAI{assessment: llm.FallbackAssessment()}, zap.NewNop())

	_, err := svc.Submit(context.Background(), 1, "symptoms")
	require.Error(t, err)
}
