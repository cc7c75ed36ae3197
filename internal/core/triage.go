package core

import (
	"context"

	"go.uber.org/zap"

	"health-tracker/internal/llm"
	"health-tracker/pkg"
)

// TriageStore persists resolved triage requests.
type TriageStore interface {
	InsertTriageResult(ctx context.Context, userID int64, symptoms string, a pkg.TriageAssessment) (*pkg.TriageResult, error)
	RecentTriageResults(ctx context.Context, userID int64, limit int) ([]pkg.TriageResult, error)
}

// TriageService runs one triage request end to end: detect the input
// language, obtain the structured assessment, persist it, and hand the
// assessment back for immediate display. The model is attempted exactly once;
// the conservative fallback assessment is itself a valid terminal resolution
// and is written to storage like any other.
type TriageService struct {
	store TriageStore
	ai    llm.Client
	log   *zap.Logger
}

func NewTriageService(store TriageStore, ai llm.Client, log *zap.Logger) *TriageService {
	return &TriageService{store: store, ai: ai, log: log}
}

// Submit resolves a triage request for the given symptom text. Empty input is
// guarded at the HTTP boundary, not here.
func (s *TriageService) Submit(ctx context.Context, userID int64, symptoms string) (pkg.TriageAssessment, error) {
	language := s.ai.DetectLanguage(ctx, symptoms)
	assessment := s.ai.AssessTriage(ctx, symptoms, language)

	if _, err := s.store.InsertTriageResult(ctx, userID, symptoms, assessment); err != nil {
		return pkg.TriageAssessment{}, err
	}
	s.log.Info("triage resolved",
		zap.Int64("user_id", userID),
		zap.String("triage_level", string(assessment.TriageLevel)),
		zap.String("language", language),
		zap.Bool("fallback", assessment.Fallback))
	return assessment, nil
}

// History returns the most recent triage results for the user.
func (s *TriageService) History(ctx context.Context, userID int64, limit int) ([]pkg.TriageResult, error) {
	return s.store.RecentTriageResults(ctx, userID, limit)
}
