package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"health-tracker/internal/llm"
	"health-tracker/pkg"
)

// CheckInStore is the persistence contract for daily check-ins and streak
// markers.
type CheckInStore interface {
	InsertHealthLog(ctx context.Context, userID int64, date, symptoms, notes string, severity *int) (*pkg.HealthLogEntry, error)
	// UpsertDailyStreak marks (user, date) complete. It must be an atomic
	// insert-or-replace so repeated same-day check-ins stay idempotent.
	UpsertDailyStreak(ctx context.Context, userID int64, date string) error
	CompletedDates(ctx context.Context, userID int64) ([]string, error)
	RecentHealthLogs(ctx context.Context, userID int64, limit int) ([]pkg.HealthLogEntry, error)
}

// CheckInService handles the daily check-in flow: score the symptoms, persist
// the log entry, and mark today's streak.
type CheckInService struct {
	store CheckInStore
	ai    llm.Client
	log   *zap.Logger
	now   func() time.Time
}

func NewCheckInService(store CheckInStore, ai llm.Client, log *zap.Logger) *CheckInService {
	return &CheckInService{store: store, ai: ai, log: log, now: time.Now}
}

// Submit records a check-in for today. Severity scoring is advisory: a
// fallback score is stored like any other, and the entry keeps a nil score
// only if the store is handed one.
func (s *CheckInService) Submit(ctx context.Context, userID int64, symptoms, notes string) (*pkg.HealthLogEntry, error) {
	score, fromModel := s.ai.ScoreSeverity(ctx, symptoms)
	if !fromModel {
		s.log.Info("severity score fell back to default", zap.Int64("user_id", userID))
	}

	today := s.now().Format("2006-01-02")
	entry, err := s.store.InsertHealthLog(ctx, userID, today, symptoms, notes, &score)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpsertDailyStreak(ctx, userID, today); err != nil {
		return nil, err
	}
	s.log.Info("check-in recorded",
		zap.Int64("user_id", userID),
		zap.Int("severity_score", score),
		zap.Bool("fallback", !fromModel))
	return entry, nil
}

// Recent returns the most recent log entries for the user.
func (s *CheckInService) Recent(ctx context.Context, userID int64, limit int) ([]pkg.HealthLogEntry, error) {
	return s.store.RecentHealthLogs(ctx, userID, limit)
}

// Streaks derives the dashboard streak summary from the completion markers.
func (s *CheckInService) Streaks(ctx context.Context, userID int64) (*pkg.StreakSummary, error) {
	dates, err := s.store.CompletedDates(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.now()
	todayStr := today.Format("2006-01-02")
	checkedIn := false
	for _, d := range dates {
		if d == todayStr {
			checkedIn = true
			break
		}
	}
	return &pkg.StreakSummary{
		CurrentStreak:  CurrentStreak(dates, today),
		LongestStreak:  LongestStreak(dates),
		TotalLogs:      len(dates),
		CheckedInToday: checkedIn,
	}, nil
}
