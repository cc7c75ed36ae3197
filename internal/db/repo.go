package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"health-tracker/pkg"
)

// Repository wraps all database operations. Each call is a short,
// independent read or write unit; no transaction spans a network call.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a Repository from an existing sql.DB. The caller
// manages the connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

const uniqueViolation = "23505"

// CreateUser inserts a new account. A duplicate email maps to
// pkg.ErrEmailTaken so callers can distinguish it from storage failures.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash, fullName string) (*pkg.User, error) {
	u := pkg.User{Email: email, PasswordHash: passwordHash, FullName: fullName}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, full_name)
         VALUES ($1, $2, $3)
         RETURNING id, created_at, last_login`,
		email, passwordHash, fullName,
	).Scan(&u.ID, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, pkg.ErrEmailTaken
		}
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail loads an account row including its password hash.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*pkg.User, error) {
	var u pkg.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, full_name, created_at, last_login
         FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt, &u.LastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// TouchLastLogin stamps a successful authentication.
func (r *Repository) TouchLastLogin(ctx context.Context, userID int64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET last_login = NOW() WHERE id = $1`, userID)
	return err
}

// GetProfile reads the health-profile attributes of a user.
func (r *Repository) GetProfile(ctx context.Context, userID int64) (*pkg.Profile, error) {
	var p pkg.Profile
	var dob, blood, allergies, meds, conditions, contact sql.NullString
	var height, weight sql.NullFloat64
	err := r.DB.QueryRowContext(ctx,
		`SELECT email, full_name, date_of_birth, blood_group, height, weight,
                allergies, medications, chronic_conditions, emergency_contact
         FROM users WHERE id = $1`, userID,
	).Scan(&p.Email, &p.FullName, &dob, &blood, &height, &weight,
		&allergies, &meds, &conditions, &contact)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	p.DateOfBirth = dob.String
	p.BloodGroup = blood.String
	p.Height = height.Float64
	p.Weight = weight.Float64
	p.Allergies = allergies.String
	p.Medications = meds.String
	p.ChronicConditions = conditions.String
	p.EmergencyContact = contact.String
	return &p, nil
}

// UpdateProfile overwrites the mutable profile attributes.
func (r *Repository) UpdateProfile(ctx context.Context, userID int64, p *pkg.Profile) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users
         SET full_name = $1, date_of_birth = $2, blood_group = $3, height = $4,
             weight = $5, allergies = $6, medications = $7,
             chronic_conditions = $8, emergency_contact = $9
         WHERE id = $10`,
		p.FullName, p.DateOfBirth, p.BloodGroup, p.Height, p.Weight,
		p.Allergies, p.Medications, p.ChronicConditions, p.EmergencyContact, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return pkg.ErrUserNotFound
	}
	return nil
}

// InsertHealthLog appends a check-in entry.
func (r *Repository) InsertHealthLog(ctx context.Context, userID int64, date, symptoms, notes string, severity *int) (*pkg.HealthLogEntry, error) {
	e := pkg.HealthLogEntry{UserID: userID, Date: date, Symptoms: symptoms, Notes: notes, SeverityScore: severity}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO health_logs (user_id, date, symptoms, severity_score, notes)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, created_at`,
		userID, date, symptoms, severity, notes,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// RecentHealthLogs returns the newest entries first.
func (r *Repository) RecentHealthLogs(ctx context.Context, userID int64, limit int) ([]pkg.HealthLogEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, date, symptoms, severity_score, notes, created_at
         FROM health_logs
         WHERE user_id = $1
         ORDER BY date DESC, id DESC
         LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []pkg.HealthLogEntry
	for rows.Next() {
		var e pkg.HealthLogEntry
		var score sql.NullInt64
		var notes sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Symptoms, &score, &notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		if score.Valid {
			v := int(score.Int64)
			e.SeverityScore = &v
		}
		e.Notes = notes.String
		logs = append(logs, e)
	}
	return logs, rows.Err()
}

// UpsertDailyStreak marks (user, date) complete with insert-or-replace
// semantics. Re-checking in on the same day refreshes the marker instead of
// creating a second row.
func (r *Repository) UpsertDailyStreak(ctx context.Context, userID int64, date string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO daily_streaks (user_id, date, completed)
         VALUES ($1, $2, TRUE)
         ON CONFLICT (user_id, date)
         DO UPDATE SET completed = TRUE, created_at = NOW()`,
		userID, date)
	return err
}

// CompletedDates lists all completion dates for a user, newest first.
func (r *Repository) CompletedDates(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT date FROM daily_streaks
         WHERE user_id = $1 AND completed
         ORDER BY date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// InsertTriageResult appends a resolved triage assessment.
func (r *Repository) InsertTriageResult(ctx context.Context, userID int64, symptoms string, a pkg.TriageAssessment) (*pkg.TriageResult, error) {
	t := pkg.TriageResult{
		UserID:            userID,
		Symptoms:          symptoms,
		TriageLevel:       a.TriageLevel,
		Confidence:        a.Confidence,
		Reasoning:         a.Reasoning,
		RecommendedAction: a.RecommendedAction,
		DetailedAnalysis:  a.DetailedAnalysis,
	}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO triage_results
         (user_id, symptoms, triage_level, confidence, reasoning, recommended_action, detailed_analysis)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at`,
		userID, symptoms, t.TriageLevel, t.Confidence, t.Reasoning, t.RecommendedAction, t.DetailedAnalysis,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// RecentTriageResults returns the newest results first.
func (r *Repository) RecentTriageResults(ctx context.Context, userID int64, limit int) ([]pkg.TriageResult, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, symptoms, triage_level, confidence, reasoning,
                recommended_action, detailed_analysis, created_at
         FROM triage_results
         WHERE user_id = $1
         ORDER BY created_at DESC, id DESC
         LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []pkg.TriageResult
	for rows.Next() {
		var t pkg.TriageResult
		if err := rows.Scan(&t.ID, &t.UserID, &t.Symptoms, &t.TriageLevel, &t.Confidence,
			&t.Reasoning, &t.RecommendedAction, &t.DetailedAnalysis, &t.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// CreateChatSession starts a new conversation for the user.
func (r *Repository) CreateChatSession(ctx context.Context, userID int64, sessionType string) (*pkg.ChatSession, error) {
	s := pkg.ChatSession{Token: uuid.NewString(), UserID: userID, SessionType: sessionType}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO chat_sessions (token, user_id, session_type)
         VALUES ($1, $2, $3)
         RETURNING id, created_at`,
		s.Token, userID, sessionType,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetChatSession loads a session and enforces ownership: a session belonging
// to another user reads as not found.
func (r *Repository) GetChatSession(ctx context.Context, userID, sessionID int64) (*pkg.ChatSession, error) {
	var s pkg.ChatSession
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, token, user_id, session_type, created_at
         FROM chat_sessions
         WHERE id = $1 AND user_id = $2`, sessionID, userID,
	).Scan(&s.ID, &s.Token, &s.UserID, &s.SessionType, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// InsertChatMessage appends a message to a session.
func (r *Repository) InsertChatMessage(ctx context.Context, sessionID int64, role pkg.MessageRole, content string) (*pkg.ChatMessage, error) {
	m := pkg.ChatMessage{SessionID: sessionID, Role: role, Content: content}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO chat_messages (session_id, role, content)
         VALUES ($1, $2, $3)
         RETURNING id, created_at`,
		sessionID, role, content,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ChatHistory returns the ordered transcript of a session.
func (r *Repository) ChatHistory(ctx context.Context, sessionID int64) ([]pkg.ChatMessage, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, session_id, role, content, created_at
         FROM chat_messages
         WHERE session_id = $1
         ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var history []pkg.ChatMessage
	for rows.Next() {
		var m pkg.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, m)
	}
	return history, rows.Err()
}
