package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"health-tracker/pkg"
)

// memStore is an in-memory stand-in for the repository, implementing every
// store contract the services depend on.
type memStore struct {
	users     map[string]*pkg.User
	profiles  map[int64]*pkg.Profile
	logs      []pkg.HealthLogEntry
	triage    []pkg.TriageResult
	streaks   map[string]string // "userID|date" -> date
	sessions  []pkg.ChatSession
	messages  []pkg.ChatMessage
	nextID    int64
	failWrite error // when set, write operations fail with this error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*pkg.User),
		profiles: make(map[int64]*pkg.Profile),
		streaks:  make(map[string]string),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) CreateUser(_ context.Context, email, passwordHash, fullName string) (*pkg.User, error) {
	if _, exists := m.users[email]; exists {
		return nil, pkg.ErrEmailTaken
	}
	u := &pkg.User{ID: m.id(), Email: email, PasswordHash: passwordHash, FullName: fullName, CreatedAt: time.Now(), LastLogin: time.Now()}
	m.users[email] = u
	m.profiles[u.ID] = &pkg.Profile{Email: email, FullName: fullName}
	return u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*pkg.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, pkg.ErrUserNotFound
}

func (m *memStore) TouchLastLogin(_ context.Context, userID int64) error {
	for _, u := range m.users {
		if u.ID == userID {
			u.LastLogin = time.Now()
			return nil
		}
	}
	return pkg.ErrUserNotFound
}

func (m *memStore) GetProfile(_ context.Context, userID int64) (*pkg.Profile, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return nil, pkg.ErrUserNotFound
}

func (m *memStore) UpdateProfile(_ context.Context, userID int64, p *pkg.Profile) error {
	m.profiles[userID] = p
	return nil
}

func (m *memStore) InsertHealthLog(_ context.Context, userID int64, date, symptoms, notes string, severity *int) (*pkg.HealthLogEntry, error) {
	if m.failWrite != nil {
		return nil, m.failWrite
	}
	e := pkg.HealthLogEntry{ID: m.id(), UserID: userID, Date: date, Symptoms: symptoms, Notes: notes, SeverityScore: severity, CreatedAt: time.Now()}
	m.logs = append(m.logs, e)
	return &e, nil
}

func (m *memStore) RecentHealthLogs(_ context.Context, userID int64, limit int) ([]pkg.HealthLogEntry, error) {
	var out []pkg.HealthLogEntry
	for _, l := range m.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) UpsertDailyStreak(_ context.Context, userID int64, date string) error {
	if m.failWrite != nil {
		return m.failWrite
	}
	m.streaks[fmt.Sprintf("%d|%s", userID, date)] = date
	return nil
}

func (m *memStore) CompletedDates(_ context.Context, userID int64) ([]string, error) {
	var dates []string
	prefix := fmt.Sprintf("%d|", userID)
	for k, d := range m.streaks {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			dates = append(dates, d)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

func (m *memStore) InsertTriageResult(_ context.Context, userID int64, symptoms string, a pkg.TriageAssessment) (*pkg.TriageResult, error) {
	if m.failWrite != nil {
		return nil, m.failWrite
	}
	t := pkg.TriageResult{
		ID:                m.id(),
		UserID:            userID,
		Symptoms:          symptoms,
		TriageLevel:       a.TriageLevel,
		Confidence:        a.Confidence,
		Reasoning:         a.Reasoning,
		RecommendedAction: a.RecommendedAction,
		DetailedAnalysis:  a.DetailedAnalysis,
		CreatedAt:         time.Now(),
	}
	m.triage = append(m.triage, t)
	return &t, nil
}

func (m *memStore) RecentTriageResults(_ context.Context, userID int64, limit int) ([]pkg.TriageResult, error) {
	var out []pkg.TriageResult
	for _, t := range m.triage {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) CreateChatSession(_ context.Context, userID int64, sessionType string) (*pkg.ChatSession, error) {
	s := pkg.ChatSession{ID: m.id(), Token: fmt.Sprintf("token-%d", m.nextID), UserID: userID, SessionType: sessionType, CreatedAt: time.Now()}
	m.sessions = append(m.sessions, s)
	return &s, nil
}

func (m *memStore) GetChatSession(_ context.Context, userID, sessionID int64) (*pkg.ChatSession, error) {
	for _, s := range m.sessions {
		if s.ID == sessionID && s.UserID == userID {
			out := s
			return &out, nil
		}
	}
	return nil, pkg.ErrSessionNotFound
}

func (m *memStore) InsertChatMessage(_ context.Context, sessionID int64, role pkg.MessageRole, content string) (*pkg.ChatMessage, error) {
	msg := pkg.ChatMessage{ID: m.id(), SessionID: sessionID, Role: role, Content: content, CreatedAt: time.Now()}
	m.messages = append(m.messages, msg)
	return &msg, nil
}

func (m *memStore) ChatHistory(_ context.Context, sessionID int64) ([]pkg.ChatMessage, error) {
	var out []pkg.ChatMessage
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out, nil
}

// fakeAI is a canned llm.Client that records what it was asked.
type fakeAI struct {
	severity          int
	severityFromModel bool
	assessment        pkg.TriageAssessment
	reply             string
	replyFromModel    bool
	narrative         string
	narrativeOK       bool
	language          string

	gotChatHistory []pkg.ChatMessage
	gotLogs        []pkg.HealthLogEntry
	gotTriage      []pkg.TriageResult
}

func (f *fakeAI) ScoreSeverity(context.Context, string) (int, bool) {
	return f.severity, f.severityFromModel
}

func (f *fakeAI) AssessTriage(context.Context, string, string) pkg.TriageAssessment {
	return f.assessment
}

func (f *fakeAI) ChatReply(_ context.Context, _ string, history []pkg.ChatMessage, _ string) (string, bool) {
	f.gotChatHistory = history
	return f.reply, f.replyFromModel
}

func (f *fakeAI) SummarizeForReport(_ context.Context, _ *pkg.Profile, logs []pkg.HealthLogEntry, triage []pkg.TriageResult) (string, bool) {
	f.gotLogs = logs
	f.gotTriage = triage
	return f.narrative, f.narrativeOK
}

func (f *fakeAI) DetectLanguage(context.Context, string) string {
	if f.language == "" {
		return "en"
	}
	return f.language
}

// failingRenderer simulates an unavailable PDF backend.
type failingRenderer struct{}

func (failingRenderer) RenderPDF(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("renderer unreachable")
}

// staticRenderer returns fixed bytes.
type staticRenderer struct{ pdf []byte }

func (r staticRenderer) RenderPDF(context.Context, string) ([]byte, error) {
	return r.pdf, nil
}
