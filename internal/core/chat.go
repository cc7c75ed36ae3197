package core

import (
	"context"

	"go.uber.org/zap"

	"health-tracker/internal/llm"
	"health-tracker/pkg"
)

// ChatStore is the persistence contract for chat sessions and their messages.
type ChatStore interface {
	CreateChatSession(ctx context.Context, userID int64, sessionType string) (*pkg.ChatSession, error)
	GetChatSession(ctx context.Context, userID int64, sessionID int64) (*pkg.ChatSession, error)
	InsertChatMessage(ctx context.Context, sessionID int64, role pkg.MessageRole, content string) (*pkg.ChatMessage, error)
	ChatHistory(ctx context.Context, sessionID int64) ([]pkg.ChatMessage, error)
}

// ChatService runs one conversational turn with the health assistant.
// Sessions are created lazily on the first interaction.
type ChatService struct {
	store         ChatStore
	ai            llm.Client
	log           *zap.Logger
	historyWindow int
}

func NewChatService(store ChatStore, ai llm.Client, historyWindow int, log *zap.Logger) *ChatService {
	if historyWindow <= 0 {
		historyWindow = 6
	}
	return &ChatService{store: store, ai: ai, historyWindow: historyWindow, log: log}
}

// SendMessage persists the user's message, generates a reply from the bounded
// recent history, persists the reply, and returns it with the session. Pass
// sessionID 0 to start a new conversation.
func (s *ChatService) SendMessage(ctx context.Context, userID, sessionID int64, content string) (string, *pkg.ChatSession, error) {
	var session *pkg.ChatSession
	var err error
	if sessionID == 0 {
		session, err = s.store.CreateChatSession(ctx, userID, "general")
	} else {
		session, err = s.store.GetChatSession(ctx, userID, sessionID)
	}
	if err != nil {
		return "", nil, err
	}

	if _, err := s.store.InsertChatMessage(ctx, session.ID, pkg.RoleUser, content); err != nil {
		return "", nil, err
	}

	history, err := s.store.ChatHistory(ctx, session.ID)
	if err != nil {
		return "", nil, err
	}
	// Drop the message just stored; it is passed separately as the current turn.
	if n := len(history); n > 0 && history[n-1].Role == pkg.RoleUser && history[n-1].Content == content {
		history = history[:n-1]
	}
	if len(history) > s.historyWindow {
		history = history[len(history)-s.historyWindow:]
	}

	language := s.ai.DetectLanguage(ctx, content)
	reply, fromModel := s.ai.ChatReply(ctx, content, history, language)

	if _, err := s.store.InsertChatMessage(ctx, session.ID, pkg.RoleAssistant, reply); err != nil {
		return "", nil, err
	}
	s.log.Info("chat turn completed",
		zap.Int64("user_id", userID),
		zap.Int64("session_id", session.ID),
		zap.Bool("fallback", !fromModel))
	return reply, session, nil
}

// History returns the full ordered transcript of a session owned by the user.
func (s *ChatService) History(ctx context.Context, userID, sessionID int64) ([]pkg.ChatMessage, error) {
	if _, err := s.store.GetChatSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.store.ChatHistory(ctx, sessionID)
}
