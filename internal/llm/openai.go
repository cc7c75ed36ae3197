package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"health-tracker/pkg"
)

// Generation bounds shared by all operations. Low temperature keeps the
// integer and JSON responses deterministic-leaning; the token cap bounds
// latency and cost.
const (
	sampleTemperature = 0.1
	maxOutputTokens   = 1024
	languageSampleLen = 200
	historyWindow     = 6
	reportLogWindow   = 5
	reportTriageWin   = 3
	symptomTruncLen   = 100
)

// OpenAIClient implements Client against an OpenAI-compatible chat completion
// API. It is constructed once at startup and injected into the services that
// need it.
type OpenAIClient struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// New builds a client for the given API key and model. baseURL overrides the
// API endpoint and is empty outside of tests and self-hosted gateways. timeout
// bounds every model call; zero disables the bound.
func New(apiKey, model, baseURL string, timeout time.Duration, log *zap.Logger) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log,
	}
}

// complete sends a single-shot prompt and returns the first choice's text.
func (c *OpenAIClient) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: sampleTemperature,
		MaxTokens:   maxOutputTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func userMessage(content string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: content},
	}
}

// ScoreSeverity asks for a bare integer and parses it. Severity is advisory:
// any transport or parse failure yields the fixed default instead of an error.
func (c *OpenAIClient) ScoreSeverity(ctx context.Context, symptoms string) (int, bool) {
	text, err := c.complete(ctx, userMessage(fmt.Sprintf(severityPrompt, symptoms)))
	if err != nil {
		c.log.Warn("severity scoring unavailable", zap.Error(err))
		return DefaultSeverityScore, false
	}
	score, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		c.log.Warn("severity response not an integer", zap.String("response", text))
		return DefaultSeverityScore, false
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, true
}

// AssessTriage asks for the five-field JSON verdict and validates it. Any
// failure resolves to the conservative fallback, never a more urgent level.
func (c *OpenAIClient) AssessTriage(ctx context.Context, symptoms, language string) pkg.TriageAssessment {
	text, err := c.complete(ctx, userMessage(fmt.Sprintf(triagePrompt, symptoms, language)))
	if err != nil {
		c.log.Warn("triage assessment unavailable", zap.Error(err))
		return FallbackAssessment()
	}
	raw, ok := ExtractJSONObject(text)
	if !ok {
		c.log.Warn("triage response not parseable", zap.String("response", text))
		return FallbackAssessment()
	}
	var a pkg.TriageAssessment
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return FallbackAssessment()
	}
	a.TriageLevel = pkg.TriageLevel(strings.ToLower(strings.TrimSpace(string(a.TriageLevel))))
	if !a.TriageLevel.Valid() || !a.Confidence.Valid() || a.Reasoning == "" || a.RecommendedAction == "" {
		c.log.Warn("triage response failed validation", zap.String("triage_level", string(a.TriageLevel)))
		return FallbackAssessment()
	}
	return a
}

// ChatReply answers a user message with the last few history turns for
// context. Only a bounded window is sent to keep latency down.
func (c *OpenAIClient) ChatReply(ctx context.Context, message string, history []pkg.ChatMessage, language string) (string, bool) {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(chatSystemPrompt, language)},
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == pkg.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	text, err := c.complete(ctx, messages)
	if err != nil {
		c.log.Warn("chat reply unavailable", zap.Error(err))
		return chatUnavailableReply, false
	}
	return strings.TrimSpace(text), true
}

// SummarizeForReport builds the narrative block of a medical report from a
// truncated profile and the most recent records. Inputs arrive
// most-recent-first; only a small window goes into the prompt.
func (c *OpenAIClient) SummarizeForReport(ctx context.Context, profile *pkg.Profile, logs []pkg.HealthLogEntry, triage []pkg.TriageResult) (string, bool) {
	if len(logs) > reportLogWindow {
		logs = logs[:reportLogWindow]
	}
	if len(triage) > reportTriageWin {
		triage = triage[:reportTriageWin]
	}

	var logLines []string
	for _, l := range logs {
		logLines = append(logLines, fmt.Sprintf("%s: %s", l.Date, truncate(l.Symptoms, symptomTruncLen)))
	}
	var triageLines []string
	for _, t := range triage {
		triageLines = append(triageLines, fmt.Sprintf("%s: %s", t.CreatedAt.Format("2006-01-02"), t.TriageLevel))
	}

	prompt := fmt.Sprintf(reportPrompt,
		profileText(profile),
		reportLogWindow, strings.Join(logLines, "\n"),
		reportTriageWin, strings.Join(triageLines, "\n"))

	text, err := c.complete(ctx, userMessage(prompt))
	if err != nil {
		c.log.Warn("report narrative unavailable", zap.Error(err))
		return reportUnavailable, false
	}
	return strings.TrimSpace(text), true
}

// DetectLanguage asks the model for a two-letter code using a short sample of
// the text. When the model is unreachable the keyword heuristic takes over.
func (c *OpenAIClient) DetectLanguage(ctx context.Context, text string) string {
	sample := text
	if len(sample) > languageSampleLen {
		sample = sample[:languageSampleLen]
	}
	resp, err := c.complete(ctx, userMessage(fmt.Sprintf(languagePrompt, sample)))
	if err != nil {
		return GuessLanguage(text)
	}
	return normalizeLanguage(resp)
}

func profileText(p *pkg.Profile) string {
	if p == nil {
		return "Not provided"
	}
	return fmt.Sprintf("Name: %s\nDOB: %s\nBlood: %s\nAllergies: %s\nMedications: %s\nConditions: %s",
		orNone(p.FullName), orNone(p.DateOfBirth), orNone(p.BloodGroup),
		orNone(p.Allergies), orNone(p.Medications), orNone(p.ChronicConditions))
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
