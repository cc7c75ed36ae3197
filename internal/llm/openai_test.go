package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"health-tracker/pkg"
)

// newTestClient points the client at a stub chat-completion endpoint that
// always answers with the given content.
func newTestClient(t *testing.T, content string, status int) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			http.Error(w, "boom", status)
			return
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return New("test-key", "gpt-4o-mini", srv.URL+"/v1", 5*time.Second, zap.NewNop())
}

func TestScoreSeverity(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		status    int
		want      int
		fromModel bool
	}{
		{"plain integer", "42", http.StatusOK, 42, true},
		{"integer with whitespace", "  73\n", http.StatusOK, 73, true},
		{"clamped above range", "150", http.StatusOK, 100, true},
		{"clamped below range", "-5", http.StatusOK, 0, true},
		{"not an integer", "moderate severity", http.StatusOK, DefaultSeverityScore, false},
		{"float response", "42.5", http.StatusOK, DefaultSeverityScore, false},
		{"empty response", "", http.StatusOK, DefaultSeverityScore, false},
		{"transport failure", "", http.StatusInternalServerError, DefaultSeverityScore, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.response, tt.status)
			score, fromModel := c.ScoreSeverity(context.Background(), "headache")
			assert.Equal(t, tt.want, score)
			assert.Equal(t, tt.fromModel, fromModel)
		})
	}
}

func TestAssessTriage(t *testing.T) {
	valid := `{"triage_level":"visit-doctor","confidence":"High","reasoning":"Persistent symptoms.","recommended_action":"See a doctor within 24 hours.","detailed_analysis":"Headache with nausea and photophobia warrants evaluation."}`

	t.Run("valid json", func(t *testing.T) {
		c := newTestClient(t, valid, http.StatusOK)
		a := c.AssessTriage(context.Background(), "persistent headache", "en")
		assert.False(t, a.Fallback)
		assert.Equal(t, pkg.TriageVisitDoctor, a.TriageLevel)
		assert.Equal(t, pkg.ConfidenceHigh, a.Confidence)
		assert.NotEmpty(t, a.Reasoning)
		assert.NotEmpty(t, a.RecommendedAction)
	})

	t.Run("fenced json", func(t *testing.T) {
		c := newTestClient(t, "```json\n"+valid+"\n```", http.StatusOK)
		a := c.AssessTriage(context.Background(), "persistent headache", "en")
		assert.False(t, a.Fallback)
		assert.Equal(t, pkg.TriageVisitDoctor, a.TriageLevel)
	})

	t.Run("uppercase level is normalised", func(t *testing.T) {
		c := newTestClient(t, `{"triage_level":"Visit-Doctor","confidence":"Low","reasoning":"r","recommended_action":"a","detailed_analysis":"d"}`, http.StatusOK)
		a := c.AssessTriage(context.Background(), "cough", "en")
		assert.False(t, a.Fallback)
		assert.Equal(t, pkg.TriageVisitDoctor, a.TriageLevel)
	})

	fallbackCases := []struct {
		name     string
		response string
		status   int
	}{
		{"prose response", "You should see a doctor.", http.StatusOK},
		{"unknown triage level", `{"triage_level":"go-to-hospital","confidence":"High","reasoning":"r","recommended_action":"a","detailed_analysis":"d"}`, http.StatusOK},
		{"unknown confidence", `{"triage_level":"visit-doctor","confidence":"Certain","reasoning":"r","recommended_action":"a","detailed_analysis":"d"}`, http.StatusOK},
		{"missing reasoning", `{"triage_level":"visit-doctor","confidence":"High","recommended_action":"a","detailed_analysis":"d"}`, http.StatusOK},
		{"transport failure", "", http.StatusBadGateway},
	}
	for _, tt := range fallbackCases {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.response, tt.status)
			a := c.AssessTriage(context.Background(), "symptoms", "en")
			require.True(t, a.Fallback)
			// The fallback never escalates and always carries usable text.
			assert.Equal(t, pkg.TriageSelfMonitor, a.TriageLevel)
			assert.Equal(t, pkg.ConfidenceMedium, a.Confidence)
			assert.NotEmpty(t, a.Reasoning)
			assert.NotEmpty(t, a.RecommendedAction)
		})
	}
}

func TestChatReply(t *testing.T) {
	t.Run("model reply", func(t *testing.T) {
		c := newTestClient(t, "Rest and stay hydrated.", http.StatusOK)
		reply, fromModel := c.ChatReply(context.Background(), "I have a cold", nil, "en")
		assert.True(t, fromModel)
		assert.Equal(t, "Rest and stay hydrated.", reply)
	})

	t.Run("transport failure returns fixed string", func(t *testing.T) {
		c := newTestClient(t, "", http.StatusServiceUnavailable)
		reply, fromModel := c.ChatReply(context.Background(), "hello", nil, "en")
		assert.False(t, fromModel)
		assert.Equal(t, chatUnavailableReply, reply)
	})
}

func TestSummarizeForReport(t *testing.T) {
	t.Run("failure returns error string not error", func(t *testing.T) {
		c := newTestClient(t, "", http.StatusInternalServerError)
		narrative, fromModel := c.SummarizeForReport(context.Background(), &pkg.Profile{FullName: "Jo"}, nil, nil)
		assert.False(t, fromModel)
		assert.Equal(t, reportUnavailable, narrative)
	})

	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, "1. Summary: stable.", http.StatusOK)
		narrative, fromModel := c.SummarizeForReport(context.Background(), nil, nil, nil)
		assert.True(t, fromModel)
		assert.Equal(t, "1. Summary: stable.", narrative)
	})
}

func TestDetectLanguage(t *testing.T) {
	t.Run("model code", func(t *testing.T) {
		c := newTestClient(t, "es\n", http.StatusOK)
		assert.Equal(t, "es", c.DetectLanguage(context.Background(), "tengo dolor"))
	})

	t.Run("invalid model code defaults to en", func(t *testing.T) {
		c := newTestClient(t, "klingon", http.StatusOK)
		assert.Equal(t, "en", c.DetectLanguage(context.Background(), "some text"))
	})

	t.Run("transport failure falls back to heuristic", func(t *testing.T) {
		c := newTestClient(t, "", http.StatusBadGateway)
		assert.Equal(t, "es", c.DetectLanguage(context.Background(), "tengo mucho dolor y estoy cansado"))
	})
}
