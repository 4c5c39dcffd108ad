package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/tbourn/rehab-rewards-backend/internal/config"
	"github.com/tbourn/rehab-rewards-backend/internal/gemini"
)

func analysisSvc(ai *fakeAI) *AnalysisService {
	return &AnalysisService{
		AI:     ai,
		Config: config.GeminiConfig{APIKey: "k", TextModel: "m", RetryBase: time.Millisecond},
	}
}

func rateLimited() fakeAnswer {
	return fakeAnswer{err: &gemini.APIError{StatusCode: http.StatusTooManyRequests, Message: "quota"}}
}

func TestAnalyze_Validation(t *testing.T) {
	ai := &fakeAI{}
	if _, err := analysisSvc(ai).Analyze(context.Background(), "  ", ""); !errors.Is(err, ErrMissingField) {
		t.Fatalf("want ErrMissingField, got %v", err)
	}
	noKey := &AnalysisService{AI: ai}
	if _, err := noKey.Analyze(context.Background(), "AAAA", ""); !errors.Is(err, ErrMissingConfig) {
		t.Fatalf("want ErrMissingConfig, got %v", err)
	}
	if ai.Calls() != 0 {
		t.Fatalf("AI called %d times", ai.Calls())
	}
}

func TestAnalyze_RetriesRateLimitThenSucceeds(t *testing.T) {
	ai := &fakeAI{responses: []fakeAnswer{rateLimited(), rateLimited(), {resp: textResponse(t, "Good squat depth.")}}}
	got, err := analysisSvc(ai).Analyze(context.Background(), "data:video/webm;base64,AAAA", "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got != "Good squat depth." || ai.Calls() != 3 {
		t.Fatalf("got %q after %d calls", got, ai.Calls())
	}
}

func TestAnalyze_RateLimitExhausted(t *testing.T) {
	ai := &fakeAI{responses: []fakeAnswer{rateLimited()}}
	_, err := analysisSvc(ai).Analyze(context.Background(), "AAAA", "video/mp4")
	if !errors.Is(err, ErrUpstreamRateLimited) {
		t.Fatalf("want ErrUpstreamRateLimited, got %v", err)
	}
	if ai.Calls() != 3 {
		t.Fatalf("calls = %d, want 3", ai.Calls())
	}
}

func TestAnalyze_NonRetryableErrors(t *testing.T) {
	cases := []struct {
		name string
		ans  fakeAnswer
		want error
	}{
		{"unauthorized", fakeAnswer{err: &gemini.APIError{StatusCode: http.StatusUnauthorized}}, ErrUpstreamAuth},
		{"forbidden", fakeAnswer{err: &gemini.APIError{StatusCode: http.StatusForbidden}}, ErrUpstreamAuth},
		{"server", fakeAnswer{err: &gemini.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}}, ErrAnalysisFailed},
		{"empty text", fakeAnswer{resp: textResponse(t, "  ")}, ErrAnalysisFailed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ai := &fakeAI{responses: []fakeAnswer{c.ans}}
			_, err := analysisSvc(ai).Analyze(context.Background(), "AAAA", "")
			if !errors.Is(err, c.want) {
				t.Fatalf("want %v, got %v", c.want, err)
			}
			if ai.Calls() != 1 {
				t.Fatalf("calls = %d, want 1", ai.Calls())
			}
		})
	}
}
