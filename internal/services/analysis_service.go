// Package services – AnalysisService
//
// AnalysisService sends an exercise video to the text+video model and
// returns its free-text form feedback. Only rate-limit answers are retried:
// two retries with exponential backoff (1s, then 2s by default).
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/rehab-rewards-backend/internal/config"
	"github.com/tbourn/rehab-rewards-backend/internal/gemini"
	"github.com/tbourn/rehab-rewards-backend/internal/observability"
)

const (
	defaultVideoMimeType = "video/mp4"
	analysisMaxTries     = 3
)

// analysisPrompt is sent alongside the video.
const analysisPrompt = `You are a physical therapist reviewing a rehabilitation exercise video.
Identify the exercise, count repetitions if possible, and assess form.
Respond with:
1. Exercise identified
2. Form score from 0 to 100
3. What the patient did well
4. Specific corrections, most important first
5. Safety concerns, if any
Keep the tone encouraging and the answer under 250 words.`

// AnalysisService wraps the video-analysis collaborator.
type AnalysisService struct {
	AI     ContentGenerator
	Config config.GeminiConfig
}

// Analyze returns the model's feedback for a base64 video.
//
// Errors: *FieldError when the video is empty, ErrMissingConfig without an
// API key, ErrUpstreamAuth on 401/403, ErrUpstreamRateLimited when every try
// hit 429, ErrAnalysisFailed for anything else.
func (s *AnalysisService) Analyze(ctx context.Context, videoBase64, mimeType string) (string, error) {
	tr := otel.Tracer("services/AnalysisService")
	ctx, span := tr.Start(ctx, "Analyze",
		trace.WithAttributes(attribute.Int("video.base64_len", len(videoBase64))),
	)
	defer span.End()

	if strings.TrimSpace(videoBase64) == "" {
		return "", missing("videoBase64")
	}
	if strings.TrimSpace(s.Config.APIKey) == "" || s.AI == nil {
		return "", config.Missing("GEMINI_API_KEY")
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = defaultVideoMimeType
	}
	// Accept data URLs from browsers ("data:video/mp4;base64,....").
	if i := strings.Index(videoBase64, ";base64,"); strings.HasPrefix(videoBase64, "data:") && i > 0 {
		mimeType = strings.TrimPrefix(videoBase64[:i], "data:")
		videoBase64 = videoBase64[i+len(";base64,"):]
	}

	req := gemini.TextAndInline(analysisPrompt, mimeType, videoBase64)
	log := zerolog.Ctx(ctx)

	op := func() (string, error) {
		resp, err := s.AI.GenerateContent(ctx, s.Config.TextModel, req)
		if err != nil {
			if gemini.StatusCode(err) == http.StatusTooManyRequests {
				return "", err
			}
			return "", backoff.Permanent(err)
		}
		return resp.Text(), nil
	}

	text, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(s.backoff()),
		backoff.WithMaxTries(analysisMaxTries),
		backoff.WithNotify(func(err error, d time.Duration) {
			observability.AnalysisRetries.Inc()
			log.Warn().Err(err).Dur("retry_in", d).Msg("video analysis rate limited; retrying")
		}),
	)
	if err != nil {
		return "", classifyAnalysisError(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response", ErrAnalysisFailed)
	}
	return text, nil
}

func (s *AnalysisService) backoff() *backoff.ExponentialBackOff {
	base := s.Config.RetryBase
	if base <= 0 {
		base = time.Second
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 4 * base
	return b
}

func classifyAnalysisError(err error) error {
	switch gemini.StatusCode(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUpstreamAuth
	case http.StatusTooManyRequests:
		return ErrUpstreamRateLimited
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
}
