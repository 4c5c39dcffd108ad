// Package services – ImageService
//
// ImageService turns an achievement into an illustration for the NFT. It asks
// the image model for a TEXT+IMAGE answer, stores the decoded picture through
// an assets.Store and returns its absolute URL. Any failure along the way is
// logged and answered with a static placeholder, so Generate never fails.
package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/rehab-rewards-backend/internal/assets"
	"github.com/tbourn/rehab-rewards-backend/internal/config"
	"github.com/tbourn/rehab-rewards-backend/internal/gemini"
	"github.com/tbourn/rehab-rewards-backend/internal/observability"
)

// ContentGenerator is implemented by *gemini.Client.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, req gemini.Request) (*gemini.Response, error)
}

// Exercise keyword families used for prompt framing and placeholders.
const (
	KeywordPush    = "push"
	KeywordSquat   = "squat"
	KeywordPlank   = "plank"
	KeywordStretch = "stretch"
	KeywordCardio  = "cardio"
	KeywordGeneric = "generic"
)

// ExerciseKeyword classifies an exercise type by substring.
func ExerciseKeyword(exerciseType string) string {
	t := strings.ToLower(exerciseType)
	switch {
	case strings.Contains(t, "push") || strings.Contains(t, "press"):
		return KeywordPush
	case strings.Contains(t, "squat"):
		return KeywordSquat
	case strings.Contains(t, "plank"):
		return KeywordPlank
	case strings.Contains(t, "stretch") || strings.Contains(t, "flexibility"):
		return KeywordStretch
	case strings.Contains(t, "cardio") || strings.Contains(t, "run"):
		return KeywordCardio
	default:
		return KeywordGeneric
	}
}

// PlaceholderPath returns the static placeholder for an exercise type.
// Cardio has no artwork of its own and shares the generic one.
func PlaceholderPath(exerciseType string) string {
	kw := ExerciseKeyword(exerciseType)
	if kw == KeywordCardio {
		kw = KeywordGeneric
	}
	return "/" + assets.PlaceholderPrefix + "/" + kw + "-achievement.svg"
}

// ScoreTier names the score band used in the prompt.
func ScoreTier(score int) string {
	switch {
	case score >= 90:
		return "perfect"
	case score >= 80:
		return "excellent"
	case score >= 70:
		return "good"
	default:
		return "decent"
	}
}

var framing = map[string]string{
	KeywordPush:    "a heroic figure mid push-up, arms strong, radiating upper-body power",
	KeywordSquat:   "an athlete in a deep, balanced squat with glowing leg strength",
	KeywordPlank:   "a rock-solid plank pose over a glowing core emblem",
	KeywordStretch: "a graceful flowing stretch with ribbons of light showing flexibility",
	KeywordCardio:  "a runner in motion leaving energetic light trails",
	KeywordGeneric: "a triumphant rehabilitation athlete raising a trophy",
}

// ImagePrompt builds the illustration prompt for an achievement.
func ImagePrompt(in AchievementRequest) string {
	title := cases.Title(language.English)
	player := strings.TrimSpace(in.PlayerName)
	if player == "" {
		player = "the patient"
	}
	body := strings.TrimSpace(in.BodyPart)
	if body == "" {
		body = "full body"
	}
	difficulty := strings.TrimSpace(in.Difficulty)
	if difficulty == "" {
		difficulty = "Standard"
	}
	return fmt.Sprintf(
		"Create a vibrant collectible NFT badge celebrating a %s %s performance by %s. "+
			"Show %s. Difficulty: %s. Focus area: %s. Score: %d/100. "+
			"Square composition, bold colors, game-achievement style, no text.",
		ScoreTier(in.Score()), title.String(in.ExerciseType), player,
		framing[ExerciseKeyword(in.ExerciseType)], difficulty, title.String(body), in.Score(),
	)
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	out := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if out == "" {
		return "nft"
	}
	return out
}

// GeneratedImage is the outcome of ImageService.Generate.
type GeneratedImage struct {
	URL      string
	Prompt   string
	Fallback bool
}

// ImageService generates and stores achievement illustrations.
type ImageService struct {
	AI     ContentGenerator
	Config config.GeminiConfig
	Store  assets.Store

	// PublicBaseURL prefixes placeholder paths.
	PublicBaseURL string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Generate always returns a usable URL.
func (s *ImageService) Generate(ctx context.Context, in AchievementRequest) GeneratedImage {
	tr := otel.Tracer("services/ImageService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(attribute.String("exercise.type", in.ExerciseType)),
	)
	defer span.End()

	prompt := ImagePrompt(in)
	url, err := s.generate(ctx, in.ExerciseType, prompt)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("exercise_type", in.ExerciseType).Msg("image generation failed; using placeholder")
		observability.ImageFallbacks.Inc()
		span.SetAttributes(attribute.Bool("image.fallback", true))
		return GeneratedImage{
			URL:      strings.TrimRight(s.PublicBaseURL, "/") + PlaceholderPath(in.ExerciseType),
			Prompt:   prompt,
			Fallback: true,
		}
	}
	return GeneratedImage{URL: url, Prompt: prompt}
}

func (s *ImageService) generate(ctx context.Context, exerciseType, prompt string) (string, error) {
	if s.AI == nil || strings.TrimSpace(s.Config.APIKey) == "" {
		return "", config.Missing("GEMINI_API_KEY")
	}
	if s.Store == nil {
		return "", errors.New("no asset store configured")
	}
	resp, err := s.AI.GenerateContent(ctx, s.Config.ImageModel, gemini.ImagePrompt(prompt))
	if err != nil {
		return "", err
	}
	img := resp.Image()
	if img == nil {
		return "", errors.New("response contained no image")
	}
	data, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	mime := img.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return s.Store.Put(ctx, assets.ImageKey(slug(exerciseType), now().UnixMilli()), data, mime)
}
