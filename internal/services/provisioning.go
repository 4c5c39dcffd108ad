// Package services – Provisioner
//
// This file implements the entity-provisioning chain that runs before a
// reward is minted. It resolves the patient and the exercise completion the
// NFT will reference, creating exercise, routine, routine_exercise and
// completion rows on demand when the patient has no history yet.
//
// Inserts are not wrapped in a transaction: a failure part-way leaves the
// rows created so far, and they are reused by the next request.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
	"github.com/tbourn/rehab-rewards-backend/internal/observability"
	"github.com/tbourn/rehab-rewards-backend/internal/repo"
)

// Defaults for rows synthesized by the chain.
const (
	defaultSets             = 3
	defaultReps             = 10
	defaultRestSeconds      = 60
	defaultFrequencyPerWeek = 3
)

// AchievementRequest is the input shared by image generation, provisioning
// and minting. CompletionScore is a pointer so a zero score is not confused
// with an absent one.
type AchievementRequest struct {
	WalletAddress        string `json:"walletAddress"`
	ExerciseType         string `json:"exerciseType"`
	CompletionScore      *int   `json:"completionScore"`
	Difficulty           string `json:"difficulty"`
	BodyPart             string `json:"bodyPart"`
	PlayerName           string `json:"playerName,omitempty"`
	PatientID            string `json:"patientId,omitempty"`
	ExerciseCompletionID string `json:"exerciseCompletionId,omitempty"`
	// SignedTx is a wallet-signed raw mintTo transaction (hex), only used
	// by the wallet signer.
	SignedTx string `json:"signedTransaction,omitempty"`
}

// Score returns the completion score, 0 when absent.
func (r AchievementRequest) Score() int {
	if r.CompletionScore == nil {
		return 0
	}
	return *r.CompletionScore
}

// Validate checks the mandatory mint fields.
func (r AchievementRequest) Validate() error {
	var fields []string
	if strings.TrimSpace(r.WalletAddress) == "" {
		fields = append(fields, "walletAddress")
	}
	if strings.TrimSpace(r.ExerciseType) == "" {
		fields = append(fields, "exerciseType")
	}
	if r.CompletionScore == nil {
		fields = append(fields, "completionScore")
	}
	if err := missing(fields...); err != nil {
		return err
	}
	if s := *r.CompletionScore; s < 0 || s > 100 {
		return fmt.Errorf("%w: completionScore must be between 0 and 100", ErrInvalidInput)
	}
	return nil
}

// ProvisionCounts reports how many rows each step inserted.
type ProvisionCounts struct {
	Exercises        int `json:"exercises"`
	Routines         int `json:"routines"`
	RoutineExercises int `json:"routine_exercises"`
	Completions      int `json:"completions"`
}

// Total is the sum of all inserts.
func (c ProvisionCounts) Total() int {
	return c.Exercises + c.Routines + c.RoutineExercises + c.Completions
}

// Provisioned is the output of the chain.
type Provisioned struct {
	PatientID            string
	ExerciseCompletionID string
	Created              ProvisionCounts
}

// Lookups used by Resolve; tests swap them to force interleavings.
var (
	latestCompletion = repo.LatestCompletion
	getProvisionKey  = repo.GetProvisionKey
)

// Provisioner resolves or lazily creates the rows a mint must reference.
type Provisioner struct {
	DB *gorm.DB

	// Bucket is the time window folded into the provisioning key; requests
	// for the same patient and exercise within one window share a completion.
	Bucket time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// Resolve returns (patientID, exerciseCompletionID) for in, short-circuiting
// on the first identifier it can resolve:
//
//  1. patient: in.PatientID, else any patient row
//  2. completion: in.ExerciseCompletionID, else the patient's latest
//     completion, else a row reused through the provisioning key, else a
//     freshly synthesized exercise → routine → routine_exercise → completion.
func (p *Provisioner) Resolve(ctx context.Context, in AchievementRequest) (*Provisioned, error) {
	tr := otel.Tracer("services/Provisioner")
	ctx, span := tr.Start(ctx, "Resolve",
		trace.WithAttributes(
			attribute.String("exercise.type", in.ExerciseType),
			attribute.Bool("patient.provided", in.PatientID != ""),
			attribute.Bool("completion.provided", in.ExerciseCompletionID != ""),
		),
	)
	defer span.End()

	patientID, err := p.resolvePatient(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	out := &Provisioned{PatientID: patientID}

	if id := strings.TrimSpace(in.ExerciseCompletionID); id != "" {
		if _, err := repo.GetCompletion(ctx, p.DB, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrCompletionNotFound
			}
			return nil, fmt.Errorf("load completion: %w", err)
		}
		out.ExerciseCompletionID = id
		return out, nil
	}

	latest, err := latestCompletion(ctx, p.DB, patientID)
	switch {
	case err == nil:
		out.ExerciseCompletionID = latest.ID
		return out, nil
	case !errors.Is(err, repo.ErrNotFound):
		return nil, fmt.Errorf("load latest completion: %w", err)
	}

	key := p.key(patientID, in.ExerciseType)
	if pk, err := getProvisionKey(ctx, p.DB, key); err == nil {
		out.ExerciseCompletionID = pk.ExerciseCompletionID
		return out, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("load provision key: %w", err)
	}

	completionID, err := p.synthesize(ctx, patientID, in, &out.Created)
	if err != nil {
		return nil, err
	}
	out.ExerciseCompletionID = completionID

	if err := repo.CreateProvisionKey(ctx, p.DB, key, patientID, completionID); err != nil {
		if !errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("record provision key: %w", err)
		}
		// A concurrent request won the race; converge on its completion.
		pk, rerr := getProvisionKey(ctx, p.DB, key)
		if rerr != nil {
			return nil, fmt.Errorf("reload provision key: %w", rerr)
		}
		zerolog.Ctx(ctx).Warn().
			Str("patient_id", patientID).
			Str("orphan_completion_id", completionID).
			Str("completion_id", pk.ExerciseCompletionID).
			Msg("provisioning race lost; reusing winner's completion")
		out.ExerciseCompletionID = pk.ExerciseCompletionID
	}

	span.SetAttributes(attribute.Int("provision.rows_created", out.Created.Total()))
	return out, nil
}

func (p *Provisioner) resolvePatient(ctx context.Context, id string) (string, error) {
	if id = strings.TrimSpace(id); id != "" {
		if _, err := repo.GetPatient(ctx, p.DB, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return "", ErrPatientNotFound
			}
			return "", fmt.Errorf("load patient: %w", err)
		}
		return id, nil
	}
	pt, err := repo.AnyPatient(ctx, p.DB)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrNoPatientAvailable
		}
		return "", fmt.Errorf("load patient: %w", err)
	}
	return pt.ID, nil
}

func (p *Provisioner) synthesize(ctx context.Context, patientID string, in AchievementRequest, n *ProvisionCounts) (string, error) {
	log := zerolog.Ctx(ctx)

	// a. exercise
	ex, err := repo.FindExerciseByName(ctx, p.DB, in.ExerciseType)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return "", fmt.Errorf("find exercise: %w", err)
		}
		reps := defaultReps
		ex = &domain.Exercise{
			Name:        in.ExerciseType,
			Category:    CategoryFromBodyPart(in.BodyPart),
			Difficulty:  DifficultyLevel(in.Difficulty),
			DefaultSets: defaultSets,
			DefaultReps: &reps,
		}
		if err := repo.CreateExercise(ctx, p.DB, ex); err != nil {
			return "", fmt.Errorf("create exercise: %w", err)
		}
		n.Exercises++
		observability.ProvisionedRows.WithLabelValues("exercise").Inc()
		log.Info().Str("exercise_id", ex.ID).Str("name", ex.Name).Str("category", ex.Category).Msg("provisioned exercise")
	}

	// b. routine
	rt, err := repo.FindActiveRoutine(ctx, p.DB, patientID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return "", fmt.Errorf("find routine: %w", err)
		}
		doc, derr := repo.AnyDoctor(ctx, p.DB)
		if derr != nil {
			if errors.Is(derr, repo.ErrNotFound) {
				return "", ErrNoDoctorAvailable
			}
			return "", fmt.Errorf("load doctor: %w", derr)
		}
		rt = &domain.Routine{
			PatientID:        patientID,
			DoctorID:         doc.ID,
			Title:            "Rehabilitation routine",
			FrequencyPerWeek: defaultFrequencyPerWeek,
			IsActive:         true,
		}
		if err := repo.CreateRoutine(ctx, p.DB, rt); err != nil {
			return "", fmt.Errorf("create routine: %w", err)
		}
		n.Routines++
		observability.ProvisionedRows.WithLabelValues("routine").Inc()
		log.Info().Str("routine_id", rt.ID).Str("doctor_id", doc.ID).Msg("provisioned routine")
	}

	// c. routine exercise
	re, err := repo.FindRoutineExercise(ctx, p.DB, rt.ID, ex.ID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return "", fmt.Errorf("find routine exercise: %w", err)
		}
		reps := defaultReps
		re = &domain.RoutineExercise{
			RoutineID:   rt.ID,
			ExerciseID:  ex.ID,
			Sets:        defaultSets,
			Reps:        &reps,
			RestSeconds: defaultRestSeconds,
			OrderIndex:  1,
		}
		if err := repo.CreateRoutineExercise(ctx, p.DB, re); err != nil {
			return "", fmt.Errorf("create routine exercise: %w", err)
		}
		n.RoutineExercises++
		observability.ProvisionedRows.WithLabelValues("routine_exercise").Inc()
		log.Info().Str("routine_exercise_id", re.ID).Msg("provisioned routine exercise")
	}

	// d. completion
	c := &domain.ExerciseCompletion{
		RoutineExerciseID: re.ID,
		PatientID:         patientID,
		FormScore:         in.Score(),
		CompletionStatus:  domain.StatusCompleted,
	}
	if err := repo.CreateCompletion(ctx, p.DB, c); err != nil {
		return "", fmt.Errorf("create completion: %w", err)
	}
	n.Completions++
	observability.ProvisionedRows.WithLabelValues("completion").Inc()
	log.Info().Str("completion_id", c.ID).Int("form_score", c.FormScore).Msg("provisioned exercise completion")

	return c.ID, nil
}

// key is sha256(patient | lower(exercise) | bucket start).
func (p *Provisioner) key(patientID, exerciseType string) string {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	bucket := p.Bucket
	if bucket <= 0 {
		bucket = 10 * time.Minute
	}
	start := now().UTC().Truncate(bucket).Unix()
	sum := sha256.Sum256([]byte(patientID + "|" + strings.ToLower(strings.TrimSpace(exerciseType)) + "|" + strconv.FormatInt(start, 10)))
	return hex.EncodeToString(sum[:])
}

// CategoryFromBodyPart lower-cases a body part and replaces spaces with "_".
func CategoryFromBodyPart(bodyPart string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(bodyPart)), " ", "_")
}

// DifficultyLevel maps Easy→1, Intermediate→2 and anything else to 3.
func DifficultyLevel(d string) int {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "easy":
		return 1
	case "intermediate":
		return 2
	default:
		return 3
	}
}
