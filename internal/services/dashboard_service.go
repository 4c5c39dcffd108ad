// Package services – DashboardService
//
// DashboardService backs the doctor monitoring views: routine prescription,
// completion recording, patient progress, minted NFTs and the exercise
// library. Patients may only read and write their own records.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
	"github.com/tbourn/rehab-rewards-backend/internal/repo"
	"github.com/tbourn/rehab-rewards-backend/internal/search"
	"github.com/tbourn/rehab-rewards-backend/internal/utils"
)

// Progress page sizes.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Caller is the authenticated principal of a request.
type Caller struct {
	AccountID string
	Role      domain.Role
	ProfileID string
}

// CanViewPatient reports ErrForbidden when a patient asks for someone
// else's records. Doctors may view any patient.
func (c Caller) CanViewPatient(patientID string) error {
	if c.Role == domain.RolePatient && c.ProfileID != patientID {
		return ErrForbidden
	}
	return nil
}

// RoutineExerciseInput is one prescribed exercise of a routine.
type RoutineExerciseInput struct {
	ExerciseID      string `json:"exerciseId"`
	Sets            int    `json:"sets,omitempty"`
	Reps            *int   `json:"reps,omitempty"`
	DurationSeconds *int   `json:"durationSeconds,omitempty"`
	RestSeconds     int    `json:"restSeconds,omitempty"`
}

// CreateRoutineRequest is the body of POST /api/routines.
type CreateRoutineRequest struct {
	PatientID        string                 `json:"patientId"`
	Title            string                 `json:"title"`
	FrequencyPerWeek int                    `json:"frequencyPerWeek,omitempty"`
	Exercises        []RoutineExerciseInput `json:"exercises"`
}

// RecordCompletionRequest is the body of POST /api/completions. PatientID
// is taken from the caller when the caller is a patient.
type RecordCompletionRequest struct {
	PatientID         string `json:"patientId,omitempty"`
	RoutineExerciseID string `json:"routineExerciseId"`
	FormScore         *int   `json:"formScore"`
	Feedback          string `json:"feedback,omitempty"`
}

// ProgressView is a patient's summary plus one page of completions.
type ProgressView struct {
	repo.ProgressStats
	Page     int                         `json:"page"`
	PageSize int                         `json:"page_size"`
	Items    []domain.ExerciseCompletion `json:"items"`
}

// DashboardService serves the dashboard routes.
type DashboardService struct {
	DB *gorm.DB
}

// CreateRoutine prescribes a routine to a patient. Only doctors may call it;
// the routine and its exercises are written in one transaction with
// order_index following the request order starting at 1.
func (s *DashboardService) CreateRoutine(ctx context.Context, caller Caller, in CreateRoutineRequest) (*domain.Routine, error) {
	tr := otel.Tracer("services/DashboardService")
	ctx, span := tr.Start(ctx, "CreateRoutine",
		trace.WithAttributes(
			attribute.String("patient.id", in.PatientID),
			attribute.Int("routine.exercises", len(in.Exercises)),
		),
	)
	defer span.End()

	if caller.Role != domain.RoleDoctor {
		return nil, ErrForbidden
	}
	in.PatientID = strings.TrimSpace(in.PatientID)
	in.Title = strings.TrimSpace(in.Title)
	if err := missing(lo.Compact([]string{
		lo.Ternary(in.PatientID == "", "patientId", ""),
		lo.Ternary(in.Title == "", "title", ""),
		lo.Ternary(len(in.Exercises) == 0, "exercises", ""),
	})...); err != nil {
		return nil, err
	}
	for i, e := range in.Exercises {
		if strings.TrimSpace(e.ExerciseID) == "" {
			return nil, missing(fmt.Sprintf("exercises[%d].exerciseId", i))
		}
		if e.Sets < 0 || e.RestSeconds < 0 {
			return nil, fmt.Errorf("%w: exercises[%d] sets and restSeconds must not be negative", ErrInvalidInput, i)
		}
	}
	if in.FrequencyPerWeek < 0 || in.FrequencyPerWeek > 14 {
		return nil, fmt.Errorf("%w: frequencyPerWeek must be between 1 and 14", ErrInvalidInput)
	}

	rt := &domain.Routine{
		PatientID:        in.PatientID,
		DoctorID:         caller.ProfileID,
		Title:            in.Title,
		FrequencyPerWeek: lo.Ternary(in.FrequencyPerWeek == 0, defaultFrequencyPerWeek, in.FrequencyPerWeek),
		IsActive:         true,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetPatient(ctx, tx, in.PatientID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrPatientNotFound
			}
			return fmt.Errorf("load patient: %w", err)
		}
		if err := repo.CreateRoutine(ctx, tx, rt); err != nil {
			return fmt.Errorf("create routine: %w", err)
		}
		for i, e := range in.Exercises {
			ex, err := repo.GetExercise(ctx, tx, strings.TrimSpace(e.ExerciseID))
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrExerciseNotFound, e.ExerciseID)
				}
				return fmt.Errorf("load exercise: %w", err)
			}
			re := domain.RoutineExercise{
				RoutineID:       rt.ID,
				ExerciseID:      ex.ID,
				Sets:            lo.Ternary(e.Sets == 0, defaultSets, e.Sets),
				Reps:            e.Reps,
				DurationSeconds: e.DurationSeconds,
				RestSeconds:     lo.Ternary(e.RestSeconds == 0, defaultRestSeconds, e.RestSeconds),
				OrderIndex:      i + 1,
			}
			if re.Reps == nil && re.DurationSeconds == nil {
				re.Reps, re.DurationSeconds = ex.DefaultReps, ex.DefaultDurationSeconds
			}
			if err := repo.CreateRoutineExercise(ctx, tx, &re); err != nil {
				return fmt.Errorf("create routine exercise: %w", err)
			}
			re.Exercise = *ex
			rt.Exercises = append(rt.Exercises, re)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("routine_id", rt.ID).
		Str("patient_id", rt.PatientID).
		Str("doctor_id", rt.DoctorID).
		Int("exercises", len(rt.Exercises)).
		Msg("routine created")
	return rt, nil
}

// ListRoutines returns the patient's routines with their exercises.
func (s *DashboardService) ListRoutines(ctx context.Context, caller Caller, patientID string) ([]domain.Routine, error) {
	tr := otel.Tracer("services/DashboardService")
	ctx, span := tr.Start(ctx, "ListRoutines", trace.WithAttributes(attribute.String("patient.id", patientID)))
	defer span.End()

	if err := s.visiblePatient(ctx, caller, patientID); err != nil {
		return nil, err
	}
	return repo.ListRoutinesByPatient(ctx, s.DB, patientID)
}

// RecordCompletion stores one attempt. The status is derived from the
// score, and the routine exercise must belong to one of the patient's
// routines.
func (s *DashboardService) RecordCompletion(ctx context.Context, caller Caller, in RecordCompletionRequest) (*domain.ExerciseCompletion, error) {
	tr := otel.Tracer("services/DashboardService")
	ctx, span := tr.Start(ctx, "RecordCompletion",
		trace.WithAttributes(attribute.String("routine_exercise.id", in.RoutineExerciseID)),
	)
	defer span.End()

	if caller.Role == domain.RolePatient {
		in.PatientID = caller.ProfileID
	}
	in.PatientID = strings.TrimSpace(in.PatientID)
	in.RoutineExerciseID = strings.TrimSpace(in.RoutineExerciseID)
	if err := missing(lo.Compact([]string{
		lo.Ternary(in.PatientID == "", "patientId", ""),
		lo.Ternary(in.RoutineExerciseID == "", "routineExerciseId", ""),
		lo.Ternary(in.FormScore == nil, "formScore", ""),
	})...); err != nil {
		return nil, err
	}
	if sc := *in.FormScore; sc < 0 || sc > 100 {
		return nil, fmt.Errorf("%w: formScore must be between 0 and 100", ErrInvalidInput)
	}
	if err := s.visiblePatient(ctx, caller, in.PatientID); err != nil {
		return nil, err
	}

	re, err := repo.GetRoutineExercise(ctx, s.DB, in.RoutineExerciseID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRoutineExerciseNotFound
		}
		return nil, fmt.Errorf("load routine exercise: %w", err)
	}
	rt, err := repo.GetRoutine(ctx, s.DB, re.RoutineID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRoutineExerciseNotFound
		}
		return nil, fmt.Errorf("load routine: %w", err)
	}
	if rt.PatientID != in.PatientID {
		return nil, ErrRoutineExerciseNotFound
	}

	c := &domain.ExerciseCompletion{
		RoutineExerciseID: re.ID,
		PatientID:         in.PatientID,
		FormScore:         *in.FormScore,
		CompletionStatus:  domain.StatusForScore(*in.FormScore),
		Feedback:          strings.TrimSpace(in.Feedback),
	}
	if err := repo.CreateCompletion(ctx, s.DB, c); err != nil {
		return nil, fmt.Errorf("create completion: %w", err)
	}
	zerolog.Ctx(ctx).Info().
		Str("completion_id", c.ID).
		Str("patient_id", c.PatientID).
		Int("form_score", c.FormScore).
		Str("status", c.CompletionStatus).
		Msg("completion recorded")
	return c, nil
}

// Progress returns the patient's summary and one page of completions,
// newest first.
func (s *DashboardService) Progress(ctx context.Context, caller Caller, patientID string, page, pageSize int) (*ProgressView, error) {
	tr := otel.Tracer("services/DashboardService")
	ctx, span := tr.Start(ctx, "Progress",
		trace.WithAttributes(
			attribute.String("patient.id", patientID),
			attribute.Int("page", page),
			attribute.Int("page.size", pageSize),
		),
	)
	defer span.End()

	if err := s.visiblePatient(ctx, caller, patientID); err != nil {
		return nil, err
	}
	st, err := repo.PatientProgress(ctx, s.DB, patientID)
	if err != nil {
		return nil, fmt.Errorf("progress stats: %w", err)
	}
	p, size, offset := utils.Paginate(page, pageSize, DefaultPageSize, MaxPageSize)
	items, err := repo.ListCompletionsPage(ctx, s.DB, patientID, offset, size)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	if items == nil {
		items = []domain.ExerciseCompletion{}
	}
	return &ProgressView{ProgressStats: st, Page: p, PageSize: size, Items: items}, nil
}

// ListNFTs returns the NFTs minted for the patient.
func (s *DashboardService) ListNFTs(ctx context.Context, caller Caller, patientID string) ([]domain.NFT, error) {
	tr := otel.Tracer("services/DashboardService")
	ctx, span := tr.Start(ctx, "ListNFTs", trace.WithAttributes(attribute.String("patient.id", patientID)))
	defer span.End()

	if err := s.visiblePatient(ctx, caller, patientID); err != nil {
		return nil, err
	}
	out, err := repo.ListNFTsByPatient(ctx, s.DB, patientID)
	if err != nil {
		return nil, fmt.Errorf("list nfts: %w", err)
	}
	return out, nil
}

// ListExercises returns the exercise library ordered by name. A non-blank
// query ranks entries by token overlap with name, category and description
// and drops the ones that share no token with it.
func (s *DashboardService) ListExercises(ctx context.Context, query string) ([]domain.Exercise, error) {
	tr := otel.Tracer("services/DashboardService")
	ctx, span := tr.Start(ctx, "ListExercises", trace.WithAttributes(attribute.Int("query.len", len(query))))
	defer span.End()

	all, err := repo.ListExercises(ctx, s.DB)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	if strings.TrimSpace(query) == "" || len(all) == 0 {
		return all, nil
	}

	byID := lo.KeyBy(all, func(e domain.Exercise) string { return e.ID })
	idx := search.NewIndex(lo.Map(all, func(e domain.Exercise, _ int) search.Document {
		return search.Document{ID: e.ID, Text: e.Name + " " + strings.ReplaceAll(e.Category, "_", " ") + " " + e.Description}
	}), search.WithStopwords(search.DefaultStopwords))

	hits := idx.TopK(query, len(all))
	span.SetAttributes(attribute.Int("search.hits", len(hits)))
	return lo.Map(hits, func(r search.Result, _ int) domain.Exercise { return byID[r.ID] }), nil
}

func (s *DashboardService) visiblePatient(ctx context.Context, caller Caller, patientID string) error {
	if strings.TrimSpace(patientID) == "" {
		return missing("patientId")
	}
	if err := caller.CanViewPatient(patientID); err != nil {
		return err
	}
	if _, err := repo.GetPatient(ctx, s.DB, patientID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrPatientNotFound
		}
		return fmt.Errorf("load patient: %w", err)
	}
	return nil
}
