package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
	"github.com/tbourn/rehab-rewards-backend/internal/repo"
)

type dashboardFixture struct {
	svc       *DashboardService
	doctor    Caller
	patient   Caller
	patientID string
	squatID   string
	plankID   string
}

func newDashboard(t *testing.T) dashboardFixture {
	t.Helper()
	db := newSvcDB(t)
	ctx := context.Background()
	d := seedDoctor(t, db)
	p := seedPatient(t, db, "Alex")

	squat := &domain.Exercise{Name: "Wall Squats", Category: "lower_body", Difficulty: 2, Description: "Slide down a wall to build quad strength", DefaultSets: 3, DefaultReps: intp(12)}
	plank := &domain.Exercise{Name: "Forearm Plank", Category: "core", Difficulty: 3, Description: "Hold a straight line on the forearms", DefaultSets: 3, DefaultDurationSeconds: intp(30)}
	for _, e := range []*domain.Exercise{squat, plank} {
		if err := repo.CreateExercise(ctx, db, e); err != nil {
			t.Fatalf("seed exercise: %v", err)
		}
	}
	return dashboardFixture{
		svc:       &DashboardService{DB: db},
		doctor:    Caller{AccountID: "acc-d", Role: domain.RoleDoctor, ProfileID: d.ID},
		patient:   Caller{AccountID: "acc-p", Role: domain.RolePatient, ProfileID: p.ID},
		patientID: p.ID,
		squatID:   squat.ID,
		plankID:   plank.ID,
	}
}

func TestCreateRoutine_OrdersAndDefaults(t *testing.T) {
	f := newDashboard(t)
	ctx := context.Background()

	rt, err := f.svc.CreateRoutine(ctx, f.doctor, CreateRoutineRequest{
		PatientID: f.patientID,
		Title:     "Knee rehab week 1",
		Exercises: []RoutineExerciseInput{
			{ExerciseID: f.plankID},
			{ExerciseID: f.squatID, Sets: 4, Reps: intp(8), RestSeconds: 90},
		},
	})
	if err != nil {
		t.Fatalf("CreateRoutine: %v", err)
	}
	if rt.DoctorID != f.doctor.ProfileID || rt.FrequencyPerWeek != 3 || !rt.IsActive {
		t.Fatalf("routine = %+v", rt)
	}

	list, err := f.svc.ListRoutines(ctx, f.patient, f.patientID)
	if err != nil || len(list) != 1 || len(list[0].Exercises) != 2 {
		t.Fatalf("routines = %+v, %v", list, err)
	}
	first, second := list[0].Exercises[0], list[0].Exercises[1]
	if first.OrderIndex != 1 || first.ExerciseID != f.plankID || first.Sets != 3 || first.RestSeconds != 60 {
		t.Fatalf("first = %+v", first)
	}
	if first.DurationSeconds == nil || *first.DurationSeconds != 30 || first.Reps != nil {
		t.Fatalf("first should inherit the exercise duration: %+v", first)
	}
	if second.OrderIndex != 2 || second.Sets != 4 || *second.Reps != 8 || second.RestSeconds != 90 {
		t.Fatalf("second = %+v", second)
	}
	if second.Exercise.Name != "Wall Squats" {
		t.Fatalf("exercise not preloaded: %+v", second.Exercise)
	}
}

func TestCreateRoutine_Errors(t *testing.T) {
	f := newDashboard(t)
	ctx := context.Background()
	valid := CreateRoutineRequest{PatientID: f.patientID, Title: "T", Exercises: []RoutineExerciseInput{{ExerciseID: f.squatID}}}

	if _, err := f.svc.CreateRoutine(ctx, f.patient, valid); !errors.Is(err, ErrForbidden) {
		t.Fatalf("patient caller: want ErrForbidden, got %v", err)
	}
	if _, err := f.svc.CreateRoutine(ctx, f.doctor, CreateRoutineRequest{}); !errors.Is(err, ErrMissingField) {
		t.Fatalf("want ErrMissingField, got %v", err)
	}

	bad := valid
	bad.PatientID = "nope"
	if _, err := f.svc.CreateRoutine(ctx, f.doctor, bad); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("want ErrPatientNotFound, got %v", err)
	}

	bad = valid
	bad.Exercises = []RoutineExerciseInput{{ExerciseID: f.squatID}, {ExerciseID: "missing"}}
	if _, err := f.svc.CreateRoutine(ctx, f.doctor, bad); !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("want ErrExerciseNotFound, got %v", err)
	}
	// Rolled back: neither the routine nor the first exercise row survives.
	if n := count(t, f.svc.DB, &domain.Routine{}); n != 0 {
		t.Fatalf("routines = %d, want 0", n)
	}
	if n := count(t, f.svc.DB, &domain.RoutineExercise{}); n != 0 {
		t.Fatalf("routine exercises = %d, want 0", n)
	}
}

func TestRecordCompletion_StatusAndOwnership(t *testing.T) {
	f := newDashboard(t)
	ctx := context.Background()
	rt, err := f.svc.CreateRoutine(ctx, f.doctor, CreateRoutineRequest{
		PatientID: f.patientID, Title: "T", Exercises: []RoutineExerciseInput{{ExerciseID: f.squatID}},
	})
	if err != nil {
		t.Fatalf("CreateRoutine: %v", err)
	}
	reID := rt.Exercises[0].ID

	for score, want := range map[int]string{85: domain.StatusCompleted, 55: domain.StatusNeedsImprovement, 10: domain.StatusFailed} {
		c, err := f.svc.RecordCompletion(ctx, f.patient, RecordCompletionRequest{RoutineExerciseID: reID, FormScore: intp(score)})
		if err != nil {
			t.Fatalf("RecordCompletion(%d): %v", score, err)
		}
		if c.CompletionStatus != want || c.PatientID != f.patientID {
			t.Fatalf("score %d: completion = %+v", score, c)
		}
	}

	other := seedPatient(t, f.svc.DB, "Sam")
	_, err = f.svc.RecordCompletion(ctx, f.doctor, RecordCompletionRequest{PatientID: other.ID, RoutineExerciseID: reID, FormScore: intp(80)})
	if !errors.Is(err, ErrRoutineExerciseNotFound) {
		t.Fatalf("foreign routine exercise: want ErrRoutineExerciseNotFound, got %v", err)
	}
	if _, err := f.svc.RecordCompletion(ctx, f.patient, RecordCompletionRequest{RoutineExerciseID: reID, FormScore: intp(120)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
	if _, err := f.svc.RecordCompletion(ctx, f.doctor, RecordCompletionRequest{RoutineExerciseID: reID}); !errors.Is(err, ErrMissingField) {
		t.Fatalf("want ErrMissingField, got %v", err)
	}
}

func TestProgress_PaginatesAndSummarizes(t *testing.T) {
	f := newDashboard(t)
	ctx := context.Background()
	rt, err := f.svc.CreateRoutine(ctx, f.doctor, CreateRoutineRequest{
		PatientID: f.patientID, Title: "T", Exercises: []RoutineExerciseInput{{ExerciseID: f.squatID}},
	})
	if err != nil {
		t.Fatalf("CreateRoutine: %v", err)
	}
	for _, s := range []int{60, 80, 100} {
		if _, err := f.svc.RecordCompletion(ctx, f.patient, RecordCompletionRequest{RoutineExerciseID: rt.Exercises[0].ID, FormScore: intp(s)}); err != nil {
			t.Fatalf("RecordCompletion: %v", err)
		}
	}

	v, err := f.svc.Progress(ctx, f.doctor, f.patientID, 2, 2)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if v.Completions != 3 || v.AverageScore != 80 || v.Minted != 0 || v.LastCompletion == nil {
		t.Fatalf("stats = %+v", v.ProgressStats)
	}
	if v.Page != 2 || v.PageSize != 2 || len(v.Items) != 1 {
		t.Fatalf("page = %d size = %d items = %d", v.Page, v.PageSize, len(v.Items))
	}

	v, err = f.svc.Progress(ctx, f.patient, f.patientID, 0, 1000)
	if err != nil || v.Page != 1 || v.PageSize != MaxPageSize || len(v.Items) != 3 {
		t.Fatalf("clamped page = %+v, %v", v, err)
	}
}

func TestPatientScopedReads_Forbidden(t *testing.T) {
	f := newDashboard(t)
	ctx := context.Background()
	other := seedPatient(t, f.svc.DB, "Sam")

	if _, err := f.svc.ListRoutines(ctx, f.patient, other.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("ListRoutines: want ErrForbidden, got %v", err)
	}
	if _, err := f.svc.Progress(ctx, f.patient, other.ID, 1, 10); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Progress: want ErrForbidden, got %v", err)
	}
	if _, err := f.svc.ListNFTs(ctx, f.patient, other.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("ListNFTs: want ErrForbidden, got %v", err)
	}
	if _, err := f.svc.ListNFTs(ctx, f.doctor, "nope"); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("ListNFTs: want ErrPatientNotFound, got %v", err)
	}
	nfts, err := f.svc.ListNFTs(ctx, f.doctor, other.ID)
	if err != nil || len(nfts) != 0 {
		t.Fatalf("ListNFTs = %v, %v", nfts, err)
	}
}

func TestListExercises_AllAndSearch(t *testing.T) {
	f := newDashboard(t)
	ctx := context.Background()

	all, err := f.svc.ListExercises(ctx, "")
	if err != nil || len(all) != 2 || all[0].Name != "Forearm Plank" {
		t.Fatalf("all = %+v, %v", all, err)
	}

	hits, err := f.svc.ListExercises(ctx, "quad strength")
	if err != nil || len(hits) != 1 || hits[0].ID != f.squatID {
		t.Fatalf("hits = %+v, %v", hits, err)
	}

	hits, err = f.svc.ListExercises(ctx, "core")
	if err != nil || len(hits) != 1 || hits[0].ID != f.plankID {
		t.Fatalf("category hits = %+v, %v", hits, err)
	}

	none, err := f.svc.ListExercises(ctx, "swimming")
	if err != nil || len(none) != 0 {
		t.Fatalf("none = %+v, %v", none, err)
	}
}
