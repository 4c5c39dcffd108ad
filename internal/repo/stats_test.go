package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
)

func TestPatientProgress_CountError_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	if _, err := PatientProgress(context.Background(), db, "p1"); err == nil {
		t.Fatalf("expected error due to missing completions table")
	}
}

func TestPatientProgress_ZeroRows(t *testing.T) {
	db := newTestDB(t, &domain.ExerciseCompletion{})
	st, err := PatientProgress(context.Background(), db, "p1")
	if err != nil {
		t.Fatalf("PatientProgress error: %v", err)
	}
	if st.Completions != 0 || st.Minted != 0 || st.LastCompletion != nil {
		t.Fatalf("expected zero stats, got %+v", st)
	}
}

func TestPatientProgress_Success_FilterAndLatest(t *testing.T) {
	db := newTestDB(t, &domain.ExerciseCompletion{})

	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC) // latest for p1
	t3 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)   // other patient

	rows := []domain.ExerciseCompletion{
		{ID: "c1", RoutineExerciseID: "re1", PatientID: "p1", FormScore: 80, CompletionStatus: domain.StatusCompleted, NFTMinted: true, CreatedAt: t1},
		{ID: "c2", RoutineExerciseID: "re1", PatientID: "p1", FormScore: 60, CompletionStatus: domain.StatusNeedsImprovement, CreatedAt: t2},
		{ID: "c3", RoutineExerciseID: "re2", PatientID: "p2", FormScore: 10, CompletionStatus: domain.StatusFailed, CreatedAt: t3},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	st, err := PatientProgress(context.Background(), db, "p1")
	if err != nil {
		t.Fatalf("PatientProgress: %v", err)
	}
	if st.Completions != 2 || st.Minted != 1 {
		t.Fatalf("unexpected counts: %+v", st)
	}
	if st.AverageScore != 70 {
		t.Fatalf("expected average 70, got %v", st.AverageScore)
	}
	if st.LastCompletion == nil || !st.LastCompletion.Equal(t2) {
		t.Fatalf("expected last completion %v, got %v", t2, st.LastCompletion)
	}
}
