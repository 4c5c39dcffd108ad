package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
)

// FindActiveRoutine returns one active routine of the patient.
func FindActiveRoutine(ctx context.Context, db *gorm.DB, patientID string) (*domain.Routine, error) {
	var r domain.Routine
	err := db.WithContext(ctx).
		Where("patient_id = ? AND is_active = ?", patientID, true).
		Take(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRoutine inserts a routine row without touching associations.
func CreateRoutine(ctx context.Context, db *gorm.DB, r *domain.Routine) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Omit(clause.Associations).Create(r).Error
}

// ListRoutinesByPatient returns the patient's routines, newest first, with
// their exercises (ordered by order_index) preloaded.
func ListRoutinesByPatient(ctx context.Context, db *gorm.DB, patientID string) ([]domain.Routine, error) {
	var out []domain.Routine
	err := db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Preload("Exercises", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index ASC") }).
		Preload("Exercises.Exercise").
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// FindRoutineExercise returns the join row for (routine, exercise).
func FindRoutineExercise(ctx context.Context, db *gorm.DB, routineID, exerciseID string) (*domain.RoutineExercise, error) {
	var re domain.RoutineExercise
	err := db.WithContext(ctx).
		Where("routine_id = ? AND exercise_id = ?", routineID, exerciseID).
		Take(&re).Error
	if err != nil {
		return nil, err
	}
	return &re, nil
}

// GetRoutineExercise fetches a join row by id.
func GetRoutineExercise(ctx context.Context, db *gorm.DB, id string) (*domain.RoutineExercise, error) {
	var re domain.RoutineExercise
	if err := db.WithContext(ctx).Where("id = ?", id).First(&re).Error; err != nil {
		return nil, err
	}
	return &re, nil
}

// CreateRoutineExercise inserts a join row without touching associations.
func CreateRoutineExercise(ctx context.Context, db *gorm.DB, re *domain.RoutineExercise) error {
	if re.ID == "" {
		re.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Omit(clause.Associations).Create(re).Error
}

// GetRoutine fetches a routine by id.
func GetRoutine(ctx context.Context, db *gorm.DB, id string) (*domain.Routine, error) {
	var r domain.Routine
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}
