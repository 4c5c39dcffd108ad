package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
)

// FindExerciseByName returns the first exercise whose name matches exactly.
func FindExerciseByName(ctx context.Context, db *gorm.DB, name string) (*domain.Exercise, error) {
	var e domain.Exercise
	if err := db.WithContext(ctx).Where("name = ?", name).Take(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// GetExercise fetches an exercise by id.
func GetExercise(ctx context.Context, db *gorm.DB, id string) (*domain.Exercise, error) {
	var e domain.Exercise
	if err := db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateExercise inserts an exercise. AI-generated rows lose their synthetic
// id and get a real UUID on persist.
func CreateExercise(ctx context.Context, db *gorm.DB, e *domain.Exercise) error {
	if e.ID == "" || e.IsAIGenerated() {
		e.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(e).Error
}

// ListExercises returns the exercise library ordered by name.
func ListExercises(ctx context.Context, db *gorm.DB) ([]domain.Exercise, error) {
	var out []domain.Exercise
	err := db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}
