package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
)

// GetCompletion fetches a completion by id.
func GetCompletion(ctx context.Context, db *gorm.DB, id string) (*domain.ExerciseCompletion, error) {
	var c domain.ExerciseCompletion
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// LatestCompletion returns the patient's most recent completion by
// creation time, or ErrNotFound when the history is empty.
func LatestCompletion(ctx context.Context, db *gorm.DB, patientID string) (*domain.ExerciseCompletion, error) {
	var c domain.ExerciseCompletion
	err := db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Limit(1).
		Take(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCompletion inserts a completion row with a UTC creation time.
func CreateCompletion(ctx context.Context, db *gorm.DB, c *domain.ExerciseCompletion) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

// MarkCompletionMinted flips nft_minted and records the token id.
// It returns ErrNotFound when no row matched.
func MarkCompletionMinted(ctx context.Context, db *gorm.DB, id string, tokenID *string) error {
	res := db.WithContext(ctx).
		Model(&domain.ExerciseCompletion{}).
		Where("id = ?", id).
		Updates(map[string]any{"nft_minted": true, "nft_token_id": tokenID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountCompletions returns the number of completions of a patient.
func CountCompletions(ctx context.Context, db *gorm.DB, patientID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.ExerciseCompletion{}).Where("patient_id = ?", patientID).Count(&n).Error
	return n, err
}

// ListCompletionsPage returns a page of completions, newest first.
func ListCompletionsPage(ctx context.Context, db *gorm.DB, patientID string, offset, limit int) ([]domain.ExerciseCompletion, error) {
	var out []domain.ExerciseCompletion
	err := db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
