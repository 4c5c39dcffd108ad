package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
)

// CreateNFT inserts a minted-NFT record.
func CreateNFT(ctx context.Context, db *gorm.DB, n *domain.NFT) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Omit(clause.Associations).Create(n).Error
}

// ListNFTsByPatient returns the patient's NFTs, newest first.
func ListNFTsByPatient(ctx context.Context, db *gorm.DB, patientID string) ([]domain.NFT, error) {
	var out []domain.NFT
	err := db.WithContext(ctx).Where("patient_id = ?", patientID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// CountNFTsByCompletion returns how many NFT rows reference a completion.
func CountNFTsByCompletion(ctx context.Context, db *gorm.DB, completionID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.NFT{}).Where("exercise_completion_id = ?", completionID).Count(&n).Error
	return n, err
}
