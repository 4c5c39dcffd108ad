// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides aggregate queries backing the doctor
// dashboard's progress view.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
)

// ProgressStats summarizes a patient's completion history.
type ProgressStats struct {
	Completions    int64      `json:"completions"`
	AverageScore   float64    `json:"average_score"`
	Minted         int64      `json:"minted"`
	LastCompletion *time.Time `json:"last_completion,omitempty"`
}

// PatientProgress returns count, average form score, minted count and the
// latest completion time for a patient. A patient without completions yields
// zero values and a nil LastCompletion.
func PatientProgress(ctx context.Context, db *gorm.DB, patientID string) (ProgressStats, error) {
	var st ProgressStats
	q := db.WithContext(ctx).Model(&domain.ExerciseCompletion{}).Where("patient_id = ?", patientID)

	if err := q.Session(&gorm.Session{}).Count(&st.Completions).Error; err != nil {
		return st, err
	}
	if st.Completions == 0 {
		return st, nil
	}

	var avg struct{ Avg float64 }
	if err := q.Session(&gorm.Session{}).Select("COALESCE(AVG(form_score), 0) AS avg").Scan(&avg).Error; err != nil {
		return st, err
	}
	st.AverageScore = avg.Avg

	if err := q.Session(&gorm.Session{}).Where("nft_minted = ?", true).Count(&st.Minted).Error; err != nil {
		return st, err
	}

	// Latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err := q.Session(&gorm.Session{}).Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return st, err
	}
	st.LastCompletion = &row.CreatedAt
	return st, nil
}
