// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the Idempotency
// and ProvisionKey models used to implement safe-retry semantics for POST
// endpoints and for the lazy provisioning chain.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
)

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, scope, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("scope = ? AND key = ? AND expires_at > ?", scope, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency stores the response for (scope, key) and returns
// ErrDuplicate on unique violation.
func CreateIdempotency(ctx context.Context, db *gorm.DB, scope, key string, status int, body []byte, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		Scope:     scope,
		Key:       key,
		Status:    status,
		Body:      body,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// GetProvisionKey returns the completion pinned to key, or ErrNotFound.
func GetProvisionKey(ctx context.Context, db *gorm.DB, key string) (*domain.ProvisionKey, error) {
	var pk domain.ProvisionKey
	err := db.WithContext(ctx).Where("key = ?", key).First(&pk).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pk, nil
}

// CreateProvisionKey pins completionID to key. A concurrent insert of the
// same key yields ErrDuplicate.
func CreateProvisionKey(ctx context.Context, db *gorm.DB, key, patientID, completionID string) error {
	pk := &domain.ProvisionKey{
		Key:                  key,
		PatientID:            patientID,
		ExerciseCompletionID: completionID,
		CreatedAt:            time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(pk).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}
