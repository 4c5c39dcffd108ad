// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for doctor and
// patient profiles and the accounts bound to them.
//
// All functions are context-aware and accept a *gorm.DB handle, so they work
// inside transactions as well. They perform persistence only; business rules
// live in the services package.
package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
)

// CreateDoctor inserts a doctor profile, assigning a UUID when ID is empty.
func CreateDoctor(ctx context.Context, db *gorm.DB, d *domain.Doctor) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(d).Error
}

// GetDoctor fetches a doctor by id or returns ErrNotFound.
func GetDoctor(ctx context.Context, db *gorm.DB, id string) (*domain.Doctor, error) {
	var d domain.Doctor
	if err := db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// AnyDoctor returns one doctor row in arbitrary store order, or ErrNotFound
// when the table is empty.
func AnyDoctor(ctx context.Context, db *gorm.DB) (*domain.Doctor, error) {
	var d domain.Doctor
	if err := db.WithContext(ctx).Take(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// CreatePatient inserts a patient profile, assigning a UUID when ID is empty.
func CreatePatient(ctx context.Context, db *gorm.DB, p *domain.Patient) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(p).Error
}

// GetPatient fetches a patient by id or returns ErrNotFound.
func GetPatient(ctx context.Context, db *gorm.DB, id string) (*domain.Patient, error) {
	var p domain.Patient
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// AnyPatient returns one patient row in arbitrary store order, or
// ErrNotFound when the table is empty.
func AnyPatient(ctx context.Context, db *gorm.DB) (*domain.Patient, error) {
	var p domain.Patient
	if err := db.WithContext(ctx).Take(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateAccount inserts an account row. Email is stored lower-cased.
// A unique violation on email is returned as ErrDuplicate.
func CreateAccount(ctx context.Context, db *gorm.DB, a *domain.Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetAccountByEmail looks an account up by (case-insensitive) email.
func GetAccountByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Account, error) {
	var a domain.Account
	err := db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}
