package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
)

// SeedResult counts the rows written by Seed.
type SeedResult struct {
	Exercises int
	Doctors   int
	Patients  int
}

// SeedExercises inserts every exercise whose name is not yet in the library.
// Existing rows are left untouched, so the call can be repeated.
func SeedExercises(ctx context.Context, db *gorm.DB, catalogue []domain.Exercise) (int, error) {
	created := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range catalogue {
			_, err := FindExerciseByName(ctx, tx, catalogue[i].Name)
			if err == nil {
				continue
			}
			if !errors.Is(err, ErrNotFound) {
				return fmt.Errorf("find %q: %w", catalogue[i].Name, err)
			}
			ex := catalogue[i]
			if err := CreateExercise(ctx, tx, &ex); err != nil {
				return fmt.Errorf("create %q: %w", ex.Name, err)
			}
			created++
		}
		return nil
	})
	return created, err
}

// SeedDemoProfiles creates doctor and patient when their tables are empty.
// Provisioning needs at least one of each to attach synthesized rows to.
func SeedDemoProfiles(ctx context.Context, db *gorm.DB, doctor *domain.Doctor, patient *domain.Patient) (SeedResult, error) {
	var res SeedResult
	if _, err := AnyDoctor(ctx, db); errors.Is(err, ErrNotFound) {
		if err := CreateDoctor(ctx, db, doctor); err != nil {
			return res, fmt.Errorf("create doctor: %w", err)
		}
		res.Doctors++
	} else if err != nil {
		return res, err
	}
	if _, err := AnyPatient(ctx, db); errors.Is(err, ErrNotFound) {
		if err := CreatePatient(ctx, db, patient); err != nil {
			return res, fmt.Errorf("create patient: %w", err)
		}
		res.Patients++
	} else if err != nil {
		return res, err
	}
	return res, nil
}
