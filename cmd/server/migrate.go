package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
	"github.com/tbourn/rehab-rewards-backend/internal/repo"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, logger, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			_, closeDB, err := openDB(cfg, true)
			if err != nil {
				return err
			}
			defer closeDB()
			logger.Info().Str("db", cfg.DB.Driver).Int("tables", len(repo.Models())).Msg("schema up to date")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var demo bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the exercise catalogue (and demo profiles with --demo)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cfg, logger, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			db, closeDB, err := openDB(cfg, true)
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := repo.SeedExercises(ctx, db, exerciseCatalogue())
			if err != nil {
				return fmt.Errorf("seed exercises: %w", err)
			}
			logger.Info().Int("exercises", n).Msg("catalogue seeded")

			if demo {
				res, err := seedDemo(ctx, db)
				if err != nil {
					return err
				}
				logger.Info().Int("doctors", res.Doctors).Int("patients", res.Patients).Msg("demo profiles seeded")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "Also create a demo doctor and patient when none exist")
	return cmd
}

func seedDemo(ctx context.Context, db *gorm.DB) (repo.SeedResult, error) {
	return repo.SeedDemoProfiles(ctx, db,
		&domain.Doctor{Name: "Dr. Demo", License: "DEMO-0001", Specialization: "Physical therapy"},
		&domain.Patient{Name: "Demo Patient", MedicalConditions: []string{"knee rehabilitation"}},
	)
}
