package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/rehab-rewards-backend/internal/assets"
	"github.com/tbourn/rehab-rewards-backend/internal/chain"
	"github.com/tbourn/rehab-rewards-backend/internal/config"
	"github.com/tbourn/rehab-rewards-backend/internal/events"
	"github.com/tbourn/rehab-rewards-backend/internal/gemini"
	"github.com/tbourn/rehab-rewards-backend/internal/http/handlers"
	"github.com/tbourn/rehab-rewards-backend/internal/repo"
	"github.com/tbourn/rehab-rewards-backend/internal/services"
)

// openDB opens the configured store and, when migrate is set, brings the
// schema up to date.
func openDB(cfg config.Config, migrate bool) (*gorm.DB, func(), error) {
	if cfg.DB.Driver == "sqlite" {
		if dir := filepath.Dir(cfg.DB.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create db dir: %w", err)
			}
		}
	}
	db, err := repo.Open(cfg.DB.Driver, cfg.DB.Path, cfg.DB.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.DB.Driver, err)
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if migrate {
		if err := repo.AutoMigrate(db); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return db, closeDB, nil
}

// buildDeps constructs the services behind the API. The returned cleanup
// closes the ledger and the event publisher.
func buildDeps(ctx context.Context, cfg config.Config, db *gorm.DB) (handlers.Deps, func(), error) {
	log := zerolog.Ctx(ctx)
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn().Err(err).Msg("close dependency")
			}
		}
	}

	ai := gemini.New(cfg.Gemini.APIKey, gemini.WithBaseURL(cfg.Gemini.BaseURL))

	store, err := newAssetStore(ctx, cfg.Assets)
	if err != nil {
		return handlers.Deps{}, nil, err
	}
	if cfg.Assets.Store == "s3" && cfg.Assets.Bucket == "" {
		log.Warn().Err(config.Missing("S3_BUCKET")).Msg("generated images will fall back to placeholders")
	}

	// No RPC endpoint: mints are recorded on the local ledger and wallet
	// relays answer missing_config.
	var admin, wallet chain.Minter
	if cfg.Chain.UseLedger() {
		ledger, err := chain.OpenLedger(cfg.Chain.LedgerPath)
		if err != nil {
			return handlers.Deps{}, nil, err
		}
		if err := ledger.Verify(); err != nil {
			_ = ledger.Close()
			return handlers.Deps{}, nil, err
		}
		closers = append(closers, ledger.Close)
		admin = ledger
		log.Info().Str("path", cfg.Chain.LedgerPath).Msg("minting to local ledger")
	} else {
		admin = chain.NewAdminMinter(cfg.Chain, chain.DialRPC)
		wallet = chain.NewWalletMinter(cfg.Chain, chain.DialRPC)
		log.Info().Int64("chain_id", cfg.Chain.ChainID).Msg("minting on chain")
	}

	pub := events.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	closers = append(closers, pub.Close)

	images := &services.ImageService{
		AI:            ai,
		Config:        cfg.Gemini,
		Store:         store,
		PublicBaseURL: cfg.Assets.PublicBaseURL,
	}
	mint := &services.MintService{
		DB:          db,
		Provisioner: &services.Provisioner{DB: db, Bucket: cfg.ProvisionBucket},
		Images:      images,
		Admin:       admin,
		Wallet:      wallet,
		Events:      pub,
		Chain:       cfg.Chain,
	}

	return handlers.Deps{
		Mint:      mint,
		Analysis:  &services.AnalysisService{AI: ai, Config: cfg.Gemini},
		Auth:      &services.AuthService{DB: db, Config: cfg.Auth},
		Dashboard: &services.DashboardService{DB: db},
	}, cleanup, nil
}

func newAssetStore(ctx context.Context, cfg config.AssetConfig) (assets.Store, error) {
	switch cfg.Store {
	case "s3":
		client, err := assets.NewS3Client(ctx)
		if err != nil {
			return nil, err
		}
		return assets.NewS3Store(client, cfg.Bucket, cfg.S3BaseURL), nil
	case "local", "":
		return assets.NewLocalStore(cfg.Dir, cfg.PublicBaseURL), nil
	default:
		return nil, errors.New("unknown asset store " + cfg.Store)
	}
}
