// Package roster supplies the patient list the dashboard store is seeded
// from: the built-in mock roster, a YAML file, or a Postgres table.
package roster

import (
	"context"
	"fmt"

	"github.com/mouthwatch/platform/pkg/common/config"
	"github.com/mouthwatch/platform/pkg/common/database"
	"github.com/mouthwatch/platform/pkg/common/logger"
	"github.com/mouthwatch/platform/pkg/common/models"
)

const (
	SourceMock     = "mock"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Load resolves cfg.RosterSource into a roster.
func Load(ctx context.Context, cfg *config.Config) ([]models.Patient, error) {
	log := logger.WithFields(map[string]interface{}{"source": cfg.RosterSource})

	switch cfg.RosterSource {
	case SourceMock, "":
		log.Info("using mock roster")
		return Mock(), nil
	case SourceFile:
		patients, err := LoadFile(cfg.RosterPath)
		if err != nil {
			return nil, err
		}
		log.WithField("patients", len(patients)).Info("roster loaded from file")
		return patients, nil
	case SourcePostgres:
		db, err := database.GetPostgres(cfg)
		if err != nil {
			return nil, err
		}
		repo := NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("migrating roster table: %w", err)
		}
		if err := repo.Seed(ctx); err != nil {
			return nil, fmt.Errorf("seeding roster table: %w", err)
		}
		patients, err := repo.Load(ctx)
		if err != nil {
			return nil, err
		}
		log.WithField("patients", len(patients)).Info("roster loaded from postgres")
		return patients, nil
	default:
		return nil, fmt.Errorf("unknown roster source %q", cfg.RosterSource)
	}
}
