// Command migrate applies the embedded SQL migrations.
//
//	migrate up        apply all pending migrations
//	migrate down [n]  roll back n migrations (default 1)
//	migrate version   print the current version
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/geoattend/attendance-api/migrations"
	"github.com/geoattend/attendance-api/pkg/config"
	"github.com/geoattend/attendance-api/pkg/database"
	"github.com/geoattend/attendance-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr, os.Args[1:]); err != nil {
		logr.Fatal("migration failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: migrate up|down [n]|version")
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, database.URL(cfg.Database))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close() //nolint:errcheck

	switch args[0] {
	case "up":
		err = m.Up()
	case "down":
		steps := 1
		if len(args) > 1 {
			if steps, err = strconv.Atoi(args[1]); err != nil || steps <= 0 {
				return fmt.Errorf("invalid step count %q", args[1])
			}
		}
		err = m.Steps(-steps)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			return verr
		}
		logr.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logr.Info("no migrations to apply")
		return nil
	}
	if err != nil {
		return err
	}
	logr.Info("migrations applied", zap.String("command", args[0]))
	return nil
}
