package main

import (
	"errors"
	"flag"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/khoahotran/career-compass/internal/config"
	"github.com/khoahotran/career-compass/pkg/logger"
)

func main() {
	dir := flag.String("path", "migrations", "directory holding the SQL migrations")
	down := flag.Bool("down", false, "roll back every migration instead of applying them")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}
	log := logger.NewZapLogger(cfg.App.Env)
	defer func() { _ = log.Sync() }()

	if cfg.DB.DSN == "" {
		log.Fatal("Invalid configuration", config.ErrMissingDSN)
	}

	m, err := migrate.New("file://"+*dir, cfg.DB.DSN)
	if err != nil {
		log.Fatal("Failed to create migrate instance", err)
	}
	defer m.Close()

	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("Migration failed", err)
	}

	version, dirty, _ := m.Version()
	log.Info("Migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty), zap.Bool("down", *down))
}
