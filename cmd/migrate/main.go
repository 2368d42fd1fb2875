package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"payos/internal/pkg/logger"
	"payos/internal/platform/config"
	"payos/internal/platform/database"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	dir := flag.String("dir", "", "Migration directory (defaults to database.migrations_dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logging)

	migrations := cfg.Database.MigrationsDir
	if *dir != "" {
		migrations = *dir
	}

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	applied, err := database.Migrate(db, migrations)
	if err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	log.Info().Strs("files", applied).Str("dir", migrations).Msg("migration completed")
}
