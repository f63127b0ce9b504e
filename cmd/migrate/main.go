package main

import (
	"context"
	"os"
	"strconv"
	"time"

	mongoMigration "agenda/internal/migrations/mongo"
	pgMigration "agenda/internal/migrations/postgres"
	"agenda/pkg/config"
)

const JobName = "migrate"

// Usage: migrate [up|down|force <version>]. The command only applies to
// postgres; the mongo driver always ensures collections and indexes.
func main() {
	cfg := config.Load(JobName)
	defer cfg.GracefulShutdown()

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		migratePostgres(cfg, os.Args[1:])
	case config.DriverMongo:
		migrateMongo(cfg)
	default:
		cfg.Log.Info("Nothing to migrate", "store_driver", cfg.StoreDriver)
	}
}

func migratePostgres(cfg *config.Config, args []string) {
	cmd, version := pgMigration.Up, 0
	if len(args) > 0 {
		cmd = pgMigration.Command(args[0])
	}
	if cmd == pgMigration.Force {
		if len(args) < 2 {
			cfg.Log.Fatal("force requires a version")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			cfg.Log.Fatal("Invalid version", "version", args[1], "error", err)
		}
		version = v
	}

	db, err := pgMigration.Open(cfg.PostgresURL)
	if err != nil {
		cfg.Log.Fatal("Failed to connect to Postgres", "error", err)
	}
	defer func() { _ = db.Close() }()

	cfg.Log.Info("Starting Postgres migration", "command", cmd)
	if err := pgMigration.Run(db, cmd, version); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Postgres migration completed", "command", cmd)
}

func migrateMongo(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg.SetStore()
	cfg.Log.Info("Starting Mongo migration job")
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
}
