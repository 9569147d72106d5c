package main

// Run key-value store migrations:
//   go run ./cmd/migrate -dialect postgres
//   go run ./cmd/migrate -dialect sqlite -dsn ./data/kv.db

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"resume-review/internal/shared/config"
	"resume-review/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()

	defaultDialect := string(db.DialectPostgres)
	if cfg.KVStoreType == "sqlite" {
		defaultDialect = string(db.DialectSQLite)
	}
	dialectFlag := flag.String("dialect", defaultDialect, "postgres or sqlite")
	dsnFlag := flag.String("dsn", "", "connection string (defaults to DATABASE_URL or SQLITE_PATH)")
	flag.Parse()

	dialect := db.Dialect(*dialectFlag)
	dsn := *dsnFlag
	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	switch dialect {
	case db.DialectPostgres:
		if dsn == "" {
			dsn = cfg.DatabaseURL
		}
	case db.DialectSQLite:
		if dsn == "" {
			dsn = cfg.SQLitePath
		}
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			log.Printf("failed to create sqlite dir: %v", err)
			os.Exit(1)
		}
		opts = db.DefaultSQLiteOptions()
	default:
		log.Printf("unknown dialect %q", dialect)
		os.Exit(2)
	}
	if dsn == "" {
		log.Printf("no connection string for %s", dialect)
		os.Exit(2)
	}

	ctx := context.Background()
	sqlDB, err := db.Connect(ctx, dialect, dsn, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
	log.Printf("migrations applied (%s)", dialect)
}
