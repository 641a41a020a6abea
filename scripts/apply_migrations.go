package main

import (
	"database/sql"
	"flag"
	"os"
	"path/filepath"
	"sort"

	"stockroom-backend/config"
	"stockroom-backend/utils"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Applies every migrations/*.sql file in name order to DATABASE_URL.
// Statements are idempotent, so the script can be rerun.
func main() {
	dir := flag.String("dir", "migrations", "directory holding .sql files")
	flag.Parse()

	cfg := config.Load()
	log, err := utils.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.DB.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", cfg.DB.URL)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database", zap.Error(err))
	}

	files, err := filepath.Glob(filepath.Join(*dir, "*.sql"))
	if err != nil {
		log.Fatal("failed to list migrations", zap.Error(err))
	}
	sort.Strings(files)

	for _, file := range files {
		script, err := os.ReadFile(file)
		if err != nil {
			log.Fatal("failed to read migration", zap.String("file", file), zap.Error(err))
		}
		if _, err := db.Exec(string(script)); err != nil {
			log.Fatal("failed to apply migration", zap.String("file", file), zap.Error(err))
		}
		log.Info("migration applied", zap.String("file", file))
	}

	log.Info("database is up to date", zap.Int("files", len(files)))
}
