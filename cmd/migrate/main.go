package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/citysafe/inspection-backend/internal/config"
	"github.com/citysafe/inspection-backend/internal/database"
	"github.com/citysafe/inspection-backend/internal/migration"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	seed := flag.Bool("seed", false, "insert demo users, merchants and a task when the registry is empty")
	dryRun := flag.Bool("dry-run", false, "list the tables that would be migrated without executing")
	verify := flag.Bool("verify", false, "print row counts of every table after migrating")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	loaded := config.LoadDotEnv()
	log.Printf("loaded env files: %v", loaded)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *dryRun {
		for _, m := range migration.Models() {
			log.Printf("[dry-run] would migrate %T", m)
		}
		return
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := database.Open(cfg.Database, logLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	start := time.Now()
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("schema migrated in %s", time.Since(start).Round(time.Millisecond))

	if *seed {
		if err := migration.Seed(db); err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
		log.Println("seed done")
	}

	if *verify {
		counts, err := migration.Counts(db)
		if err != nil {
			log.Fatalf("Verify failed: %v", err)
		}
		for _, c := range counts {
			fmt.Printf("%-28s %d\n", c.Table, c.Rows)
		}
	}
}
