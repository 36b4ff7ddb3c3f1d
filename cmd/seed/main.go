// Command seed populates a Warbler database with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/observability"
	"warbler/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of generated users")
	perUser := flag.Int("messages", 5, "Messages per generated user")
	fixture := flag.String("fixture", "", "YAML fixture to load instead of generated users")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Hash passwords at the minimum bcrypt cost")
	shouldClean := flag.Bool("clean", false, "Delete all rows before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatalf("Refusing to seed a %q database", cfg.Env)
	}

	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)
	ctx := observability.WithCorrelationID(context.Background(), observability.NewCorrelationID())

	db, err := database.Connect(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	s := seed.NewSeeder(db, seed.Options{SkipBcrypt: *skipBcrypt}, logger)

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	var sum seed.Summary
	if *fixture != "" {
		fx, err := seed.LoadFixture(*fixture)
		if err != nil {
			log.Fatalf("Invalid fixture: %v", err)
		}
		sum, err = s.ApplyFixture(ctx, fx)
		if err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
	} else {
		sum, err = s.SeedNetwork(ctx, *numUsers, *perUser)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	logger.InfoContext(ctx, "seeding complete", slog.String("summary", sum.String()))
	if *fixture == "" {
		log.Printf("All generated users have the password: %s", seed.DefaultPassword)
	}
}
