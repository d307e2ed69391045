package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/commitzapp/commitz/internal/api"
	"github.com/commitzapp/commitz/internal/db"
	"github.com/commitzapp/commitz/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	dbPath := getEnv("DB_PATH", filepath.Join("data", "commitz.db"))
	port := getEnv("PORT", "3000")

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	repositories := db.NewRepositories(database)
	service := services.NewCommitmentService(
		repositories.Commitments,
		repositories.Completions,
		repositories.Participants,
		repositories.Users,
		shareCodePolicyFromEnv(),
	)
	handler := api.NewHandler(service)

	app := fiber.New(fiber.Config{
		AppName:               "Commitz",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Commitz listening on http://0.0.0.0:%s (db: %s)", port, dbPath)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func shareCodePolicyFromEnv() services.ShareCodePolicy {
	policy := services.DefaultShareCodePolicy()

	if raw := getEnv("SHARE_CODE_LENGTH", ""); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			policy.Length = parsed
		}
	}
	if getEnv("SHARE_CODE_ALPHABET", "numeric") == "alphanumeric" {
		policy.Alphabet = services.AlphanumericAlphabet
	}

	if err := policy.Validate(); err != nil {
		log.Fatalf("share code config invalid: %v", err)
	}
	return policy
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
