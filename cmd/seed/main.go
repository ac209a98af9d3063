package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"concertly/internal/auth"
	"concertly/internal/concerts"
	"concertly/internal/shared/config"
	"concertly/internal/shared/database"
	"concertly/pkg/logger"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		appLogger.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize databases", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := seedConcerts(ctx, db, appLogger); err != nil {
		appLogger.Error("failed to seed concerts", slog.Any("error", err))
		os.Exit(1)
	}
	if err := seedAdmin(ctx, db, cfg, appLogger); err != nil {
		appLogger.Error("failed to seed admin user", slog.Any("error", err))
		os.Exit(1)
	}

	appLogger.Info("seed completed")
}

func seedConcerts(ctx context.Context, db *database.DB, log *logger.Logger) error {
	var count int64
	if err := db.PostgreSQL.WithContext(ctx).Model(&concerts.Concert{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("concerts already seeded", slog.Int64("count", count))
		return nil
	}

	demo := []concerts.Concert{
		{
			Name:             "LAMPANG MUSIC FESTIVAL 2026",
			Artist:           "Various Artists",
			Date:             time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			Venue:            "ลานกาดกองต้า ลำปาง",
			TotalTickets:     1000,
			AvailableTickets: 1000,
			Price:            1500,
			Status:           concerts.StatusOpen,
			ImageURL:         "https://images.unsplash.com/photo-1501281668745-f7f57925c3b4?w=800",
		},
		{
			Name:             "CHIANG MAI JAZZ NIGHT",
			Artist:           "Jazz Ensemble",
			Date:             time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC),
			Venue:            "Maya Lifestyle Shopping Center",
			TotalTickets:     500,
			AvailableTickets: 500,
			Price:            2000,
			Status:           concerts.StatusOpen,
			ImageURL:         "https://images.unsplash.com/photo-1514320291840-2e0a9bf2a9ae?w=800",
		},
		{
			Name:             "ROCK CONCERT BANGKOK",
			Artist:           "The Rockers",
			Date:             time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
			Venue:            "Impact Arena, Bangkok",
			TotalTickets:     5000,
			AvailableTickets: 5000,
			Price:            2500,
			Status:           concerts.StatusOpen,
			ImageURL:         "https://images.unsplash.com/photo-1470229722913-7c0e2dbbafd3?w=800",
		},
	}

	if err := db.PostgreSQL.WithContext(ctx).Create(&demo).Error; err != nil {
		return err
	}
	log.Info("demo concerts created", slog.Int("count", len(demo)))
	return nil
}

func seedAdmin(ctx context.Context, db *database.DB, cfg *config.Config, log *logger.Logger) error {
	authRepo := auth.NewRepository(db.GetPostgreSQL())
	authService := auth.NewService(authRepo, cfg, log)

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	if err := authService.EnsureDefaultAdmin(ctx, username, password); err != nil {
		return err
	}
	log.Info("admin user ready", slog.String("username", username))
	return nil
}
