package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ak/flavorfusion/internal/app"
	"github.com/ak/flavorfusion/internal/infrastructure/config"
	"github.com/ak/flavorfusion/internal/infrastructure/database"
	"github.com/ak/flavorfusion/internal/infrastructure/repositories"
	"github.com/ak/flavorfusion/internal/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version   = "0.1.0"
	buildTime = "unknown"
)

func main() {
	// A local .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "flavorfusion",
		Short: "FlavorFusion - recipe discovery by pantry ingredients",
		Long: `FlavorFusion ranks a recipe catalog against the ingredients you have on hand,
with dietary, difficulty, time and serving filters, recipe ratings, ingredient
substitutions, favorites and image-based ingredient detection.`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("FlavorFusion version %s (built %s)\n", version, buildTime)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the FlavorFusion server",
		RunE:  runServe,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Write the built-in recipe catalog into MongoDB",
		RunE:  runSeed,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetGlobal(log)
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting FlavorFusion",
		zap.String("version", version),
		zap.String("environment", cfg.App.Env),
		zap.String("recipe_storage", cfg.Storage.Recipes),
		zap.String("session_storage", cfg.Storage.Sessions),
		zap.String("matching_policy", cfg.Matching.Policy),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, err := repositories.NewProvider(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		if err := repos.Close(closeCtx); err != nil {
			log.Error("Failed to close storage connections", zap.Error(err))
		}
	}()

	application, err := app.New(ctx, cfg, log, repos)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer application.Close()

	server := &http.Server{
		Addr:         cfg.GetAddress(),
		Handler:      application.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("address", cfg.GetAddress()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server shutdown complete")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	mongodb := database.NewMongoDB(cfg.MongoDB, log)
	if err := mongodb.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := mongodb.Close(context.Background()); err != nil {
			log.Error("Failed to close MongoDB connection", zap.Error(err))
		}
	}()

	inserted, err := repositories.Seed(ctx, repositories.NewRecipeRepository(mongodb))
	if err != nil {
		return err
	}
	log.Info("Recipe catalog seeded", zap.Int("inserted", inserted))
	return nil
}
