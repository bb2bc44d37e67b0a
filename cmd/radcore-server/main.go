package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/serenvale/radcore/internal/config"
	"github.com/serenvale/radcore/internal/domain/authoring"
	"github.com/serenvale/radcore/internal/domain/radlex"
	"github.com/serenvale/radcore/internal/domain/report"
	"github.com/serenvale/radcore/internal/domain/settings"
	"github.com/serenvale/radcore/internal/domain/worklist"
	"github.com/serenvale/radcore/internal/platform/db"
	"github.com/serenvale/radcore/internal/platform/embedding"
	"github.com/serenvale/radcore/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "radcore-server",
		Short: "Radiology clinical data and retrieval API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedRadlexCmd())
	rootCmd.AddCommand(evictWorklistCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			if err := migrator.EnsureMigrationsTable(ctx); err != nil {
				return err
			}

			migrations, err := migrator.LoadMigrations()
			if err != nil {
				return err
			}
			applied, err := migrator.AppliedVersions(ctx)
			if err != nil {
				return err
			}

			for _, mig := range migrations {
				state := "pending"
				if applied[mig.Version] {
					state = "applied"
				}
				fmt.Printf("%-40s %s\n", mig.Name, state)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

// seedRadlexCmd loads a JSON lexicon file into the terminology index,
// generating any missing embeddings through the configured embeddings API.
func seedRadlexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-radlex <file.json>",
		Short: "Seed the RadLex terminology index from a JSON lexicon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read lexicon file: %w", err)
			}

			var terms []*radlex.Term
			if err := json.Unmarshal(data, &terms); err != nil {
				return fmt.Errorf("parse lexicon file: %w", err)
			}
			if len(terms) == 0 {
				return fmt.Errorf("lexicon file contains no terms")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			embedder, err := embedding.NewOpenAIClient(embedding.OpenAIConfig{
				BaseURL:   cfg.EmbeddingBaseURL,
				APIKey:    cfg.EmbeddingAPIKey,
				Model:     cfg.EmbeddingModel,
				Dimension: cfg.EmbeddingDimensions,
			})
			if err != nil {
				return err
			}

			embedded := 0
			for _, t := range terms {
				if len(t.EmbeddingEn) == 0 && t.Term != "" {
					vec, err := embedder.Embed(ctx, embeddingText(t.Term, t.Definition))
					if err != nil {
						return fmt.Errorf("embed %s (en): %w", t.RadlexID, err)
					}
					t.EmbeddingEn = vec
					embedded++
				}
				if len(t.EmbeddingFr) == 0 && t.TermFr != "" {
					vec, err := embedder.Embed(ctx, embeddingText(t.TermFr, t.DefinitionFr))
					if err != nil {
						return fmt.Errorf("embed %s (fr): %w", t.RadlexID, err)
					}
					t.EmbeddingFr = vec
					embedded++
				}
			}

			svc := radlex.NewService(radlex.NewRepoPG(pool), logger, cfg.EmbeddingDimensions)
			if err := svc.Seed(ctx, terms); err != nil {
				return fmt.Errorf("seed terminology index: %w", err)
			}

			logger.Info().
				Int("terms", len(terms)).
				Int("embedded", embedded).
				Msg("terminology index seeded")
			return nil
		},
	}
	return cmd
}

func embeddingText(term, definition string) string {
	if definition == "" {
		return term
	}
	return term + ". " + definition
}

func evictWorklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evict-worklist",
		Short: "Evict cached worklist entries older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			ownerID, _ := cmd.Flags().GetString("owner")
			if ownerID == "" {
				return fmt.Errorf("--owner is required")
			}

			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := worklist.NewService(worklist.NewRepoPG(pool), logger, cfg.WorklistRetentionDays)
			evicted, err := svc.EvictOlderThan(ctx, ownerID, days)
			if err != nil {
				return err
			}

			fmt.Printf("Evicted %d worklist entrie(s).\n", evicted)
			return nil
		},
	}
	cmd.Flags().Int("days", 0, "Retention window in days (0 uses WORKLIST_RETENTION_DAYS)")
	cmd.Flags().String("owner", "", "Owner whose cache to evict")
	return cmd
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Repositories
	worklistRepo := worklist.NewRepoPG(pool)
	reportRepo := report.NewRepoPG(pool)
	radlexRepo := radlex.NewRepoPG(pool)
	settingsRepo := settings.NewRepoPG(pool)

	// Services
	worklistSvc := worklist.NewService(worklistRepo, logger, cfg.WorklistRetentionDays)
	reportSvc := report.NewService(reportRepo, logger)
	settingsSvc := settings.NewService(settingsRepo, logger)

	radlexSvc := radlex.NewService(radlexRepo, logger, cfg.EmbeddingDimensions)
	if err := radlexSvc.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to load terminology index")
	}
	logger.Info().Int("terms", radlexSvc.Count()).Msg("terminology index loaded")

	var embedder embedding.Embedder
	if cfg.EmbeddingAPIKey != "" {
		embedder, err = embedding.NewOpenAIClient(embedding.OpenAIConfig{
			BaseURL:   cfg.EmbeddingBaseURL,
			APIKey:    cfg.EmbeddingAPIKey,
			Model:     cfg.EmbeddingModel,
			Dimension: cfg.EmbeddingDimensions,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create embeddings client")
		}
	} else {
		logger.Warn().Msg("EMBEDDING_API_KEY not set, authoring context retrieval disabled")
	}
	authoringSvc := authoring.NewService(worklistSvc, radlexSvc, embedder, logger, cfg.SearchTimeout())

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout()))
	e.Use(middleware.BodyLimit(cfg.BodyLimit, cfg.BodyLimitBatch))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", middleware.HeaderOwnerID},
	}))

	// Health checks
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/healthz/db", db.HealthHandler(pool))

	// All data routes are owner-scoped and rate limited.
	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(middleware.RequireOwner())

	worklist.NewHandler(worklistSvc).RegisterRoutes(apiV1)
	report.NewHandler(reportSvc).RegisterRoutes(apiV1)
	radlex.NewHandler(radlexSvc).RegisterRoutes(apiV1)
	settings.NewHandler(settingsSvc).RegisterRoutes(apiV1)
	authoring.NewHandler(authoringSvc).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
