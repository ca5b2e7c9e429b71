package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Deepanshv/resume-optimizer/internal/config"
	"github.com/Deepanshv/resume-optimizer/internal/database"
	"github.com/Deepanshv/resume-optimizer/internal/handlers"
	"github.com/Deepanshv/resume-optimizer/internal/logging"
	"github.com/Deepanshv/resume-optimizer/internal/middleware"
	"github.com/Deepanshv/resume-optimizer/internal/services"
)

const (
	maxBodyBytes    = 1 << 20 // 1 MiB
	monitorInterval = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	// .env is a local-dev convenience; production sets real env vars
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.AppEnv)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database supervisor. The initial connect runs in the background so the
	// HTTP listener is accepting requests even while the database is down.
	sup := database.NewSupervisor(database.DefaultConfig(cfg.DatabaseURL, cfg.DatabaseFallbackURL), log)
	go func() {
		if err := sup.Connect(ctx); err != nil {
			log.Error().Err(err).Msg("initial database connect failed, serving in limited mode")
		}
	}()
	go sup.Monitor(ctx, monitorInterval)

	optimizer, err := services.NewOptimizerService(ctx, cfg.GeminiAPIKey, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize optimizer")
	}
	jobService := services.NewJobService(sup)

	jobHandler := handlers.NewJobHandler(jobService, optimizer, cfg.IsDevelopment())
	healthHandler := handlers.NewHealthHandler(sup)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandler.Check)

		api.POST("/jobs", jobHandler.CreateJob)
		api.GET("/jobs", jobHandler.ListJobs)
		api.GET("/jobs/:id", jobHandler.GetJob)
		api.PUT("/jobs/:id", jobHandler.UpdateJob)
		api.DELETE("/jobs/:id", jobHandler.DeleteJob)
		api.POST("/jobs/:id/optimize", jobHandler.OptimizeJob)
	}

	// Close the database on SIGINT/SIGTERM; exit 0 on clean close, 1 otherwise.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sig
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()

		closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer closeCancel()
		if err := sup.Shutdown(closeCtx); err != nil {
			log.Error().Err(err).Msg("failed to close database connection")
			os.Exit(1)
		}
		os.Exit(0)
	}()

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}
