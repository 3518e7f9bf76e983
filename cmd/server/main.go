package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/telecare/signaling/internal/adapters/http"
	gateway "github.com/telecare/signaling/internal/adapters/signal"
	"github.com/telecare/signaling/internal/app"
	"github.com/telecare/signaling/internal/auth"
	"github.com/telecare/signaling/internal/config"
	"github.com/telecare/signaling/internal/media"
	"github.com/telecare/signaling/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("jwt_secret must be configured")
	}

	var (
		appointments store.AppointmentFinder
		doctors      store.DoctorFinder
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		pg := store.NewPostgres(pool)
		appointments, doctors = pg, pg
	} else {
		log.Warn().Msg("no database configured, using in-memory appointment store")
		mem := store.NewMemory()
		appointments, doctors = mem, mem
	}

	registry := app.NewRegistry()
	checker := store.NewChecker(appointments, doctors)
	tokens := auth.NewDecoder(cfg.JWTSecret)
	issuer := media.NewIssuer(cfg.MediaAPIKey, cfg.MediaAPISecret)
	gw := gateway.NewGateway(registry, checker, tokens, cfg.ReadLimit, cfg.PingPeriod)

	r := router.SetupRouter(ctx, cfg, gw, issuer, tokens)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("signaling server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
