package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/lofiflow/lounge/internal/adapters/http"
	"github.com/lofiflow/lounge/internal/app"
	"github.com/lofiflow/lounge/internal/config"
	"github.com/lofiflow/lounge/internal/core"
	"github.com/lofiflow/lounge/internal/store"
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
		log.Error().Err(err).Msg("failed to load config")
		return
	}

	link, err := core.NewDeepLink(cfg.BaseURL)
	if err != nil {
		log.Error().Err(err).Str("base_url", cfg.BaseURL).Msg("invalid base url")
		return
	}

	// Chat backend is feature-flagged: when off, the service refuses all
	// room operations and the page renders its static explanation.
	var backend store.Backend
	if cfg.ChatEnabled {
		pb, err := store.Open(cfg.DataDir)
		if err != nil {
			log.Error().Err(err).Str("data_dir", cfg.DataDir).Msg("chat store init failed, chat disabled")
		} else {
			backend = pb
			defer func() {
				if err := pb.Close(); err != nil {
					log.Error().Err(err).Msg("store close")
				}
			}()
		}
	}

	svc := app.NewService(backend, link, cfg.ChatEnabled)

	r := router.SetupRouter(ctx, cfg, svc)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Lounge server started")
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
