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

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dkeye/Pairs/internal/adapters/events"
	router "github.com/dkeye/Pairs/internal/adapters/http"
	"github.com/dkeye/Pairs/internal/app"
	"github.com/dkeye/Pairs/internal/app/orch"
	"github.com/dkeye/Pairs/internal/config"
)

const releaseVersion = "0.1.0"

func main() {
	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("server failed")
		cancel()
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pairs",
		Short:         "Two-player memory card matching server.",
		Args:          cobra.NoArgs,
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	config.RegisterFlags(cmd.Flags())
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	return cmd
}

// withCORS leaves same-origin deployments untouched. Credentials are only
// shared with explicitly listed origins, never with "*".
func withCORS(cfg *config.Config, h http.Handler) http.Handler {
	if len(cfg.AllowedOrigins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet},
		AllowCredentials: !cfg.AnyOrigin(),
	}).Handler(h)
}

func serve(ctx context.Context, cfg *config.Config) error {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Err(err).Str("level", cfg.LogLevel).Msg("unknown log level, keeping info")
	}

	publisher, err := events.New(cfg.Events)
	if err != nil {
		return fmt.Errorf("events publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("close events publisher")
		}
	}()

	roomsCtx, stopRooms := context.WithCancel(context.Background())
	defer stopRooms()

	reg := app.NewRegistry()
	manager := app.NewRoomManager(roomsCtx, reg, app.Options{
		Delays: app.Delays{
			Reveal:    cfg.Game.RevealDelay,
			Countdown: cfg.Game.CountdownDelay,
			Mismatch:  cfg.Game.MismatchDelay,
		},
		Policy: app.SimplePolicy{},
		Events: publisher,
	})
	o := orch.New(reg, manager)

	r := router.SetupRouter(roomsCtx, cfg, o)
	handler := withCORS(cfg, r)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("version", releaseVersion).Msg("Pairs server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	// hijacked websockets are not tracked by Shutdown; stopping the rooms
	// cancels every connection context
	stopRooms()
	if err := manager.Wait(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("room loops did not stop")
	}
	log.Info().Int("sessions", reg.Count()).Msg("Server exited gracefully")
	return nil
}
