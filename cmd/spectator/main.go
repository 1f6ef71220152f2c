package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Garsondee/Grid-Tactics/internal/config"
	"github.com/Garsondee/Grid-Tactics/internal/game"
	"github.com/Garsondee/Grid-Tactics/internal/logging"
	"github.com/Garsondee/Grid-Tactics/internal/session"
	"github.com/Garsondee/Grid-Tactics/internal/spectate"
)

func main() {
	var configDir string
	var faction int
	var paused bool

	flag.StringVar(&configDir, "config", ".", "directory holding "+config.FileName)
	flag.IntVar(&faction, "play", 0, "faction id controlled over the socket (0 = spectate only)")
	flag.BoolVar(&paused, "paused", false, "start with the clock stopped")
	flag.Parse()

	cfg, err := config.Load(configDir)
	if err != nil {
		errLog := logging.Setup("error", nil)
		errLog.Error().Err(err).Msg("loading config")
		os.Exit(1)
	}
	log := logging.Setup(cfg.LogLevel, nil)

	spec := cfg.ScenarioOrDefault()
	if faction != 0 {
		session.ClaimFaction(&spec, game.FactionID(faction))
	}
	s, err := session.Open(cfg, spec, log)
	if err != nil {
		log.Error().Err(err).Msg("starting battle")
		os.Exit(1)
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("closing battle")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []spectate.Option{spectate.WithLogger(log)}
	if paused {
		opts = append(opts, spectate.StartPaused())
	}
	b := spectate.NewBroadcaster(s.Driver, opts...)
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("broadcaster stopped")
		}
	}()

	srv := &http.Server{
		Addr:              cfg.SpectatorAddr,
		Handler:           spectate.NewRouter(b),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Str("addr", cfg.SpectatorAddr).Msg("spectator listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("http server")
		stop()
	}
	<-runDone
}
