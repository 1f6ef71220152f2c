package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Grid-Tactics/internal/board"
	"github.com/Garsondee/Grid-Tactics/internal/config"
	"github.com/Garsondee/Grid-Tactics/internal/game"
	"github.com/Garsondee/Grid-Tactics/internal/logging"
	"github.com/Garsondee/Grid-Tactics/internal/session"
)

func main() {
	var configDir string
	var faction int

	flag.StringVar(&configDir, "config", ".", "directory holding "+config.FileName)
	flag.IntVar(&faction, "play", int(game.FactionRed), "faction id under keyboard control (0 = watch only)")
	flag.Parse()

	cfg, err := config.Load(configDir)
	if err != nil {
		logging.Setup("error", nil).Error().Err(err).Msg("loading config")
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

	g := board.New(s.Driver, board.WithLogger(log))
	w, h := g.ScreenSize()
	ebiten.SetWindowTitle("Grid Tactics: " + spec.Name)
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(g); err != nil {
		log.Error().Err(err).Msg("game loop")
	}
}
