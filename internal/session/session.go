// Package session wires a configured battle: world, driver and the optional
// recorder. The desktop board and the spectator server both start from here.
package session

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Grid-Tactics/internal/config"
	"github.com/Garsondee/Grid-Tactics/internal/game"
	"github.com/Garsondee/Grid-Tactics/internal/record"
)

// Session is one running battle.
type Session struct {
	Scenario game.ScenarioSpec
	World    *game.World
	Driver   *game.Driver
	Recorder *record.Recorder // nil when recording is off

	log zerolog.Logger
}

// ClaimFaction hands every unit of faction f to the player.
func ClaimFaction(s *game.ScenarioSpec, f game.FactionID) int {
	n := 0
	for i := range s.Units {
		if s.Units[i].Faction == f {
			s.Units[i].Controller = game.ControllerPlayer.String()
			n++
		}
	}
	return n
}

// Open builds the battle described by cfg. NPCs follow the skirmish policy
// seeded from cfg.Seed.
func Open(cfg config.Config, spec game.ScenarioSpec, log zerolog.Logger) (*Session, error) {
	w, err := game.BuildWorld(spec, game.WithSeed(cfg.Seed), game.WithLogger(log))
	if err != nil {
		return nil, err
	}
	s := &Session{Scenario: spec, World: w, log: log}

	opts := []game.DriverOption{
		game.WithStep(cfg.TickStep),
		game.WithDriverLogger(log),
	}
	if cfg.Record.Enabled {
		rec, err := record.Open(cfg.Record.Driver, cfg.Record.DSN, log)
		if err != nil {
			return nil, fmt.Errorf("opening recorder: %w", err)
		}
		if _, err := rec.Begin(spec.Name, cfg.Seed); err != nil {
			_ = rec.Close()
			return nil, err
		}
		s.Recorder = rec
		opts = append(opts, game.WithObserver(s.record))
	}

	d, err := game.NewDriver(w, game.NewSkirmishPolicy(cfg.Seed), opts...)
	if err != nil {
		if s.Recorder != nil {
			_ = s.Recorder.Close()
		}
		return nil, err
	}
	s.Driver = d

	log.Info().Str("scenario", spec.Name).Int64("seed", cfg.Seed).
		Int("units", len(w.Units())).Bool("recording", s.Recorder != nil).Msg("battle ready")
	return s, nil
}

func (s *Session) record(rep game.TickReport) {
	if err := s.Recorder.RecordTick(rep, s.World); err != nil {
		s.log.Warn().Err(err).Int("tick", rep.Tick).Msg("recording tick")
	}
}

// Close finishes the recorded battle, if any.
func (s *Session) Close() error {
	if s.Recorder == nil {
		return nil
	}
	finishErr := s.Recorder.Finish(s.World)
	return errors.Join(finishErr, s.Recorder.Close())
}
