// Package record persists battles and their resolutions through gorm, to a
// local SQLite file or to Postgres.
package record

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Garsondee/Grid-Tactics/internal/game"
)

// MemoryDSN opens a private in-memory SQLite database.
const MemoryDSN = "file::memory:"

// ErrNoBattle is returned when ticks are recorded before Begin.
var ErrNoBattle = errors.New("no battle in progress")

// Recorder writes one battle at a time.
type Recorder struct {
	DB     *gorm.DB
	Logger zerolog.Logger

	battle *Battle
}

// Open connects to driver ("sqlite" or "postgres") at dsn and migrates the
// schema.
func Open(driver, dsn string, log zerolog.Logger) (*Recorder, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		db, err = openSqlite(dsn)
	case "postgres":
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			SkipDefaultTransaction: true,
			CreateBatchSize:        1000,
			Logger:                 logger.Default.LogMode(logger.Silent),
		})
	default:
		return nil, fmt.Errorf("unknown record driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	if err := migrate(db, Models...); err != nil {
		return nil, err
	}
	log.Info().Str("driver", driver).Msg("battle recorder ready")
	return &Recorder{DB: db, Logger: log}, nil
}

func openSqlite(path string) (*gorm.DB, error) {
	if path == "" {
		path = MemoryDSN
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        1000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// SQLite has one writer; an in-memory database also lives per connection.
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}
	return db, nil
}

// migrate creates the tables for models. On failure the connection is
// closed, since nobody else holds it yet.
func migrate(db *gorm.DB, models ...any) error {
	err := db.AutoMigrate(models...)
	if err == nil {
		return nil
	}
	err = fmt.Errorf("migrating schema: %w", err)
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	return err
}

// Begin starts a new battle row.
func (r *Recorder) Begin(scenario string, seed int64) (*Battle, error) {
	b := &Battle{Scenario: scenario, Seed: seed, StartedAt: time.Now().UTC()}
	if err := r.DB.Create(b).Error; err != nil {
		return nil, fmt.Errorf("creating battle: %w", err)
	}
	r.battle = b
	r.Logger.Debug().Uint("battle", b.ID).Str("scenario", scenario).Int64("seed", seed).Msg("recording battle")
	return b, nil
}

// RecordTick stores every resolution of rep. Faction names come from w.
func (r *Recorder) RecordTick(rep game.TickReport, w *game.World) error {
	if r.battle == nil {
		return ErrNoBattle
	}
	if len(rep.Resolutions) == 0 {
		return nil
	}
	rows := make([]ResolutionRecord, 0, len(rep.Resolutions))
	for _, res := range rep.Resolutions {
		rows = append(rows, fromResolution(r.battle.ID, res, w.FactionName(res.Faction)))
	}
	if err := r.DB.Create(&rows).Error; err != nil {
		return fmt.Errorf("recording tick %d: %w", rep.Tick, err)
	}
	return nil
}

func fromResolution(battleID uint, res game.Resolution, faction string) ResolutionRecord {
	rec := ResolutionRecord{
		BattleID:    battleID,
		Tick:        res.Tick,
		Unit:        res.Label,
		Faction:     faction,
		Kind:        res.Request.Kind.String(),
		Result:      res.Key(),
		Target:      int(res.Target),
		Hit:         res.Hit,
		Chance:      res.Chance,
		HPDamage:    res.HPDamage,
		ArmorDamage: res.ArmorDamage,
		Restored:    res.Restored,
		Defeated:    res.Defeated,
		X:           res.Pos.X,
		Y:           res.Pos.Y,
		Energy:      res.Energy,
	}
	if res.Request.Directed() {
		rec.Direction = res.Request.Dir.String()
	}
	return rec
}

// Finish closes the current battle with its outcome.
func (r *Recorder) Finish(w *game.World) error {
	if r.battle == nil {
		return ErrNoBattle
	}
	outcome := game.DetermineBattleOutcome(w)
	now := time.Now().UTC()
	r.battle.EndedAt = &now
	r.battle.Ticks = w.Tick()
	r.battle.Outcome = outcome.Outcome.String()
	r.battle.Summary = outcome.Description
	if outcome.Outcome == game.OutcomeVictory {
		r.battle.Winner = w.FactionName(outcome.Winner)
	}
	if err := r.DB.Save(r.battle).Error; err != nil {
		return fmt.Errorf("finishing battle %d: %w", r.battle.ID, err)
	}
	r.Logger.Info().Uint("battle", r.battle.ID).Str("outcome", r.battle.Outcome).
		Int("ticks", r.battle.Ticks).Msg("battle recorded")
	r.battle = nil
	return nil
}

// Battles returns every recorded battle, oldest first.
func (r *Recorder) Battles() ([]Battle, error) {
	var out []Battle
	if err := r.DB.Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Resolutions returns a battle's resolutions in tick order.
func (r *Recorder) Resolutions(battleID uint) ([]ResolutionRecord, error) {
	var out []ResolutionRecord
	if err := r.DB.Where("battle_id = ?", battleID).Order("tick, id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the database.
func (r *Recorder) Close() error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
