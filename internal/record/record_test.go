package record

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Grid-Tactics/internal/game"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open("sqlite", MemoryDSN, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "", zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

func TestMigrate_FailureClosesConnection(t *testing.T) {
	db, err := openSqlite(MemoryDSN)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())

	err = migrate(db, 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrating schema")
	assert.Error(t, sqlDB.Ping(), "connection should be closed after a failed migration")
}

func TestRecordTick_NeedsBattle(t *testing.T) {
	r := newTestRecorder(t)
	err := r.RecordTick(game.TickReport{Tick: 1}, nil)
	assert.ErrorIs(t, err, ErrNoBattle)
}

func TestRecorder_RoundTripsABattle(t *testing.T) {
	r := newTestRecorder(t)

	w, err := game.BuildWorld(game.DefaultSkirmish(), game.WithSeed(3))
	require.NoError(t, err)
	d, err := game.NewDriver(w, game.NewSkirmishPolicy(3))
	require.NoError(t, err)

	b, err := r.Begin("skirmish", 3)
	require.NoError(t, err)
	require.NotZero(t, b.ID)

	total := 0
	for i := 0; i < 10; i++ {
		rep := d.Tick()
		total += len(rep.Resolutions)
		require.NoError(t, r.RecordTick(rep, w))
	}
	require.NoError(t, r.Finish(w))

	battles, err := r.Battles()
	require.NoError(t, err)
	require.Len(t, battles, 1)
	assert.Equal(t, 10, battles[0].Ticks)
	assert.Equal(t, int64(3), battles[0].Seed)
	assert.NotNil(t, battles[0].EndedAt)
	assert.NotEmpty(t, battles[0].Outcome)

	rows, err := r.Resolutions(b.ID)
	require.NoError(t, err)
	assert.Len(t, rows, total)
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i-1].Tick, rows[i].Tick)
	}
	assert.Equal(t, 1, rows[0].Tick)
	assert.NotEmpty(t, rows[0].Faction)
}

func TestFromResolution(t *testing.T) {
	res := game.Resolution{
		Tick:     4,
		Label:    "R0",
		Request:  game.AttackRequest(game.DirRight, game.SlotPrimary),
		Target:   3,
		Hit:      true,
		Chance:   60,
		HPDamage: 2,
		Pos:      game.GridPos{X: 1, Y: 2},
		Energy:   90,
	}
	rec := fromResolution(7, res, "Red")
	assert.Equal(t, uint(7), rec.BattleID)
	assert.Equal(t, "attack", rec.Kind)
	assert.Equal(t, "right", rec.Direction)
	assert.Equal(t, "resolved", rec.Result)
	assert.Equal(t, 3, rec.Target)
	assert.Equal(t, 1, rec.X)
	assert.Equal(t, 2, rec.Y)

	wait := fromResolution(7, game.Resolution{Request: game.WaitRequest(), Target: game.NoUnit}, "Red")
	assert.Empty(t, wait.Direction)
	assert.Equal(t, -1, wait.Target)
}
