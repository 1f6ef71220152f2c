package game

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultTickStep  = 500 * time.Millisecond
	maxCatchUpTicks  = 8 // Advance never runs more than this many ticks per call
	verboseSampleKey = "sample"
)

// TickReport is what one tick did.
type TickReport struct {
	Tick        int
	Decisions   int // requests assigned by the policy this tick
	Resolutions []Resolution
}

// Defeats returns the ids of units defeated this tick.
func (r TickReport) Defeats() []UnitID {
	var out []UnitID
	for _, res := range r.Resolutions {
		if res.Defeated {
			out = append(out, res.Target)
		}
	}
	return out
}

// Driver advances the world in fixed steps. It is the only writer of unit
// state while it runs.
type Driver struct {
	world     *World
	policy    DecisionPolicy
	step      time.Duration
	accum     time.Duration
	speed     float64 // 0 = paused
	simLog    *SimLog
	log       zerolog.Logger
	metrics   *driverMetrics
	observers []func(TickReport)
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithStep sets the simulated duration of one tick.
func WithStep(step time.Duration) DriverOption {
	return func(d *Driver) {
		if step > 0 {
			d.step = step
		}
	}
}

// WithSimLog records every resolution into sl.
func WithSimLog(sl *SimLog) DriverOption {
	return func(d *Driver) {
		d.simLog = sl
	}
}

// WithDriverLogger sets the operational logger.
func WithDriverLogger(l zerolog.Logger) DriverOption {
	return func(d *Driver) {
		d.log = l
	}
}

// WithObserver registers fn to be called after every tick.
func WithObserver(fn func(TickReport)) DriverOption {
	return func(d *Driver) {
		d.observers = append(d.observers, fn)
	}
}

// NewDriver returns a driver for w. A nil policy falls back to the random
// move baseline.
func NewDriver(w *World, policy DecisionPolicy, opts ...DriverOption) (*Driver, error) {
	if w == nil {
		return nil, fmt.Errorf("driver needs a world")
	}
	if policy == nil {
		policy = NewRandomMovePolicy(1)
	}
	metrics, err := newDriverMetrics()
	if err != nil {
		return nil, err
	}
	d := &Driver{
		world:   w,
		policy:  policy,
		step:    defaultTickStep,
		speed:   1.0,
		simLog:  NewSimLog(false),
		log:     zerolog.Nop(),
		metrics: metrics,
	}
	for _, o := range opts {
		o(d)
	}
	return d, nil
}

// World returns the driven world.
func (d *Driver) World() *World { return d.world }

// SimLog returns the event log.
func (d *Driver) SimLog() *SimLog { return d.simLog }

// Step returns the duration of one tick.
func (d *Driver) Step() time.Duration { return d.step }

// Speed returns the time multiplier.
func (d *Driver) Speed() float64 { return d.speed }

// SetSpeed sets the time multiplier; 0 pauses.
func (d *Driver) SetSpeed(mult float64) {
	if mult < 0 {
		mult = 0
	}
	d.speed = mult
}

// Observe registers fn to be called after every tick.
func (d *Driver) Observe(fn func(TickReport)) {
	d.observers = append(d.observers, fn)
}

// Advance feeds elapsed wall time into the accumulator and runs every whole
// tick that fits, capped at maxCatchUpTicks. Leftover backlog beyond the cap
// is dropped.
func (d *Driver) Advance(elapsed time.Duration) []TickReport {
	if d.speed <= 0 || elapsed <= 0 {
		return nil
	}
	d.accum += time.Duration(float64(elapsed) * d.speed)
	var reps []TickReport
	for d.accum >= d.step {
		d.accum -= d.step
		reps = append(reps, d.Tick())
		if len(reps) >= maxCatchUpTicks {
			d.log.Warn().Dur("backlog", d.accum).Msg("driver falling behind, dropping backlog")
			d.accum = 0
			break
		}
	}
	return reps
}

// Tick runs exactly one tick:
//  1. REGEN: living units regenerate energy
//  2. DECIDE: every idle NPC gets one request from the policy
//  3. RESOLVE: systems run in resolutionOrder; every request is cleared
func (d *Driver) Tick() TickReport {
	w := d.world
	tick := w.beginTick()
	rep := TickReport{Tick: tick}

	for _, u := range w.Living() {
		if u.controller != ControllerNPC || !u.Idle() {
			continue
		}
		req := d.policy.Decide(u, w)
		if err := w.Submit(u.id, req); err != nil {
			d.log.Warn().Int("tick", tick).Str("unit", u.label).Err(err).Msg("policy produced unusable request")
			continue
		}
		rep.Decisions++
	}

	rep.Resolutions = w.ResolvePending()

	for _, r := range rep.Resolutions {
		d.simLog.AddResolution(r, w.FactionName(r.Faction))
	}
	if d.simLog.Verbose() {
		for _, u := range w.Living() {
			d.simLog.AddVerbose(tick, u.label, w.FactionName(u.faction), "unit", verboseSampleKey,
				fmt.Sprintf("%s en=%s hp=%s ap=%s", u.pos, u.Energy, u.HP, u.Armor), float64(u.Energy.Current()))
		}
	}
	d.metrics.record(context.Background(), rep)
	d.log.Trace().Int("tick", tick).Int("decisions", rep.Decisions).
		Int("resolutions", len(rep.Resolutions)).Msg("tick")

	for _, fn := range d.observers {
		fn(rep)
	}
	return rep
}

// RunTicks runs n ticks and returns the last report.
func (d *Driver) RunTicks(n int) TickReport {
	var rep TickReport
	for i := 0; i < n; i++ {
		rep = d.Tick()
	}
	return rep
}
