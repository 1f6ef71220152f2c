package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Garsondee/Grid-Tactics/internal/game"
	"github.com/Garsondee/Grid-Tactics/internal/logging"
	"github.com/Garsondee/Grid-Tactics/internal/record"
)

type runStats struct {
	runIndex int
	seed     int64
	ticks    int

	firstHitTick    int
	firstDefeatTick int

	attempts map[string]int // by action kind
	failures map[string]int // by "kind/reason"
	hits     int
	misses   int
	hpDamage int
	apDamage int
	restored int
	defeated []string

	outcome game.BattleOutcomeReason
}

func newRunStats(runIndex int, seed int64) *runStats {
	return &runStats{
		runIndex:        runIndex,
		seed:            seed,
		firstHitTick:    -1,
		firstDefeatTick: -1,
		attempts:        map[string]int{},
		failures:        map[string]int{},
	}
}

// tally folds one tick's resolutions into rs. w resolves defeated labels.
func (rs *runStats) tally(rep game.TickReport, w *game.World) {
	for _, r := range rep.Resolutions {
		kind := r.Request.Kind.String()
		rs.attempts[kind]++
		if !r.OK() {
			rs.failures[kind+"/"+r.Key()]++
			continue
		}
		switch r.Request.Kind {
		case game.ActionAttack:
			if !r.Hit {
				rs.misses++
				continue
			}
			rs.hits++
			rs.hpDamage += r.HPDamage
			rs.apDamage += r.ArmorDamage
			if rs.firstHitTick < 0 {
				rs.firstHitTick = r.Tick
			}
		case game.ActionHeal, game.ActionRepair:
			rs.restored += r.Restored
		}
	}

	for _, id := range rep.Defeats() {
		label := fmt.Sprintf("#%d", id)
		if u, ok := w.Unit(id); ok {
			label = u.Label()
		}
		rs.defeated = append(rs.defeated, label)
		if rs.firstDefeatTick < 0 {
			rs.firstDefeatTick = rep.Tick
		}
	}
}

func (rs *runStats) hitRate() float64 {
	shots := rs.hits + rs.misses
	if shots == 0 {
		return 0
	}
	return float64(rs.hits) / float64(shots) * 100
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the whole command; it returns the process exit code so deferred
// cleanup always runs.
func run(args []string) int {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var recordDriver string
	var recordDSN string
	var logLevel string

	fs := flag.NewFlagSet("headless-report", flag.ContinueOnError)
	fs.IntVar(&runs, "runs", 5, "number of headless battles")
	fs.IntVar(&ticks, "ticks", 600, "tick limit per battle")
	fs.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	fs.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	fs.StringVar(&scenario, "scenario", "skirmish", "scenario name")
	fs.StringVar(&recordDriver, "record", "", "record battles to a database (sqlite or postgres)")
	fs.StringVar(&recordDSN, "dsn", "tactics.db", "database path or DSN used with -record")
	fs.StringVar(&logLevel, "log", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log := logging.Setup(logLevel, nil)

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return 2
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return 2
	}
	if scenario != "skirmish" {
		fmt.Printf("error: unsupported scenario %q (supported: skirmish)\n", scenario)
		return 2
	}

	var rec *record.Recorder
	if recordDriver != "" {
		var err error
		rec, err = record.Open(recordDriver, recordDSN, log)
		if err != nil {
			log.Error().Err(err).Msg("opening recorder")
			return 1
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Warn().Err(err).Msg("closing recorder")
			}
		}()
	}

	fmt.Printf("=== Headless Battle Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", scenario, runs, ticks, seedBase, seedStep)

	all := make([]*runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		rs, err := runSkirmish(i+1, seed, ticks, rec)
		if err != nil {
			log.Error().Err(err).Int64("seed", seed).Msg("run failed")
			return 1
		}
		all = append(all, rs)
		printRun(rs)
	}

	printAggregate(all)
	return 0
}

func runSkirmish(runIndex int, seed int64, ticks int, rec *record.Recorder) (*runStats, error) {
	spec := game.DefaultSkirmish()
	w, err := game.BuildWorld(spec, game.WithSeed(seed))
	if err != nil {
		return nil, err
	}
	rs := newRunStats(runIndex, seed)

	opts := []game.DriverOption{game.WithObserver(func(rep game.TickReport) { rs.tally(rep, w) })}
	if rec != nil {
		if _, err := rec.Begin(spec.Name, seed); err != nil {
			return nil, err
		}
		opts = append(opts, game.WithObserver(func(rep game.TickReport) {
			if err := rec.RecordTick(rep, w); err != nil {
				rec.Logger.Warn().Err(err).Msg("recording tick")
			}
		}))
	}
	d, err := game.NewDriver(w, game.NewSkirmishPolicy(seed), opts...)
	if err != nil {
		return nil, err
	}

	for i := 0; i < ticks; i++ {
		d.Tick()
		if game.DetermineBattleOutcome(w).Outcome != game.OutcomeInconclusive {
			break
		}
	}
	rs.ticks = w.Tick()
	rs.outcome = game.DetermineBattleOutcome(w)

	if rec != nil {
		if err := rec.Finish(w); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

func printRun(rs *runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome=%s ticks=%d: %s\n", rs.outcome.Outcome, rs.ticks, rs.outcome.Description)
	fmt.Printf("phase_markers: first_hit=%d first_defeat=%d\n", rs.firstHitTick, rs.firstDefeatTick)
	fmt.Printf("attempts: %s\n", joinCounts(rs.attempts))
	fmt.Printf("failures: %s\n", joinCounts(rs.failures))
	fmt.Printf("combat: hits=%d misses=%d hit_rate=%.1f%% hp_damage=%d ap_damage=%d restored=%d\n",
		rs.hits, rs.misses, rs.hitRate(), rs.hpDamage, rs.apDamage, rs.restored)
	fmt.Printf("defeated: %s\n", joinList(rs.defeated))
	for _, t := range rs.outcome.Tallies {
		fmt.Printf("  %-6s survivors=%d/%d\n", t.Faction.Name, t.Survivors, t.Total)
	}
	fmt.Println()
}

func printAggregate(all []*runStats) {
	wins := map[string]int{}
	draws := 0
	unresolved := 0
	totalTicks := 0
	totalHits := 0
	totalMisses := 0
	totalRestored := 0
	defeatTicks := make([]int, 0, len(all))
	defeatedGlobal := map[string]int{}

	for _, rs := range all {
		switch rs.outcome.Outcome {
		case game.OutcomeVictory:
			wins[winnerName(rs.outcome)]++
		case game.OutcomeDraw:
			draws++
		default:
			unresolved++
		}
		totalTicks += rs.ticks
		totalHits += rs.hits
		totalMisses += rs.misses
		totalRestored += rs.restored
		if rs.firstDefeatTick >= 0 {
			defeatTicks = append(defeatTicks, rs.firstDefeatTick)
		}
		for _, label := range rs.defeated {
			defeatedGlobal[label]++
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d wins=[%s] draws=%d unresolved=%d\n", len(all), joinCounts(wins), draws, unresolved)
	fmt.Printf("avg_per_run: ticks=%.1f hits=%.1f misses=%.1f restored=%.1f\n",
		avg(totalTicks, len(all)), avg(totalHits, len(all)), avg(totalMisses, len(all)), avg(totalRestored, len(all)))
	fmt.Printf("phase_marker_avg_ticks: first_defeat=%s\n", avgTickString(defeatTicks))
	fmt.Printf("defeat_counts: %s\n", joinCounts(defeatedGlobal))
}

func winnerName(o game.BattleOutcomeReason) string {
	for _, t := range o.Tallies {
		if t.Faction.ID == o.Winner {
			return t.Faction.Name
		}
	}
	return fmt.Sprintf("faction-%d", o.Winner)
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, " ")
}

func joinList(s []string) string {
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, ",")
}
