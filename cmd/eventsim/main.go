// Package main provides the eventsim binary: a host-loop simulator that runs
// one idle task session against the event engine, applies rolled effects to a
// hero sheet, and prints the session outcome. With -seed it doubles as a
// deterministic replay harness.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/delve/internal/config"
	"github.com/cory-johannsen/delve/internal/game/character"
	"github.com/cory-johannsen/delve/internal/game/events"
	"github.com/cory-johannsen/delve/internal/game/injury"
	"github.com/cory-johannsen/delve/internal/game/rng"
	"github.com/cory-johannsen/delve/internal/observability"
	"github.com/cory-johannsen/delve/internal/scripting"
)

// simClock is a manually stepped Clock so a multi-minute session simulates
// in milliseconds. With -realtime the loop sleeps instead of stepping.
type simClock struct {
	now time.Time
}

func (c *simClock) Now() time.Time { return c.now }

func (c *simClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	banksDir := flag.String("banks", "", "event bank directory override; empty = events.bank_dir from config")
	seed := flag.Int64("seed", 0, "deterministic random seed; 0 = crypto randomness")
	heroName := flag.String("hero", "Wren", "hero name")
	realtime := flag.Bool("realtime", false, "run against the wall clock instead of simulated time")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src rng.Source
	if *seed != 0 {
		src = rng.NewSeededSource(*seed)
		logger.Info("using seeded randomness", zap.Int64("seed", *seed))
	} else {
		src = rng.NewCryptoSource()
	}

	dir := cfg.Events.BankDir
	if *banksDir != "" {
		dir = *banksDir
	}
	templates, err := events.LoadDirectory(dir)
	if err != nil {
		logger.Fatal("loading event banks", zap.Error(err))
	}

	evaluator := scripting.NewConditionEvaluator(cfg.Events.ScriptInstructionLimit)
	catalog, err := events.NewCatalog(templates, evaluator)
	if err != nil {
		logger.Fatal("building catalog", zap.Error(err))
	}
	stats := catalog.Stats()
	logger.Info("event catalog loaded",
		zap.String("dir", dir),
		zap.Int("templates", stats.Total),
		zap.Int("repeatable", stats.Repeatable),
		zap.Int("non_repeatable", stats.NonRepeatable),
	)

	genCfg := events.GeneratorConfig{
		MinTimeBetweenEvents:       cfg.Events.MinTimeBetweenEvents,
		MaxTimeBetweenEvents:       cfg.Events.MaxTimeBetweenEvents,
		MaxEventsPerSession:        cfg.Events.MaxEventsPerSession,
		WarningEscalationProgress:  cfg.Events.WarningEscalationProgress,
		CriticalEscalationProgress: cfg.Events.CriticalEscalationProgress,
	}

	var clock events.Clock
	sim := &simClock{now: time.Now()}
	if *realtime {
		clock = events.SystemClock()
	} else {
		clock = sim
	}

	generator, err := events.NewGenerator(catalog, genCfg, clock, src, logger)
	if err != nil {
		logger.Fatal("creating generator", zap.Error(err))
	}

	hero := character.NewSheet(*heroName)
	hero.SetFlag("has_torch", true)
	injuries := injury.DefaultTable()

	fmt.Printf("%s sets out on a %s (%s)...\n\n", hero.Name, cfg.Sim.TaskType, cfg.Sim.SessionDuration)

	generator.StartSession()
	ticks := int(cfg.Sim.SessionDuration / cfg.Sim.TickInterval)
	for i := 0; i <= ticks; i++ {
		progress := float64(i) / float64(ticks) * 100

		ctx := hero.ConditionSnapshot(cfg.Sim.TaskType, progress, len(generator.SessionEvents()))
		ev, err := generator.TryGenerateEvent(cfg.Sim.TaskType, ctx)
		if err != nil {
			if !errors.Is(err, events.ErrNotYetTime) {
				logger.Debug("no event this tick", zap.Error(err), zap.Float64("progress", progress))
			}
		} else {
			applyEvent(hero, ev, injuries, src, logger)
			fmt.Printf("[%5.1f%%] (%s) %s\n", progress, ev.Severity, ev.Message)
		}

		if *realtime {
			time.Sleep(cfg.Sim.TickInterval)
		} else {
			sim.advance(cfg.Sim.TickInterval)
		}
	}

	fired := generator.EndSession()
	fmt.Printf("\nThe %s is over: %d event(s) in %s.\n", cfg.Sim.TaskType, len(fired), time.Since(start).Round(time.Millisecond))
	fmt.Printf("%s: level %d, %d gold, %d/%d HP, %d%% success chance",
		hero.Name, hero.Level, hero.Gold, hero.CurrentHP, hero.MaxHP, hero.SuccessChance)
	if hero.Injured {
		fmt.Print(" (injured)")
	}
	fmt.Println()
}

// applyEvent is the host's side of the contract: the engine only reports
// rolled effect deltas, and the host mutates the hero through its setters.
func applyEvent(hero *character.Sheet, ev *events.Event, injuries *injury.Table, src rng.Source, logger *zap.Logger) {
	for kind, value := range ev.Effects {
		switch kind {
		case events.EffectGold:
			hero.AddGold(value)
		case events.EffectHealth:
			hero.ApplyHealthDelta(value)
		case events.EffectXP:
			if levels := hero.ApplyXP(value); levels > 0 {
				fmt.Printf("        %s reaches level %d!\n", hero.Name, hero.Level)
			}
		case events.EffectSuccessChance:
			hero.ApplySuccessChanceDelta(value)
		}
	}

	// Critical hazards may leave a lasting injury; the severity roll is an
	// independent model consulted only for its output.
	if ev.Severity == events.SeverityCritical && ev.Category == "hazard" {
		severity := injuries.Roll(src)
		if severity != injury.SeverityNone {
			hero.SetInjured(true)
			hero.ApplyHealthDelta(-injuries.Penalty(severity, src))
			logger.Info("hero injured",
				zap.String("event_id", ev.ID),
				zap.String("severity", string(severity)),
			)
		}
	}

	ev.Acknowledged = true
}
