package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanforge/buildsim/internal/config"
	"github.com/urbanforge/buildsim/internal/core/event"
	"github.com/urbanforge/buildsim/internal/core/rng"
	coresys "github.com/urbanforge/buildsim/internal/core/system"
	"github.com/urbanforge/buildsim/internal/journal"
	"github.com/urbanforge/buildsim/internal/persist"
	"github.com/urbanforge/buildsim/internal/prefab"
	"github.com/urbanforge/buildsim/internal/scenario"
	"github.com/urbanforge/buildsim/internal/scripting"
	"github.com/urbanforge/buildsim/internal/system"
	"github.com/urbanforge/buildsim/internal/world"
)

type runOptions struct {
	scenario  string
	ticks     int
	seed      uint32
	fastSpawn bool
}

func newRunCommand() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario through the construction and demolition systems",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if opts.fastSpawn {
				cfg.Simulation.DebugFastSpawn = true
			}
			seedSet := cmd.Flags().Changed("seed")
			if seedSet {
				cfg.Simulation.Seed = opts.seed
			}
			if opts.ticks > 0 {
				cfg.Simulation.MaxTicks = opts.ticks
			}
			return run(cmd.Context(), cfg, opts.scenario, seedSet)
		},
	}
	cmd.Flags().StringVarP(&opts.scenario, "scenario", "s", "", "Scenario file to run")
	cmd.Flags().IntVar(&opts.ticks, "ticks", 0, "Number of ticks to run (overrides scenario and config)")
	cmd.Flags().Uint32Var(&opts.seed, "seed", 0, "Master random seed (overrides scenario and config)")
	cmd.Flags().BoolVar(&opts.fastSpawn, "fast-spawn", false, "Complete every building on its first tick")
	_ = cmd.MarkFlagRequired("scenario")
	return cmd
}

// sim bundles the runner with the systems whose stats are reported.
type sim struct {
	runner      *coresys.Runner
	bus         *event.Bus
	destroy     *system.DestroySystem
	persistence *system.PersistenceSystem
}

func run(ctx context.Context, cfg *config.Config, scenarioPath string, seedSet bool) error {
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return err
	}
	if sc.Seed != nil && !seedSet {
		cfg.Simulation.Seed = *sc.Seed
	}
	ticks := cfg.Simulation.MaxTicks
	if ticks == 0 {
		ticks = max(sc.Ticks, sc.LastTick()+1)
	}

	printBanner(sc.Name)
	runID := uuid.New()

	// 1. Catalog and scripts
	printSection("data")
	cat, err := prefab.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	printStat("prefabs", cat.Count())

	var curve system.CollapseCurve = system.CollapseFunc(scripting.FreeFallTime)
	if cfg.Scripting.Dir != "" {
		engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		curve = engine
		if engine.HasFunction("calc_collapse_time") {
			printOK("collapse curve from " + cfg.Scripting.Dir)
		} else {
			printSkip("no collapse script, using free fall")
		}
	}

	ws := world.NewState()
	refs, err := sc.Apply(ws, cat)
	if err != nil {
		return err
	}
	printStat("scenario entities", len(refs))
	printStat("scheduled demolitions", len(sc.Destroy))

	// 2. Publishing adapters
	printSection("outputs")
	var upgrades system.UpgradeSink
	var demolitions system.DemolitionSink
	if cfg.Database.Enabled {
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		err = persist.RunMigrations(dbCtx, db.Pool, log)
		cancel()
		if err != nil {
			return err
		}
		upgrades = persist.NewUpgradeRepo(db, runID)
		demolitions = persist.NewDemolitionRepo(db, runID)
		printOK("database connected, migrations applied")
	} else {
		printSkip("database disabled")
	}

	var writer system.RecordWriter
	if cfg.Journal.Enabled {
		jw, err := journal.Open(cfg.Journal.Dir, runID.String())
		if err != nil {
			return err
		}
		defer func() {
			if err := jw.Close(); err != nil {
				log.Warn("close journal", zap.Error(err))
			}
		}()
		writer = jw
		printOK("journal " + jw.Path())
	} else {
		printSkip("journal disabled")
	}

	s := buildSim(cfg, ws, cat, curve, upgrades, demolitions, writer, runID.String(), log)

	// 3. Tick loop
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printSection("running")
	printReady(fmt.Sprintf("run %s, seed %d, %d ticks", runID, cfg.Simulation.Seed, ticks))
	fmt.Println()

	var ticker *time.Ticker
	if cfg.Simulation.TickRate > 0 {
		ticker = time.NewTicker(cfg.Simulation.TickRate)
		defer ticker.Stop()
	}

	totals := struct{ completed, demolished, rubble int }{}
	event.Subscribe(s.bus, func(event.BuildingCompleted) { totals.completed++ })
	event.Subscribe(s.bus, func(event.Demolished) { totals.demolished++ })

	interrupted := false
	for i := 0; i < ticks && !interrupted; i++ {
		if ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				interrupted = true
				continue
			}
		} else if ctx.Err() != nil {
			interrupted = true
			continue
		}
		for _, req := range sc.Requests(i, refs) {
			event.Emit(s.bus, req)
		}
		s.runner.Tick(cfg.Simulation.TickRate)
		totals.rubble += s.destroy.LastStats().Rubble
	}
	// deliver the final tick's events to the publishers
	s.runner.TickPhase(coresys.PhaseInput, 0)
	s.persistence.Flush()

	if interrupted {
		log.Info("interrupted", zap.Error(context.Cause(ctx)))
	}
	printSection("summary")
	printStat("ticks", int(s.runner.Frame()/max(1, cfg.Simulation.FramesPerTick)))
	printStat("buildings completed", totals.completed)
	printStat("entities demolished", totals.demolished)
	printStat("rubble areas", totals.rubble)
	printStat("live entities", ws.EntityCount())
	printStat("unpublished demolitions", s.persistence.PendingDemolitions())
	if interrupted {
		return errors.New("run interrupted")
	}
	return nil
}

func buildSim(cfg *config.Config, ws *world.State, cat *prefab.Catalog, curve system.CollapseCurve,
	upgrades system.UpgradeSink, demolitions system.DemolitionSink, writer system.RecordWriter,
	runID string, log *zap.Logger) *sim {
	bus := event.NewBus()
	barrier := world.NewBarrier()
	seeds := rng.NewSeedSource(cfg.Simulation.Seed)

	construction := system.NewBuildingConstructionSystem(ws, cat, barrier, bus, seeds, system.ConstructionConfig{
		Workers:         cfg.Simulation.Workers,
		BatchSize:       cfg.Simulation.BatchSize,
		FastSpawn:       cfg.Simulation.DebugFastSpawn,
		LeftHandTraffic: cfg.Simulation.LeftHandTraffic,
	}, log.Named("construction"))
	destroy := system.NewDestroySystem(ws, cat, barrier, bus, seeds, curve, log.Named("destroy"))
	barrierSys := system.NewBarrierSystem(barrier, log.Named("barrier"))
	spawn := system.NewSpawnSystem(ws, cat, log.Named("spawn"))
	cleanup := system.NewCleanupSystem(ws)
	persistence := system.NewPersistenceSystem(ws, bus, upgrades, demolitions, log.Named("persist"),
		cfg.Persist.IntervalTicks, cfg.Persist.Timeout)
	journalSys := system.NewJournalSystem(ws, bus, seeds, system.JournalSources{
		Construction: construction,
		Barrier:      barrierSys,
		Spawn:        spawn,
		Cleanup:      cleanup,
	}, writer, runID, log.Named("journal"))

	runner := coresys.NewRunner(cfg.Simulation.FramesPerTick)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(destroy)
	runner.Register(construction)
	runner.Register(barrierSys)
	runner.Register(spawn)
	runner.Register(persistence)
	runner.Register(journalSys)
	runner.Register(cleanup)

	return &sim{
		runner:      runner,
		bus:         bus,
		destroy:     destroy,
		persistence: persistence,
	}
}
