// Command crownsim runs the Crownlands feudal economy simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/talgya/crownlands/internal/api"
	"github.com/talgya/crownlands/internal/economy"
	"github.com/talgya/crownlands/internal/engine"
	"github.com/talgya/crownlands/internal/persistence"
	"github.com/talgya/crownlands/internal/world"
)

func main() {
	var (
		configDir   = flag.String("configs", "configs", "directory holding goods.yaml, facilities.yaml, params.yaml")
		dbPath      = flag.String("db", "data/crownlands.db", "SQLite database path")
		archivePath = flag.String("archive", "data/history.json.zst", "snapshot archive written on shutdown")
		apiPort     = flag.Int("port", 8080, "HTTP API port")
		seed        = flag.Int64("seed", 42, "world generation seed")
		days        = flag.Int("days", 0, "run N days headless and exit (0 = paced server mode)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Crownlands — feudal economy simulation")

	// ── Configuration ─────────────────────────────────────────────────
	cat, err := economy.LoadCatalog(filepath.Join(*configDir, "goods.yaml"))
	if err != nil {
		slog.Error("failed to load goods catalog", "error", err)
		os.Exit(1)
	}
	defs, err := economy.LoadFacilityDefs(filepath.Join(*configDir, "facilities.yaml"), cat)
	if err != nil {
		slog.Error("failed to load facility defs", "error", err)
		os.Exit(1)
	}
	params, err := economy.LoadParams(filepath.Join(*configDir, "params.yaml"))
	if err != nil {
		slog.Error("failed to load parameters", "error", err)
		os.Exit(1)
	}
	slog.Info("configuration loaded",
		"goods", economy.GoodCount,
		"facility_types", len(defs),
		"tradeable", len(cat.BuyPriority),
	)

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(*dbPath), 0755)
	db, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", *dbPath)

	runID, err := db.EnsureRunID()
	if err != nil {
		slog.Error("failed to establish run identity", "error", err)
		os.Exit(1)
	}

	// ── World (always regenerated — deterministic from seed) ──────────
	cfg := world.DefaultGenConfig()
	cfg.Seed = *seed
	m, st := world.Generate(cfg, cat, params, defs)

	startDay := 0
	if db.HasWorldState() {
		slog.Info("found saved world state, loading...")
		if err := db.LoadState(st); err != nil {
			slog.Error("failed to load world state", "error", err)
			os.Exit(1)
		}
		if dayStr, err := db.GetMeta("last_day"); err == nil {
			if d, err := strconv.Atoi(dayStr); err == nil {
				startDay = d
			}
		}
		st.Day = startDay
		slog.Info("world state restored", "day", startDay, "date", engine.SimDate(startDay))
	} else {
		slog.Info("no saved state found, using generated world",
			"realms", m.Realms(),
			"provinces", m.Provinces(),
			"counties", m.Counties(),
			"facilities", len(st.Facilities),
		)
		if err := db.SaveState(st, m); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(st, m)

	hub := api.NewHub()
	go hub.Run()
	sim.OnSnapshot = hub.BroadcastSnapshot

	eng := engine.NewEngine()
	eng.Day = startDay
	eng.OnDay = func(day int) {
		sim.TickDay(day)
		if err := db.SaveState(st, m); err != nil {
			slog.Error("daily save failed", "error", err)
		}
		if snap, ok := sim.LatestSnapshot(); ok {
			if err := db.SaveSnapshot(snap); err != nil {
				slog.Error("snapshot save failed", "error", err)
			}
		}
		db.SaveMeta("last_day", strconv.Itoa(day))
	}

	// ── Headless mode ─────────────────────────────────────────────────
	if *days > 0 {
		slog.Info("headless run", "days", *days)
		eng.RunDays(*days)
		finish(db, st, m, sim, *archivePath, runID.String())
		return
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("CROWNSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("CROWNSIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		Hub:      hub,
		Port:     *apiPort,
		RunID:    runID.String(),
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nCrownlands is running: %d counties across %d provinces in %d realms.\n",
		m.Counties(), m.Provinces(), m.Realms())
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", *apiPort)
	if startDay > 0 {
		fmt.Printf("Resuming from day %d (%s)\n", startDay, engine.SimDate(startDay))
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	finish(db, st, m, sim, *archivePath, runID.String())
}

// finish performs the final save and exports the run's snapshot archive.
func finish(db *persistence.DB, st *economy.State, m *world.MapData, sim *engine.Simulation, archivePath, runID string) {
	slog.Info("final save...")
	if err := db.SaveState(st, m); err != nil {
		slog.Error("final save failed", "error", err)
	}
	db.SaveMeta("last_day", strconv.Itoa(st.Day))

	if len(sim.History) > 0 {
		if err := persistence.WriteArchive(archivePath, runID, sim.History); err != nil {
			slog.Error("archive export failed", "error", err)
		} else {
			slog.Info("snapshot archive written", "path", archivePath, "days", len(sim.History))
		}
	}

	fmt.Println("Simulation stopped. World state saved.")
}
