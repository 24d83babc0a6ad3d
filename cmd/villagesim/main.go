// Command villagesim runs the village economy simulation with an HTTP
// observation API and a SQLite diagnostics journal.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/sablemoor/villagesim/internal/api"
	"github.com/sablemoor/villagesim/internal/config"
	"github.com/sablemoor/villagesim/internal/diag"
	"github.com/sablemoor/villagesim/internal/engine"
	"github.com/sablemoor/villagesim/internal/entropy"
	"github.com/sablemoor/villagesim/internal/village"
	"github.com/sablemoor/villagesim/internal/world"
)

// reportEvery is the tick cadence for the console summary and journal flush.
const reportEvery = 60

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if os.Getenv("VILLAGESIM_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	seed := envInt64("VILLAGESIM_SEED", 42)
	apiPort := int(envInt64("VILLAGESIM_PORT", 8080))
	villageCount := int(envInt64("VILLAGESIM_VILLAGES", 12))
	dbPath := os.Getenv("VILLAGESIM_DB")
	if dbPath == "" {
		dbPath = "data/villagesim.db"
	}

	cfg := config.Default()

	// ── Diagnostics journal ───────────────────────────────────────────
	var journal *diag.Journal
	if dbPath != "off" {
		os.MkdirAll("data", 0755)
		j, err := diag.OpenJournal(dbPath)
		if err != nil {
			slog.Error("failed to open journal", "error", err)
			os.Exit(1)
		}
		defer j.Close()
		journal = j
		slog.Info("journal opened", "path", dbPath)
	}

	// ── World ─────────────────────────────────────────────────────────
	slog.Info("generating terrain", "seed", seed)
	genCfg := world.DefaultGenConfig()
	genCfg.Seed = seed
	grid := world.Generate(genCfg)

	for terrain, n := range world.TerrainCounts(grid) {
		slog.Info("terrain", "type", world.TerrainName(terrain), "count", n)
	}

	sites := world.PlaceVillages(grid, seed, villageCount, 8)
	villages := make([]*village.Village, 0, len(sites))
	for _, site := range sites {
		v := village.New(site.Name, float64(site.X), float64(site.Y),
			site.Population, cfg.DefaultCollectionRadius, cfg.BaseStorageCapacity)
		villages = append(villages, v)
		slog.Info("village founded", "name", v.Name,
			"x", site.X, "y", site.Y, "population", v.Population)
	}

	sim := engine.NewSimulation(cfg, grid, villages, entropy.NewSeeded(seed+1))

	// ── Tick loop ─────────────────────────────────────────────────────
	eng := engine.NewEngine(time.Duration(cfg.TickSeconds*float64(time.Second)), cfg.SlowTickBudgetMS)
	eng.SetSpeed(envFloat("VILLAGESIM_SPEED", 1.0))

	var mu sync.Mutex
	var cursor flushCursor
	eng.OnTick = func(tick uint64) {
		mu.Lock()
		defer mu.Unlock()
		sim.Step(tick)

		if tick%reportEvery == 0 {
			report(sim)
			cursor.flush(journal, sim)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("VILLAGESIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("VILLAGESIM_ADMIN_KEY not set, admin POST endpoints disabled")
	}
	srv := &api.Server{
		Sim:      sim,
		Eng:      eng,
		Journal:  journal,
		Mu:       &mu,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	srv.Start()

	// ── Run until signalled ───────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\n%d villages settled, %s souls in total.\n",
		len(villages), humanize.Comma(int64(sim.Stats.TotalPopulation)))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	mu.Lock()
	cursor.flush(journal, sim)
	mu.Unlock()
	fmt.Println("Simulation stopped.")
}

// report logs a one-line world summary.
func report(sim *engine.Simulation) {
	slog.Info("world report",
		"tick", sim.CurrentTick(),
		"population", humanize.Comma(int64(sim.Stats.TotalPopulation)),
		"buildings", sim.Stats.TotalBuildings,
		"queued", sim.Stats.QueuedBuildings,
		"critical", sim.Stats.CriticalVillages,
		"integrity_errors", sim.Stats.IntegrityErrors,
		"resets", sim.Stats.EconomyResets,
	)
}

// flushCursor tracks how much of the in-memory error log and event journal
// has already been written to SQLite. Both stores are bounded rings; when
// trimming outpaces flushing, the cursor restarts at the oldest retained
// entry rather than losing the run.
type flushCursor struct {
	errors int
	events int
}

func (c *flushCursor) flush(j *diag.Journal, sim *engine.Simulation) {
	if j == nil {
		return
	}

	all := sim.Errors.All()
	if c.errors > len(all) {
		c.errors = 0
	}
	if fresh := all[c.errors:]; len(fresh) > 0 {
		if err := j.RecordErrors(fresh); err != nil {
			slog.Error("journal errors flush failed", "error", err)
		}
	}
	c.errors = len(all)

	if c.events > len(sim.Events) {
		c.events = 0
	}
	if fresh := sim.Events[c.events:]; len(fresh) > 0 {
		records := make([]diag.EventRecord, 0, len(fresh))
		for _, e := range fresh {
			records = append(records, diag.EventRecord{
				Tick:        e.Tick,
				Description: e.Description,
				Category:    e.Category,
			})
		}
		if err := j.RecordEvents(records); err != nil {
			slog.Error("journal events flush failed", "error", err)
		}
	}
	c.events = len(sim.Events)
}

func envInt64(key string, fallback int64) int64 {
	if raw := os.Getenv(key); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
		slog.Warn("ignoring malformed env value", "key", key, "value", raw)
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
		slog.Warn("ignoring malformed env value", "key", key, "value", raw)
	}
	return fallback
}
