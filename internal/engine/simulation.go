// Simulation ties the village economy systems together and runs them each tick.
package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/sablemoor/villagesim/internal/config"
	"github.com/sablemoor/villagesim/internal/diag"
	"github.com/sablemoor/villagesim/internal/entropy"
	"github.com/sablemoor/villagesim/internal/village"
	"github.com/sablemoor/villagesim/internal/world"
)

// maxEvents bounds the in-memory event journal.
const maxEvents = 1000

// Simulation holds the complete world state and wires systems together.
// Villages are processed sequentially within a tick, so tile harvesting
// needs no locking.
type Simulation struct {
	cfg config.Config
	rng entropy.Source

	Grid         *world.Grid
	Villages     []*village.Village
	VillageIndex map[uuid.UUID]*village.Village

	Errors   *diag.Log
	integ    *Checker
	Events   []Event
	LastTick uint64
	Clock    float64 // sim-seconds elapsed

	Stats SimStats
}

// Event is a notable occurrence in the world.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "population", "construction", "integrity", "intervention"
}

// SimStats tracks aggregate world statistics, recomputed once per tick.
type SimStats struct {
	TotalPopulation   int `json:"total_population"`
	TotalBuildings    int `json:"total_buildings"`
	QueuedBuildings   int `json:"queued_buildings"`
	CriticalVillages  int `json:"critical_villages"` // villages with any critical resource
	IntegrityErrors   int `json:"integrity_errors"`
	CalculationErrors int `json:"calculation_errors"`
	EconomyResets     int `json:"economy_resets"`
}

// NewSimulation creates a Simulation over a generated grid and village set.
// The random source drives population growth/decline draws; pass a seeded
// source for replayable runs.
func NewSimulation(cfg config.Config, grid *world.Grid, villages []*village.Village, rng entropy.Source) *Simulation {
	errs := diag.NewLog(10_000)
	index := make(map[uuid.UUID]*village.Village, len(villages))
	for _, v := range villages {
		index[v.ID] = v
	}
	s := &Simulation{
		cfg:          cfg,
		rng:          rng,
		Grid:         grid,
		Villages:     villages,
		VillageIndex: index,
		Errors:       errs,
		integ:        NewChecker(cfg, errs),
	}
	s.updateStats()
	return s
}

// Config returns the simulation's immutable configuration.
func (s *Simulation) Config() config.Config {
	return s.cfg
}

// Integrity exposes the integrity checker for callers ingesting untrusted
// village data.
func (s *Simulation) Integrity() *Checker {
	return s.integ
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	return s.LastTick
}

// Step advances every village one tick in the fixed order
// economy → population → buildings, then runs tile recovery.
func (s *Simulation) Step(tick uint64) {
	s.LastTick = tick
	dt := s.cfg.TickSeconds

	for _, v := range s.Villages {
		s.UpdateVillageEconomy(v, dt)
		s.UpdatePopulation(v, dt)
		s.UpdateBuildings(v, dt)
	}

	s.Grid.Advance(world.RecoveryParams{
		Delay: s.cfg.RecoveryDelay,
		Rate:  s.cfg.RecoveryRate,
	}, dt)

	s.Clock += dt
	s.updateStats()
}

// sanitize runs the integrity layer on entry/exit of every mutator. If a
// village still fails validation after correction, its economy is reset to
// defaults — the last-resort recovery; the simulation itself never fails.
func (s *Simulation) sanitize(v *village.Village) {
	s.integ.Correct(v)
	if res := s.integ.Validate(v); !res.Valid {
		s.integ.ResetEconomy(v)
		s.Stats.EconomyResets++
		s.EmitEvent(Event{
			Tick:        s.LastTick,
			Description: "economy of " + v.Name + " reset to defaults after unrecoverable corruption",
			Category:    "integrity",
		})
		slog.Warn("economy reset", "village", v.Name, "errors", len(res.Errors))
	}
}

// EmitEvent appends to the bounded event journal.
func (s *Simulation) EmitEvent(e Event) {
	s.Events = append(s.Events, e)
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
}

func (s *Simulation) updateStats() {
	pop, built, queued, critical := 0, 0, 0, 0
	for _, v := range s.Villages {
		pop += v.Population
		built += v.Economy.Buildings.Count
		queued += v.Economy.Buildings.Queue
		for _, r := range world.ResourceTypes {
			if v.Economy.Status[r] == village.StatusCritical {
				critical++
				break
			}
		}
	}

	logStats := s.Errors.Stats()
	s.Stats.TotalPopulation = pop
	s.Stats.TotalBuildings = built
	s.Stats.QueuedBuildings = queued
	s.Stats.CriticalVillages = critical
	s.Stats.IntegrityErrors = logStats.ByCategory[diag.CategoryDataIntegrity]
	s.Stats.CalculationErrors = logStats.ByCategory[diag.CategoryCalculation]
}
