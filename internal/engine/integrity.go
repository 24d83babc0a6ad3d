// Integrity — validation, correction, and guarded arithmetic over village
// state. Validate never mutates; Correct clamps in place and logs every
// repair; ResetEconomy is the last resort when correction cannot produce a
// valid village.
package engine

import (
	"fmt"
	"math"

	"github.com/sablemoor/villagesim/internal/config"
	"github.com/sablemoor/villagesim/internal/diag"
	"github.com/sablemoor/villagesim/internal/village"
	"github.com/sablemoor/villagesim/internal/world"
)

// FieldError describes one invariant violation found by Validate.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of validating a village.
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Checker enforces the village data invariants and records every violation
// to the error log.
type Checker struct {
	cfg config.Config
	log *diag.Log
}

// NewChecker wires a checker to the given error log.
func NewChecker(cfg config.Config, log *diag.Log) *Checker {
	return &Checker{cfg: cfg, log: log}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Validate checks every invariant on a village and reports all violations.
// It never mutates the village.
func (c *Checker) Validate(v *village.Village) ValidationResult {
	var errs []FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if v.Population < 0 {
		add("population", "negative population %d", v.Population)
	}
	if v.Population > c.cfg.PopulationCap {
		add("population", "population %d above cap %d", v.Population, c.cfg.PopulationCap)
	}

	if !finite(v.CollectionRadius) || v.CollectionRadius < 1 {
		add("collection_radius", "radius %g below minimum 1", v.CollectionRadius)
	} else if v.CollectionRadius > c.cfg.MaxCollectionRadius {
		add("collection_radius", "radius %g above maximum %g", v.CollectionRadius, c.cfg.MaxCollectionRadius)
	}

	for _, r := range world.ResourceTypes {
		name := world.ResourceName(r)
		if got := v.Storage.Get(r); !finite(got) || got < 0 || got > c.cfg.MaxStock {
			add("storage."+name, "stock %g outside [0, %g]", got, c.cfg.MaxStock)
		}
		if got := v.Economy.Production.Get(r); !finite(got) || got < 0 {
			add("production."+name, "rate %g not a finite non-negative number", got)
		}
		if got := v.Economy.Consumption.Get(r); !finite(got) || got < 0 {
			add("consumption."+name, "rate %g not a finite non-negative number", got)
		}
		if v.Economy.Stock.Get(r) != v.Storage.Get(r) {
			add("stock."+name, "economy stock %g diverged from storage %g",
				v.Economy.Stock.Get(r), v.Storage.Get(r))
		}
	}

	if !finite(v.Economy.StockCapacity) || v.Economy.StockCapacity < c.cfg.BaseStorageCapacity {
		add("stock_capacity", "capacity %g below base %g", v.Economy.StockCapacity, c.cfg.BaseStorageCapacity)
	}

	b := v.Economy.Buildings
	if b.Count < 0 || b.Count > c.cfg.MaxBuildingCount {
		add("buildings.count", "count %d outside [0, %d]", b.Count, c.cfg.MaxBuildingCount)
	}
	if b.Queue < 0 || b.Queue > c.cfg.MaxConstructionQueue {
		add("buildings.queue", "queue %d outside [0, %d]", b.Queue, c.cfg.MaxConstructionQueue)
	}
	if b.TargetCount < 0 {
		add("buildings.target_count", "negative target %d", b.TargetCount)
	}
	if !finite(b.Progress) || b.Progress < 0 {
		add("buildings.progress", "progress %g not a finite non-negative number", b.Progress)
	}

	if v.Economy.Status == nil {
		add("status", "status map missing")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// Correct clamps every out-of-range field to its nearest valid value and
// logs each repair. Returns true if anything changed. Non-finite values
// collapse to zero (or the lower bound).
func (c *Checker) Correct(v *village.Village) bool {
	changed := false
	id := v.ID.String()
	repair := func(field, format string, args ...any) {
		changed = true
		if c.log != nil {
			c.log.Append(id, diag.CategoryDataIntegrity, field, fmt.Sprintf(format, args...))
		}
	}

	clampFloat := func(field string, got *float64, lo, hi float64) {
		orig := *got
		switch {
		case !finite(orig):
			*got = lo
		case orig < lo:
			*got = lo
		case orig > hi:
			*got = hi
		default:
			return
		}
		repair(field, "clamped %g to %g", orig, *got)
	}

	if v.Population < 0 {
		repair("population", "clamped %d to 0", v.Population)
		v.Population = 0
	}
	if v.Population > c.cfg.PopulationCap {
		repair("population", "clamped %d to cap %d", v.Population, c.cfg.PopulationCap)
		v.Population = c.cfg.PopulationCap
	}

	clampFloat("collection_radius", &v.CollectionRadius, 1, c.cfg.MaxCollectionRadius)

	for _, r := range world.ResourceTypes {
		name := world.ResourceName(r)

		got := v.Storage.Get(r)
		fixed := got
		clampFloat("storage."+name, &fixed, 0, c.cfg.MaxStock)
		if fixed != got {
			v.Storage.Set(r, fixed)
		}

		got = v.Economy.Production.Get(r)
		fixed = got
		clampFloat("production."+name, &fixed, 0, math.MaxFloat64)
		if fixed != got {
			v.Economy.Production.Set(r, fixed)
		}

		got = v.Economy.Consumption.Get(r)
		fixed = got
		clampFloat("consumption."+name, &fixed, 0, math.MaxFloat64)
		if fixed != got {
			v.Economy.Consumption.Set(r, fixed)
		}
	}

	if !finite(v.Economy.StockCapacity) || v.Economy.StockCapacity < c.cfg.BaseStorageCapacity {
		repair("stock_capacity", "restored %g to base %g", v.Economy.StockCapacity, c.cfg.BaseStorageCapacity)
		v.Economy.StockCapacity = c.cfg.BaseStorageCapacity
	}

	b := &v.Economy.Buildings
	if b.Count < 0 {
		repair("buildings.count", "clamped %d to 0", b.Count)
		b.Count = 0
	}
	if b.Count > c.cfg.MaxBuildingCount {
		repair("buildings.count", "clamped %d to %d", b.Count, c.cfg.MaxBuildingCount)
		b.Count = c.cfg.MaxBuildingCount
	}
	if b.Queue < 0 {
		repair("buildings.queue", "clamped %d to 0", b.Queue)
		b.Queue = 0
	}
	if b.Queue > c.cfg.MaxConstructionQueue {
		repair("buildings.queue", "clamped %d to %d", b.Queue, c.cfg.MaxConstructionQueue)
		b.Queue = c.cfg.MaxConstructionQueue
	}
	if b.TargetCount < 0 {
		repair("buildings.target_count", "clamped %d to 0", b.TargetCount)
		b.TargetCount = 0
	}
	if !finite(b.Progress) || b.Progress < 0 {
		repair("buildings.progress", "reset %g to 0", b.Progress)
		b.Progress = 0
	}

	if v.Economy.Status == nil {
		repair("status", "rebuilt missing status map")
		v.Economy.Status = village.BalancedStatus()
	}

	// The stock mirror follows storage, not the other way around.
	if v.Economy.Stock != v.Storage {
		repair("stock", "resynced mirror from storage")
		v.SyncStock()
	}

	return changed
}

// ResetEconomy restores a village's economic state to safe defaults while
// preserving its identity, position, and population. Used only after
// Correct could not yield a valid village.
func (c *Checker) ResetEconomy(v *village.Village) {
	if v.Population < 0 {
		v.Population = 0
	}
	if v.Population > c.cfg.PopulationCap {
		v.Population = c.cfg.PopulationCap
	}
	v.CollectionRadius = c.cfg.DefaultCollectionRadius
	v.Storage = village.Store{}
	v.Economy = village.Economy{
		StockCapacity: c.cfg.BaseStorageCapacity,
		Status:        village.BalancedStatus(),
	}
	v.StarvationTicks = 0
	v.SyncStock()

	if c.log != nil {
		c.log.Append(v.ID.String(), diag.CategoryDataIntegrity, "economy",
			"economy reset to defaults")
	}
}

// SafeFloat runs a calculation and returns its result, substituting
// fallback when the calculation errors or yields a non-finite value. Every
// substitution is logged under the calculation category. Panics are not
// recovered here: a panic is a programmer error, not bad data.
func (c *Checker) SafeFloat(villageID, context string, fallback float64, fn func() (float64, error)) float64 {
	got, err := fn()
	if err != nil {
		if c.log != nil {
			c.log.Append(villageID, diag.CategoryCalculation, context, err.Error())
		}
		return fallback
	}
	if !finite(got) {
		if c.log != nil {
			c.log.Append(villageID, diag.CategoryCalculation, context,
				fmt.Sprintf("non-finite result %g, using %g", got, fallback))
		}
		return fallback
	}
	return got
}
