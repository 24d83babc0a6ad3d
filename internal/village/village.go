// Package village provides the settlement aggregate: population, storage,
// and the embedded Economy block that the engine mutates every tick.
package village

import (
	"math"

	"github.com/google/uuid"

	"github.com/sablemoor/villagesim/internal/world"
)

// Category describes the supply-demand balance for one resource. The order
// matters: lower values are worse, so categories compare with < and >.
type Category uint8

const (
	StatusCritical Category = iota
	StatusShortage
	StatusBalanced
	StatusSurplus
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case StatusCritical:
		return "critical"
	case StatusShortage:
		return "shortage"
	case StatusBalanced:
		return "balanced"
	case StatusSurplus:
		return "surplus"
	default:
		return "unknown"
	}
}

// Store holds one quantity per resource type.
type Store struct {
	Food float64 `json:"food"`
	Wood float64 `json:"wood"`
	Ore  float64 `json:"ore"`
}

// Get returns the quantity for a resource type.
func (s Store) Get(r world.ResourceType) float64 {
	switch r {
	case world.ResourceFood:
		return s.Food
	case world.ResourceWood:
		return s.Wood
	case world.ResourceOre:
		return s.Ore
	}
	return 0
}

// Set replaces the quantity for a resource type.
func (s *Store) Set(r world.ResourceType, v float64) {
	switch r {
	case world.ResourceFood:
		s.Food = v
	case world.ResourceWood:
		s.Wood = v
	case world.ResourceOre:
		s.Ore = v
	}
}

// Add adjusts the quantity for a resource type by delta.
func (s *Store) Add(r world.ResourceType, delta float64) {
	s.Set(r, s.Get(r)+delta)
}

// Buildings tracks completed and in-progress construction.
type Buildings struct {
	Count       int     `json:"count"`        // completed buildings
	TargetCount int     `json:"target_count"` // desired, derived from population
	Queue       int     `json:"queue"`        // under construction, bounded
	Progress    float64 `json:"progress"`     // fractional completions carried between ticks
}

// Economy is the per-village economic state, owned exclusively by its Village.
type Economy struct {
	Production  Store `json:"production"`  // per-resource rate this tick
	Consumption Store `json:"consumption"` // per-resource rate this tick

	Stock         Store   `json:"stock"`          // mirrors Village.Storage at all times
	StockCapacity float64 `json:"stock_capacity"` // storage ceiling per resource

	Buildings Buildings `json:"buildings"`

	Status map[world.ResourceType]Category `json:"status"` // supply-demand category per resource
}

// Village is a settlement. Created once by world setup and mutated every
// tick; never destroyed — depopulation bottoms out at population 1.
type Village struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`

	Population       int     `json:"population"`
	Storage          Store   `json:"storage"`
	CollectionRadius float64 `json:"collection_radius"`

	// Population history ring, newest last, at most HistoryLimit entries.
	History []int `json:"history"`

	// Ticks of sustained complete food exhaustion; drives the deterministic
	// decline guarantee.
	StarvationTicks int `json:"-"`

	LastUpdated float64 `json:"last_updated"` // sim-seconds

	Economy Economy `json:"economy"`
}

// New creates a village at (x, y) with the given starting population and
// collection radius. Status starts balanced for every resource, stock
// mirrors storage.
func New(name string, x, y float64, population int, radius, capacity float64) *Village {
	v := &Village{
		ID:               uuid.New(),
		Name:             name,
		X:                x,
		Y:                y,
		Population:       population,
		CollectionRadius: radius,
	}
	v.Economy.StockCapacity = capacity
	v.Economy.Status = BalancedStatus()
	v.SyncStock()
	return v
}

// BalancedStatus returns a fresh per-resource status map, all balanced.
func BalancedStatus() map[world.ResourceType]Category {
	m := make(map[world.ResourceType]Category, len(world.ResourceTypes))
	for _, r := range world.ResourceTypes {
		m[r] = StatusBalanced
	}
	return m
}

// SyncStock copies storage into the economy stock mirror.
func (v *Village) SyncStock() {
	v.Economy.Stock = v.Storage
}

// RecordPopulation appends the current population to the history ring and
// drops the oldest entries beyond limit.
func (v *Village) RecordPopulation(limit int) {
	v.History = append(v.History, v.Population)
	if limit > 0 && len(v.History) > limit {
		v.History = v.History[len(v.History)-limit:]
	}
}

// DistanceTo returns the Euclidean distance to another village.
func (v *Village) DistanceTo(o *Village) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}
