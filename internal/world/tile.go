// Package world provides the terrain grid and the per-tile resource model.
// Tiles hold harvestable stock that depletes when villages collect and
// recovers once a resource has rested past a configured delay.
package world

// ResourceType enumerates the raw resources villages harvest from terrain.
type ResourceType uint8

const (
	ResourceFood ResourceType = iota
	ResourceWood
	ResourceOre
)

// ResourceTypes lists every resource in a stable order for iteration.
var ResourceTypes = [3]ResourceType{ResourceFood, ResourceWood, ResourceOre}

// ResourceName returns a human-readable name for a resource type.
func ResourceName(r ResourceType) string {
	switch r {
	case ResourceFood:
		return "food"
	case ResourceWood:
		return "wood"
	case ResourceOre:
		return "ore"
	default:
		return "unknown"
	}
}

// TerrainType enumerates terrain cell kinds.
type TerrainType uint8

const (
	TerrainWater TerrainType = iota
	TerrainLand
	TerrainForest
	TerrainMountain
	TerrainRoad
)

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t TerrainType) string {
	switch t {
	case TerrainWater:
		return "water"
	case TerrainLand:
		return "land"
	case TerrainForest:
		return "forest"
	case TerrainMountain:
		return "mountain"
	case TerrainRoad:
		return "road"
	default:
		return "unknown"
	}
}

// terrainYield maps terrain to per-resource recovery multipliers. Water and
// road carry no harvestable stock and never recover anything.
var terrainYield = map[TerrainType]map[ResourceType]float64{
	TerrainLand:     {ResourceFood: 1.5, ResourceWood: 0.3, ResourceOre: 0.1},
	TerrainForest:   {ResourceFood: 0.5, ResourceWood: 1.5, ResourceOre: 0.2},
	TerrainMountain: {ResourceFood: 0.1, ResourceWood: 0.4, ResourceOre: 1.5},
}

// TerrainYieldMultiplier returns the recovery multiplier for a resource on a
// terrain type. Zero for terrain that does not bear the resource.
func TerrainYieldMultiplier(t TerrainType, r ResourceType) float64 {
	return terrainYield[t][r]
}

// RecoveryParams controls tile regrowth.
type RecoveryParams struct {
	Delay float64 // sim-seconds a resource must rest before regrowth
	Rate  float64 // fraction of max restored per sim-second once resting
}

// Tile is one terrain cell. All per-resource maps are keyed by ResourceType
// and hold entries for every resource, including zero-max ones.
type Tile struct {
	X, Y int
	Type TerrainType

	Resources     map[ResourceType]float64 // current harvestable stock
	MaxResources  map[ResourceType]float64 // stock ceiling (0 = barren for that resource)
	Depletion     map[ResourceType]float64 // current/max, 0 when max is 0
	RecoveryTimer map[ResourceType]float64 // sim-seconds since last harvest per resource

	LastHarvest float64 // sim-time of the most recent harvest or override
}

// NewTile creates a tile with the given resource ceilings, starting full.
func NewTile(x, y int, terrain TerrainType, max map[ResourceType]float64) *Tile {
	t := &Tile{
		X:             x,
		Y:             y,
		Type:          terrain,
		Resources:     make(map[ResourceType]float64, len(ResourceTypes)),
		MaxResources:  make(map[ResourceType]float64, len(ResourceTypes)),
		Depletion:     make(map[ResourceType]float64, len(ResourceTypes)),
		RecoveryTimer: make(map[ResourceType]float64, len(ResourceTypes)),
	}
	for _, r := range ResourceTypes {
		m := max[r]
		if m < 0 {
			m = 0
		}
		t.MaxResources[r] = m
		t.Resources[r] = m
		t.RecoveryTimer[r] = 0
	}
	t.refreshDepletion()
	return t
}

// Harvest removes up to amount of a resource, clamped to available stock,
// and returns what was actually taken. Resets the resource's recovery timer
// and stamps the harvest time.
func (t *Tile) Harvest(r ResourceType, amount, now float64) float64 {
	if amount <= 0 {
		return 0
	}
	available := t.Resources[r]
	taken := amount
	if taken > available {
		taken = available
	}
	t.Resources[r] = available - taken
	t.RecoveryTimer[r] = 0
	t.LastHarvest = now
	t.refreshDepletionFor(r)
	return taken
}

// Advance moves the tile forward by elapsed sim-seconds: recovery timers run,
// and any resource rested past the delay regrows toward its max at
// rate × max × terrain multiplier. Barren resources (max 0) never change.
func (t *Tile) Advance(p RecoveryParams, elapsed float64) {
	if elapsed <= 0 {
		return
	}
	for _, r := range ResourceTypes {
		max := t.MaxResources[r]
		if max <= 0 {
			continue
		}
		t.RecoveryTimer[r] += elapsed
		if t.RecoveryTimer[r] <= p.Delay {
			continue
		}
		cur := t.Resources[r] + p.Rate*max*TerrainYieldMultiplier(t.Type, r)*elapsed
		if cur > max {
			cur = max
		}
		t.Resources[r] = cur
		t.refreshDepletionFor(r)
	}
}

// SetResource force-sets a resource level, clamped to [0, max]. Used by the
// divine-intervention override, never by normal simulation flow. The recovery
// timer resets and the harvest time is stamped, as if the tile was touched.
func (t *Tile) SetResource(r ResourceType, amount, now float64) {
	max := t.MaxResources[r]
	if amount < 0 {
		amount = 0
	}
	if amount > max {
		amount = max
	}
	t.Resources[r] = amount
	t.RecoveryTimer[r] = 0
	t.LastHarvest = now
	t.refreshDepletionFor(r)
}

func (t *Tile) refreshDepletion() {
	for _, r := range ResourceTypes {
		t.refreshDepletionFor(r)
	}
}

func (t *Tile) refreshDepletionFor(r ResourceType) {
	max := t.MaxResources[r]
	if max <= 0 {
		t.Depletion[r] = 0
		return
	}
	t.Depletion[r] = t.Resources[r] / max
}
