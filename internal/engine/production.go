// Production and consumption — villages draw from tile stock within their
// collection radius and feed their population from storage.
package engine

import (
	"math"

	"github.com/sablemoor/villagesim/internal/village"
	"github.com/sablemoor/villagesim/internal/world"
)

// UpdateVillageEconomy runs one economy tick for a village: scan the
// collection radius, derive production and consumption rates, harvest from
// the terrain into storage, draw consumption, and reclassify the
// supply-demand status. The integrity layer wraps entry and exit.
func (s *Simulation) UpdateVillageEconomy(v *village.Village, dt float64) {
	s.sanitize(v)

	tiles := s.Grid.TilesWithin(v.X, v.Y, v.CollectionRadius)
	available := availableByResource(tiles)

	v.Economy.Production = s.computeProduction(v, available)
	v.Economy.Consumption = s.computeConsumption(v, v.Population)

	for _, r := range world.ResourceTypes {
		// Harvest this tick's yield out of the terrain, clamped by what the
		// tiles actually hold.
		want := v.Economy.Production.Get(r) * dt
		harvested := harvestFrom(tiles, r, want, s.Clock)

		cur := v.Storage.Get(r) + harvested
		if cur > v.Economy.StockCapacity {
			cur = v.Economy.StockCapacity
		}

		// Consumption is capped at available stock; storage never goes negative.
		draw := v.Economy.Consumption.Get(r) * dt
		if draw > cur {
			draw = cur
		}
		v.Storage.Set(r, cur-draw)
	}

	v.SyncStock()
	v.LastUpdated = s.Clock
	s.reclassify(v)
	s.sanitize(v)
}

// computeProduction derives per-resource production rates from the
// aggregated harvestable stock within the collection radius. Zero
// availability always yields exactly zero production.
func (s *Simulation) computeProduction(v *village.Village, available map[world.ResourceType]float64) village.Store {
	popBonus := populationEfficiency(s.cfg.PopBonusMax, s.cfg.PopBonusScale, v.Population)
	bldBonus := buildingEfficiency(s.cfg.BuildingBonusMax, s.cfg.BuildingBonusScale, v.Economy.Buildings.Count)

	var out village.Store
	id := v.ID.String()
	for _, r := range world.ResourceTypes {
		base := available[r]
		if base <= 0 {
			continue
		}
		rate := s.integ.SafeFloat(id, "production."+world.ResourceName(r), 0, func() (float64, error) {
			return base * s.cfg.ExtractionRate * popBonus * bldBonus, nil
		})
		out.Set(r, rate)
	}
	return out
}

// computeConsumption derives per-resource consumption rates from population.
// Larger settlements are proportionally cheaper to feed: the per-capita rate
// shrinks toward ConsumptionScaleMin as population grows.
func (s *Simulation) computeConsumption(v *village.Village, population int) village.Store {
	var out village.Store
	if population <= 0 {
		return out
	}

	scale := consumptionScale(s.cfg.ConsumptionScaleMin, s.cfg.ConsumptionScalePop, population)
	pop := float64(population)
	id := v.ID.String()

	perCapita := map[world.ResourceType]float64{
		world.ResourceFood: s.cfg.FoodPerCapita,
		world.ResourceWood: s.cfg.WoodPerCapita,
		world.ResourceOre:  s.cfg.OrePerCapita,
	}
	for _, r := range world.ResourceTypes {
		rate := s.integ.SafeFloat(id, "consumption."+world.ResourceName(r), 0, func() (float64, error) {
			return perCapita[r] * pop * scale, nil
		})
		out.Set(r, rate)
	}
	return out
}

// populationEfficiency is a saturating bonus, monotonically non-decreasing
// in population: 1 at zero, approaching 1+max.
func populationEfficiency(max, scale float64, population int) float64 {
	if population <= 0 || scale <= 0 {
		return 1
	}
	return 1 + max*(1-math.Exp(-float64(population)/scale))
}

// buildingEfficiency is the same saturating curve over completed buildings.
func buildingEfficiency(max, scale float64, count int) float64 {
	if count <= 0 || scale <= 0 {
		return 1
	}
	return 1 + max*(1-math.Exp(-float64(count)/scale))
}

// consumptionScale shrinks per-capita consumption as population grows,
// bottoming out at min. Weakly decreasing in population.
func consumptionScale(min, scalePop float64, population int) float64 {
	if population <= 0 || scalePop <= 0 {
		return 1
	}
	return min + (1-min)*math.Exp(-float64(population)/scalePop)
}

// availableByResource sums harvestable stock per resource across tiles.
func availableByResource(tiles []*world.Tile) map[world.ResourceType]float64 {
	out := make(map[world.ResourceType]float64, len(world.ResourceTypes))
	for _, t := range tiles {
		for _, r := range world.ResourceTypes {
			out[r] += t.Resources[r]
		}
	}
	return out
}

// harvestFrom greedily takes up to want of a resource from the tiles,
// returning the amount actually collected. Tiles clamp internally, so a
// depleted tile simply contributes nothing.
func harvestFrom(tiles []*world.Tile, r world.ResourceType, want, now float64) float64 {
	if want <= 0 {
		return 0
	}
	total := 0.0
	for _, t := range tiles {
		if want <= 0 {
			break
		}
		taken := t.Harvest(r, want, now)
		total += taken
		want -= taken
	}
	return total
}
