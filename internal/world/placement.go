// Village placement — scores land tiles and seeds starting villages with a
// minimum spacing so collection radii do not fully overlap.
package world

import (
	"math"
	"math/rand"
	"sort"
)

// VillageSite is a chosen starting location.
type VillageSite struct {
	X, Y       int
	Score      float64
	Name       string
	Population int
}

// PlaceVillages picks up to count sites on the grid, best-scored first,
// enforcing minDist Euclidean spacing. Deterministic for a fixed seed.
func PlaceVillages(g *Grid, seed int64, count int, minDist float64) []VillageSite {
	rng := rand.New(rand.NewSource(seed + 200))

	type scored struct {
		x, y  int
		score float64
	}
	var candidates []scored
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			t := g.Get(x, y)
			if t == nil || t.Type == TerrainWater {
				continue
			}
			if s := siteScore(g, x, y, t); s > 0 {
				candidates = append(candidates, scored{x, y, s})
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		// Stable order for equal scores keeps placement reproducible.
		if candidates[i].y != candidates[j].y {
			return candidates[i].y < candidates[j].y
		}
		return candidates[i].x < candidates[j].x
	})

	var sites []VillageSite
	for _, c := range candidates {
		if len(sites) >= count {
			break
		}
		if tooClose(c.x, c.y, sites, minDist) {
			continue
		}
		sites = append(sites, VillageSite{
			X:          c.x,
			Y:          c.y,
			Score:      c.score,
			Population: 10 + rng.Intn(21),
		})
	}

	names := villageNames(rng, len(sites))
	for i := range sites {
		sites[i].Name = names[i]
	}
	return sites
}

// siteScore prefers fertile land with varied terrain in collection reach.
func siteScore(g *Grid, x, y int, t *Tile) float64 {
	score := 0.0
	switch t.Type {
	case TerrainLand:
		score += 3.0
	case TerrainForest:
		score += 2.0
	case TerrainMountain:
		score += 0.5
	default:
		return 0
	}

	kinds := make(map[TerrainType]bool)
	food := 0.0
	for _, n := range g.TilesWithin(float64(x), float64(y), 3) {
		if n.Type != TerrainWater {
			kinds[n.Type] = true
		}
		food += n.Resources[ResourceFood]
	}
	score += float64(len(kinds)) * 0.3
	score += math.Log1p(food) * 0.2
	return score
}

func tooClose(x, y int, existing []VillageSite, minDist float64) bool {
	for _, s := range existing {
		dx := float64(x - s.X)
		dy := float64(y - s.Y)
		if math.Sqrt(dx*dx+dy*dy) < minDist {
			return true
		}
	}
	return false
}

func villageNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "High", "Low", "Old", "New",
		"Far", "Deep", "Long", "Oak", "Pine", "Copper", "Frost",
	}
	suffixes := []string{
		"haven", "ford", "hollow", "wick", "bridge", "stead",
		"wood", "field", "dale", "vale", "bury", "well", "brook",
		"moor", "ridge", "fall", "rest", "reach",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)
	for len(names) < count {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		if !used[name] {
			used[name] = true
			names = append(names, name)
		}
	}
	return names
}
