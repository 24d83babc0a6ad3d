// Terrain generation using layered simplex noise.
// Elevation and moisture layers derive terrain types; terrain seeds each
// tile's resource ceilings.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds terrain generation parameters.
type GenConfig struct {
	Width       int
	Height      int
	Seed        int64   // 0 = random
	SeaLevel    float64 // elevation threshold for water (0.0–1.0)
	MountainLvl float64 // elevation threshold for mountains (0.0–1.0)
	ForestLvl   float64 // moisture threshold for forest on land
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:       96,
		Height:      96,
		SeaLevel:    0.30,
		MountainLvl: 0.72,
		ForestLvl:   0.55,
	}
}

// SmallTestConfig returns a tiny grid for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Width:       16,
		Height:      16,
		Seed:        42,
		SeaLevel:    0.30,
		MountainLvl: 0.75,
		ForestLvl:   0.55,
	}
}

// Generate creates a complete tile grid with terrain and resource ceilings.
// Deterministic for a fixed seed.
func Generate(cfg GenConfig) *Grid {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	g := NewGrid(cfg.Width, cfg.Height)
	halfW := float64(cfg.Width) / 2
	halfH := float64(cfg.Height) / 2

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			fx := float64(x)
			fy := float64(y)

			elev := octaveNoise(elevNoise, fx, fy, 4, 0.05, 0.5)
			moist := octaveNoise(moistNoise, fx, fy, 3, 0.04, 0.5)

			// Edge falloff shapes a water border around the landmass.
			dx := (fx - halfW) / halfW
			dy := (fy - halfH) / halfH
			dist := math.Sqrt(dx*dx + dy*dy)
			falloff := 1.0 - math.Pow(dist, 3)
			if falloff < 0 {
				falloff = 0
			}
			elev *= falloff

			terrain := deriveTerrain(elev, moist, cfg)
			g.Set(NewTile(x, y, terrain, resourceCeilings(terrain, elev, moist)))
		}
	}

	return g
}

func deriveTerrain(elev, moist float64, cfg GenConfig) TerrainType {
	if elev < cfg.SeaLevel {
		return TerrainWater
	}
	if elev > cfg.MountainLvl {
		return TerrainMountain
	}
	if moist > cfg.ForestLvl {
		return TerrainForest
	}
	return TerrainLand
}

// resourceCeilings derives per-resource maxima from terrain. Water and road
// tiles are barren for every resource.
func resourceCeilings(terrain TerrainType, elev, moist float64) map[ResourceType]float64 {
	max := make(map[ResourceType]float64, len(ResourceTypes))
	switch terrain {
	case TerrainLand:
		max[ResourceFood] = 60 + moist*40
		max[ResourceWood] = 10
	case TerrainForest:
		max[ResourceFood] = 20
		max[ResourceWood] = 80 + moist*20
	case TerrainMountain:
		max[ResourceOre] = 50 + elev*40
		max[ResourceWood] = 10
	}
	return max
}

// octaveNoise layers multiple noise frequencies for natural-looking terrain.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns the terrain type distribution of a grid.
func TerrainCounts(g *Grid) map[TerrainType]int {
	counts := make(map[TerrainType]int)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if t := g.Get(x, y); t != nil {
				counts[t.Type]++
			}
		}
	}
	return counts
}
