// Construction — population-derived building targets, resource-gated
// queueing, and completion over elapsed time.
package engine

import (
	"fmt"
	"math"

	"github.com/sablemoor/villagesim/internal/config"
	"github.com/sablemoor/villagesim/internal/village"
	"github.com/sablemoor/villagesim/internal/world"
)

// TargetBuildingCount derives the desired building count from population:
// zero for an empty village, otherwise at least one and at most half the
// population.
func TargetBuildingCount(cfg config.Config, population int) int {
	if population <= 0 {
		return 0
	}
	target := int(math.Floor(float64(population) * cfg.BuildingsPerPopulation))
	if half := population / 2; target > half {
		target = half
	}
	if target < 1 {
		target = 1
	}
	return target
}

// CanBuild reports whether a village may start one more building: storage
// covers the cost, the post-build stock keeps a reserve of twice the cost
// for both wood and ore, neither is in critical supply, and the queue has
// room.
func (s *Simulation) CanBuild(v *village.Village) bool {
	cfg := s.cfg
	b := v.Economy.Buildings
	if b.Queue >= cfg.MaxConstructionQueue {
		return false
	}

	wood := v.Storage.Wood
	ore := v.Storage.Ore
	if wood < cfg.BuildingWoodCost || ore < cfg.BuildingOreCost {
		return false
	}
	if wood-cfg.BuildingWoodCost < cfg.BuildingReserveFactor*cfg.BuildingWoodCost {
		return false
	}
	if ore-cfg.BuildingOreCost < cfg.BuildingReserveFactor*cfg.BuildingOreCost {
		return false
	}

	if v.Economy.Status[world.ResourceWood] == village.StatusCritical {
		return false
	}
	if v.Economy.Status[world.ResourceOre] == village.StatusCritical {
		return false
	}
	return true
}

// UpdateBuildings runs one construction tick: retarget from population,
// queue what resources allow, and advance in-progress construction. A
// population decrease never removes completed buildings or queued work —
// it only lowers the target.
func (s *Simulation) UpdateBuildings(v *village.Village, dt float64) {
	s.sanitize(v)

	cfg := s.cfg
	b := &v.Economy.Buildings
	b.TargetCount = TargetBuildingCount(cfg, v.Population)

	needed := b.TargetCount - (b.Count + b.Queue)
	if needed < 0 {
		needed = 0
	}

	buildable := int(math.Floor(v.Storage.Wood / cfg.BuildingWoodCost))
	if byOre := int(math.Floor(v.Storage.Ore / cfg.BuildingOreCost)); byOre < buildable {
		buildable = byOre
	}
	if room := cfg.MaxConstructionQueue - b.Queue; room < buildable {
		buildable = room
	}

	if needed > 0 && buildable > 0 && s.CanBuild(v) {
		n := buildable
		if needed < n {
			n = needed
		}
		v.Storage.Wood -= float64(n) * cfg.BuildingWoodCost
		v.Storage.Ore -= float64(n) * cfg.BuildingOreCost
		v.SyncStock()
		b.Queue += n
		s.EmitEvent(Event{
			Tick:        s.LastTick,
			Description: fmt.Sprintf("%s breaks ground on %d buildings", v.Name, n),
			Category:    "construction",
		})
	}

	// Completion: queued buildings finish at dt/constructionTime per
	// building, with fractional progress carried across ticks so small tick
	// sizes still complete work.
	if b.Queue > 0 && cfg.ConstructionTimePerBuilding > 0 {
		b.Progress += float64(b.Queue) * (dt / cfg.ConstructionTimePerBuilding)
		done := int(b.Progress)
		if done > b.Queue {
			done = b.Queue
		}
		if done > 0 {
			b.Progress -= float64(done)
			b.Queue -= done
			b.Count += done
			v.Economy.StockCapacity = cfg.BaseStorageCapacity + float64(b.Count)*cfg.CapacityPerBuilding
			s.EmitEvent(Event{
				Tick:        s.LastTick,
				Description: fmt.Sprintf("%s completes %d buildings (%d standing)", v.Name, done, b.Count),
				Category:    "construction",
			})
		}
	}
	if b.Queue == 0 {
		b.Progress = 0
	}

	s.reclassify(v)
	s.sanitize(v)
}
