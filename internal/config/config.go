// Package config holds the immutable numeric knobs for the simulation.
// A Config value is built once (Default plus any caller overrides), passed
// explicitly into each component, and never mutated afterwards. Validation
// of operator-supplied values belongs to the settings layer that builds it.
package config

// Config is the full set of simulation parameters.
type Config struct {
	// Tick pacing.
	TickSeconds float64 // sim-seconds advanced per engine tick

	// Consumption: per-capita baseline rates per sim-second.
	FoodPerCapita float64
	WoodPerCapita float64
	OrePerCapita  float64

	// Economies of scale: per-capita consumption shrinks toward
	// ConsumptionScaleMin as population grows past ConsumptionScalePop.
	ConsumptionScaleMin float64
	ConsumptionScalePop float64

	// Production bonuses, both saturating.
	ExtractionRate     float64 // fraction of standing radius stock yielded per sim-second
	PopBonusMax        float64
	PopBonusScale      float64
	BuildingBonusMax   float64
	BuildingBonusScale float64

	// Population dynamics.
	GrowthRate             float64 // growth events per sim-second when growth is possible
	DeclineRate            float64 // decline events per sim-second when decline fires
	PopulationCap          int
	GrowthBufferTicks      float64 // stock must cover this many ticks of consumption
	GrowthProductionFactor float64 // production must cover consumption times this
	DeclineProductionRatio float64 // decline fires below this fraction of required production
	StarvationGraceTicks   int     // complete exhaustion forces a decline within this many ticks
	HistoryLimit           int

	// Construction.
	BuildingWoodCost            float64
	BuildingOreCost             float64
	BuildingsPerPopulation      float64
	BuildingReserveFactor       float64 // post-build stock must retain cost times this
	MaxConstructionQueue        int
	ConstructionTimePerBuilding float64 // sim-seconds per building
	BaseStorageCapacity         float64
	CapacityPerBuilding         float64

	// Supply-demand classification.
	CriticalRatio     float64 // production/consumption below this is critical
	ShortageRatio     float64
	SurplusRatio      float64
	CriticalStockBand float64 // zero-consumption: stock below this is critical
	SurplusStockBand  float64 // zero-consumption: stock at or above this is surplus

	// Supplier search.
	SupplierReserveTicks float64 // surplus capacity excludes this many ticks of own consumption

	// Tile recovery.
	RecoveryDelay float64 // sim-seconds a resource rests before regrowth
	RecoveryRate  float64 // fraction of max restored per sim-second once resting

	// Integrity hard caps.
	MaxStock            float64
	MaxBuildingCount    int
	MaxCollectionRadius float64

	// Defaults for village construction.
	DefaultCollectionRadius float64

	// Tick budget in sim-seconds of wall time; breaches increment SlowTicks.
	SlowTickBudgetMS int
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		TickSeconds: 1.0,

		FoodPerCapita: 0.5,
		WoodPerCapita: 0.1,
		OrePerCapita:  0.05,

		ConsumptionScaleMin: 0.6,
		ConsumptionScalePop: 150,

		ExtractionRate:     0.02,
		PopBonusMax:        0.5,
		PopBonusScale:      100,
		BuildingBonusMax:   0.5,
		BuildingBonusScale: 20,

		GrowthRate:             0.02,
		DeclineRate:            0.05,
		PopulationCap:          1000,
		GrowthBufferTicks:      10,
		GrowthProductionFactor: 1.0,
		DeclineProductionRatio: 0.3,
		StarvationGraceTicks:   5,
		HistoryLimit:           10,

		BuildingWoodCost:            10,
		BuildingOreCost:             5,
		BuildingsPerPopulation:      0.1,
		BuildingReserveFactor:       2,
		MaxConstructionQueue:        3,
		ConstructionTimePerBuilding: 5,
		BaseStorageCapacity:         200,
		CapacityPerBuilding:         50,

		CriticalRatio:     0.3,
		ShortageRatio:     0.8,
		SurplusRatio:      1.2,
		CriticalStockBand: 10,
		SurplusStockBand:  100,

		SupplierReserveTicks: 10,

		RecoveryDelay: 30,
		RecoveryRate:  0.01,

		MaxStock:            1_000_000,
		MaxBuildingCount:    500,
		MaxCollectionRadius: 64,

		DefaultCollectionRadius: 5,

		SlowTickBudgetMS: 100,
	}
}
