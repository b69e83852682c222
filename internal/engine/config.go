package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries every tuned simulation constant. The defaults are the
// canonical values; a YAML file can override any subset of them.
type Config struct {
	Seed         int64 `yaml:"seed"`
	CountryCount int   `yaml:"country_count"`

	// Tick cadence. One logical second spans TicksPerSecond frames; the
	// economy, maintenance, and spawn cycles run on logical-second
	// boundaries.
	TicksPerSecond int `yaml:"ticks_per_second"`

	// Starting state per country.
	StartPopulation float64 `yaml:"start_population"`
	StartGDP        float64 `yaml:"start_gdp"`

	// Economy.
	PopulationGrowth float64 `yaml:"population_growth"` // per logical second
	GDPGrowth        float64 `yaml:"gdp_growth"`        // per logical second
	CapitalGDPBoost  float64 `yaml:"capital_gdp_boost"` // flat, per logical second
	LowGDPThreshold  float64 `yaml:"low_gdp_threshold"` // disband below this

	// Army creation and upkeep.
	ArmyBaseStrength     int     `yaml:"army_base_strength"`
	ArmyMaxStrength      int     `yaml:"army_max_strength"`
	GDPStrengthMult      float64 `yaml:"gdp_strength_mult"`  // GDP -> bonus strength
	PopCostPerStrength   float64 `yaml:"pop_cost_per_strength"`
	GDPCostPerStrength   float64 `yaml:"gdp_cost_per_strength"`
	CoastalSpawnFactor   float64 `yaml:"coastal_spawn_factor"`
	MaintenancePerSecond float64 `yaml:"maintenance_per_second"` // GDP per strength
	MilitaryBudgetRatio  float64 `yaml:"military_budget_ratio"`
	MaxSpawnsPerCycle    int     `yaml:"max_spawns_per_cycle"`

	// Movement and attrition.
	MoveSpeed           float64 `yaml:"move_speed"`            // progress per tick
	IsolationDecay      float64 `yaml:"isolation_decay"`       // per logical second
	IsolationFloor      int     `yaml:"isolation_floor"`       // disband at or below

	// Battle resolution.
	BattleMaxSeconds     int     `yaml:"battle_max_seconds"`
	BattleDamageRate     float64 `yaml:"battle_damage_rate"`
	BattleGDPFactor      float64 `yaml:"battle_gdp_factor"`
	DecisiveChance       float64 `yaml:"decisive_chance"`
	DecisiveMult         float64 `yaml:"decisive_mult"`
	DecisiveWindow       int     `yaml:"decisive_window"` // ticks
	DominantLossRate     float64 `yaml:"dominant_loss_rate"`
	OverwhelmedLossRate  float64 `yaml:"overwhelmed_loss_rate"`
	DefenseDecayShare    float64 `yaml:"defense_decay_share"` // attacker share threshold
	IsolationPenalty     float64 `yaml:"isolation_penalty"`
	ProvinceDefenseDiv   float64 `yaml:"province_defense_div"` // population / this
	ConquestPopKept      float64 `yaml:"conquest_pop_kept"`
	ConquestGDPKept      float64 `yaml:"conquest_gdp_kept"`

	// Strategic assignment.
	StrategyPeriodTicks    int     `yaml:"strategy_period_ticks"`
	DefenseBorderRange     int     `yaml:"defense_border_range"`
	DefenseAllocationRatio float64 `yaml:"defense_allocation_ratio"`
	EmptyFavorSplit        float64 `yaml:"empty_favor_split"`
	RearReleaseRatio       float64 `yaml:"rear_release_ratio"`
	IslandAttackRange      float64 `yaml:"island_attack_range"`

	// Advisory cadence.
	AdvisoryPeriodSeconds int `yaml:"advisory_period_seconds"`
}

// DefaultConfig returns the canonical constants.
func DefaultConfig() *Config {
	return &Config{
		Seed:         0,
		CountryCount: 12,

		TicksPerSecond: 30,

		StartPopulation: 10000,
		StartGDP:        1000000,

		PopulationGrowth: 0.01,
		GDPGrowth:        0.05,
		CapitalGDPBoost:  250,
		LowGDPThreshold:  100000,

		ArmyBaseStrength:     2000,
		ArmyMaxStrength:      1000000,
		GDPStrengthMult:      0.001,
		PopCostPerStrength:   0.5,
		GDPCostPerStrength:   2,
		CoastalSpawnFactor:   0.7,
		MaintenancePerSecond: 0.5,
		MilitaryBudgetRatio:  0.3,
		MaxSpawnsPerCycle:    50,

		MoveSpeed:      0.2,
		IsolationDecay: 0.05,
		IsolationFloor: 100,

		BattleMaxSeconds:    2,
		BattleDamageRate:    2,
		BattleGDPFactor:     0.000005,
		DecisiveChance:      0.1,
		DecisiveMult:        10,
		DecisiveWindow:      3,
		DominantLossRate:    0.2,
		OverwhelmedLossRate: 1.5,
		DefenseDecayShare:   0.4,
		IsolationPenalty:    0.01,
		ProvinceDefenseDiv:  2000,
		ConquestPopKept:     0.98,
		ConquestGDPKept:     0.70,

		StrategyPeriodTicks:    15,
		DefenseBorderRange:     1,
		DefenseAllocationRatio: 0.4,
		EmptyFavorSplit:        0.7,
		RearReleaseRatio:       0.7,
		IslandAttackRange:      50,

		AdvisoryPeriodSeconds: 20,
	}
}

// LoadConfig reads a YAML override file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// BattleMaxTicks converts the siege timeout to ticks.
func (c *Config) BattleMaxTicks() int {
	return c.BattleMaxSeconds * c.TicksPerSecond
}
