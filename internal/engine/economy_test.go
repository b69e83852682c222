package engine

import (
	"testing"
)

func TestEconomyStepGrowsProvincesAndBoostsCapital(t *testing.T) {
	m := stripMap(2)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 1)
	m.Get(1).Population = 2000
	m.Get(1).GDP = 50000

	s.economyStep(c)

	if got, want := m.Get(0).Population, 10000*1.01; got != want {
		t.Errorf("capital population = %v, want %v", got, want)
	}
	if got, want := m.Get(0).GDP, 1e6*1.05+s.Cfg.CapitalGDPBoost; got != want {
		t.Errorf("capital GDP = %v, want %v", got, want)
	}
	if got, want := m.Get(1).Population, 2000*1.01; got != want {
		t.Errorf("province population = %v, want %v", got, want)
	}
	if got, want := m.Get(1).GDP, 50000*1.05; got != want {
		t.Errorf("province GDP = %v, want %v", got, want)
	}
}

func TestEconomyStepScalesWithAdvice(t *testing.T) {
	m := stripMap(1)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)

	// Doubling both civilian weights doubles the growth rate and the boost.
	c.Advice.ResearchRatio = 0.6
	c.Advice.EconomyRatio = 0.6

	s.economyStep(c)

	if got, want := m.Get(0).GDP, 1e6*1.10+2*s.Cfg.CapitalGDPBoost; got != want {
		t.Errorf("GDP = %v, want %v", got, want)
	}
}

func TestEconomyBoostFallsBackWhenCapitalLost(t *testing.T) {
	m := stripMap(2)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 1)
	m.Get(1).GDP = 1000
	c.Capital = NoProvince

	s.economyStep(c)

	if got, want := m.Get(0).GDP, 1e6*1.05+s.Cfg.CapitalGDPBoost; got != want {
		t.Errorf("first owned province GDP = %v, want boost despite lost capital (%v)", got, want)
	}
}

func TestUpkeepChargesMaintenance(t *testing.T) {
	m := stripMap(1)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.Armies = []*Army{NewArmy(c.ID, 0, 2000, m.Get(0).Centroid)}

	s.upkeepStep(c)

	if got, want := c.TotalGDP(m), 1e6-2000*s.Cfg.MaintenancePerSecond; got != want {
		t.Errorf("treasury = %v, want %v", got, want)
	}
	if len(c.Armies) != 1 {
		t.Error("solvent country should keep its army")
	}
}

func TestUpkeepDisbandsWhenBroke(t *testing.T) {
	m := stripMap(1)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	m.Get(0).GDP = 50000
	c.Armies = []*Army{
		NewArmy(c.ID, 0, 1000, m.Get(0).Centroid),
		NewArmy(c.ID, 0, 500, m.Get(0).Centroid),
	}

	s.upkeepStep(c)

	if len(c.Armies) != 0 {
		t.Errorf("armies left = %d, want full disband below the GDP floor", len(c.Armies))
	}
	if got, want := c.TotalGDP(m), 50000-1500*s.Cfg.MaintenancePerSecond; got != want {
		t.Errorf("treasury = %v, want %v", got, want)
	}
}

func TestSpawnStepStaysInsideBudget(t *testing.T) {
	m := stripMap(1)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	m.Get(0).GDP = 20000

	// Budget 6000 covers exactly one default-strength army.
	s.spawnStep(c)

	if len(c.Armies) != 1 {
		t.Fatalf("armies = %d, want 1", len(c.Armies))
	}
	if got, want := c.Armies[0].Strength, 2020; got != want {
		t.Errorf("strength = %d, want GDP-derived %d", got, want)
	}
}

func TestSpawnStepAvoidsIsolatedProvinces(t *testing.T) {
	m := stripMap(3)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 2)
	addCountry(s, "Khemet", 1)
	m.Get(0).GDP = 20000

	s.spawnStep(c)

	if len(c.Armies) != 1 {
		t.Fatalf("armies = %d, want 1", len(c.Armies))
	}
	if c.Armies[0].Province != 0 {
		t.Errorf("spawned at %d, want the connected province 0", c.Armies[0].Province)
	}
}

func TestAttritionDecaysIsolatedArmies(t *testing.T) {
	m := stripMap(3)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 2)
	addCountry(s, "Khemet", 1)

	home := NewArmy(c.ID, 0, 1000, m.Get(0).Centroid)
	cutOff := NewArmy(c.ID, 2, 1000, m.Get(2).Centroid)
	c.Armies = []*Army{home, cutOff}

	s.attritionStep(c)

	if home.Strength != 1000 {
		t.Errorf("supplied army strength = %d, want untouched 1000", home.Strength)
	}
	if got, want := cutOff.Strength, int(1000*(1-s.Cfg.IsolationDecay)); got != want {
		t.Errorf("isolated army strength = %d, want %d", got, want)
	}
}

func TestAttritionStarvesOutAtFloor(t *testing.T) {
	m := stripMap(3)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 2)
	addCountry(s, "Khemet", 1)

	cutOff := NewArmy(c.ID, 2, 105, m.Get(2).Centroid)
	dead := NewArmy(c.ID, 0, 0, m.Get(0).Centroid)
	c.Armies = []*Army{cutOff, dead}

	s.attritionStep(c)

	if len(c.Armies) != 0 {
		t.Errorf("armies = %d, want both removed (starved and zero strength)", len(c.Armies))
	}
}
