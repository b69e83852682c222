package engine

import (
	"log/slog"
	"sort"

	"github.com/firecomputer/hegemon/internal/advisor"
	"github.com/firecomputer/hegemon/internal/world"
)

// economyStep applies per-logical-second growth: percentage growth on
// every owned province plus a flat boost credited to the capital (or the
// first owned province when the capital is gone). The advisory economy and
// research weights scale the boost and the GDP growth rate relative to the
// default budget split.
func (s *Simulation) economyStep(c *Country) {
	growth := s.Cfg.GDPGrowth * (c.Advice.ResearchRatio / advisor.DefaultResearchRatio)
	for _, id := range c.Owned {
		p := s.World.Get(id)
		p.Population += p.Population * s.Cfg.PopulationGrowth
		p.GDP += p.GDP * growth
	}

	boost := s.Cfg.CapitalGDPBoost * (c.Advice.EconomyRatio / advisor.DefaultEconomyRatio)
	target := c.Capital
	if target == NoProvince || !c.Owns(target) {
		target = c.Owned[0]
	}
	s.World.Get(target).GDP += boost
}

// upkeepStep charges army maintenance through the ledger and disbands the
// weakest armies while the treasury sits below the low-GDP threshold.
// Maintenance still drains what it can when the treasury cannot cover it.
func (s *Simulation) upkeepStep(c *Country) {
	cost := float64(c.TotalArmyStrength()) * s.Cfg.MaintenancePerSecond
	if cost > 0 && !c.DeductGDP(s.World, cost) {
		slog.Debug("maintenance underfunded", "country", c.Name, "cost", cost)
	}

	for c.TotalGDP(s.World) < s.Cfg.LowGDPThreshold && len(c.Armies) > 0 {
		sort.Slice(c.Armies, func(i, j int) bool { return c.Armies[i].Strength < c.Armies[j].Strength })
		disbanded := c.Armies[0]
		c.Armies = c.Armies[1:]
		slog.Debug("army disbanded for lack of funds",
			"country", c.Name, "strength", disbanded.Strength)
	}
}

// spawnStep raises armies inside the military budget: total GDP scaled by
// the budget ratio and the advisory defense weight. Each army is the
// GDP-derived default size, placed on a random capital-connected (or
// island) province; the cycle stops when the budget, the per-cycle cap, or
// the country's real resources run out.
func (s *Simulation) spawnStep(c *Country) {
	budget := c.TotalGDP(s.World) * s.Cfg.MilitaryBudgetRatio *
		(c.Advice.DefenseRatio / advisor.DefaultDefenseRatio)

	spawned := 0
	for spawned < s.Cfg.MaxSpawnsPerCycle {
		strength := c.SpawnStrength(s.World, s.Cfg)
		cost := float64(strength) * s.Cfg.GDPCostPerStrength
		if budget < cost {
			break
		}

		var eligible []world.ProvinceID
		for _, id := range c.Owned {
			if s.World.Get(id).IsIsland || c.ConnectedToCapital(s.World, id) {
				eligible = append(eligible, id)
			}
		}
		if len(eligible) == 0 {
			break
		}

		spawnAt := eligible[s.RNG.Intn(len(eligible))]
		if _, err := c.CreateArmy(s.World, s.Cfg, spawnAt, strength); err != nil {
			break
		}
		budget -= cost
		spawned++
	}
}

// attritionStep weakens armies stationed in provinces cut off from their
// capital and removes those that fall to the supply floor. It also drops
// any army whose strength collapsed outside combat.
func (s *Simulation) attritionStep(c *Country) {
	isolated := make(map[world.ProvinceID]bool)
	for _, id := range c.IsolatedProvinces(s.World) {
		isolated[id] = true
	}
	for _, a := range append([]*Army(nil), c.Armies...) {
		if a.Strength <= 0 {
			c.removeArmy(a)
			continue
		}
		if !isolated[a.Province] {
			continue
		}
		a.Strength = int(float64(a.Strength) * (1 - s.Cfg.IsolationDecay))
		if a.Strength <= s.Cfg.IsolationFloor {
			slog.Debug("isolated army starved out",
				"country", c.Name, "province", a.Province)
			c.removeArmy(a)
		}
	}
}
