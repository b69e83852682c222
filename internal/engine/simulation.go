// Package engine runs the territorial simulation: countries accumulate
// population and GDP over their provinces, raise and move armies, and
// resolve conquest through multi-tick battles.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/firecomputer/hegemon/internal/advisor"
	"github.com/firecomputer/hegemon/internal/world"
)

// Simulation owns every entity collection: the province graph, the country
// table, and the battle manager. It is created once at world generation and
// mutated only by Step: one discrete step per frame, with no interleaving
// inside a tick.
type Simulation struct {
	World     *world.Map
	Countries []*Country
	Battles   *BattleManager
	Cfg       *Config
	RNG       *rand.Rand
	LastTick  uint64

	// Advisor is the asynchronous advisory collaborator; nil leaves every
	// country on the default decision.
	Advisor *advisor.Advisor
	pending map[world.CountryID]advisor.Handle

	snapMu sync.RWMutex
	snap   *Snapshot
}

// NewSimulation creates a simulation over a generated province map.
func NewSimulation(w *world.Map, cfg *Config) *Simulation {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Simulation{
		World:   w,
		Battles: NewBattleManager(),
		Cfg:     cfg,
		RNG:     rand.New(rand.NewSource(seed)),
		pending: make(map[world.CountryID]advisor.Handle),
	}
}

// Country returns the country with the given ID, or nil.
func (s *Simulation) Country(id world.CountryID) *Country {
	if id < 0 || int(id) >= len(s.Countries) {
		return nil
	}
	return s.Countries[int(id)]
}

// CountryByName resolves an advisory target name. Empty result for
// unknown names.
func (s *Simulation) CountryByName(name string) *Country {
	for _, c := range s.Countries {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// SeedCountries places one country per name on a random unowned,
// non-island province. Countries that cannot be placed are skipped.
func (s *Simulation) SeedCountries(names []string) {
	for _, name := range names {
		var free []world.ProvinceID
		for _, p := range s.World.Provinces {
			if p.Owner == world.NoCountry && !p.IsIsland {
				free = append(free, p.ID)
			}
		}
		if len(free) == 0 {
			slog.Warn("no free starting province", "country", name)
			break
		}
		start := free[s.RNG.Intn(len(free))]
		color := [3]uint8{uint8(s.RNG.Intn(256)), uint8(s.RNG.Intn(256)), uint8(s.RNG.Intn(256))}
		c := NewCountry(s.World, world.CountryID(len(s.Countries)), name, color, start,
			s.Cfg.StartPopulation, s.Cfg.StartGDP)
		s.Countries = append(s.Countries, c)
	}
	slog.Info("countries seeded", "count", len(s.Countries), "provinces", s.World.Count())
}

// Step advances the simulation one tick. The within-tick order is fixed:
// economy, maintenance and disbandment, army creation, isolation decay and
// cleanup, movement and engagement, strategic re-assignment, battle
// advancement.
func (s *Simulation) Step(tick uint64) {
	s.LastTick = tick
	secondBoundary := tick%uint64(s.Cfg.TicksPerSecond) == 0

	if secondBoundary {
		for _, c := range s.Countries {
			if c.Active() {
				s.economyStep(c)
			}
		}
		for _, c := range s.Countries {
			if c.Active() {
				s.upkeepStep(c)
			}
		}
		for _, c := range s.Countries {
			if c.Active() {
				s.spawnStep(c)
			}
		}
		for _, c := range s.Countries {
			s.attritionStep(c)
		}
	}

	for _, c := range s.Countries {
		s.sweepStep(c)
	}
	for _, c := range s.Countries {
		s.movementStep(c)
	}

	if s.Cfg.StrategyPeriodTicks > 0 && tick%uint64(s.Cfg.StrategyPeriodTicks) == 0 {
		for _, c := range s.Countries {
			if c.Active() {
				s.assignDefense(c)
				s.assignOffense(c)
				s.redistributeRear(c)
			}
		}
	}

	s.Battles.AdvanceAll(s)

	s.advisoryStep(tick)

	s.publishSnapshot(tick)

	if secondBoundary && tick%uint64(s.Cfg.TicksPerSecond*30) == 0 {
		s.logReport(tick)
	}
}

// movementStep advances every army's interpolation and triggers arrival
// actions. Dead armies are dropped before anything else.
func (s *Simulation) movementStep(c *Country) {
	for _, a := range append([]*Army(nil), c.Armies...) {
		if a.Strength <= 0 {
			c.removeArmy(a)
			continue
		}
		arrived := a.UpdateMovement(s.World, c, s.Cfg)
		if arrived && !containsArmy(c.Armies, a) {
			// Merged into a stronger army on arrival. The survivor picks
			// up the engagement on the next sweep.
			continue
		}
		if !a.Moving && a.Target != NoProvince && a.Province == a.Target {
			s.engage(c, a)
		}
	}
}

// sweepStep discards armies with invalid province references and initiates
// combat for armies parked on hostile territory that have not engaged yet.
func (s *Simulation) sweepStep(c *Country) {
	for _, a := range append([]*Army(nil), c.Armies...) {
		p := s.World.Get(a.Province)
		if p == nil {
			slog.Warn("army with invalid province swept", "country", c.Name)
			c.removeArmy(a)
			continue
		}
		if p.Owner != world.NoCountry && p.Owner != c.ID && !c.Allies[p.Owner] &&
			!a.Moving && !a.InBattle && !a.Engaged {
			a.Engaged = true
			s.engage(c, a)
		}
	}
}

// engage resolves an army's action in its current province: claim empty
// land, stand down on friendly or allied soil, or open combat.
func (s *Simulation) engage(c *Country, a *Army) {
	p := s.World.Get(a.Province)

	if p.Owner == world.NoCountry {
		c.AddProvince(s.World, a.Province)
		switch a.Mission {
		case MissionDefense:
			// Claiming empty land en route does not end a defense tour.
		case MissionIdle, MissionAttack, MissionGarrison:
			a.ClearOrders()
		}
		a.InBattle = false
		a.Engaged = false
		slog.Debug("empty province claimed", "country", c.Name, "province", p.ID)
		return
	}

	if a.InBattle {
		// A defense army dragged into a fight it was never assigned to
		// pulls back instead.
		if a.Mission == MissionDefense && p.Owner != c.ID && a.Province != a.DefenseTarget {
			a.Retreat(s.World, c)
		}
		return
	}

	if p.Owner == c.ID || c.Allies[p.Owner] {
		switch a.Mission {
		case MissionDefense:
			// Staged and waiting.
		case MissionIdle, MissionAttack, MissionGarrison:
			a.ClearOrders()
		}
		a.Engaged = false
		return
	}

	// Hostile province. Defense armies only fight over their assigned
	// target.
	if a.Mission == MissionDefense && a.Province != a.DefenseTarget {
		a.Retreat(s.World, c)
		return
	}

	enemy := s.Country(p.Owner)
	var defenders []*Army
	if enemy != nil {
		for _, d := range enemy.Armies {
			if d.Province == a.Province && d.Strength > 0 {
				defenders = append(defenders, d)
			}
		}
	}
	defense := p.Population / s.Cfg.ProvinceDefenseDiv
	s.Battles.Start(s, a.Province, []*Army{a}, defenders, defense)
}

// advisoryStep polls outstanding advisory requests and launches a new
// round on the advisory period. A request still pending when the next
// round starts is stale and simply discarded.
func (s *Simulation) advisoryStep(tick uint64) {
	if s.Advisor == nil {
		return
	}

	for cid, h := range s.pending {
		dec, done := s.Advisor.Poll(h)
		if !done {
			continue
		}
		delete(s.pending, cid)
		if dec == nil {
			continue
		}
		c := s.Country(cid)
		if c == nil || !c.Active() {
			continue
		}
		c.Advice = *dec
		s.applyDiplomacy(c, dec)
	}

	period := uint64(s.Cfg.AdvisoryPeriodSeconds * s.Cfg.TicksPerSecond)
	if period == 0 || tick%period != 0 {
		return
	}
	for _, c := range s.Countries {
		if !c.Active() {
			continue
		}
		if h, ok := s.pending[c.ID]; ok {
			s.Advisor.Discard(h)
			slog.Debug("stale advisory discarded", "country", c.Name)
		}
		s.pending[c.ID] = s.Advisor.Submit(s.advisoryState(c))
	}
}

// advisoryState summarizes the world from one country's point of view.
func (s *Simulation) advisoryState(c *Country) advisor.State {
	st := advisor.State{
		CountryName: c.Name,
		Tick:        s.LastTick,
	}
	for _, other := range s.Countries {
		if !other.Active() {
			continue
		}
		st.Countries = append(st.Countries, advisor.CountryState{
			Name:         other.Name,
			Provinces:    len(other.Owned),
			Population:   other.TotalPopulation(s.World),
			GDP:          other.TotalGDP(s.World),
			ArmyStrength: other.TotalArmyStrength(),
			IsSelf:       other.ID == c.ID,
			IsAlly:       c.Allies[other.ID],
			IsEnemy:      c.Enemies[other.ID],
		})
	}
	return st
}

// applyDiplomacy mutates the symmetric ally/enemy sets from a validated
// decision. Ally and enemy are mutually exclusive per pair.
func (s *Simulation) applyDiplomacy(c *Country, dec *advisor.Decision) {
	if target := s.CountryByName(dec.DeclareWarTarget); target != nil && target.ID != c.ID {
		delete(c.Allies, target.ID)
		delete(target.Allies, c.ID)
		c.Enemies[target.ID] = true
		target.Enemies[c.ID] = true
		slog.Info("war declared", "by", c.Name, "on", target.Name)
	}
	if target := s.CountryByName(dec.AllianceTarget); target != nil && target.ID != c.ID && !c.Enemies[target.ID] {
		c.Allies[target.ID] = true
		target.Allies[c.ID] = true
		slog.Info("alliance formed", "between", c.Name, "and", target.Name)
	}
	if target := s.CountryByName(dec.TruceTarget); target != nil && target.ID != c.ID {
		delete(c.Enemies, target.ID)
		delete(target.Enemies, c.ID)
		slog.Info("truce agreed", "between", c.Name, "and", target.Name)
	}
}

// logReport emits a periodic per-country summary.
func (s *Simulation) logReport(tick uint64) {
	for _, c := range s.Countries {
		if !c.Active() {
			continue
		}
		slog.Info("country report",
			"tick", tick,
			"country", c.Name,
			"provinces", len(c.Owned),
			"population", humanize.Comma(int64(c.TotalPopulation(s.World))),
			"gdp", humanize.Comma(int64(c.TotalGDP(s.World))),
			"armies", len(c.Armies),
			"strength", humanize.Comma(int64(c.TotalArmyStrength())),
			"battles", len(s.Battles.Active),
		)
	}
}

// CheckInvariants verifies the ownership bijection; it is a test and
// debugging aid, not part of the tick path.
func (s *Simulation) CheckInvariants() error {
	for _, c := range s.Countries {
		for _, id := range c.Owned {
			if s.World.Get(id).Owner != c.ID {
				return fmt.Errorf("province %d in %s's list but owned by %d", id, c.Name, s.World.Get(id).Owner)
			}
		}
		if c.Capital != NoProvince && !c.Owns(c.Capital) {
			return fmt.Errorf("%s capital %d not in owned set", c.Name, c.Capital)
		}
	}
	for _, p := range s.World.Provinces {
		if p.Owner == world.NoCountry {
			continue
		}
		c := s.Country(p.Owner)
		if c == nil || !c.Owns(p.ID) {
			return fmt.Errorf("province %d claims owner %d who does not list it", p.ID, p.Owner)
		}
	}
	return nil
}
