package engine

import (
	"math"
	"sort"

	"github.com/firecomputer/hegemon/internal/world"
)

// DangerScore ranks a border province by threat: a step per adjacent
// foreign-owned neighbor, plus a heavy bump for the capital and its
// surroundings.
func (s *Simulation) DangerScore(c *Country, id world.ProvinceID) int {
	foreign := 0
	for _, n := range s.World.Get(id).Neighbors {
		owner := s.World.Get(n).Owner
		if owner != world.NoCountry && owner != c.ID {
			foreign++
		}
	}
	score := foreign * 10
	if id == c.Capital || (c.Capital != NoProvince && s.World.Adjacent(id, c.Capital)) {
		score += 50
	}
	return score
}

// assignDefense stations the strongest available armies on the most
// endangered border provinces, one to one in descending danger order.
// Whatever the border does not absorb garrisons at or next to the capital.
func (s *Simulation) assignDefense(c *Country) {
	borders := c.BorderProvinces(s.World)
	if len(borders) == 0 {
		return
	}

	var available []*Army
	for _, a := range c.Armies {
		if a.Mission != MissionDefense && a.Strength > 0 && !a.InBattle {
			available = append(available, a)
		}
	}
	if len(available) == 0 {
		return
	}
	sort.Slice(available, func(i, j int) bool { return available[i].Strength > available[j].Strength })

	quota := int(float64(len(available)) * s.Cfg.DefenseAllocationRatio)
	if quota < 1 {
		quota = 1
	}
	defenders := available[:min(quota, len(available))]

	sort.Slice(borders, func(i, j int) bool {
		return s.DangerScore(c, borders[i]) > s.DangerScore(c, borders[j])
	})

	assigned := 0
	for i, border := range borders {
		if i >= len(defenders) {
			break
		}
		defenders[i].SetDefenseMission(s.World, border, border)
		assigned++
	}

	// Reserve: garrison at or adjacent to the capital.
	if assigned >= len(defenders) || c.Capital == NoProvince {
		return
	}
	area := []world.ProvinceID{c.Capital}
	for _, n := range s.World.Get(c.Capital).Neighbors {
		if s.World.Get(n).Owner == c.ID {
			area = append(area, n)
		}
	}
	for _, a := range defenders[assigned:] {
		a.Mission = MissionGarrison
		a.DefenseTarget = NoProvince
		a.SetTarget(s.World, area[s.RNG.Intn(len(area))])
	}
}

// idleArmies returns armies free for offensive assignment: alive, out of
// battle, not on a defense or garrison tour, and either unordered or
// headed for land that is still unclaimed.
func (s *Simulation) idleArmies(c *Country) []*Army {
	var idle []*Army
	for _, a := range c.Armies {
		if a.Strength <= 0 || a.InBattle {
			continue
		}
		switch a.Mission {
		case MissionDefense, MissionGarrison:
			continue
		case MissionIdle, MissionAttack:
		}
		if a.Target != NoProvince && s.World.Get(a.Target).Owner != world.NoCountry {
			continue
		}
		idle = append(idle, a)
	}
	return idle
}

// canLaunchAt reports whether an owned province may stage an assault on
// the target: adjacency with a connected (or island) launch point, or, for
// island targets, an eligible coastal launch within the island assault range.
func (s *Simulation) canLaunchAt(c *Country, target world.ProvinceID) bool {
	tp := s.World.Get(target)
	for _, owned := range c.Owned {
		op := s.World.Get(owned)
		eligible := op.IsIsland || c.ConnectedToCapital(s.World, owned)
		if !eligible {
			continue
		}
		if !tp.IsIsland && s.World.Adjacent(owned, target) {
			return true
		}
		if tp.IsIsland && op.IsCoastal &&
			s.World.CentroidDist(owned, target) <= s.Cfg.IslandAttackRange {
			return true
		}
	}
	return false
}

// assignOffense first matches idle armies to the nearest reachable
// unclaimed neighbors, then splits what remains between enemy provinces
// and further empty land, favoring whichever category offers more targets.
func (s *Simulation) assignOffense(c *Country) {
	idle := s.idleArmies(c)
	if len(idle) == 0 {
		return
	}
	sort.Slice(idle, func(i, j int) bool { return idle[i].Strength > idle[j].Strength })

	// Empty neighbors of connected territory, with their launch province.
	launch := make(map[world.ProvinceID]world.ProvinceID)
	for _, owned := range c.Owned {
		op := s.World.Get(owned)
		if !op.IsIsland && !c.ConnectedToCapital(s.World, owned) {
			continue
		}
		for _, n := range op.Neighbors {
			if s.World.Get(n).Owner == world.NoCountry {
				if _, seen := launch[n]; !seen {
					launch[n] = owned
				}
			}
		}
	}

	taken := make(map[world.ProvinceID]bool)
	var remaining []*Army
	if len(launch) > 0 {
		quota := min(len(idle), max(len(launch), len(idle)*2/3))
		for i, a := range idle {
			if i >= quota {
				remaining = append(remaining, a)
				continue
			}
			best := NoProvince
			bestDist := math.MaxInt
			for target, from := range launch {
				if taken[target] {
					continue
				}
				hops := s.World.PathLen(a.Province, from)
				if hops >= 0 && hops+1 < bestDist {
					bestDist = hops + 1
					best = target
				}
			}
			if best == NoProvince {
				remaining = append(remaining, a)
				continue
			}
			taken[best] = true
			a.Mission = MissionAttack
			a.SetTarget(s.World, best)
		}
	} else {
		remaining = idle
	}
	if len(remaining) == 0 {
		return
	}

	// Enemy-held provinces we can actually reach.
	var enemyTargets []world.ProvinceID
	for _, p := range s.World.Provinces {
		if p.Owner == world.NoCountry || p.Owner == c.ID || c.Allies[p.Owner] {
			continue
		}
		if s.canLaunchAt(c, p.ID) {
			enemyTargets = append(enemyTargets, p.ID)
		}
	}
	// Remaining empty land, island rules included.
	var emptyTargets []world.ProvinceID
	for _, p := range s.World.Provinces {
		if p.Owner != world.NoCountry || taken[p.ID] {
			continue
		}
		if p.IsIsland && !s.canLaunchAt(c, p.ID) {
			continue
		}
		emptyTargets = append(emptyTargets, p.ID)
	}
	if len(enemyTargets) == 0 && len(emptyTargets) == 0 {
		return
	}

	// The advisory attack target's provinces lead the queue; distance from
	// the first free army breaks ties.
	origin := remaining[0].Pos
	preferred := world.NoCountry
	if t := s.CountryByName(c.Advice.AttackTarget); t != nil {
		preferred = t.ID
	}
	sort.Slice(enemyTargets, func(i, j int) bool {
		pi, pj := s.World.Get(enemyTargets[i]), s.World.Get(enemyTargets[j])
		if (pi.Owner == preferred) != (pj.Owner == preferred) {
			return pi.Owner == preferred
		}
		return origin.Dist(pi.Centroid) < origin.Dist(pj.Centroid)
	})
	sort.Slice(emptyTargets, func(i, j int) bool {
		return origin.Dist(s.World.Get(emptyTargets[i]).Centroid) <
			origin.Dist(s.World.Get(emptyTargets[j]).Centroid)
	})

	var enemyShare float64
	switch {
	case len(enemyTargets) == 0:
		enemyShare = 0
	case len(emptyTargets) == 0:
		enemyShare = 1
	case len(emptyTargets) > len(enemyTargets):
		enemyShare = 1 - s.Cfg.EmptyFavorSplit
	default:
		enemyShare = c.Advice.AttackRatio
	}

	nEnemy := int(math.Ceil(float64(len(remaining)) * enemyShare))
	for i, a := range remaining {
		a.Mission = MissionAttack
		if i < nEnemy {
			a.SetTarget(s.World, enemyTargets[i%len(enemyTargets)])
		} else {
			a.SetTarget(s.World, emptyTargets[(i-nEnemy)%len(emptyTargets)])
		}
	}
}

// redistributeRear releases part of the defense and garrison force sitting
// outside the defense zone: to the nearest empty land while any remains,
// otherwise consolidated into the weakest-held province.
func (s *Simulation) redistributeRear(c *Country) {
	zone := make(map[world.ProvinceID]bool)
	for _, id := range c.DefenseZone(s.World, s.Cfg.DefenseBorderRange) {
		zone[id] = true
	}

	var rear []*Army
	for _, a := range c.Armies {
		if a.Strength <= 0 || a.InBattle {
			continue
		}
		switch a.Mission {
		case MissionDefense, MissionGarrison:
		case MissionIdle, MissionAttack:
			continue
		}
		if !zone[a.Province] {
			rear = append(rear, a)
		}
	}
	if len(rear) == 0 {
		return
	}
	release := int(math.Ceil(float64(len(rear)) * s.Cfg.RearReleaseRatio))
	s.RNG.Shuffle(len(rear), func(i, j int) { rear[i], rear[j] = rear[j], rear[i] })
	rear = rear[:release]

	var empties []world.ProvinceID
	for _, p := range s.World.Provinces {
		if p.Owner == world.NoCountry && (!p.IsIsland || s.canLaunchAt(c, p.ID)) {
			empties = append(empties, p.ID)
		}
	}

	if len(empties) > 0 {
		for _, a := range rear {
			best := empties[0]
			bestDist := a.Pos.Dist(s.World.Get(best).Centroid)
			for _, id := range empties[1:] {
				if d := a.Pos.Dist(s.World.Get(id).Centroid); d < bestDist {
					bestDist = d
					best = id
				}
			}
			a.Mission = MissionAttack
			a.DefenseTarget = NoProvince
			a.SetTarget(s.World, best)
		}
		return
	}

	// Nothing left to claim: merge into the weakest-held province.
	weakest := NoProvince
	weakestStrength := math.MaxInt
	for _, id := range c.Owned {
		total := 0
		for _, a := range c.Armies {
			if a.Province == id {
				total += a.Strength
			}
		}
		if total < weakestStrength {
			weakestStrength = total
			weakest = id
		}
	}
	if weakest == NoProvince {
		return
	}
	for _, a := range rear {
		if a.Province == weakest {
			continue
		}
		a.Mission = MissionGarrison
		a.DefenseTarget = NoProvince
		a.SetTarget(s.World, weakest)
	}
}
