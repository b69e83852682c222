package engine

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/firecomputer/hegemon/internal/advisor"
	"github.com/firecomputer/hegemon/internal/world"
)

// NoProvince marks an unset province reference (no capital, no target).
const NoProvince world.ProvinceID = -1

// Country owns provinces and armies. The province back-reference is the
// country's ID; the invariant p.Owner == c.ID iff p in c.Owned holds at
// every tick boundary.
type Country struct {
	ID      world.CountryID
	Name    string
	Color   [3]uint8
	Capital world.ProvinceID
	Owned   []world.ProvinceID
	Armies  []*Army

	// Diplomatic standing. Symmetric across countries and mutually
	// exclusive per pair.
	Allies  map[world.CountryID]bool
	Enemies map[world.CountryID]bool

	// Latest validated advisory decision (defaults until the first
	// advisory round-trip completes).
	Advice advisor.Decision
}

// NewCountry seeds a country on its starting province, assigning the
// starting population and GDP to that province.
func NewCountry(w *world.Map, id world.CountryID, name string, color [3]uint8, start world.ProvinceID, pop, gdp float64) *Country {
	c := &Country{
		ID:      id,
		Name:    name,
		Color:   color,
		Capital: start,
		Allies:  make(map[world.CountryID]bool),
		Enemies: make(map[world.CountryID]bool),
		Advice:  advisor.DefaultDecision(),
	}
	c.AddProvince(w, start)
	p := w.Get(start)
	p.Population = pop
	p.GDP = gdp
	return c
}

// Owns reports whether the country owns the province.
func (c *Country) Owns(id world.ProvinceID) bool {
	for _, p := range c.Owned {
		if p == id {
			return true
		}
	}
	return false
}

// Active reports whether the country still holds territory.
func (c *Country) Active() bool {
	return len(c.Owned) > 0
}

// AddProvince takes ownership of a province, keeping its current
// population and GDP.
func (c *Country) AddProvince(w *world.Map, id world.ProvinceID) {
	p := w.Get(id)
	if p == nil || c.Owns(id) {
		return
	}
	p.Owner = c.ID
	c.Owned = append(c.Owned, id)
}

// RemoveProvince releases a province. Its population and GDP reset to zero
// the instant it loses an owner; losing the capital relocates it.
func (c *Country) RemoveProvince(w *world.Map, id world.ProvinceID, rng *rand.Rand) {
	if id == c.Capital {
		c.relocateCapital(w, rng)
	}
	p := w.Get(id)
	if p != nil && p.Owner == c.ID {
		p.Owner = world.NoCountry
		p.Population = 0
		p.GDP = 0
	}
	for i, owned := range c.Owned {
		if owned == id {
			c.Owned = append(c.Owned[:i], c.Owned[i+1:]...)
			break
		}
	}
}

// relocateCapital picks a new capital among the remaining provinces,
// preferring inland (non-island, non-coastal) ones. A country with nothing
// left has no capital.
func (c *Country) relocateCapital(w *world.Map, rng *rand.Rand) {
	var candidates, inland []world.ProvinceID
	for _, id := range c.Owned {
		if id == c.Capital {
			continue
		}
		candidates = append(candidates, id)
		p := w.Get(id)
		if !p.IsIsland && !p.IsCoastal {
			inland = append(inland, id)
		}
	}
	switch {
	case len(inland) > 0:
		c.Capital = inland[rng.Intn(len(inland))]
	case len(candidates) > 0:
		c.Capital = candidates[rng.Intn(len(candidates))]
	default:
		c.Capital = NoProvince
		slog.Info("country lost its last territory", "country", c.Name)
		return
	}
	slog.Info("capital relocated", "country", c.Name, "capital", c.Capital)
}

// ConnectedToCapital reports whether a province can reach the capital over
// same-owner edges. The capital trivially qualifies; islands qualify
// unconditionally.
func (c *Country) ConnectedToCapital(w *world.Map, id world.ProvinceID) bool {
	if c.Capital == NoProvince || !c.Owns(id) {
		return false
	}
	if id == c.Capital {
		return true
	}
	if w.Get(id).IsIsland {
		return true
	}
	visited := map[world.ProvinceID]bool{c.Capital: true}
	queue := []world.ProvinceID{c.Capital}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range w.Get(cur).Neighbors {
			if visited[n] || w.Get(n).Owner != c.ID {
				continue
			}
			if n == id {
				return true
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	return false
}

// IsolatedProvinces returns owned, non-island provinces cut off from the
// capital. With no capital at all, everything owned counts as isolated.
func (c *Country) IsolatedProvinces(w *world.Map) []world.ProvinceID {
	if c.Capital == NoProvince {
		out := make([]world.ProvinceID, len(c.Owned))
		copy(out, c.Owned)
		return out
	}
	var isolated []world.ProvinceID
	for _, id := range c.Owned {
		if !w.Get(id).IsIsland && !c.ConnectedToCapital(w, id) {
			isolated = append(isolated, id)
		}
	}
	return isolated
}

// TotalPopulation sums population over owned provinces.
func (c *Country) TotalPopulation(w *world.Map) float64 {
	var total float64
	for _, id := range c.Owned {
		total += w.Get(id).Population
	}
	return total
}

// TotalGDP sums GDP over owned provinces.
func (c *Country) TotalGDP(w *world.Map) float64 {
	var total float64
	for _, id := range c.Owned {
		total += w.Get(id).GDP
	}
	return total
}

// TotalArmyStrength sums strength over living armies.
func (c *Country) TotalArmyStrength() int {
	total := 0
	for _, a := range c.Armies {
		if a.Strength > 0 {
			total += a.Strength
		}
	}
	return total
}

// DeductPopulation removes amount from owned provinces, draining the
// largest first. Province values mutate even when the full amount cannot
// be covered; the return value reports whether it was.
func (c *Country) DeductPopulation(w *world.Map, amount float64) bool {
	return c.deduct(w, amount, func(p *world.Province) *float64 { return &p.Population })
}

// DeductGDP removes amount from owned provinces, draining the largest
// first, with the same partial-failure contract as DeductPopulation.
func (c *Country) DeductGDP(w *world.Map, amount float64) bool {
	return c.deduct(w, amount, func(p *world.Province) *float64 { return &p.GDP })
}

func (c *Country) deduct(w *world.Map, amount float64, field func(*world.Province) *float64) bool {
	remaining := amount
	sorted := make([]*world.Province, 0, len(c.Owned))
	for _, id := range c.Owned {
		sorted = append(sorted, w.Get(id))
	}
	sort.Slice(sorted, func(i, j int) bool {
		return *field(sorted[i]) > *field(sorted[j])
	})
	for _, p := range sorted {
		if remaining <= 0 {
			break
		}
		v := field(p)
		take := min(*v, remaining)
		*v -= take
		remaining -= take
	}
	return remaining <= 0
}

// BorderProvinces returns owned provinces adjacent to at least one
// province held by a different country.
func (c *Country) BorderProvinces(w *world.Map) []world.ProvinceID {
	var borders []world.ProvinceID
	for _, id := range c.Owned {
		for _, n := range w.Get(id).Neighbors {
			owner := w.Get(n).Owner
			if owner != world.NoCountry && owner != c.ID {
				borders = append(borders, id)
				break
			}
		}
	}
	return borders
}

// DefenseZone returns the border provinces unioned with extra BFS layers
// of owned territory behind them.
func (c *Country) DefenseZone(w *world.Map, layers int) []world.ProvinceID {
	zone := make(map[world.ProvinceID]bool)
	for _, id := range c.BorderProvinces(w) {
		zone[id] = true
	}
	for i := 0; i < layers; i++ {
		next := make([]world.ProvinceID, 0)
		for id := range zone {
			for _, n := range w.Get(id).Neighbors {
				if w.Get(n).Owner == c.ID && !zone[n] {
					next = append(next, n)
				}
			}
		}
		for _, id := range next {
			zone[id] = true
		}
	}
	out := make([]world.ProvinceID, 0, len(zone))
	for id := range zone {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ConsolidateArmies merges all of the country's armies standing in a
// province into the strongest one, removing the rest.
func (c *Country) ConsolidateArmies(id world.ProvinceID) {
	var present []*Army
	for _, a := range c.Armies {
		if a.Province == id && a.Strength > 0 && !a.Moving {
			present = append(present, a)
		}
	}
	if len(present) <= 1 {
		return
	}
	sort.Slice(present, func(i, j int) bool { return present[i].Strength > present[j].Strength })
	main := present[0]
	merged := 0
	for _, a := range present[1:] {
		main.Strength += a.Strength
		merged++
		c.removeArmy(a)
	}
	slog.Debug("armies consolidated",
		"country", c.Name, "province", id, "merged", merged, "strength", main.Strength)
}

func (c *Country) removeArmy(a *Army) {
	for i, other := range c.Armies {
		if other == a {
			c.Armies = append(c.Armies[:i], c.Armies[i+1:]...)
			return
		}
	}
}

// SpawnStrength computes the GDP-derived default army size.
func (c *Country) SpawnStrength(w *world.Map, cfg *Config) int {
	s := cfg.ArmyBaseStrength + int(c.TotalGDP(w)*cfg.GDPStrengthMult)
	if s > cfg.ArmyMaxStrength {
		s = cfg.ArmyMaxStrength
	}
	return s
}

// CreateArmy raises an army in the given province, charging population and
// GDP through the ledger. All-or-nothing: any failure leaves both resources
// untouched. strength <= 0 means the GDP-derived default size. Coastal
// provinces yield only a fraction of the requested strength.
func (c *Country) CreateArmy(w *world.Map, cfg *Config, id world.ProvinceID, strength int) (*Army, error) {
	p := w.Get(id)
	if p == nil {
		return nil, ErrNoProvince
	}
	if !p.IsIsland && !c.ConnectedToCapital(w, id) {
		return nil, ErrIsolatedProvince
	}

	if strength <= 0 {
		strength = c.SpawnStrength(w, cfg)
	}
	actual := strength
	if p.IsCoastal {
		actual = int(float64(strength) * cfg.CoastalSpawnFactor)
	}

	popCost := float64(actual) * cfg.PopCostPerStrength
	gdpCost := float64(actual) * cfg.GDPCostPerStrength
	if c.TotalPopulation(w) < popCost || c.TotalGDP(w) < gdpCost {
		return nil, ErrInsufficientResources
	}
	c.DeductPopulation(w, popCost)
	c.DeductGDP(w, gdpCost)

	a := NewArmy(c.ID, id, actual, p.Centroid)
	c.Armies = append(c.Armies, a)
	slog.Debug("army raised",
		"country", c.Name, "province", id, "strength", actual, "coastal", p.IsCoastal)
	return a, nil
}
