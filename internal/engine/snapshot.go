package engine

import (
	"github.com/firecomputer/hegemon/internal/world"
)

// Snapshot is an immutable view of the world published once per tick.
// API handlers and websocket subscribers read it without touching live
// simulation state.
type Snapshot struct {
	Tick      uint64         `json:"tick"`
	Provinces []ProvinceView `json:"provinces"`
	Armies    []ArmyView     `json:"armies"`
	Battles   []BattleView   `json:"battles"`
	Countries []CountryView  `json:"countries"`
}

type ProvinceView struct {
	ID         int      `json:"id"`
	Owner      int      `json:"owner"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Population float64  `json:"population"`
	GDP        float64  `json:"gdp"`
	IsIsland   bool     `json:"is_island,omitempty"`
	IsCoastal  bool     `json:"is_coastal,omitempty"`
	Contested  bool     `json:"contested,omitempty"`
	Isolated   bool     `json:"isolated,omitempty"`
}

type ArmyView struct {
	ID       string  `json:"id"`
	Owner    int     `json:"owner"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Strength int     `json:"strength"`
	Mission  string  `json:"mission"`
	InBattle bool    `json:"in_battle,omitempty"`
	Moving   bool    `json:"moving,omitempty"`
}

type BattleView struct {
	ID        string `json:"id"`
	Province  int    `json:"province"`
	Attackers int    `json:"attackers"`
	Defenders int    `json:"defenders"`
	Defense   int    `json:"defense"`
	Duration  int    `json:"duration"`
}

type CountryView struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Color        [3]uint8 `json:"color"`
	Capital      int      `json:"capital"`
	Provinces    int      `json:"provinces"`
	Population   float64  `json:"population"`
	GDP          float64  `json:"gdp"`
	ArmyStrength int      `json:"army_strength"`
	Active       bool     `json:"active"`
	Allies       []string `json:"allies,omitempty"`
	Enemies      []string `json:"enemies,omitempty"`
}

// publishSnapshot rebuilds the published view from live state. Runs on
// the tick goroutine; readers go through Snapshot().
func (s *Simulation) publishSnapshot(tick uint64) {
	snap := &Snapshot{Tick: tick}

	isolated := make(map[world.ProvinceID]bool)
	for _, c := range s.Countries {
		for _, id := range c.IsolatedProvinces(s.World) {
			isolated[id] = true
		}
	}

	snap.Provinces = make([]ProvinceView, 0, s.World.Count())
	for _, p := range s.World.Provinces {
		snap.Provinces = append(snap.Provinces, ProvinceView{
			ID:         int(p.ID),
			Owner:      int(p.Owner),
			X:          p.Centroid.X,
			Y:          p.Centroid.Y,
			Population: p.Population,
			GDP:        p.GDP,
			IsIsland:   p.IsIsland,
			IsCoastal:  p.IsCoastal,
			Contested:  s.Battles.At(p.ID) != nil,
			Isolated:   isolated[p.ID],
		})
	}

	for _, c := range s.Countries {
		for _, a := range c.Armies {
			snap.Armies = append(snap.Armies, ArmyView{
				ID:       a.ID.String(),
				Owner:    int(a.Owner),
				X:        a.Pos.X,
				Y:        a.Pos.Y,
				Strength: a.Strength,
				Mission:  a.Mission.String(),
				InBattle: a.InBattle,
				Moving:   a.Moving,
			})
		}

		view := CountryView{
			ID:           int(c.ID),
			Name:         c.Name,
			Color:        c.Color,
			Capital:      int(c.Capital),
			Provinces:    len(c.Owned),
			Population:   c.TotalPopulation(s.World),
			GDP:          c.TotalGDP(s.World),
			ArmyStrength: c.TotalArmyStrength(),
			Active:       c.Active(),
		}
		for id, ok := range c.Allies {
			if ok {
				if other := s.Country(id); other != nil {
					view.Allies = append(view.Allies, other.Name)
				}
			}
		}
		for id, ok := range c.Enemies {
			if ok {
				if other := s.Country(id); other != nil {
					view.Enemies = append(view.Enemies, other.Name)
				}
			}
		}
		snap.Countries = append(snap.Countries, view)
	}

	for _, b := range s.Battles.Active {
		attackers, defenders := 0, 0
		for _, a := range b.Attackers {
			attackers += a.Strength
		}
		for _, d := range b.Defenders {
			defenders += d.Strength
		}
		snap.Battles = append(snap.Battles, BattleView{
			ID:        b.ID.String(),
			Province:  int(b.Province),
			Attackers: attackers,
			Defenders: defenders,
			Defense:   int(b.Defense),
			Duration:  b.Duration,
		})
	}

	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()
}

// Snapshot returns the most recently published world view, or nil before
// the first tick.
func (s *Simulation) Snapshot() *Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}
