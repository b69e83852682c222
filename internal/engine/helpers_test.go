package engine

import (
	"github.com/firecomputer/hegemon/internal/world"
)

// stripMap builds n provinces in a chain, 10 units apart on the x axis.
func stripMap(n int) *world.Map {
	m := &world.Map{}
	for i := 0; i < n; i++ {
		p := &world.Province{
			ID:        world.ProvinceID(i),
			TileCount: 10,
			Centroid:  world.Point{X: float64(i * 10), Y: 0},
			Owner:     world.NoCountry,
		}
		if i > 0 {
			p.Neighbors = append(p.Neighbors, world.ProvinceID(i-1))
			m.Provinces[i-1].Neighbors = append(m.Provinces[i-1].Neighbors, p.ID)
		}
		m.Provinces = append(m.Provinces, p)
	}
	return m
}

// testConfig is the canonical config with a fixed seed and no decisive
// battle rolls, so outcomes are deterministic in shape.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.DecisiveChance = 0
	return cfg
}

// newTestSim wraps a map in a simulation with the test config.
func newTestSim(m *world.Map) *Simulation {
	return NewSimulation(m, testConfig())
}

// addCountry seeds a country at the given province with the standard
// starting resources and registers it with the simulation.
func addCountry(s *Simulation, name string, start world.ProvinceID) *Country {
	id := world.CountryID(len(s.Countries))
	c := NewCountry(s.World, id, name, [3]uint8{uint8(id) * 40, 100, 200}, start,
		s.Cfg.StartPopulation, s.Cfg.StartGDP)
	s.Countries = append(s.Countries, c)
	return c
}
