// Package world provides the province graph: fixed territorial units derived
// from a land mask, with adjacency edges and island/coastal flags.
package world

import (
	"fmt"
	"math"
)

// ProvinceID indexes into Map.Provinces. Province IDs are assigned once at
// world generation and never reused.
type ProvinceID int

// CountryID identifies a country in the simulation's country table.
type CountryID int

// NoCountry marks an unowned province.
const NoCountry CountryID = -1

// Point is a tile-space coordinate. Province centroids and army positions
// live in this space; the renderer scales it however it likes.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the straight-line distance to q.
func (p Point) Dist(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Province is the indivisible territorial unit. Tile membership, centroid,
// adjacency, and the island/coastal flags are fixed at world generation;
// only Owner, Population, and GDP mutate afterwards.
type Province struct {
	ID        ProvinceID   `json:"id"`
	TileCount int          `json:"tile_count"`
	Centroid  Point        `json:"centroid"`
	Neighbors []ProvinceID `json:"neighbors"`
	IsIsland  bool         `json:"is_island"`
	IsCoastal bool         `json:"is_coastal"`

	Owner      CountryID `json:"owner"`
	Population float64   `json:"population"`
	GDP        float64   `json:"gdp"`
}

// String returns a short identifier for logs.
func (p *Province) String() string {
	return fmt.Sprintf("province %d", p.ID)
}

// Map holds the full province graph.
type Map struct {
	Provinces []*Province
}

// Get returns the province with the given ID, or nil if out of range.
func (m *Map) Get(id ProvinceID) *Province {
	if id < 0 || int(id) >= len(m.Provinces) {
		return nil
	}
	return m.Provinces[id]
}

// Count returns the number of provinces.
func (m *Map) Count() int {
	return len(m.Provinces)
}

// Adjacent reports whether a and b share an edge.
func (m *Map) Adjacent(a, b ProvinceID) bool {
	pa := m.Get(a)
	if pa == nil {
		return false
	}
	for _, n := range pa.Neighbors {
		if n == b {
			return true
		}
	}
	return false
}

// CentroidDist returns the straight-line distance between two province
// centroids. Used for retreats and island-assault range checks.
func (m *Map) CentroidDist(a, b ProvinceID) float64 {
	pa, pb := m.Get(a), m.Get(b)
	if pa == nil || pb == nil {
		return math.Inf(1)
	}
	return pa.Centroid.Dist(pb.Centroid)
}

// PathLen returns the BFS hop count from start to end walking only edges
// whose far endpoint shares start's owner (the end province itself is
// exempt from the ownership test, so a path may terminate on foreign or
// empty land). Returns -1 when unreachable.
func (m *Map) PathLen(start, end ProvinceID) int {
	if start == end {
		return 0
	}
	sp := m.Get(start)
	if sp == nil || m.Get(end) == nil {
		return -1
	}
	visited := make(map[ProvinceID]bool, len(m.Provinces))
	visited[start] = true
	type hop struct {
		id   ProvinceID
		dist int
	}
	queue := []hop{{start, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range m.Get(cur.id).Neighbors {
			if n == end {
				return cur.dist + 1
			}
			if !visited[n] && m.Get(n).Owner == sp.Owner {
				visited[n] = true
				queue = append(queue, hop{n, cur.dist + 1})
			}
		}
	}
	return -1
}
