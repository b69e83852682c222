package world

import (
	"math"
	"testing"
)

// lineMap returns n provinces in a row, each adjacent to its neighbors,
// with centroids at x = 0..n-1.
func lineMap(n int) *Map {
	m := &Map{}
	for i := 0; i < n; i++ {
		p := &Province{
			ID:       ProvinceID(i),
			Centroid: Point{X: float64(i)},
			Owner:    NoCountry,
		}
		if i > 0 {
			p.Neighbors = append(p.Neighbors, ProvinceID(i-1))
		}
		if i < n-1 {
			p.Neighbors = append(p.Neighbors, ProvinceID(i+1))
		}
		m.Provinces = append(m.Provinces, p)
	}
	return m
}

func TestPathLenWalksSameOwnerEdges(t *testing.T) {
	m := lineMap(5)
	for _, p := range m.Provinces {
		p.Owner = 0
	}
	if got := m.PathLen(0, 4); got != 4 {
		t.Errorf("PathLen(0,4) = %d, want 4", got)
	}
	if got := m.PathLen(2, 2); got != 0 {
		t.Errorf("PathLen(2,2) = %d, want 0", got)
	}

	// Foreign province in the middle blocks traversal but may still be an
	// endpoint.
	m.Get(2).Owner = 1
	if got := m.PathLen(0, 4); got != -1 {
		t.Errorf("PathLen across foreign land = %d, want -1", got)
	}
	if got := m.PathLen(0, 2); got != 2 {
		t.Errorf("PathLen to foreign endpoint = %d, want 2", got)
	}
}

func TestCentroidDist(t *testing.T) {
	m := lineMap(3)
	if got := m.CentroidDist(0, 2); got != 2 {
		t.Errorf("CentroidDist(0,2) = %v, want 2", got)
	}
	if got := m.CentroidDist(0, 99); !math.IsInf(got, 1) {
		t.Errorf("CentroidDist to missing province = %v, want +Inf", got)
	}
}

func TestAdjacent(t *testing.T) {
	m := lineMap(3)
	if !m.Adjacent(0, 1) || !m.Adjacent(1, 0) {
		t.Error("expected adjacency between 0 and 1")
	}
	if m.Adjacent(0, 2) {
		t.Error("0 and 2 should not be adjacent")
	}
}
