// Land-mask synthesis and province segmentation.
// A layered simplex noise field produces a land/sea tile mask; contiguous
// land tiles are flooded into provinces, then adjacency and the
// island/coastal flags are derived from tile neighborhoods.
package world

import (
	"math"
	"math/rand"
	"slices"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Seed     int64   `yaml:"seed"` // 0 = random
	SeaLevel float64 `yaml:"sea_level"`

	// Province segmentation bounds (tiles per province).
	MinProvinceTiles int `yaml:"min_province_tiles"`
	MaxProvinceTiles int `yaml:"max_province_tiles"`

	// Initial resource scaling.
	BasePopulation float64 `yaml:"base_population"`
	BaseGDP        float64 `yaml:"base_gdp"`
}

// DefaultGenConfig returns the standard world size.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:            184,
		Height:           320,
		Seed:             0,
		SeaLevel:         0.42,
		MinProvinceTiles: 1,
		MaxProvinceTiles: 200,
		BasePopulation:   50000,
		BaseGDP:          80000,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.Width = 48
	cfg.Height = 48
	cfg.Seed = 42
	return cfg
}

// Generate builds a province map from a synthesized land mask.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	land := landMask(cfg, seed)
	return Segment(land, cfg)
}

// landMask samples multi-octave noise per tile and thresholds against sea
// level, with edge falloff so the map is ringed by ocean.
func landMask(cfg GenConfig, seed int64) [][]bool {
	noise := opensimplex.NewNormalized(seed)

	mask := make([][]bool, cfg.Width)
	for x := range mask {
		mask[x] = make([]bool, cfg.Height)
	}

	cx := float64(cfg.Width) / 2
	cy := float64(cfg.Height) / 2
	maxDist := math.Sqrt(cx*cx + cy*cy)

	for x := 0; x < cfg.Width; x++ {
		for y := 0; y < cfg.Height; y++ {
			elev := octaveNoise(noise, float64(x), float64(y), 4, 0.035, 0.5)

			// Continental shaping: suppress elevation toward the borders.
			dx, dy := float64(x)-cx, float64(y)-cy
			dist := math.Sqrt(dx*dx+dy*dy) / maxDist
			elev *= 1.0 - math.Pow(dist, 3.0)

			mask[x][y] = elev > cfg.SeaLevel
		}
	}
	return mask
}

// octaveNoise sums several noise octaves with decaying amplitude.
func octaveNoise(n opensimplex.Noise, x, y float64, octaves int, freq, persistence float64) float64 {
	total, amp, maxAmp := 0.0, 1.0, 0.0
	f := freq
	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*f, y*f) * amp
		maxAmp += amp
		amp *= persistence
		f *= 2
	}
	return total / maxAmp
}

// Segment floods a land mask into provinces and derives the graph. Exported
// separately so a mask from any source (an extracted image, a fixture) can
// feed it.
func Segment(land [][]bool, cfg GenConfig) *Map {
	width := len(land)
	if width == 0 {
		return &Map{}
	}
	height := len(land[0])

	// province index per tile, -1 = unassigned / sea
	tile := make([][]int, width)
	for x := range tile {
		tile[x] = make([]int, height)
		for y := range tile[x] {
			tile[x][y] = -1
		}
	}

	type coord struct{ x, y int }
	m := &Map{}

	flood := func(sx, sy int) {
		queue := []coord{{sx, sy}}
		var tiles []coord
		for len(queue) > 0 && len(tiles) < cfg.MaxProvinceTiles {
			c := queue[0]
			queue = queue[1:]
			if tile[c.x][c.y] != -1 || !land[c.x][c.y] {
				continue
			}
			tile[c.x][c.y] = len(m.Provinces) // tentative
			tiles = append(tiles, c)
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := c.x+dx, c.y+dy
					if nx >= 0 && nx < width && ny >= 0 && ny < height &&
						land[nx][ny] && tile[nx][ny] == -1 {
						queue = append(queue, coord{nx, ny})
					}
				}
			}
		}
		if len(tiles) < cfg.MinProvinceTiles {
			for _, c := range tiles {
				tile[c.x][c.y] = -1
			}
			return
		}

		var sumX, sumY float64
		for _, c := range tiles {
			sumX += float64(c.x)
			sumY += float64(c.y)
		}
		n := float64(len(tiles))

		// Larger provinces start with proportionally larger economies.
		popMult := 1 + (n/100)*2
		gdpMult := 1 + (n/50)*1.5

		m.Provinces = append(m.Provinces, &Province{
			ID:         ProvinceID(len(m.Provinces)),
			TileCount:  len(tiles),
			Centroid:   Point{X: sumX / n, Y: sumY / n},
			Owner:      NoCountry,
			Population: cfg.BasePopulation * popMult,
			GDP:        cfg.BaseGDP * gdpMult,
		})
	}

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			if land[x][y] && tile[x][y] == -1 {
				flood(x, y)
			}
		}
	}

	// Adjacency and coastal flags from tile neighborhoods.
	coastal := make([]bool, len(m.Provinces))
	adjacent := make([]map[ProvinceID]bool, len(m.Provinces))
	for i := range adjacent {
		adjacent[i] = make(map[ProvinceID]bool)
	}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			id := tile[x][y]
			if id == -1 {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= width || ny < 0 || ny >= height || !land[nx][ny] {
						coastal[id] = true
						continue
					}
					nid := tile[nx][ny]
					if nid != -1 && nid != id {
						adjacent[id][ProvinceID(nid)] = true
					}
				}
			}
		}
	}
	for i, p := range m.Provinces {
		for n := range adjacent[i] {
			p.Neighbors = append(p.Neighbors, n)
		}
		slices.Sort(p.Neighbors)
		p.IsCoastal = coastal[i]
		// A province with no land neighbors at all is an island.
		p.IsIsland = len(p.Neighbors) == 0
	}
	return m
}
