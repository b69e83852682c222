package engine

import (
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/firecomputer/hegemon/internal/world"
)

// MissionKind is an army's current behavioral assignment. Every decision
// site switches over all four kinds.
type MissionKind uint8

const (
	MissionIdle MissionKind = iota
	MissionAttack
	MissionDefense
	MissionGarrison
)

// String implements fmt.Stringer for log fields.
func (m MissionKind) String() string {
	switch m {
	case MissionIdle:
		return "idle"
	case MissionAttack:
		return "attack"
	case MissionDefense:
		return "defense"
	case MissionGarrison:
		return "garrison"
	}
	return "unknown"
}

// Army is a mobile unit. It holds at most one queued target province and
// interpolates toward its centroid; reaching it snaps Province to the
// target. Back-references are IDs into the simulation's tables.
type Army struct {
	ID       uuid.UUID
	Owner    world.CountryID
	Province world.ProvinceID
	Strength int

	Mission MissionKind
	Target  world.ProvinceID
	// DefenseTarget is the province a defense-mission army is watching,
	// which may differ from the staging province it moves to.
	DefenseTarget world.ProvinceID

	// Interpolated position for the rendering snapshot.
	Pos      world.Point
	moveFrom world.Point
	Progress float64
	Moving   bool

	InBattle bool
	// Engaged marks that hostile-occupation combat has already been
	// initiated from this province, so the sweep does not re-trigger it.
	Engaged bool
}

// NewArmy creates an idle army at the given province centroid.
func NewArmy(owner world.CountryID, province world.ProvinceID, strength int, at world.Point) *Army {
	return &Army{
		ID:            uuid.New(),
		Owner:         owner,
		Province:      province,
		Strength:      strength,
		Mission:       MissionIdle,
		Target:        NoProvince,
		DefenseTarget: NoProvince,
		Pos:           at,
	}
}

// SetTarget queues a movement toward the target province and starts the
// interpolation. Setting a target clears any stale battle state.
func (a *Army) SetTarget(w *world.Map, target world.ProvinceID) {
	a.Target = target
	a.InBattle = false
	a.Engaged = false
	if target == NoProvince || a.Moving {
		return
	}
	a.moveFrom = a.Pos
	a.Progress = 0
	a.Moving = true
}

// SetDefenseMission stations the army at a staging province to watch a
// defense target.
func (a *Army) SetDefenseMission(w *world.Map, watch, staging world.ProvinceID) {
	a.Mission = MissionDefense
	a.DefenseTarget = watch
	a.SetTarget(w, staging)
}

// ClearOrders reverts the army to idle with no target.
func (a *Army) ClearOrders() {
	a.Mission = MissionIdle
	a.Target = NoProvince
	a.DefenseTarget = NoProvince
}

// UpdateMovement advances the interpolation one tick. On completion the
// army's province becomes the target instantaneously and same-owner armies
// already there are merged. Returns true on the arrival tick.
func (a *Army) UpdateMovement(w *world.Map, c *Country, cfg *Config) bool {
	if !a.Moving || a.Target == NoProvince {
		return false
	}
	dest := w.Get(a.Target).Centroid
	a.Progress += cfg.MoveSpeed
	if a.Progress < 1.0 {
		a.Pos = world.Point{
			X: a.moveFrom.X + (dest.X-a.moveFrom.X)*a.Progress,
			Y: a.moveFrom.Y + (dest.Y-a.moveFrom.Y)*a.Progress,
		}
		return false
	}
	a.Progress = 1.0
	a.Moving = false
	a.Pos = dest
	a.Province = a.Target
	c.ConsolidateArmies(a.Province)
	return true
}

// Retreat moves the army to its owner's nearest owned province by
// straight-line centroid distance, clearing any target. With no territory
// left there is nowhere to go.
func (a *Army) Retreat(w *world.Map, c *Country) {
	if len(c.Owned) == 0 {
		slog.Debug("no friendly territory to retreat to", "country", c.Name)
		return
	}
	closest := NoProvince
	best := math.Inf(1)
	for _, id := range c.Owned {
		d := a.Pos.Dist(w.Get(id).Centroid)
		if d < best {
			best = d
			closest = id
		}
	}
	slog.Debug("army retreats", "country", c.Name, "from", a.Province, "to", closest)
	a.Province = closest
	a.Pos = w.Get(closest).Centroid
	a.Target = NoProvince
	a.Moving = false
	a.Progress = 0
}
