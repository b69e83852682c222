package engine

import (
	"errors"
	"testing"

	"github.com/firecomputer/hegemon/internal/world"
)

func TestCreateArmyCoastalCosts(t *testing.T) {
	m := stripMap(1)
	m.Get(0).IsCoastal = true
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)

	// Base 2000 plus GDP-derived 1000, coastal factor 0.7.
	a, err := c.CreateArmy(m, s.Cfg, 0, 0)
	if err != nil {
		t.Fatalf("CreateArmy: %v", err)
	}
	if a.Strength != 2100 {
		t.Errorf("strength = %d, want 2100", a.Strength)
	}
	if got := m.Get(0).Population; got != 10000-1050 {
		t.Errorf("population = %v, want %v", got, 10000-1050)
	}
	if got := m.Get(0).GDP; got != 1000000-4200 {
		t.Errorf("GDP = %v, want %v", got, 1000000-4200)
	}
	if len(c.Armies) != 1 {
		t.Errorf("armies = %d, want 1", len(c.Armies))
	}
}

func TestCreateArmyAllOrNothing(t *testing.T) {
	m := stripMap(1)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	m.Get(0).Population = 100 // cannot cover the population cost

	_, err := c.CreateArmy(m, s.Cfg, 0, 1000)
	if !errors.Is(err, ErrInsufficientResources) {
		t.Fatalf("err = %v, want ErrInsufficientResources", err)
	}
	if m.Get(0).Population != 100 || m.Get(0).GDP != s.Cfg.StartGDP {
		t.Error("failed creation must leave resources untouched")
	}
	if len(c.Armies) != 0 {
		t.Error("no army should exist after a failed creation")
	}
}

func TestCreateArmyRejectsIsolatedProvince(t *testing.T) {
	m := stripMap(3)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 2)
	addCountry(s, "Khemet", 1)

	_, err := c.CreateArmy(m, s.Cfg, 2, 500)
	if !errors.Is(err, ErrIsolatedProvince) {
		t.Errorf("err = %v, want ErrIsolatedProvince", err)
	}
}

func TestCreateArmyUnknownProvince(t *testing.T) {
	m := stripMap(1)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)

	if _, err := c.CreateArmy(m, s.Cfg, 99, 500); !errors.Is(err, ErrNoProvince) {
		t.Errorf("err = %v, want ErrNoProvince", err)
	}
}

func TestMovementInterpolatesAndArrives(t *testing.T) {
	m := stripMap(2)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 1)
	a := NewArmy(c.ID, 0, 1000, m.Get(0).Centroid)
	c.Armies = []*Army{a}

	a.SetTarget(m, 1)
	if !a.Moving {
		t.Fatal("army should start moving")
	}

	// MoveSpeed 0.2: four partial ticks, arrival on the fifth.
	for i := 0; i < 4; i++ {
		if a.UpdateMovement(m, c, s.Cfg) {
			t.Fatalf("arrived early on tick %d", i+1)
		}
	}
	if a.Pos.X <= 0 || a.Pos.X >= 10 {
		t.Errorf("mid-flight x = %v, want strictly between centroids", a.Pos.X)
	}
	if !a.UpdateMovement(m, c, s.Cfg) {
		t.Fatal("expected arrival on the fifth tick")
	}
	if a.Province != 1 || a.Moving {
		t.Errorf("province = %d moving = %v, want arrived at 1", a.Province, a.Moving)
	}
	if a.Pos != m.Get(1).Centroid {
		t.Errorf("pos = %+v, want destination centroid", a.Pos)
	}
}

func TestArrivalMergesWithGarrison(t *testing.T) {
	m := stripMap(2)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 1)
	garrison := NewArmy(c.ID, 1, 2000, m.Get(1).Centroid)
	mover := NewArmy(c.ID, 0, 500, m.Get(0).Centroid)
	c.Armies = []*Army{garrison, mover}

	mover.SetTarget(m, 1)
	for i := 0; i < 5; i++ {
		mover.UpdateMovement(m, c, s.Cfg)
	}

	if len(c.Armies) != 1 {
		t.Fatalf("armies = %d, want merged into 1", len(c.Armies))
	}
	if c.Armies[0].Strength != 2500 {
		t.Errorf("merged strength = %d, want 2500", c.Armies[0].Strength)
	}
}

func TestSetTargetClearsBattleState(t *testing.T) {
	m := stripMap(2)
	a := NewArmy(0, 0, 100, m.Get(0).Centroid)
	a.InBattle = true
	a.Engaged = true

	a.SetTarget(m, 1)

	if a.InBattle || a.Engaged {
		t.Error("queuing a move should clear stale battle flags")
	}
}

func TestRetreatPicksNearestOwned(t *testing.T) {
	m := stripMap(4)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 3)
	addCountry(s, "Khemet", 2)

	a := NewArmy(c.ID, 2, 400, m.Get(2).Centroid)
	c.Armies = []*Army{a}
	a.Retreat(m, c)

	// Retreat relocates instantly rather than marching back under fire.
	if a.Province != 3 {
		t.Errorf("retreat province = %d, want nearest owned 3", a.Province)
	}
	if a.Pos != m.Get(3).Centroid {
		t.Errorf("retreat position = %v, want centroid of 3", a.Pos)
	}
	if a.Target != NoProvince || a.Moving {
		t.Error("retreat should leave no pending movement")
	}
}

func TestMissionKindString(t *testing.T) {
	cases := map[MissionKind]string{
		MissionIdle:     "idle",
		MissionAttack:   "attack",
		MissionDefense:  "defense",
		MissionGarrison: "garrison",
	}
	for kind, want := range cases {
		if kind.String() != want {
			t.Errorf("%d.String() = %q, want %q", kind, kind.String(), want)
		}
	}
}

func TestClearOrders(t *testing.T) {
	a := NewArmy(0, 0, 100, world.Point{})
	a.Mission = MissionAttack
	a.Target = 5
	a.DefenseTarget = 3

	a.ClearOrders()

	if a.Mission != MissionIdle || a.Target != NoProvince || a.DefenseTarget != NoProvince {
		t.Errorf("orders not cleared: %+v", a)
	}
}
