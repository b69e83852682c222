package engine

import (
	"testing"

	"github.com/firecomputer/hegemon/internal/world"
)

func TestDangerScoreCountsForeignNeighborsAndCapital(t *testing.T) {
	m := stripMap(3)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 1)
	addCountry(s, "Khemet", 2)

	if got := s.DangerScore(c, 1); got != 60 {
		t.Errorf("border next to capital: score = %d, want 60", got)
	}
	if got := s.DangerScore(c, 0); got != 50 {
		t.Errorf("capital with friendly neighbors: score = %d, want 50", got)
	}
}

func TestAssignDefenseSendsStrongestToHottestBorder(t *testing.T) {
	m := stripMap(3)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 1)
	addCountry(s, "Khemet", 2)

	weak := NewArmy(c.ID, 0, 500, m.Get(0).Centroid)
	strong := NewArmy(c.ID, 0, 900, m.Get(0).Centroid)
	c.Armies = []*Army{weak, strong}

	s.assignDefense(c)

	if strong.Mission != MissionDefense || strong.DefenseTarget != 1 {
		t.Errorf("strongest army: mission %v target %d, want defense of province 1",
			strong.Mission, strong.DefenseTarget)
	}
	if weak.Mission != MissionIdle {
		t.Errorf("weak army mission = %v, want idle (outside the quota)", weak.Mission)
	}
}

func TestAssignDefenseGarrisonsSurplusAtCapital(t *testing.T) {
	m := stripMap(3)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 1)
	addCountry(s, "Khemet", 2)

	// Five armies, quota of two, one border: the second defender has
	// nowhere to stand watch and falls back to the capital area.
	for i := 0; i < 5; i++ {
		c.Armies = append(c.Armies, NewArmy(c.ID, 0, 1000+i*100, m.Get(0).Centroid))
	}

	s.assignDefense(c)

	var defense, garrison int
	for _, a := range c.Armies {
		switch a.Mission {
		case MissionDefense:
			defense++
		case MissionGarrison:
			garrison++
			if a.Target != 0 && a.Target != 1 {
				t.Errorf("garrison target = %d, want capital or its neighbor", a.Target)
			}
			if a.DefenseTarget != NoProvince {
				t.Error("garrison should not keep a watch province")
			}
		}
	}
	if defense != 1 || garrison != 1 {
		t.Errorf("defense = %d garrison = %d, want 1 and 1", defense, garrison)
	}
}

func TestAssignOffenseClaimsNearestEmptyNeighbor(t *testing.T) {
	m := stripMap(4)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 1)

	a := NewArmy(c.ID, 0, 2000, m.Get(0).Centroid)
	c.Armies = []*Army{a}

	s.assignOffense(c)

	if a.Mission != MissionAttack {
		t.Fatalf("mission = %v, want attack", a.Mission)
	}
	if a.Target != 2 {
		t.Errorf("target = %d, want the adjacent empty province 2", a.Target)
	}
}

func TestAssignOffensePrefersAdvisedTarget(t *testing.T) {
	m := stripMap(3)
	// Fork the chain so the capital borders both enemies directly.
	m.Provinces[0].Neighbors = append(m.Provinces[0].Neighbors, 2)
	m.Provinces[2].Neighbors = append(m.Provinces[2].Neighbors, 0)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	addCountry(s, "Khemet", 1)
	addCountry(s, "Oressia", 2)

	c.Advice.AttackTarget = "Oressia"
	a := NewArmy(c.ID, 0, 2000, m.Get(0).Centroid)
	c.Armies = []*Army{a}

	s.assignOffense(c)

	if a.Target != 2 {
		t.Errorf("target = %d, want advised Oressia's province 2 over nearer Khemet", a.Target)
	}
	if a.Mission != MissionAttack {
		t.Errorf("mission = %v, want attack", a.Mission)
	}
}

func TestAssignOffenseSparesAllies(t *testing.T) {
	m := stripMap(2)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	ally := addCountry(s, "Khemet", 1)
	c.Allies[ally.ID] = true

	a := NewArmy(c.ID, 0, 2000, m.Get(0).Centroid)
	c.Armies = []*Army{a}

	s.assignOffense(c)

	if a.Mission != MissionIdle || a.Target != NoProvince {
		t.Errorf("army against an ally-only frontier: mission %v target %d, want untouched",
			a.Mission, a.Target)
	}
}

func TestCanLaunchAtIslandNeedsCoastalRange(t *testing.T) {
	m := stripMap(2)
	m.Provinces[0].IsCoastal = true
	island := &world.Province{
		ID:       2,
		Centroid: world.Point{X: 20, Y: 30},
		IsIsland: true, IsCoastal: true,
		Owner: world.NoCountry,
	}
	m.Provinces = append(m.Provinces, island)

	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)

	if !s.canLaunchAt(c, 2) {
		t.Error("coastal capital within range should reach the island")
	}

	island.Centroid = world.Point{X: 200, Y: 0}
	if s.canLaunchAt(c, 2) {
		t.Error("island beyond assault range should be unreachable")
	}

	island.Centroid = world.Point{X: 20, Y: 30}
	m.Provinces[0].IsCoastal = false
	if s.canLaunchAt(c, 2) {
		t.Error("landlocked country should not reach any island")
	}
}

func TestRedistributeRearReleasesTowardEmptyLand(t *testing.T) {
	m := stripMap(4)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 1)

	a := NewArmy(c.ID, 0, 1000, m.Get(0).Centroid)
	a.Mission = MissionGarrison
	c.Armies = []*Army{a}

	s.redistributeRear(c)

	if a.Mission != MissionAttack {
		t.Fatalf("mission = %v, want attack toward empty land", a.Mission)
	}
	if a.Target != 2 {
		t.Errorf("target = %d, want the nearest empty province 2", a.Target)
	}
}

func TestRedistributeRearConsolidatesWhenMapIsFull(t *testing.T) {
	m := stripMap(3)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 1)
	c.AddProvince(m, 2)

	a1 := NewArmy(c.ID, 0, 1000, m.Get(0).Centroid)
	a1.Mission = MissionGarrison
	a2 := NewArmy(c.ID, 1, 800, m.Get(1).Centroid)
	a2.Mission = MissionGarrison
	c.Armies = []*Army{a1, a2}

	s.redistributeRear(c)

	// Province 2 holds no army at all, so both released garrisons head there.
	for _, a := range c.Armies {
		if a.Mission != MissionGarrison {
			t.Errorf("mission = %v, want garrison", a.Mission)
		}
		if a.Target != 2 {
			t.Errorf("target = %d, want unheld province 2", a.Target)
		}
	}
}

func TestRedistributeRearLeavesFrontierDefense(t *testing.T) {
	m := stripMap(3)
	s := newTestSim(m)
	c := addCountry(s, "Valdora", 0)
	c.AddProvince(m, 1)
	addCountry(s, "Khemet", 2)

	a := NewArmy(c.ID, 1, 1000, m.Get(1).Centroid)
	a.Mission = MissionDefense
	a.DefenseTarget = 1
	c.Armies = []*Army{a}

	s.redistributeRear(c)

	if a.Mission != MissionDefense || a.DefenseTarget != 1 {
		t.Errorf("frontier defender should hold its post, got mission %v target %d",
			a.Mission, a.DefenseTarget)
	}
}
