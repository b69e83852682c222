package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/firecomputer/hegemon/internal/world"
)

// BattleState is the combat state machine. Active transitions to exactly
// one of the two terminal states, which destroys the battle.
type BattleState uint8

const (
	BattleActive BattleState = iota
	AttackerVictory
	DefenderVictory
)

// Battle is a multi-tick engagement over one contested province.
type Battle struct {
	ID       uuid.UUID
	Province world.ProvinceID
	State    BattleState

	Attackers []*Army
	Defenders []*Army

	// Defense is the province's intrinsic defense value, worn down over
	// the course of the battle.
	Defense       float64
	OriginalOwner world.CountryID

	Duration int

	// RandomFactor is drawn once at creation and scales both sides for
	// the battle's whole lifetime.
	RandomFactor float64

	// Isolation penalties, fixed at creation.
	AttackPenalty  float64
	DefensePenalty float64

	// damageRate is the per-tick base rate; a decisive-battle roll can
	// permanently multiply it.
	damageRate float64
	decisive   bool
}

func newBattle(s *Simulation, id world.ProvinceID, attackers, defenders []*Army, defense float64) *Battle {
	b := &Battle{
		ID:            uuid.New(),
		Province:      id,
		Attackers:     append([]*Army(nil), attackers...),
		Defenders:     append([]*Army(nil), defenders...),
		Defense:       defense,
		OriginalOwner: s.World.Get(id).Owner,
		RandomFactor:  0.8 + s.RNG.Float64()*0.4,
		damageRate:    s.Cfg.BattleDamageRate,
	}
	b.AttackPenalty = b.attackPenalty(s)
	b.DefensePenalty = b.defensePenalty(s)
	return b
}

// attackPenalty returns the isolation multiplier for the attacking side:
// crippled when any staging province (an attacker-owned province adjacent
// to the battlefield) is itself cut off from its capital and not an island.
func (b *Battle) attackPenalty(s *Simulation) float64 {
	for _, a := range b.Attackers {
		c := s.Country(a.Owner)
		if c == nil {
			continue
		}
		for _, owned := range c.Owned {
			if !s.World.Adjacent(owned, b.Province) {
				continue
			}
			p := s.World.Get(owned)
			if !p.IsIsland && !c.ConnectedToCapital(s.World, owned) {
				slog.Debug("attacker isolated", "country", c.Name, "staging", owned, "battle", b.Province)
				return s.Cfg.IsolationPenalty
			}
		}
	}
	return 1.0
}

// defensePenalty returns the isolation multiplier for the defending side,
// applied when the contested province is disconnected from its own capital
// and not an island.
func (b *Battle) defensePenalty(s *Simulation) float64 {
	owner := s.Country(b.OriginalOwner)
	p := s.World.Get(b.Province)
	if owner != nil && !p.IsIsland && !owner.ConnectedToCapital(s.World, b.Province) {
		slog.Debug("defender isolated", "country", owner.Name, "battle", b.Province)
		return s.Cfg.IsolationPenalty
	}
	return 1.0
}

// EffectiveAttack is the attacker side's combat strength this tick:
// Σ strength × (1 + owner GDP × battle factor), scaled by the isolation
// penalty and the per-battle random factor.
func (b *Battle) EffectiveAttack(s *Simulation) float64 {
	var total float64
	for _, a := range b.Attackers {
		if a.Strength <= 0 {
			continue
		}
		c := s.Country(a.Owner)
		if c == nil {
			continue
		}
		bonus := 1 + c.TotalGDP(s.World)*s.Cfg.BattleGDPFactor
		total += float64(a.Strength) * bonus
	}
	return total * b.AttackPenalty * b.RandomFactor
}

// EffectiveDefense mirrors EffectiveAttack for the defenders, counting the
// province's intrinsic defense with the current owner's GDP bonus.
func (b *Battle) EffectiveDefense(s *Simulation) float64 {
	var total float64
	for _, a := range b.Defenders {
		if a.Strength <= 0 {
			continue
		}
		c := s.Country(a.Owner)
		if c == nil {
			continue
		}
		bonus := 1 + c.TotalGDP(s.World)*s.Cfg.BattleGDPFactor
		total += float64(a.Strength) * bonus
	}
	if owner := s.Country(s.World.Get(b.Province).Owner); owner != nil {
		total += b.Defense * (1 + owner.TotalGDP(s.World)*s.Cfg.BattleGDPFactor)
	} else {
		total += b.Defense
	}
	return total * b.DefensePenalty * b.RandomFactor
}

// advance runs one tick of the state machine. Returns false once the
// battle has reached a terminal state.
func (b *Battle) advance(s *Simulation) bool {
	if b.State != BattleActive {
		return false
	}
	b.Duration++

	// Drop participants that died or were disbanded elsewhere this tick.
	b.Attackers = survivors(s, b.Attackers)
	b.Defenders = survivors(s, b.Defenders)

	attack := b.EffectiveAttack(s)
	defense := b.EffectiveDefense(s)

	switch {
	case len(b.Attackers) == 0 || attack <= 0:
		b.endDefenderVictory(s)
		return false
	case len(b.Defenders) == 0 && b.Defense <= 0:
		b.endAttackerVictory(s)
		return false
	case b.Duration >= s.Cfg.BattleMaxTicks():
		slog.Debug("siege timeout", "province", b.Province, "duration", b.Duration)
		b.endDefenderVictory(s)
		return false
	}

	b.applyDamage(s, attack, defense)
	return true
}

func survivors(s *Simulation, armies []*Army) []*Army {
	kept := armies[:0]
	for _, a := range armies {
		if a.Strength <= 0 {
			continue
		}
		c := s.Country(a.Owner)
		if c == nil || !containsArmy(c.Armies, a) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

func containsArmy(armies []*Army, a *Army) bool {
	for _, other := range armies {
		if other == a {
			return true
		}
	}
	return false
}

// applyDamage deals one tick of losses to both sides. The dominant side
// (effective share > 0.5) takes the reduced rate, the other the amplified
// one; a fresh uniform multiplier scales everything, and early ticks can
// roll a decisive battle that permanently multiplies the base rate.
func (b *Battle) applyDamage(s *Simulation, attack, defense float64) {
	if b.Duration <= s.Cfg.DecisiveWindow && !b.decisive && s.RNG.Float64() < s.Cfg.DecisiveChance {
		b.decisive = true
		b.damageRate *= s.Cfg.DecisiveMult
		slog.Debug("decisive battle", "province", b.Province, "rate", b.damageRate)
	}

	total := attack + defense
	if total <= 0 {
		return
	}
	share := attack / total
	mult := 0.7 + s.RNG.Float64()*0.6

	var attackerRate, defenderRate float64
	if share > 0.5 {
		attackerRate = b.damageRate * s.Cfg.DominantLossRate * mult
		defenderRate = b.damageRate * s.Cfg.OverwhelmedLossRate * mult
	} else {
		attackerRate = b.damageRate * s.Cfg.OverwhelmedLossRate * mult
		defenderRate = b.damageRate * s.Cfg.DominantLossRate * mult
	}

	b.damageSide(s, b.Attackers, attackerRate)
	b.damageSide(s, b.Defenders, defenderRate)

	// Intrinsic defense only erodes while the defenders are not
	// overwhelmed outright.
	if share >= s.Cfg.DefenseDecayShare {
		b.Defense = max(0, b.Defense-b.Defense*defenderRate)
	}
}

func (b *Battle) damageSide(s *Simulation, armies []*Army, rate float64) {
	for _, a := range armies {
		if a.Strength <= 0 {
			continue
		}
		dmg := int(float64(a.Strength) * rate)
		if dmg < 1 {
			dmg = 1
		}
		a.Strength -= dmg
		if a.Strength <= 0 {
			a.Strength = 0
			if c := s.Country(a.Owner); c != nil {
				c.removeArmy(a)
				slog.Debug("army destroyed in battle", "country", c.Name, "province", b.Province)
			}
		}
	}
}

// endAttackerVictory transfers the province to the strongest surviving
// attacker's owner, preserving part of its economy, and releases the
// winning armies back to idle.
func (b *Battle) endAttackerVictory(s *Simulation) {
	b.State = AttackerVictory
	for _, a := range append(append([]*Army(nil), b.Attackers...), b.Defenders...) {
		a.InBattle = false
		a.Engaged = false
	}
	if len(b.Attackers) == 0 {
		return
	}
	strongest := b.Attackers[0]
	for _, a := range b.Attackers[1:] {
		if a.Strength > strongest.Strength {
			strongest = a
		}
	}
	winner := s.Country(strongest.Owner)
	if winner == nil {
		return
	}

	p := s.World.Get(b.Province)
	keptPop := p.Population * s.Cfg.ConquestPopKept
	keptGDP := p.GDP * s.Cfg.ConquestGDPKept
	if loser := s.Country(b.OriginalOwner); loser != nil {
		loser.RemoveProvince(s.World, b.Province, s.RNG)
	}
	winner.AddProvince(s.World, b.Province)
	p.Population = keptPop
	p.GDP = keptGDP

	for _, a := range b.Attackers {
		switch a.Mission {
		case MissionDefense:
			// Defense armies keep their assignment.
		case MissionIdle, MissionAttack, MissionGarrison:
			a.ClearOrders()
		}
	}
	slog.Info("province conquered",
		"province", b.Province, "winner", winner.Name, "duration", b.Duration)
}

// endDefenderVictory retreats the surviving attackers; the defenders hold.
func (b *Battle) endDefenderVictory(s *Simulation) {
	b.State = DefenderVictory
	for _, a := range append(append([]*Army(nil), b.Attackers...), b.Defenders...) {
		a.InBattle = false
		a.Engaged = false
	}
	for _, a := range b.Attackers {
		if a.Strength > 0 {
			if c := s.Country(a.Owner); c != nil {
				a.Retreat(s.World, c)
			}
		}
	}
	slog.Info("province held", "province", b.Province, "duration", b.Duration)
}

// BattleManager owns every active battle, keyed by contested province.
type BattleManager struct {
	Active []*Battle
}

// NewBattleManager returns an empty manager.
func NewBattleManager() *BattleManager {
	return &BattleManager{}
}

// At returns the active battle at a province, or nil.
func (bm *BattleManager) At(id world.ProvinceID) *Battle {
	for _, b := range bm.Active {
		if b.Province == id {
			return b
		}
	}
	return nil
}

// Start opens a battle at the province, or joins the arriving attackers to
// an already-active one. Joining is idempotent: an army already on the
// attacker list is never appended twice.
func (bm *BattleManager) Start(s *Simulation, id world.ProvinceID, attackers, defenders []*Army, defense float64) *Battle {
	if existing := bm.At(id); existing != nil {
		for _, a := range attackers {
			if !containsArmy(existing.Attackers, a) {
				existing.Attackers = append(existing.Attackers, a)
				slog.Debug("attacker joins battle", "province", id)
			}
			a.InBattle = true
		}
		return existing
	}

	b := newBattle(s, id, attackers, defenders, defense)
	for _, a := range attackers {
		a.InBattle = true
	}
	for _, a := range defenders {
		a.InBattle = true
	}
	bm.Active = append(bm.Active, b)
	slog.Info("battle started",
		"province", id,
		"attackers", len(attackers),
		"defenders", len(defenders),
		"defense", defense,
		"factor", b.RandomFactor,
	)
	return b
}

// AdvanceAll steps every battle one tick and drops the finished ones.
func (bm *BattleManager) AdvanceAll(s *Simulation) {
	kept := bm.Active[:0]
	for _, b := range bm.Active {
		if b.advance(s) {
			kept = append(kept, b)
		}
	}
	bm.Active = kept
}
