// Package advisor turns periodic world summaries into strategic guidance
// for each nation: budget splits, an attack focus, and diplomatic moves.
// Requests run asynchronously against a language model so the simulation
// loop never blocks on the network.
package advisor

import (
	"log/slog"
	"math"
)

// Default budget split, also used to repair malformed model output.
const (
	DefaultDefenseRatio  = 0.4
	DefaultEconomyRatio  = 0.3
	DefaultResearchRatio = 0.3

	DefaultAttackRatio = 0.5
)

// Decision is the advisory output applied to a country until the next
// round replaces it. Empty target names mean no action.
type Decision struct {
	// Budget ratios must be in [0,1] and sum to 1.
	DefenseRatio  float64 `json:"defense_ratio"`
	EconomyRatio  float64 `json:"economy_ratio"`
	ResearchRatio float64 `json:"research_ratio"`

	// AttackTarget names the country whose provinces offensive armies
	// should prefer; AttackRatio is the share of free armies sent at
	// enemy land rather than unclaimed land.
	AttackTarget string  `json:"attack_target"`
	AttackRatio  float64 `json:"attack_ratio"`

	DeclareWarTarget string `json:"declare_war"`
	AllianceTarget   string `json:"propose_alliance"`
	TruceTarget      string `json:"propose_truce"`

	Rationale string `json:"rationale"`
}

// DefaultDecision is the standing guidance for a country that has never
// heard from its advisor.
func DefaultDecision() Decision {
	return Decision{
		DefenseRatio:  DefaultDefenseRatio,
		EconomyRatio:  DefaultEconomyRatio,
		ResearchRatio: DefaultResearchRatio,
		AttackRatio:   DefaultAttackRatio,
	}
}

// Sanitize repairs a parsed decision field by field: budget ratios that
// are out of range or do not sum to one reset to the defaults, a bad
// attack ratio resets alone, and target names not in the known set are
// cleared. The model's output is advice, never authority.
func (d *Decision) Sanitize(known map[string]bool, self string) {
	ratiosOK := inUnit(d.DefenseRatio) && inUnit(d.EconomyRatio) && inUnit(d.ResearchRatio) &&
		math.Abs(d.DefenseRatio+d.EconomyRatio+d.ResearchRatio-1.0) <= 0.01
	if !ratiosOK {
		slog.Warn("advisory budget ratios rejected",
			"defense", d.DefenseRatio, "economy", d.EconomyRatio, "research", d.ResearchRatio)
		d.DefenseRatio = DefaultDefenseRatio
		d.EconomyRatio = DefaultEconomyRatio
		d.ResearchRatio = DefaultResearchRatio
	}

	if !inUnit(d.AttackRatio) {
		d.AttackRatio = DefaultAttackRatio
	}

	d.AttackTarget = validTarget(d.AttackTarget, known, self)
	d.DeclareWarTarget = validTarget(d.DeclareWarTarget, known, self)
	d.AllianceTarget = validTarget(d.AllianceTarget, known, self)
	d.TruceTarget = validTarget(d.TruceTarget, known, self)
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1 && !math.IsNaN(v)
}

// validTarget clears names the model invented, "none" placeholders, and
// self-references.
func validTarget(name string, known map[string]bool, self string) string {
	if name == "" || name == "none" || name == self {
		return ""
	}
	if !known[name] {
		slog.Warn("advisory target unknown", "target", name)
		return ""
	}
	return name
}
