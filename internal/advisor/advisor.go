package advisor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const systemPrompt = `You are the chief strategic advisor to the leader of a nation in a world of competing powers. Each cycle you receive a summary of the known world and respond with one set of recommendations.

## Your Levers

- Budget split across defense, economy, and research. The three ratios must sum to 1.0.
- An attack focus: which rival nation offensive armies should concentrate on, and what share of free armies to commit against rivals versus unclaimed land (attack_ratio, 0.0 to 1.0).
- At most one diplomatic move each of: declare_war, propose_alliance, propose_truce. Use "none" when no move is warranted.

## Response Format

Respond with ONLY valid JSON (no markdown, no explanation outside the JSON):
{
  "defense_ratio": 0.4,
  "economy_ratio": 0.3,
  "research_ratio": 0.3,
  "attack_target": "none",
  "attack_ratio": 0.5,
  "declare_war": "none",
  "propose_alliance": "none",
  "propose_truce": "none",
  "rationale": "Brief reasoning for these recommendations."
}

## Important Rules

- Respond ONLY with JSON. No prose, no markdown fences.
- Target fields must name a nation from the summary exactly, or be "none".
- Never name your own nation as a target.
- Do not declare war and propose an alliance with the same nation.
- Weigh relative army strength and economy before recommending war. A nation much stronger than yours is a poor first target.`

// Completer is the language-model surface the advisor needs. The llm
// package's client satisfies it.
type Completer interface {
	Complete(system, user string, maxTokens int) (string, error)
}

// Advisor runs advisory rounds against a completion backend. Safe for
// concurrent Submit calls.
type Advisor struct {
	Client    Completer
	MaxTokens int
}

func New(client Completer) *Advisor {
	return &Advisor{Client: client, MaxTokens: 512}
}

// State is the world as presented to one nation's advisor.
type State struct {
	CountryName string
	Tick        uint64
	Countries   []CountryState
}

// CountryState is one nation's public standing.
type CountryState struct {
	Name         string
	Provinces    int
	Population   float64
	GDP          float64
	ArmyStrength int
	IsSelf       bool
	IsAlly       bool
	IsEnemy      bool
}

type request struct {
	done chan struct{}
	dec  *Decision
	err  error
}

// Handle identifies an in-flight advisory request.
type Handle struct {
	req *request
}

// Submit launches an advisory round in the background and returns
// immediately. The result is collected with Poll.
func (a *Advisor) Submit(st State) Handle {
	req := &request{done: make(chan struct{})}
	go func() {
		defer close(req.done)
		req.dec, req.err = a.decide(st)
	}()
	return Handle{req: req}
}

// Poll reports whether the request has finished. A finished request with
// a failed round yields a nil decision; the caller keeps its standing
// guidance.
func (a *Advisor) Poll(h Handle) (*Decision, bool) {
	select {
	case <-h.req.done:
		if h.req.err != nil {
			slog.Warn("advisory round failed", "error", h.req.err)
			return nil, true
		}
		return h.req.dec, true
	default:
		return nil, false
	}
}

// Discard abandons a request. The background round runs to completion
// but its result is never read.
func (a *Advisor) Discard(h Handle) {
	_ = h
}

func (a *Advisor) decide(st State) (*Decision, error) {
	prompt := formatState(st)

	slog.Debug("advisory prompt", "country", st.CountryName, "length", len(prompt))

	maxTokens := a.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}
	resp, err := a.Client.Complete(systemPrompt, prompt, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("advisory call: %w", err)
	}

	// Strip markdown fences if the model wraps them anyway.
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	resp = strings.TrimSpace(resp)

	decision := DefaultDecision()
	if err := json.Unmarshal([]byte(resp), &decision); err != nil {
		return nil, fmt.Errorf("parse decision (raw: %s): %w", resp, err)
	}

	known := make(map[string]bool, len(st.Countries))
	for _, c := range st.Countries {
		known[c.Name] = true
	}
	decision.Sanitize(known, st.CountryName)

	return &decision, nil
}

// formatState builds a concise prompt from the per-nation world summary.
func formatState(st State) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## World Summary (tick %d)\n", st.Tick)
	fmt.Fprintf(&b, "You advise: %s\n\n", st.CountryName)

	fmt.Fprintf(&b, "## Nations\n")
	for _, c := range st.Countries {
		var tags []string
		if c.IsSelf {
			tags = append(tags, "YOU")
		}
		if c.IsAlly {
			tags = append(tags, "ally")
		}
		if c.IsEnemy {
			tags = append(tags, "at war with you")
		}
		tag := ""
		if len(tags) > 0 {
			tag = " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Fprintf(&b, "- %s%s: %d provinces, population %.0f, GDP %.0f, army strength %d\n",
			c.Name, tag, c.Provinces, c.Population, c.GDP, c.ArmyStrength)
	}

	return b.String()
}
