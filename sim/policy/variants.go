package policy

import (
	"context"

	"github.com/markqiu/red-blud-eyes/sim"
)

// NoReasoning models an agent incapable of induction: it never leaves.
type NoReasoning struct{}

// Decide implements sim.Policy.
func (NoReasoning) Decide(_ context.Context, a *sim.Agent, day int, announced bool) (bool, error) {
	if a.Departed {
		return false, nil
	}
	if !announced {
		a.Logf("day %d: no announcement, and I would not reason about it anyway", day)
		return false, nil
	}
	a.Logf("day %d: I see %d red eyes but cannot work out my own colour, so I stay", day, a.ObservedRed)
	return false, nil
}

// Bounded can follow the inductive chain only up to MaxK observed red eyes.
//
// MaxK=1 handles two red-eyed villagers (each sees one); MaxK=2 handles
// three. Seeing more than MaxK, the agent never reaches a conclusion.
type Bounded struct {
	MaxK int
}

// Decide implements sim.Policy.
func (b Bounded) Decide(_ context.Context, a *sim.Agent, day int, announced bool) (bool, error) {
	if a.Departed {
		return false, nil
	}
	if !announced {
		logNoAnnouncement(a, day)
		return false, nil
	}
	if !a.IsRed() {
		a.Logf("day %d: I see %d red eyes; nothing forces me to conclude mine are red, so I stay", day, a.ObservedRed)
		return false, nil
	}
	if a.ObservedRed > b.MaxK {
		a.Logf("day %d: [bounded] I see %d red eyes but can only follow the chain up to k<=%d, so I reach no conclusion",
			day, a.ObservedRed, b.MaxK)
		return false, nil
	}
	return inductiveStep(a, day, "bounded"), nil
}

// MaxDay models finite patience: it delegates to Inner up to MaxDay and
// never leaves after that. A nil Inner is Perfect.
type MaxDay struct {
	MaxDay int
	Inner  sim.Policy
}

// Decide implements sim.Policy.
func (m MaxDay) Decide(ctx context.Context, a *sim.Agent, day int, announced bool) (bool, error) {
	if a.Departed {
		return false, nil
	}
	if day > m.MaxDay {
		a.Logf("day %d: [limit] I can only reason up to day %d, so I stay", day, m.MaxDay)
		return false, nil
	}
	return orPerfect(m.Inner).Decide(ctx, a, day, announced)
}

func orPerfect(p sim.Policy) sim.Policy {
	if p == nil {
		return Perfect{}
	}
	return p
}
