package policy

import (
	"context"

	"github.com/markqiu/red-blud-eyes/sim"
)

// Fallible executes Inner's plan imperfectly. Whenever Inner decides to
// leave, a reproducible draw seeded by (Seed, agent id, day) below
// MistakeRate turns the departure into a stay. It only ever suppresses
// departures, so it cannot make an uncertain agent leave.
//
// A nil Inner is Perfect. MistakeRate 0 never interferes; 1 suppresses
// every departure.
type Fallible struct {
	MistakeRate float64
	Seed        int64
	Inner       sim.Policy
}

// Decide implements sim.Policy.
func (f Fallible) Decide(ctx context.Context, a *sim.Agent, day int, announced bool) (bool, error) {
	if a.Departed {
		return false, nil
	}
	leave, err := orPerfect(f.Inner).Decide(ctx, a, day, announced)
	if err != nil || !leave {
		return false, err
	}

	if sim.NewSimulationKey(f.Seed).DecisionDraw(a.ID, day) < f.MistakeRate {
		a.Logf("day %d: [mistake] I should leave tonight, but doubt gets the better of me and I stay", day)
		return false, nil
	}
	return true, nil
}
