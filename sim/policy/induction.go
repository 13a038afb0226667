// Package policy implements the deterministic reasoning policies a village
// can run: the perfect inductive logician and its degraded variants.
package policy

import (
	"context"

	"github.com/markqiu/red-blud-eyes/sim"
)

// LeaveDay is the night on which a red-eyed agent who sees k red eyes
// becomes certain: k red agents would have left on night k if it were
// blue, and their continued presence proves otherwise on night k+1.
func LeaveDay(k int) int {
	return k + 1
}

// Verdict is the closed-form answer of perfect induction, without logging.
// It is the ground truth other policies are measured and aligned against.
func Verdict(a *sim.Agent, day int, announced bool) bool {
	if a.Departed || !announced || !a.IsRed() {
		return false
	}
	return day == LeaveDay(a.ObservedRed)
}

// Perfect is the perfect logician: base case plus inductive step.
type Perfect struct{}

// Decide implements sim.Policy.
func (Perfect) Decide(_ context.Context, a *sim.Agent, day int, announced bool) (bool, error) {
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
	return inductiveStep(a, day, "induction"), nil
}

// inductiveStep runs the day-threshold logic for a red-eyed agent.
func inductiveStep(a *sim.Agent, day int, tag string) bool {
	k := a.ObservedRed
	if k == 0 {
		if day == 1 {
			a.Logf("day %d: [%s base] I see no red eyes, yet someone here is red-eyed; it must be me. I leave tonight", day, tag)
			return true
		}
		return false
	}

	leaveDay := LeaveDay(k)
	switch {
	case day < leaveDay:
		a.Logf("day %d: [%s] I see %d red eyes. If mine were blue there would be exactly %d, and they would all leave on night %d. It is only day %d; I keep watching",
			day, tag, k, k, k, day)
		return false
	case day == leaveDay:
		a.Logf("day %d: [%s complete] the %d red-eyed villagers I see did not leave on night %d. That is only possible if my eyes are red too. I leave tonight",
			day, tag, k, k)
		return true
	default:
		return false
	}
}

func logNoAnnouncement(a *sim.Agent, day int) {
	a.Logf("day %d: no announcement. Without the common-knowledge anchor \"at least one red-eyed villager\" the inductive chain cannot close, so I cannot decide to leave", day)
}
