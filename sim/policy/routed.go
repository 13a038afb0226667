package policy

import (
	"context"

	"github.com/markqiu/red-blud-eyes/sim"
)

// ByKind routes each agent to the policy registered for its Kind, falling
// back to Default, and to Perfect when Default is nil.
type ByKind struct {
	Routes  map[string]sim.Policy
	Default sim.Policy
}

// For returns the policy that governs agents of the given kind.
func (r ByKind) For(kind string) sim.Policy {
	if p, ok := r.Routes[kind]; ok && p != nil {
		return p
	}
	return orPerfect(r.Default)
}

// Decide implements sim.Policy.
func (r ByKind) Decide(ctx context.Context, a *sim.Agent, day int, announced bool) (bool, error) {
	return r.For(a.Kind).Decide(ctx, a, day, announced)
}
