package sim

import "context"

// Policy decides, for one present agent on one round, whether the agent is
// certain enough of its own red eyes to leave tonight.
//
// Contract:
//   - Decide returns (false, nil) when a.Departed is true.
//   - Decide may append to a.ReasoningLog but must not change the agent's
//     identity, trait or departure state; the caller applies departures.
//   - Decide sees only the frozen per-round state on a (ObservedRed,
//     LeftYesterday, LeftTotal) plus day and announced.
//   - Implementations must tolerate concurrent calls for distinct agents.
//
// A non-nil error is a configuration problem the caller must surface; it
// aborts the round.
type Policy interface {
	Decide(ctx context.Context, a *Agent, day int, announced bool) (bool, error)
}

// PolicyFunc adapts an ordinary function to the Policy interface.
type PolicyFunc func(ctx context.Context, a *Agent, day int, announced bool) (bool, error)

// Decide implements Policy.
func (f PolicyFunc) Decide(ctx context.Context, a *Agent, day int, announced bool) (bool, error) {
	return f(ctx, a, day, announced)
}
