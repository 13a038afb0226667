// Package trace provides decision-trace recording for per-round policy analysis.
// The package does not import sim/ or its sub-packages; it holds plain data types.
package trace

// DecisionRecord captures a single policy decision for one agent on one round.
type DecisionRecord struct {
	Round    int
	AgentID  int
	Kind     string
	Observed int // red agents the agent could see when deciding
	Leave    bool
}

// DepartureRecord captures the departures applied at the end of a round.
type DepartureRecord struct {
	Round    int
	AgentIDs []int // in id order
}
