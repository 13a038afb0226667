package trace

import "fmt"

// Level controls what a Recorder keeps.
type Level string

const (
	// LevelNone records nothing.
	LevelNone Level = "none"
	// LevelDecisions records every policy decision and every round's departures.
	LevelDecisions Level = "decisions"
)

// ParseLevel accepts "none", "decisions", or "" for none. Matching is
// case-sensitive, like the CLI flag values.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case "", LevelNone:
		return LevelNone, nil
	case LevelDecisions:
		return LevelDecisions, nil
	default:
		return LevelNone, fmt.Errorf("unknown trace level %q (want %s or %s)", s, LevelNone, LevelDecisions)
	}
}

// Recorder collects per-round decisions. A nil Recorder, or one at
// LevelNone, records nothing, so the village can call it unconditionally.
type Recorder struct {
	level      Level
	Decisions  []DecisionRecord
	Departures []DepartureRecord
}

// New creates a Recorder at level.
func New(level Level) *Recorder {
	return &Recorder{level: level}
}

// Enabled reports whether records are kept. Safe on nil.
func (r *Recorder) Enabled() bool {
	return r != nil && r.level == LevelDecisions
}

// RecordDecision keeps d when enabled.
func (r *Recorder) RecordDecision(d DecisionRecord) {
	if r.Enabled() {
		r.Decisions = append(r.Decisions, d)
	}
}

// RecordDepartures keeps d when enabled.
func (r *Recorder) RecordDepartures(d DepartureRecord) {
	if r.Enabled() {
		r.Departures = append(r.Departures, d)
	}
}

// Round returns the decisions made on one round, in recording order.
func (r *Recorder) Round(round int) []DecisionRecord {
	if r == nil {
		return nil
	}
	var out []DecisionRecord
	for _, d := range r.Decisions {
		if d.Round == round {
			out = append(out, d)
		}
	}
	return out
}
