package trace

// TraceSummary aggregates statistics from a Recorder.
type TraceSummary struct {
	TotalDecisions    int
	LeaveCount        int
	StayCount         int
	Rounds            int
	DeparturesByRound map[int]int // round → number of agents departing that round
	FirstDeparture    int         // earliest round with a departure; 0 if none
	LastDeparture     int         // latest round with a departure; 0 if none
}

// Summarize computes aggregate statistics from r.
// Safe for nil or empty recorders (returns zero-value fields).
func Summarize(st *Recorder) *TraceSummary {
	summary := &TraceSummary{
		DeparturesByRound: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Decisions)
	for _, d := range st.Decisions {
		if d.Leave {
			summary.LeaveCount++
		} else {
			summary.StayCount++
		}
		if d.Round > summary.Rounds {
			summary.Rounds = d.Round
		}
	}

	for _, dep := range st.Departures {
		if len(dep.AgentIDs) == 0 {
			continue
		}
		summary.DeparturesByRound[dep.Round] += len(dep.AgentIDs)
		if summary.FirstDeparture == 0 || dep.Round < summary.FirstDeparture {
			summary.FirstDeparture = dep.Round
		}
		if dep.Round > summary.LastDeparture {
			summary.LastDeparture = dep.Round
		}
	}

	return summary
}
