package sim

import (
	"context"

	"github.com/sirupsen/logrus"
)

// RoundDepartures lists the agents who left on one round.
type RoundDepartures struct {
	Round  int      `json:"day"`
	Agents []string `json:"left"`
}

// RunResult summarises a bounded run.
type RunResult struct {
	RoundsRun int `json:"rounds_run"`
	// SolvedOn is the round on which the last red-eyed agent departed; 0 when
	// the run ended unsolved or there were no red-eyed agents.
	SolvedOn   int               `json:"days_to_leave"`
	AllRedLeft bool              `json:"all_red_left"`
	Departures []RoundDepartures `json:"daily_events"`
}

// DefaultRoundCap is how many rounds a command-line run simulates: a few
// past the expected answer when announced, and long enough without an
// announcement to make the absence of departures obvious.
func DefaultRoundCap(red int, announced bool) int {
	if announced {
		return red + 5
	}
	return max(10, red+10)
}

// Run advances p until every red-eyed agent has left or maxRounds rounds
// have been simulated. A village with no red-eyed agents runs zero rounds.
func Run(ctx context.Context, p *Population, maxRounds int) (RunResult, error) {
	var res RunResult
	if p.CountRed() == 0 {
		res.AllRedLeft = true
		return res, nil
	}

	for res.RoundsRun < maxRounds && !p.Solved() {
		left, err := p.AdvanceRound(ctx)
		if err != nil {
			return res, err
		}
		res.RoundsRun++

		names := make([]string, 0, len(left))
		for _, a := range left {
			names = append(names, a.String())
		}
		res.Departures = append(res.Departures, RoundDepartures{Round: p.Round, Agents: names})

		if p.Solved() {
			res.SolvedOn = p.Round
			res.AllRedLeft = true
		}
	}

	logrus.Infof("run finished after %d rounds (solved=%v, day=%d)", res.RoundsRun, res.AllRedLeft, res.SolvedOn)
	return res, nil
}
