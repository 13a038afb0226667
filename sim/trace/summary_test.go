package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	assert.Equal(t, 0, summary.TotalDecisions)
	assert.Equal(t, 0, summary.FirstDeparture)
	assert.NotNil(t, summary.DeparturesByRound)
}

func TestSummarize_CountsDecisionsAndDepartures(t *testing.T) {
	// GIVEN two rounds of decisions where two agents leave on round 2
	st := New(LevelDecisions)
	for _, id := range []int{1, 2, 3} {
		st.RecordDecision(DecisionRecord{Round: 1, AgentID: id})
	}
	st.RecordDepartures(DepartureRecord{Round: 1})
	st.RecordDecision(DecisionRecord{Round: 2, AgentID: 1, Leave: true})
	st.RecordDecision(DecisionRecord{Round: 2, AgentID: 2, Leave: true})
	st.RecordDecision(DecisionRecord{Round: 2, AgentID: 3})
	st.RecordDepartures(DepartureRecord{Round: 2, AgentIDs: []int{1, 2}})

	// WHEN summarised
	summary := Summarize(st)

	// THEN totals reflect both rounds and empty departure rounds are skipped
	assert.Equal(t, 6, summary.TotalDecisions)
	assert.Equal(t, 2, summary.LeaveCount)
	assert.Equal(t, 4, summary.StayCount)
	assert.Equal(t, 2, summary.Rounds)
	assert.Equal(t, map[int]int{2: 2}, summary.DeparturesByRound)
	assert.Equal(t, 2, summary.FirstDeparture)
	assert.Equal(t, 2, summary.LastDeparture)
}
