package remote

import (
	"context"
	"net/http"
	"strings"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markqiu/red-blud-eyes/sim"
	"github.com/markqiu/red-blud-eyes/sim/internal/testutil"
	"github.com/markqiu/red-blud-eyes/sim/policy"
)

func replying(content string) testutil.ChatHandler {
	return func(map[string]any) (int, string) { return http.StatusOK, content }
}

func failing() testutil.ChatHandler {
	return func(map[string]any) (int, string) { return http.StatusInternalServerError, "upstream down" }
}

func newTestPolicy(t *testing.T, h testutil.ChatHandler, style Style) (*Policy, *testutil.ChatServer) {
	t.Helper()
	srv := testutil.NewChatServer(t, h)
	return New(testConfig(srv.URL).WithStyle(style)), srv
}

func red(observed int) *sim.Agent {
	return &sim.Agent{ID: 1, Name: "red-1", Eyes: sim.Red, Kind: "llm", ObservedRed: observed}
}

func TestDecide_MissingAPIKey(t *testing.T) {
	srv := testutil.NewChatServer(t, replying(`{"leave": true}`))
	cfg := testConfig(srv.URL)
	cfg.APIKey = ""

	_, err := New(cfg).Decide(context.Background(), red(0), 1, true)

	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Empty(t, srv.Requests(), "no request is sent without a key")
}

func TestDecide_DepartedAgentSkipsEndpoint(t *testing.T) {
	p, srv := newTestPolicy(t, replying(`{"leave": true}`), Rational)
	a := red(0)
	a.Departed = true

	leave, err := p.Decide(context.Background(), a, 1, true)

	require.NoError(t, err)
	assert.False(t, leave)
	assert.Empty(t, srv.Requests())
	assert.Empty(t, a.ReasoningLog)
}

func TestDecide_UsesModelAnswer(t *testing.T) {
	p, _ := newTestPolicy(t, replying(`{"leave": true, "confidence_red": 0.99, "public_reason": "the others stayed", "key_points": ["x"]}`), Rational)
	a := red(1)

	leave, err := p.Decide(context.Background(), a, 2, true)

	require.NoError(t, err)
	assert.True(t, leave)
	require.Len(t, a.ReasoningLog, 1)
	line := a.ReasoningLog[0]
	assert.Contains(t, line, "day 2: [remote] decision=leave")
	assert.Contains(t, line, "confidence_red=0.99")
	assert.Contains(t, line, "the others stayed")
	assert.Contains(t, line, "key points: x")
}

func TestEvaluate_FallbackOnTransportFailure(t *testing.T) {
	before := promtest.ToFloat64(fallbacksTotal.WithLabelValues("transport"))
	p, srv := newTestPolicy(t, failing(), Ordinary)

	v, err := p.Evaluate(context.Background(), red(2), 3, true)

	require.NoError(t, err, "transport errors are absorbed")
	assert.True(t, v.Fallback)
	assert.True(t, v.Leave, "the proof summary decides: seeing 2 on day 3 means leave")
	require.NotNil(t, v.Confidence)
	assert.InDelta(t, 1.0, *v.Confidence, 1e-9)
	assert.Contains(t, v.Err, "upstream down")
	assert.Equal(t, 4, v.Attempts)
	assert.Len(t, srv.Requests(), 4)
	assert.InDelta(t, before+1, promtest.ToFloat64(fallbacksTotal.WithLabelValues("transport")), 1e-9)
}

func TestEvaluate_NonFiniteConfidenceFallsBack(t *testing.T) {
	// GIVEN a model that answers stay with a NaN confidence on the day the proof says leave
	p, _ := newTestPolicy(t, replying(`{"leave": false, "confidence_red": "NaN", "public_reason": "hmm"}`), Ordinary)

	v, err := p.Evaluate(context.Background(), red(2), 3, true)

	// THEN the proof summary decides, with a finite confidence
	require.NoError(t, err)
	assert.True(t, v.Fallback)
	assert.True(t, v.Leave)
	require.NotNil(t, v.Confidence)
	assert.Equal(t, 1.0, *v.Confidence)
}

func TestEvaluate_FallbackOnUnparseableReply(t *testing.T) {
	p, _ := newTestPolicy(t, replying("I would rather not say."), Ordinary)

	v, err := p.Evaluate(context.Background(), red(2), 2, true)

	require.NoError(t, err)
	assert.True(t, v.Fallback)
	assert.False(t, v.Leave)
	assert.True(t, strings.HasPrefix(v.Err, "parse failed"))
	assert.NotEmpty(t, v.KeyPoints)
}

func TestEvaluate_ForcedLeaveOnHighConfidence(t *testing.T) {
	before := promtest.ToFloat64(forcedLeavesTotal)
	p, _ := newTestPolicy(t, replying(`{"leave": false, "confidence_red": 0.98, "public_reason": "scared"}`), Social)

	v, err := p.Evaluate(context.Background(), red(0), 4, true)

	require.NoError(t, err)
	assert.True(t, v.Leave)
	assert.True(t, v.Forced)
	assert.Contains(t, v.LogLine(4), "forced")
	assert.InDelta(t, before+1, promtest.ToFloat64(forcedLeavesTotal), 1e-9)
}

func TestEvaluate_ForcedLeaveFromReasonText(t *testing.T) {
	p, _ := newTestPolicy(t, replying(`{"leave": false, "public_reason": "I am certain I am red-eyed but I like it here"}`), Ordinary)

	v, err := p.Evaluate(context.Background(), red(3), 2, true)

	require.NoError(t, err)
	assert.True(t, v.Leave)
	assert.True(t, v.Forced)
	assert.Nil(t, v.Confidence)
}

func TestEvaluate_EmptyReasonPlaceholder(t *testing.T) {
	p, _ := newTestPolicy(t, replying(`{"leave": false, "confidence_red": 0.1, "public_reason": "  \n "}`), Rational)

	v, err := p.Evaluate(context.Background(), red(1), 1, true)

	require.NoError(t, err)
	assert.Equal(t, "(no reason given)", v.Reason)
}

func TestEvaluate_AlignmentOverridesModel(t *testing.T) {
	// GIVEN a model that always panics and leaves with full confidence
	before := promtest.ToFloat64(alignmentOverridesTotal)
	p, _ := newTestPolicy(t, replying(`{"leave": true, "confidence_red": 1.0, "public_reason": "run!"}`), AbsoluteRational)

	// WHEN it is asked on a day the proof says to wait
	v, err := p.Evaluate(context.Background(), red(2), 1, true)

	// THEN the proof wins and confidence is pinned so nothing forces a leave
	require.NoError(t, err)
	assert.True(t, v.Aligned)
	assert.True(t, v.Overridden)
	assert.False(t, v.Leave)
	assert.False(t, v.Forced)
	require.NotNil(t, v.Confidence)
	assert.InDelta(t, 0.0, *v.Confidence, 1e-9)
	assert.InDelta(t, before+1, promtest.ToFloat64(alignmentOverridesTotal), 1e-9)
}

func TestEvaluate_AbsoluteRationalPrompt(t *testing.T) {
	p, srv := newTestPolicy(t, replying(`{"leave": false}`), AbsoluteRational)
	a := red(2)
	a.LeftYesterday, a.LeftTotal = 1, 4

	_, err := p.Evaluate(context.Background(), a, 3, true)
	require.NoError(t, err)

	body := srv.Requests()[0]
	temp, ok := body["temperature"].(float64)
	require.True(t, ok)
	assert.Less(t, temp, 1e-6)

	msgs := body["messages"].([]any)
	system := msgs[0].(map[string]any)["content"].(string)
	user := msgs[1].(map[string]any)["content"].(string)
	assert.Contains(t, system, "perfect logician")
	assert.Contains(t, system, "standard inductive proof")
	assert.Contains(t, user, "Today is day 3")
	assert.Contains(t, user, "announced \"at least one villager has red eyes\": yes")
	assert.Contains(t, user, "among the others: 2")
	assert.Contains(t, user, "leave yesterday: 1")
	assert.Contains(t, user, "in total: 4")
	assert.Contains(t, user, "day k+1")
}

func TestEvaluate_RationalPromptHasNoAlignmentHint(t *testing.T) {
	p, srv := newTestPolicy(t, replying(`{"leave": false}`), Rational)

	_, err := p.Evaluate(context.Background(), red(0), 1, false)
	require.NoError(t, err)

	body := srv.Requests()[0]
	assert.InDelta(t, 0.3, body["temperature"].(float64), 1e-6)
	user := body["messages"].([]any)[1].(map[string]any)["content"].(string)
	assert.Contains(t, user, ": no.")
	assert.NotContains(t, user, "day k+1")
}

func TestPolicy_AlignedVillageConverges(t *testing.T) {
	// GIVEN every villager backed by an aligned remote policy whose model
	// always gives a useless answer
	p, _ := newTestPolicy(t, replying(`{"leave": false, "confidence_red": 0.5}`), AbsoluteRational)
	router := policy.ByKind{Routes: map[string]sim.Policy{"llm": p}}

	v, err := sim.NewVillage(sim.VillageConfig{Red: 3, Blue: 2, Kind: "llm", Policy: router, Options: []sim.Option{sim.WithConcurrency(4)}})
	require.NoError(t, err)
	v.Announce()

	// WHEN the village runs
	res, err := sim.Run(context.Background(), v, 10)

	// THEN it converges exactly like perfect induction
	require.NoError(t, err)
	assert.True(t, res.AllRedLeft)
	assert.Equal(t, 3, res.SolvedOn)
	assert.Equal(t, 3, v.CountDeparted())
}

func TestProofSummary(t *testing.T) {
	tests := []struct {
		name      string
		agent     *sim.Agent
		day       int
		announced bool
		leave     bool
		contains  string
	}{
		{"no announcement", red(0), 1, false, false, "no public announcement"},
		{"base case", red(0), 1, true, true, "It can only be me"},
		{"base case waits past day 1", red(0), 2, true, false, "first night"},
		{"inductive leave", red(2), 3, true, true, "Nobody left by night 2"},
		{"inductive wait", red(2), 2, true, false, "only be certain on night 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := proofSummary(tt.agent, tt.day, tt.announced)
			assert.Equal(t, tt.leave, r.Leave)
			assert.Contains(t, r.Reason, tt.contains)
			require.NotNil(t, r.Confidence)
			assert.Equal(t, tt.leave, *r.Confidence == 1.0)
		})
	}
}
