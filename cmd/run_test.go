package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markqiu/red-blud-eyes/sim"
	"github.com/markqiu/red-blud-eyes/sim/remote"
	"github.com/markqiu/red-blud-eyes/sim/trace"
)

func boolPtr(b bool) *bool { return &b }

func TestRunScenario_PerfectReport(t *testing.T) {
	// GIVEN three red and two blue perfect logicians
	sc := &Scenario{Red: 3, Blue: 2, Announce: boolPtr(true)}
	var buf bytes.Buffer

	// WHEN the scenario runs with decision tracing
	err := runScenario(context.Background(), &buf, sc, remote.DefaultConfig(), runOutput{traceLevel: trace.LevelDecisions})

	// THEN the report shows the announcement, the departures and the trace
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, sim.AnnouncementText)
	assert.Contains(t, out, "=== Day 3 ===")
	assert.Contains(t, out, "red-1(red) left the village")
	assert.Contains(t, out, "All 3 red-eyed villagers left on day 3.")
	assert.Contains(t, out, "Perfect induction predicts day 3.")
	assert.Contains(t, out, "=== Trace ===")
	assert.Contains(t, out, "first on day 3, last on day 3")
	assert.Contains(t, out, "day 1: 5 decided, 0 chose to leave")
	assert.Contains(t, out, "day 3: 5 decided, 3 chose to leave")
	assert.NotContains(t, out, "blue-1(blue) [", "blue reasoning is hidden unless verbose")
}

func TestRunScenario_NoAnnouncement(t *testing.T) {
	sc := &Scenario{Red: 2, Blue: 2, Announce: boolPtr(false)}
	var buf bytes.Buffer

	err := runScenario(context.Background(), &buf, sc, remote.DefaultConfig(), runOutput{verbose: true})

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "No announcement is made.")
	assert.Contains(t, out, "deepest shared level: 1")
	assert.Contains(t, out, "After 12 days, 2 of 2 red-eyed villagers are still here.")
	assert.Contains(t, out, "blue-1(blue) [logician]")
}

func TestRunScenario_JSON(t *testing.T) {
	sc := &Scenario{Red: 2, Blue: 1, Rounds: 5}
	var buf bytes.Buffer

	require.NoError(t, runScenario(context.Background(), &buf, sc, remote.DefaultConfig(), runOutput{json: true}))

	var res sim.RunResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res), "JSON mode prints only the result")
	assert.True(t, res.AllRedLeft)
	assert.Equal(t, 2, res.SolvedOn)
	assert.Len(t, res.Departures, 2)
}

func TestRunScenario_ExampleFile(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("..", "testdata", "scenario.yaml"))
	require.NoError(t, err)
	var buf bytes.Buffer

	require.NoError(t, runScenario(context.Background(), &buf, sc, remote.DefaultConfig(), runOutput{}))
	assert.Contains(t, buf.String(), "All 4 red-eyed villagers left on day 4.")
}

func TestRunScenario_InvalidVillage(t *testing.T) {
	sc := &Scenario{Red: -1}
	err := runScenario(context.Background(), &bytes.Buffer{}, sc, remote.DefaultConfig(), runOutput{})
	assert.ErrorIs(t, err, sim.ErrInvalidPopulation)
}

func TestRunScenario_RemoteWithoutKeyFails(t *testing.T) {
	sc := &Scenario{Red: 1, Blue: 1, Policy: PolicySpec{Name: nameRemote}}
	err := runScenario(context.Background(), &bytes.Buffer{}, sc, remote.DefaultConfig(), runOutput{})
	assert.ErrorIs(t, err, remote.ErrMissingAPIKey)
}

func TestScenarioFromFlags(t *testing.T) {
	saved := []any{numRed, numBlue, noAnnounce, policyName, style, configPath}
	t.Cleanup(func() {
		numRed, numBlue, noAnnounce = saved[0].(int), saved[1].(int), saved[2].(bool)
		policyName, style, configPath = saved[3].(string), saved[4].(string), saved[5].(string)
	})

	numRed, numBlue, noAnnounce, policyName, style, configPath = 4, 1, true, "bounded", "", ""
	sc, err := scenarioFromFlags()
	require.NoError(t, err)
	assert.Equal(t, 4, sc.Red)
	assert.False(t, sc.Announced())
	assert.Equal(t, "bounded", sc.Policy.Name)

	policyName = "oracle"
	_, err = scenarioFromFlags()
	assert.Error(t, err)

	policyName, style = "perfect", "stoic"
	_, err = scenarioFromFlags()
	assert.Error(t, err)
}
