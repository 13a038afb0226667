package sim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrait_TextRoundTrip(t *testing.T) {
	b, err := json.Marshal(struct{ Eyes Trait }{Red})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Eyes":"RED"}`, string(b))

	var got struct{ Eyes Trait }
	require.NoError(t, json.Unmarshal([]byte(`{"Eyes":"blue"}`), &got))
	assert.Equal(t, Blue, got.Eyes)

	assert.Error(t, got.Eyes.UnmarshalText([]byte("green")))
}

func TestAgent_Observe_ExcludesSelfAndDeparted(t *testing.T) {
	// GIVEN three red agents and one blue, one red already departed
	p := NewPopulation(nil)
	a := p.AddAgent(Red, "", "")
	b := p.AddAgent(Red, "", "")
	c := p.AddAgent(Red, "", "")
	d := p.AddAgent(Blue, "", "")
	c.depart(1)

	// WHEN observations are refreshed
	p.InitializeObservations()

	// THEN nobody counts itself or the departed agent
	assert.Equal(t, 1, a.ObservedRed)
	assert.Equal(t, 1, b.ObservedRed)
	assert.Equal(t, 2, d.ObservedRed)
}

func TestAgent_Depart_IsMonotonic(t *testing.T) {
	a := &Agent{ID: 1}
	a.depart(3)
	a.depart(5)
	require.True(t, a.Departed)
	require.NotNil(t, a.DepartedOn)
	assert.Equal(t, 3, *a.DepartedOn)
}

func TestPopulation_AddAgent_Defaults(t *testing.T) {
	p := NewPopulation(nil)
	a := p.AddAgent(Blue, "", "")
	b := p.AddAgent(Red, "Ann", "llm")

	assert.Equal(t, 1, a.ID)
	assert.Equal(t, "villager-1", a.Name)
	assert.Equal(t, DefaultKind, a.Kind)
	assert.Equal(t, 2, b.ID)
	assert.Equal(t, "Ann(red)", b.String())
	assert.Equal(t, "llm", b.Kind)
}
