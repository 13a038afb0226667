package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey seeds every pseudo-random choice in a run. Two runs with the
// same key and identical configuration MUST make identical decisions.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// DecisionRNG returns an RNG private to one agent on one day.
//
// Derivation: fnv1a64("<seed>:<agentID>:<day>"). Draws for one (agent, day)
// pair never depend on how many draws were made for any other pair, so the
// order in which agents decide cannot change the outcome.
func (k SimulationKey) DecisionRNG(agentID, day int) *rand.Rand {
	return rand.New(rand.NewSource(fnv1a64(fmt.Sprintf("%d:%d:%d", int64(k), agentID, day))))
}

// DecisionDraw returns the first value in [0,1) of DecisionRNG(agentID, day).
func (k SimulationKey) DecisionDraw(agentID, day int) float64 {
	return k.DecisionRNG(agentID, day).Float64()
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
