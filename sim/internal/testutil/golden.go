// Package testutil provides shared test infrastructure for the simulator.
// It holds the golden convergence dataset and a fake chat-completion
// endpoint used across sim/ test packages.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/convergence.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one scenario with its expected outcome.
type GoldenTestCase struct {
	Name        string  `json:"name"`
	Red         int     `json:"red"`
	Blue        int     `json:"blue"`
	Announce    bool    `json:"announce"`
	Policy      string  `json:"policy"`
	MaxK        int     `json:"max_k"`
	MaxDay      int     `json:"max_day"`
	MistakeRate float64 `json:"mistake_rate"`
	Seed        int64   `json:"seed"`
	Rounds      int     `json:"rounds"`

	// ExpectedDay is the round on which every red agent has left; 0 means
	// the run must end unsolved (or there is nobody to leave).
	ExpectedDay      int `json:"expected_day"`
	ExpectedDeparted int `json:"expected_departed"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "convergence.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}
