package sim

import (
	"errors"
	"fmt"
)

// MaxPopulation caps the number of agents in one village.
const MaxPopulation = 200

// ErrInvalidPopulation is returned when village parameters are rejected.
var ErrInvalidPopulation = errors.New("invalid population")

// VillageConfig describes a village to build.
type VillageConfig struct {
	Red  int
	Blue int
	// Kind is the type tag for every agent when Kinds is nil.
	Kind string
	// Kinds assigns a type tag per agent, red agents first; its length must
	// equal Red+Blue.
	Kinds  []string
	Policy Policy
	// Options are applied to the new Population.
	Options []Option
}

// Validate checks the configuration without building anything.
func (c VillageConfig) Validate() error {
	if c.Red < 0 || c.Blue < 0 {
		return fmt.Errorf("%w: counts must be non-negative (red=%d, blue=%d)", ErrInvalidPopulation, c.Red, c.Blue)
	}
	total := c.Red + c.Blue
	if total > MaxPopulation {
		return fmt.Errorf("%w: %d villagers exceeds the cap of %d", ErrInvalidPopulation, total, MaxPopulation)
	}
	if c.Kinds != nil && len(c.Kinds) != total {
		return fmt.Errorf("%w: kinds length must be %d, got %d", ErrInvalidPopulation, total, len(c.Kinds))
	}
	if c.Policy == nil {
		return fmt.Errorf("%w: a policy is required", ErrInvalidPopulation)
	}
	return nil
}

// NewVillage validates cfg, then builds a village with red agents named
// red-1..red-N followed by blue agents blue-1..blue-M, and computes their
// initial observations.
func NewVillage(cfg VillageConfig) (*Population, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := NewPopulation(cfg.Policy, cfg.Options...)
	kindAt := func(i int) string {
		if cfg.Kinds != nil {
			return cfg.Kinds[i]
		}
		return cfg.Kind
	}

	idx := 0
	for i := 0; i < cfg.Red; i++ {
		p.AddAgent(Red, fmt.Sprintf("red-%d", i+1), kindAt(idx))
		idx++
	}
	for i := 0; i < cfg.Blue; i++ {
		p.AddAgent(Blue, fmt.Sprintf("blue-%d", i+1), kindAt(idx))
		idx++
	}

	p.InitializeObservations()
	return p, nil
}
