package policy

import (
	"fmt"

	"github.com/markqiu/red-blud-eyes/sim"
)

// Policy names accepted by New.
const (
	NamePerfect  = "perfect"
	NameNone     = "none"
	NameBounded  = "bounded"
	NameMaxDay   = "max-day"
	NameFallible = "fallible"
)

var validPolicies = map[string]bool{
	NamePerfect:  true,
	NameNone:     true,
	NameBounded:  true,
	NameMaxDay:   true,
	NameFallible: true,
}

// IsValidPolicy returns true if name is accepted by New.
func IsValidPolicy(name string) bool {
	return validPolicies[name]
}

// ValidPolicyNames lists accepted names in a stable order.
func ValidPolicyNames() []string {
	return []string{NamePerfect, NameNone, NameBounded, NameMaxDay, NameFallible}
}

// Params carries the knobs of the parameterised variants. Inner wraps
// max-day and fallible; nil means perfect.
type Params struct {
	MaxK        int
	MaxDay      int
	MistakeRate float64
	Seed        int64
	Inner       sim.Policy
}

// New creates a deterministic policy by name. Callers validate names with
// IsValidPolicy first; an unknown name panics.
func New(name string, p Params) sim.Policy {
	switch name {
	case NamePerfect:
		return Perfect{}
	case NameNone:
		return NoReasoning{}
	case NameBounded:
		return Bounded{MaxK: p.MaxK}
	case NameMaxDay:
		return MaxDay{MaxDay: p.MaxDay, Inner: p.Inner}
	case NameFallible:
		return Fallible{MistakeRate: p.MistakeRate, Seed: p.Seed, Inner: p.Inner}
	default:
		panic(fmt.Sprintf("unknown policy %q; valid policies: %v", name, ValidPolicyNames()))
	}
}
