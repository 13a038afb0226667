package sim

import (
	"fmt"
	"strings"
)

// Trait is an agent's eye colour. Red is the marked trait: only red-eyed
// agents can ever become certain of their own colour and depart.
type Trait int

const (
	Red Trait = iota
	Blue
)

// String returns the lower-case colour name.
func (t Trait) String() string {
	switch t {
	case Red:
		return "red"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("trait(%d)", int(t))
	}
}

// MarshalText encodes the trait as "RED" or "BLUE".
func (t Trait) MarshalText() ([]byte, error) {
	switch t {
	case Red, Blue:
		return []byte(strings.ToUpper(t.String())), nil
	default:
		return nil, fmt.Errorf("unknown trait %d", int(t))
	}
}

// UnmarshalText accepts "RED"/"BLUE" in any case.
func (t *Trait) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "red":
		*t = Red
	case "blue":
		*t = Blue
	default:
		return fmt.Errorf("unknown trait %q", string(b))
	}
	return nil
}

// DefaultKind is the type tag given to agents created without one.
const DefaultKind = "logician"

// Agent is a villager. It sees every other villager's eyes but never its own.
//
// Lifecycle: Agent is created by Population.AddAgent. Observation fields are
// refreshed and departure applied only by Population; a Policy may append to
// ReasoningLog (via Logf) and nothing else.
type Agent struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Eyes Trait  `json:"eyeColor"`
	Kind string `json:"villagerType"`

	// ObservedRed counts present red-eyed agents other than this one.
	ObservedRed int `json:"observedRedEyes"`

	Departed   bool `json:"hasLeft"`
	DepartedOn *int `json:"leftOnDay"` // nil while present

	ReasoningLog []string `json:"reasoningLog"`

	// Publicly observable group behaviour, refreshed each round.
	LeftYesterday int `json:"observedLeftYesterday"`
	LeftTotal     int `json:"observedLeftTotal"`
}

// IsRed reports whether the agent carries the marked trait.
func (a *Agent) IsRed() bool {
	return a.Eyes == Red
}

// String renders the agent as "name(red)".
func (a *Agent) String() string {
	return fmt.Sprintf("%s(%s)", a.Name, a.Eyes)
}

// Observe recounts the red-eyed agents among others, excluding itself and
// anyone who has already departed.
func (a *Agent) Observe(others []*Agent) {
	n := 0
	for _, o := range others {
		if o.ID != a.ID && o.Eyes == Red && !o.Departed {
			n++
		}
	}
	a.ObservedRed = n
}

// Logf appends a formatted line to the reasoning log.
func (a *Agent) Logf(format string, args ...any) {
	a.ReasoningLog = append(a.ReasoningLog, fmt.Sprintf(format, args...))
}

// agentRoundState is the part of an Agent a round may change before its
// departures are applied.
type agentRoundState struct {
	observedRed   int
	leftYesterday int
	leftTotal     int
	logLen        int
}

func (a *Agent) roundState() agentRoundState {
	return agentRoundState{
		observedRed:   a.ObservedRed,
		leftYesterday: a.LeftYesterday,
		leftTotal:     a.LeftTotal,
		logLen:        len(a.ReasoningLog),
	}
}

func (a *Agent) restoreRoundState(s agentRoundState) {
	a.ObservedRed = s.observedRed
	a.LeftYesterday = s.leftYesterday
	a.LeftTotal = s.leftTotal
	if len(a.ReasoningLog) > s.logLen {
		a.ReasoningLog = a.ReasoningLog[:s.logLen]
	}
}

// depart marks the agent as gone on the given round. Departing twice is a no-op.
func (a *Agent) depart(round int) {
	if a.Departed {
		return
	}
	r := round
	a.Departed = true
	a.DepartedOn = &r
}
