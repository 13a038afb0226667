package remote

import (
	"fmt"
	"math"
)

// Style selects the persona a remote villager plays.
type Style string

const (
	// AbsoluteRational is the perfect logician; alignment is on by default.
	AbsoluteRational Style = "absolute_rational"
	// Rational reasons carefully but conservatively.
	Rational Style = "rational"
	// Ordinary may hesitate and misread the situation.
	Ordinary Style = "ordinary"
	// Social leans on what the crowd did.
	Social Style = "social"
)

var personas = map[Style]string{
	AbsoluteRational: "You are an absolutely rational, perfect logician. You follow common knowledge and the inductive chain strictly, " +
		"you are never emotional, and you never reinterpret the rules.",
	Rational: "You are a rational person: you try hard to reason, but your depth is limited, and when unsure you " +
		"stay conservative (you prefer to stay).",
	Ordinary: "You are an ordinary person: you may be nervous, hesitate or misunderstand what you see; you are not " +
		"guaranteed to complete the inductive chain.",
	Social: "You are an ordinary person strongly influenced by the group: you weigh whether anyone left yesterday and " +
		"how many have left so far. You still obey the rule: you leave only when you are certain your eyes are red.",
}

// ValidStyles lists accepted style names in a stable order.
func ValidStyles() []string {
	return []string{string(AbsoluteRational), string(Rational), string(Ordinary), string(Social)}
}

// ParseStyle validates a style name. The empty string selects Rational.
func ParseStyle(s string) (Style, error) {
	if s == "" {
		return Rational, nil
	}
	st := Style(s)
	if _, ok := personas[st]; !ok {
		return "", fmt.Errorf("unknown style %q; valid styles: %v", s, ValidStyles())
	}
	return st, nil
}

// Persona is the system-prompt description of the style.
func (s Style) Persona() string {
	if p, ok := personas[s]; ok {
		return p
	}
	return personas[Rational]
}

// Temperature derives the sampling temperature from the configured base.
func (s Style) Temperature(base float64) float64 {
	switch s {
	case AbsoluteRational:
		return 0
	case Rational:
		return math.Min(base, 0.3)
	case Ordinary, Social:
		return math.Max(base, 0.8)
	default:
		return base
	}
}
