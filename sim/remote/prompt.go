package remote

import (
	"fmt"
	"strings"

	"github.com/markqiu/red-blud-eyes/sim"
)

const (
	systemPreamble = "You are simulating one villager's decision for tonight. "
	systemNoChain  = " Do not output step-by-step reasoning or internal thoughts; give only a short reason you could " +
		"say out loud, plus a few key points."
	systemAligned = " Important: this puzzle uses the standard strong premises: (1) everyone is a perfect logician; " +
		"(2) that fact is common knowledge; (3) everyone obeys the rule strictly and leaves on the night they become " +
		"certain their own eyes are red, and only then. You must match the behaviour of the standard inductive proof, " +
		"which guarantees convergence."

	userBackground = "Background: every villager can see everyone else's eye colour but never their own. Everyone " +
		"obeys the rule: once you are certain your own eyes are red, you leave the village that night. Everyone " +
		"decides at the same time each night, and the next day everyone sees who has left.\n\n"
	userFormat = "\nReply with strict JSON: {\"leave\": true/false, \"confidence_red\": 0.0-1.0, " +
		"\"public_reason\": string, \"key_points\": [string, ...]}. confidence_red is how certain you are that your " +
		"own eyes are red (1.0 = completely certain). public_reason is a short reason a bystander would understand; " +
		"key_points gives 1-3 points (no step-by-step derivation)."
	userAlignHint = "\n\nHint for matching the standard proof: if the visitor has announced and you see k red eyes, " +
		"then on days 1..k you cannot be certain your eyes are red, so leave=false; on day k+1, if nobody has left, " +
		"you must be certain your eyes are red, so leave=true. When leave=true, confidence_red must be close to 1.0."
)

// buildPrompts renders the system and user messages for one decision from
// the agent's frozen public state.
func buildPrompts(style Style, aligned bool, a *sim.Agent, day int, announced bool) (system, user string) {
	system = systemPreamble + style.Persona() + systemNoChain
	if aligned {
		system += systemAligned
	}

	yesNo := "no"
	if announced {
		yesNo = "yes"
	}
	var b strings.Builder
	b.WriteString(userBackground)
	fmt.Fprintf(&b, "Today is day %d. Has the visitor publicly announced \"at least one villager has red eyes\": %s.\n", day, yesNo)
	fmt.Fprintf(&b, "Red-eyed villagers you can see among the others: %d.\n", a.ObservedRed)
	fmt.Fprintf(&b, "Villagers you saw leave yesterday: %d.\n", a.LeftYesterday)
	fmt.Fprintf(&b, "Villagers you have seen leave in total: %d.\n", a.LeftTotal)
	b.WriteString(userFormat)
	if aligned {
		b.WriteString(userAlignHint)
	}
	return system, b.String()
}
