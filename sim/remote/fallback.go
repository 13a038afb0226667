package remote

import (
	"fmt"

	"github.com/markqiu/red-blud-eyes/sim"
	"github.com/markqiu/red-blud-eyes/sim/policy"
)

// proofSummary is the deterministic, proof-aligned answer used when the
// endpoint cannot be reached or its reply cannot be parsed.
func proofSummary(a *sim.Agent, day int, announced bool) reply {
	zero, one := 0.0, 1.0
	k := a.ObservedRed

	if a.Departed {
		return reply{Confidence: &zero, Reason: "I have already left."}
	}
	if !announced {
		return reply{
			Confidence: &zero,
			Reason: "There was no public announcement, so \"at least one villager is red-eyed\" is not common knowledge; " +
				"the inductive chain cannot close and I cannot be certain my eyes are red.",
			KeyPoints: []string{"no announcement, no common knowledge", "the chain cannot close"},
		}
	}

	if policy.Verdict(a, day, announced) {
		if k == 0 {
			return reply{
				Leave:      true,
				Confidence: &one,
				Reason: "I see no red eyes, but the visitor announced at least one red-eyed villager. It can only be me, " +
					"so I am certain my eyes are red and I must leave tonight.",
				KeyPoints: []string{"I see 0 red eyes", "the announcement is common knowledge", "it can only be me"},
			}
		}
		return reply{
			Leave:      true,
			Confidence: &one,
			Reason: fmt.Sprintf("I see %d red eyes. Nobody left by night %d (left yesterday: %d). If my eyes were not red "+
				"there would be %d red-eyed villagers and they would have left on night %d; they did not, so I am certain "+
				"my eyes are red and I leave tonight.", k, k, a.LeftYesterday, k, k),
			KeyPoints: []string{fmt.Sprintf("I see %d red eyes", k), fmt.Sprintf("nobody left on night %d", k), "so mine are red too"},
		}
	}

	if k == 0 {
		return reply{
			Confidence: &zero,
			Reason:     "I see no red eyes; the base case only applies on the first night, so I do not leave tonight.",
			KeyPoints:  []string{"I see 0 red eyes", "the base case is night 1"},
		}
	}
	leaveDay := policy.LeaveDay(k)
	if day >= leaveDay {
		return reply{
			Confidence: &zero,
			Reason: fmt.Sprintf("I see %d red eyes and night %d has come. Nothing forces me to conclude my own eyes are red, "+
				"so I stay.", k, leaveDay),
			KeyPoints: []string{fmt.Sprintf("I see %d red eyes", k), "no proof that mine are red"},
		}
	}
	return reply{
		Confidence: &zero,
		Reason: fmt.Sprintf("I see %d red eyes. By the inductive chain I could only be certain on night %d, after nobody "+
			"left on night %d. It is night %d, so I cannot be certain yet and I stay.", k, leaveDay, k, day),
		KeyPoints: []string{fmt.Sprintf("I see %d red eyes", k), fmt.Sprintf("certainty only on night %d", leaveDay)},
	}
}
