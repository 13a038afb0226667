package sim

import (
	"fmt"
	"strings"
)

// CommonKnowledge is the knowledge level of a fact everyone knows that
// everyone knows, to unbounded depth.
const CommonKnowledge = -1

// ExistenceFact is the proposition the visitor's announcement is about.
const ExistenceFact = "there is a red-eyed villager"

// DescribeKnowledgeLevel names a knowledge level.
func DescribeKnowledgeLevel(level int) string {
	switch {
	case level == CommonKnowledge:
		return "common knowledge (unbounded depth)"
	case level == 0:
		return "level 0: the fact itself"
	case level == 1:
		return "level 1: everyone knows the fact"
	default:
		return fmt.Sprintf("level %d: %d nested layers of 'everyone knows'", level, level)
	}
}

// NestedKnowledge spells out a knowledge level, e.g. level 2 is
// "everyone knows (everyone knows (there is a red-eyed villager))".
func NestedKnowledge(level int) string {
	s := ExistenceFact
	for i := 0; i < level; i++ {
		s = fmt.Sprintf("everyone knows (%s)", s)
	}
	return s
}

// MaxKnowledgeLevel is the deepest level an observer seeing observed
// red-eyed villagers can be sure of: observed-1. ok is false when they see
// none and cannot even be sure of the fact itself; level is then 0 and
// must not be read as a knowledge level.
func MaxKnowledgeLevel(observed int) (level int, ok bool) {
	if observed <= 0 {
		return 0, false
	}
	return observed - 1, true
}

// KnowledgeAnalysis explains, for a village with red red-eyed agents, how
// far the existence fact is known before any announcement.
func KnowledgeAnalysis(red int) string {
	var b strings.Builder
	switch {
	case red >= 2:
		level := red - 1
		fmt.Fprintf(&b, "everyone already knows %q\n", ExistenceFact)
		fmt.Fprintf(&b, "deepest shared level: %d\n", level)
		fmt.Fprintf(&b, "  %s\n", NestedKnowledge(level))
		fmt.Fprintf(&b, "level %d is out of reach: each red-eyed villager sees only %d red eyes", level+1, red-1)
	case red == 1:
		b.WriteString("the only red-eyed villager sees no red eyes, so does not know the fact")
	default:
		b.WriteString("nobody has red eyes; the fact is false")
	}
	return b.String()
}
