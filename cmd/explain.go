package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markqiu/red-blud-eyes/sim"
	"github.com/markqiu/red-blud-eyes/sim/policy"
)

var explainRed int // Red-eyed villagers in the worked example

// explainCmd prints the puzzle and the inductive argument
var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Explain the puzzle and why the announcement matters",
	Run: func(cmd *cobra.Command, args []string) {
		writeExplanation(cmd.OutOrStdout(), explainRed)
	},
}

const puzzleText = `The puzzle
  An island village is home to perfect logicians. Each can see everyone
  else's eye colour but never their own, and nobody discusses eye colour.
  The rule: anyone who becomes certain that their own eyes are red must
  leave that night. Every night all villagers decide at the same time;
  the next morning everyone sees who has gone.

  One day a visitor says publicly: "` + sim.AnnouncementText + `"`

// writeExplanation prints the puzzle, the inductive chain for n red-eyed
// villagers, and what the announcement adds that everyone already knew.
func writeExplanation(w io.Writer, n int) {
	if n < 1 {
		n = 1
	}
	var b strings.Builder
	b.WriteString(puzzleText)
	b.WriteString("\n\nThe induction\n")
	b.WriteString("  Base case: a red-eyed villager who sees no red eyes learns from the\n")
	b.WriteString("  announcement that it must be them, and leaves on night 1.\n")
	for k := 1; k < n; k++ {
		fmt.Fprintf(&b, "  k=%d: a red-eyed villager sees %d red eyes. If their own were blue, those %d\n", k, k, k)
		fmt.Fprintf(&b, "       would leave on night %d. When they do not, it leaves on night %d.\n", k, policy.LeaveDay(k))
	}
	fmt.Fprintf(&b, "  So with %d red-eyed villagers all of them leave together on night %d,\n", n, n)
	b.WriteString("  and the blue-eyed villagers, who see one more red pair, never leave.\n\n")

	b.WriteString("Why the announcement matters\n")
	for _, line := range strings.Split(sim.KnowledgeAnalysis(n), "\n") {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	fmt.Fprintf(&b, "  After the announcement: %s\n", sim.DescribeKnowledgeLevel(sim.CommonKnowledge))
	_, _ = io.WriteString(w, b.String())
}

func init() {
	explainCmd.Flags().IntVar(&explainRed, "red", 3, "Red-eyed villagers in the worked example")
	rootCmd.AddCommand(explainCmd)
}
