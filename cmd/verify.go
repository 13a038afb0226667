package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/markqiu/red-blud-eyes/sim"
	"github.com/markqiu/red-blud-eyes/sim/policy"
)

// canonicalCase is one textbook village and the day its red-eyed villagers leave.
type canonicalCase struct {
	Red, Blue int
}

var canonicalCases = []canonicalCase{{1, 3}, {2, 2}, {3, 2}, {5, 3}}

// verifyCmd checks perfect induction against the closed-form answer
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that perfect logicians leave on day N for the canonical villages",
	Run: func(cmd *cobra.Command, args []string) {
		ok, err := verifyCanonical(context.Background(), cmd.OutOrStdout(), canonicalCases)
		if err != nil {
			logrus.Fatalf("Verification failed: %v", err)
		}
		if !ok {
			logrus.Fatalf("Verification failed: at least one case did not converge on day N")
		}
	},
}

// verifyCanonical runs every case with perfect induction and reports
// whether all of them converged on day N with exactly N departures.
func verifyCanonical(ctx context.Context, w io.Writer, cases []canonicalCase) (bool, error) {
	pal := paletteFor(w)
	allOK := true
	for _, c := range cases {
		pop, err := sim.NewVillage(sim.VillageConfig{Red: c.Red, Blue: c.Blue, Policy: policy.Perfect{}})
		if err != nil {
			return false, err
		}
		pop.Announce()
		res, err := sim.Run(ctx, pop, sim.DefaultRoundCap(c.Red, true))
		if err != nil {
			return false, err
		}

		ok := res.AllRedLeft && res.SolvedOn == c.Red && pop.CountDeparted() == c.Red
		if !ok {
			allOK = false
		}
		if _, err := fmt.Fprintf(w, "%s  red=%d blue=%d: expected day %d, got day %d (%d departed)\n",
			pal.status(ok), c.Red, c.Blue, c.Red, res.SolvedOn, pop.CountDeparted()); err != nil {
			return false, err
		}
	}
	return allOK, nil
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
