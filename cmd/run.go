package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/markqiu/red-blud-eyes/sim"
	"github.com/markqiu/red-blud-eyes/sim/policy"
	"github.com/markqiu/red-blud-eyes/sim/remote"
	"github.com/markqiu/red-blud-eyes/sim/trace"
)

var (
	// CLI flags for the village
	numRed     int    // Red-eyed villagers
	numBlue    int    // Blue-eyed villagers
	noAnnounce bool   // Skip the visitor's announcement
	maxRounds  int    // Days to simulate (0 = derived from the village)
	agentKind  string // Type tag given to every villager
	configPath string // Scenario YAML; replaces the village and policy flags

	// CLI flags for the policy
	policyName  string  // Policy name
	maxK        int     // Bounded: deepest chain followed
	maxDay      int     // Max-day: last day reasoning works
	mistakeRate float64 // Fallible: chance of not leaving when due
	seed        int64   // Fallible: seed of the mistake draws
	style       string  // Remote: persona style

	// CLI flags for output and execution
	traceLevel  string // Decision trace level
	concurrency int    // Parallel decisions within a day
	verbose     bool   // Print every villager's reasoning, not just red ones
	jsonOut     bool   // Print the run result as JSON
)

// runCmd simulates one village using parameters from CLI flags or a scenario file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one village simulation",
	Run: func(cmd *cobra.Command, args []string) {
		sc, err := scenarioFromFlags()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		level, err := trace.ParseLevel(traceLevel)
		if err != nil {
			logrus.Fatalf("Invalid trace level: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		out := runOutput{traceLevel: level, verbose: verbose, json: jsonOut}
		if err := runScenario(ctx, cmd.OutOrStdout(), sc, remote.ConfigFromEnv(), out); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
	},
}

// scenarioFromFlags loads --config, or builds the scenario from flags.
func scenarioFromFlags() (*Scenario, error) {
	if configPath != "" {
		return LoadScenario(configPath)
	}
	announce := !noAnnounce
	sc := &Scenario{
		Red:         numRed,
		Blue:        numBlue,
		Announce:    &announce,
		Rounds:      maxRounds,
		Kind:        agentKind,
		Concurrency: concurrency,
		Policy: PolicySpec{
			Name:        policyName,
			MaxK:        maxK,
			MaxDay:      maxDay,
			MistakeRate: mistakeRate,
			Seed:        seed,
		},
		Remote: RemoteSpec{Style: style},
	}
	if err := sc.Policy.validate(); err != nil {
		return nil, err
	}
	if _, err := remote.ParseStyle(style); err != nil {
		return nil, err
	}
	return sc, nil
}

type runOutput struct {
	traceLevel trace.Level
	verbose    bool
	json       bool
}

// runScenario builds the village, runs it to completion or its cap, and
// writes a human-readable report (or the JSON result) to w.
func runScenario(ctx context.Context, w io.Writer, sc *Scenario, base remote.Config, out runOutput) error {
	st := trace.New(out.traceLevel)
	pop, err := sim.NewVillage(sim.VillageConfig{
		Red:     sc.Red,
		Blue:    sc.Blue,
		Kind:    sc.Kind,
		Kinds:   sc.Kinds,
		Policy:  sc.BuildPolicy(sc.RemoteConfig(base)),
		Options: []sim.Option{sim.WithConcurrency(sc.Concurrency), sim.WithTrace(st)},
	})
	if err != nil {
		return err
	}

	announced := sc.Announced()
	rounds := sc.Rounds
	if rounds <= 0 {
		rounds = sim.DefaultRoundCap(sc.Red, announced)
	}
	logrus.Infof("Starting simulation: red=%d blue=%d announce=%v rounds=%d", sc.Red, sc.Blue, announced, rounds)

	pal := paletteFor(w)
	p := &printer{w: w, quiet: out.json}
	p.line(pal.Title.Render("=== Red/blue eyes simulation ==="))
	p.line(pop.Status())
	p.line("")
	if announced {
		p.line(pop.Announce())
	} else {
		p.line("No announcement is made.")
		p.line(sim.KnowledgeAnalysis(sc.Red))
	}
	p.line("")

	firstEvent := len(pop.Events)
	res, err := sim.Run(ctx, pop, rounds)
	if err != nil {
		return err
	}

	if out.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	for _, e := range pop.Events[firstEvent:] {
		p.line(e)
	}
	p.line("")
	p.line(pal.Title.Render("=== Result ==="))
	switch {
	case sc.Red == 0:
		p.line("There are no red-eyed villagers; nobody ever has a reason to leave.")
	case res.AllRedLeft:
		p.line(pal.Pass.Render(fmt.Sprintf("All %d red-eyed villagers left on day %d.", sc.Red, res.SolvedOn)))
	default:
		p.line(pal.Fail.Render(fmt.Sprintf("After %d days, %d of %d red-eyed villagers are still here.", res.RoundsRun, sc.Red-departedRed(pop), sc.Red)))
	}
	if announced && sc.Red > 0 {
		p.linef("Perfect induction predicts day %d.", policy.LeaveDay(sc.Red-1))
	}
	p.line(pop.Status())

	p.line("")
	p.line(pal.Title.Render("=== Reasoning ==="))
	for _, a := range pop.Agents {
		if !out.verbose && !a.IsRed() {
			continue
		}
		name := a.String()
		if a.IsRed() {
			name = pal.Red.Render(name)
		}
		p.linef("%s [%s]", name, a.Kind)
		for _, l := range a.ReasoningLog {
			p.linef("  %s", l)
		}
	}

	if st.Enabled() {
		s := trace.Summarize(st)
		p.line("")
		p.line(pal.Title.Render("=== Trace ==="))
		p.linef("decisions: %d (leave %d, stay %d) over %d days", s.TotalDecisions, s.LeaveCount, s.StayCount, s.Rounds)
		if s.FirstDeparture > 0 {
			p.linef("departures: first on day %d, last on day %d", s.FirstDeparture, s.LastDeparture)
		}
		for day := 1; day <= s.Rounds; day++ {
			leaving := 0
			decided := st.Round(day)
			for _, d := range decided {
				if d.Leave {
					leaving++
				}
			}
			p.linef("  day %d: %d decided, %d chose to leave", day, len(decided), leaving)
		}
	}
	return p.err
}

func departedRed(p *sim.Population) int {
	n := 0
	for _, a := range p.Agents {
		if a.IsRed() && a.Departed {
			n++
		}
	}
	return n
}

// printer writes report lines and remembers the first write error.
type printer struct {
	w     io.Writer
	quiet bool
	err   error
}

func (p *printer) line(s string) {
	if p.quiet || p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) linef(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

func init() {
	runCmd.Flags().IntVar(&numRed, "red", 3, "Number of red-eyed villagers")
	runCmd.Flags().IntVar(&numBlue, "blue", 2, "Number of blue-eyed villagers")
	runCmd.Flags().BoolVar(&noAnnounce, "no-announce", false, "Skip the visitor's announcement")
	runCmd.Flags().IntVar(&maxRounds, "rounds", 0, "Days to simulate (0 = a few past the expected answer)")
	runCmd.Flags().StringVar(&agentKind, "kind", sim.DefaultKind, "Type tag given to every villager")
	runCmd.Flags().StringVar(&configPath, "config", "", "Scenario YAML file (replaces village and policy flags)")

	runCmd.Flags().StringVar(&policyName, "policy", policy.NamePerfect, "Policy: perfect, none, bounded, max-day, fallible, remote")
	runCmd.Flags().IntVar(&maxK, "max-k", 1, "Bounded: deepest inductive chain followed")
	runCmd.Flags().IntVar(&maxDay, "max-day", 2, "Max-day: last day on which reasoning works")
	runCmd.Flags().Float64Var(&mistakeRate, "mistake-rate", 0.2, "Fallible: probability of staying when due to leave")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Fallible: seed for reproducible mistakes")
	runCmd.Flags().StringVar(&style, "style", "", "Remote: style (absolute_rational, rational, ordinary, social; default from OPENAI_STYLE)")

	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.LevelNone), "Decision trace level (none, decisions)")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 1, "Decisions evaluated in parallel within a day")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "Print every villager's reasoning")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run result as JSON")

	rootCmd.AddCommand(runCmd)
}
