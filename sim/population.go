package sim

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/markqiu/red-blud-eyes/sim/trace"
)

// AnnouncementText is what the visitor says.
const AnnouncementText = "There is at least one red-eyed villager here!"

// Population is the village: its agents, the active policy and the public
// state every agent can see.
//
// Thread-safety: NOT thread-safe. Callers serialise access (see sim/session).
type Population struct {
	Agents []*Agent // id order
	Policy Policy

	// Announced flips false→true once and never back.
	Announced bool
	// Round counts simulated days. Day 1 is the first night after setup.
	Round int
	// KnowledgeLevel is 0 before the announcement and CommonKnowledge after.
	KnowledgeLevel int
	// Events is the chronological, append-only village log.
	Events []string

	leftYesterday int
	concurrency   int
	trace         *trace.Recorder

	// order permutes the decision order within a round; nil keeps id order.
	order func([]*Agent) []*Agent
}

// Option configures a Population.
type Option func(*Population)

// WithConcurrency lets up to n policy calls run at once within a round.
// Values below 2 keep decisions sequential.
func WithConcurrency(n int) Option {
	return func(p *Population) { p.concurrency = n }
}

// WithTrace records every decision and departure into st.
func WithTrace(st *trace.Recorder) Option {
	return func(p *Population) { p.trace = st }
}

// NewPopulation creates an empty village governed by policy.
func NewPopulation(policy Policy, opts ...Option) *Population {
	p := &Population{Policy: policy}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddAgent appends an agent with the next sequential id. Empty name and kind
// fall back to "villager-<id>" and DefaultKind.
func (p *Population) AddAgent(eyes Trait, name, kind string) *Agent {
	id := len(p.Agents) + 1
	if name == "" {
		name = fmt.Sprintf("villager-%d", id)
	}
	if kind == "" {
		kind = DefaultKind
	}
	a := &Agent{ID: id, Name: name, Eyes: eyes, Kind: kind}
	p.Agents = append(p.Agents, a)
	return a
}

// InitializeObservations computes every agent's starting ObservedRed.
func (p *Population) InitializeObservations() {
	for _, a := range p.Agents {
		a.Observe(p.Agents)
	}
}

// Announce makes "at least one red-eyed villager exists" common knowledge.
// It is irreversible; repeating it changes nothing.
func (p *Population) Announce() string {
	msg := fmt.Sprintf("A visitor announces publicly: %q", AnnouncementText)
	if p.Announced {
		return msg
	}
	p.Announced = true
	p.KnowledgeLevel = CommonKnowledge
	p.Events = append(p.Events,
		msg,
		"state change: announcementMade = true",
		fmt.Sprintf("state change: knowledgeLevel = %d (common knowledge, unbounded depth)", CommonKnowledge),
		"state change: day counting now anchors the inductive chain",
	)
	logrus.Debugf("announcement made; knowledge level %d", p.KnowledgeLevel)
	return msg
}

// AdvanceRound simulates one day. Every present agent decides against the
// same frozen snapshot; departures are applied together afterwards and
// stamped with the new round number. Departing agents are returned in id
// order.
//
// If the policy returns an error the round is discarded: the round counter,
// every agent's observations and any reasoning lines written during the
// round are restored, and nobody departs. Only an "aborted" event is kept.
func (p *Population) AdvanceRound(ctx context.Context) ([]*Agent, error) {
	p.Round++
	round := p.Round

	present := p.Remaining()
	saved := make([]agentRoundState, len(present))
	for i, a := range present {
		saved[i] = a.roundState()
	}
	for _, a := range present {
		a.Observe(p.Agents)
	}
	total := p.CountDeparted()
	for _, a := range present {
		a.LeftYesterday = p.leftYesterday
		a.LeftTotal = total
	}

	order := present
	if p.order != nil {
		order = p.order(append([]*Agent(nil), present...))
	}
	leave := make([]bool, len(order))
	if err := p.decideAll(ctx, order, round, leave); err != nil {
		for i, a := range present {
			a.restoreRoundState(saved[i])
		}
		p.Round--
		p.Events = append(p.Events, fmt.Sprintf("day %d aborted: %v", round, err))
		return nil, fmt.Errorf("day %d: %w", round, err)
	}

	var leaving []*Agent
	for i, a := range order {
		if leave[i] {
			leaving = append(leaving, a)
		}
	}
	sort.Slice(leaving, func(i, j int) bool { return leaving[i].ID < leaving[j].ID })

	if p.trace.Enabled() {
		decided := make(map[int]bool, len(order))
		for i, a := range order {
			decided[a.ID] = leave[i]
		}
		for _, a := range present {
			p.trace.RecordDecision(trace.DecisionRecord{
				Round: round, AgentID: a.ID, Kind: a.Kind, Observed: a.ObservedRed, Leave: decided[a.ID],
			})
		}
	}

	p.Events = append(p.Events, fmt.Sprintf("=== Day %d ===", round))
	ids := make([]int, 0, len(leaving))
	for _, a := range leaving {
		a.depart(round)
		ids = append(ids, a.ID)
		p.Events = append(p.Events, fmt.Sprintf("  %s left the village", a))
	}
	if len(leaving) == 0 {
		p.Events = append(p.Events, "  nobody left today")
	}
	if p.trace.Enabled() {
		p.trace.RecordDepartures(trace.DepartureRecord{Round: round, AgentIDs: ids})
	}

	p.leftYesterday = len(leaving)
	logrus.Debugf("[day %03d] %d decided, %d left", round, len(present), len(leaving))
	return leaving, nil
}

func (p *Population) decideAll(ctx context.Context, agents []*Agent, day int, out []bool) error {
	if p.concurrency < 2 {
		for i, a := range agents {
			ok, err := p.Policy.Decide(ctx, a, day, p.Announced)
			if err != nil {
				return err
			}
			out[i] = ok
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, a := range agents {
		g.Go(func() error {
			ok, err := p.Policy.Decide(gctx, a, day, p.Announced)
			if err != nil {
				return err
			}
			out[i] = ok
			return nil
		})
	}
	return g.Wait()
}

// Remaining returns the agents still in the village, in id order.
func (p *Population) Remaining() []*Agent {
	var out []*Agent
	for _, a := range p.Agents {
		if !a.Departed {
			out = append(out, a)
		}
	}
	return out
}

// CountRed returns the number of red-eyed agents, departed or not.
func (p *Population) CountRed() int {
	n := 0
	for _, a := range p.Agents {
		if a.Eyes == Red {
			n++
		}
	}
	return n
}

// CountBlue returns the number of blue-eyed agents, departed or not.
func (p *Population) CountBlue() int {
	return len(p.Agents) - p.CountRed()
}

// CountDeparted returns the number of agents who have left.
func (p *Population) CountDeparted() int {
	n := 0
	for _, a := range p.Agents {
		if a.Departed {
			n++
		}
	}
	return n
}

// Solved reports whether every red-eyed agent has departed. A village with
// no red-eyed agents is solved from the start.
func (p *Population) Solved() bool {
	for _, a := range p.Agents {
		if a.Eyes == Red && !a.Departed {
			return false
		}
	}
	return true
}

// Status renders a short multi-line summary of the village.
func (p *Population) Status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "village status (day %d)\n", p.Round)
	fmt.Fprintf(&b, "  red:      %d\n", p.CountRed())
	fmt.Fprintf(&b, "  blue:     %d\n", p.CountBlue())
	fmt.Fprintf(&b, "  departed: %d\n", p.CountDeparted())
	fmt.Fprintf(&b, "  present:  %d", len(p.Remaining()))
	return b.String()
}
