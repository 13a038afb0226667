// Package session holds the single in-memory run behind the hosting
// service. Every operation takes the session lock, so concurrent HTTP
// requests observe and mutate one run at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/markqiu/red-blud-eyes/sim"
	"github.com/markqiu/red-blud-eyes/sim/policy"
	"github.com/markqiu/red-blud-eyes/sim/remote"
)

// KindRemote tags villagers whose decisions go to the remote policy.
const KindRemote = "llm"

// Villager modes accepted by Init.
const (
	ModeMixedEnds   = "mixed_ends"
	ModeAllRemote   = "all_llm"
	ModeAllLogician = "all_logician"
)

var (
	// ErrNotInitialized is returned by mutations when no run exists.
	ErrNotInitialized = errors.New("not initialized")
	// ErrInvalidRequest is returned when Init parameters are rejected.
	ErrInvalidRequest = errors.New("invalid request")
)

// InitRequest is the body of an init call.
type InitRequest struct {
	NumRed       int    `json:"numRed"`
	NumBlue      int    `json:"numBlue"`
	VillagerMode string `json:"villagerMode"`
	Style        string `json:"openaiStyle"`
}

// RemoteFactory builds the policy for remote-kind villagers of one style.
type RemoteFactory func(style remote.Style) sim.Policy

// Option configures a Session.
type Option func(*Session)

// WithRemoteFactory replaces the default remote policy constructor.
func WithRemoteFactory(f RemoteFactory) Option {
	return func(s *Session) { s.newRemote = f }
}

// WithDefaultStyle sets the style used when Init names none.
func WithDefaultStyle(st remote.Style) Option {
	return func(s *Session) { s.defaultStyle = st }
}

// WithConcurrency lets up to n decisions of one day run at once.
func WithConcurrency(n int) Option {
	return func(s *Session) { s.concurrency = n }
}

// Session is the explicit run context of the hosting service.
type Session struct {
	mu sync.Mutex

	newRemote    RemoteFactory
	defaultStyle remote.Style
	concurrency  int

	run *run
}

type run struct {
	id      string
	pop     *sim.Population
	numRed  int
	numBlue int
	mode    string
	style   remote.Style
}

// New creates an empty session. By default remote villagers use a
// remote.Policy configured from the environment.
func New(opts ...Option) *Session {
	s := &Session{
		newRemote: func(st remote.Style) sim.Policy {
			return remote.New(remote.ConfigFromEnv().WithStyle(st))
		},
		defaultStyle: remote.Social,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunCap is how many days RunToCompletion simulates at most: ten past
// the red count once announced, so the answer on day red always fits, and
// a fixed 20 otherwise.
func RunCap(red int, announced bool) int {
	if announced {
		return red + 10
	}
	return 20
}

// Init replaces any current run with a fresh village.
func (s *Session) Init(req InitRequest) (*State, error) {
	mode := req.VillagerMode
	if mode == "" {
		mode = ModeMixedEnds
	}
	kinds, err := villagerKinds(req.NumRed, req.NumBlue, mode)
	if err != nil {
		return nil, err
	}

	style := s.defaultStyle
	if req.Style != "" {
		if style, err = remote.ParseStyle(req.Style); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}

	router := policy.ByKind{
		Routes: map[string]sim.Policy{
			sim.DefaultKind: policy.Perfect{},
			KindRemote:      s.newRemote(style),
		},
	}
	pop, err := sim.NewVillage(sim.VillageConfig{
		Red:     req.NumRed,
		Blue:    req.NumBlue,
		Kinds:   kinds,
		Policy:  router,
		Options: []sim.Option{sim.WithConcurrency(s.concurrency)},
	})
	if err != nil {
		return nil, err
	}

	r := &run{id: uuid.NewString(), pop: pop, numRed: req.NumRed, numBlue: req.NumBlue, mode: mode, style: style}
	pop.Events = append(pop.Events, fmt.Sprintf("[backend] initialised: %d red, %d blue; mode=%s; style=%s",
		req.NumRed, req.NumBlue, mode, style))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = r
	logrus.Infof("[session] init run=%s red=%d blue=%d mode=%s style=%s", r.id, r.numRed, r.numBlue, mode, style)
	return r.state(), nil
}

// Announce makes the announcement in the current run.
func (s *Session) Announce() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return nil, ErrNotInitialized
	}
	s.run.pop.Announce()
	logrus.Infof("[session] announce run=%s", s.run.id)
	return s.run.state(), nil
}

// Advance simulates one day.
func (s *Session) Advance(ctx context.Context) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return nil, ErrNotInitialized
	}
	if _, err := s.run.pop.AdvanceRound(ctx); err != nil {
		return nil, err
	}
	logrus.Infof("[session] next run=%s day=%d", s.run.id, s.run.pop.Round)
	return s.run.state(), nil
}

// RunToCompletion simulates days until every red-eyed villager has left
// or RunCap is reached. Without an announcement it stops at the cap and
// says so in the village log.
func (s *Session) RunToCompletion(ctx context.Context) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return nil, ErrNotInitialized
	}

	pop := s.run.pop
	limit := RunCap(s.run.numRed, pop.Announced)
	if _, err := sim.Run(ctx, pop, limit); err != nil {
		return nil, err
	}
	if !pop.Announced && !pop.Solved() {
		pop.Events = append(pop.Events, fmt.Sprintf("stopped: without an announcement the village never converges; showed %d days", limit))
	}
	logrus.Infof("[session] run_all run=%s day=%d solved=%v", s.run.id, pop.Round, pop.Solved())
	return s.run.state(), nil
}

// Reset discards the current run.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != nil {
		logrus.Infof("[session] reset run=%s", s.run.id)
	}
	s.run = nil
}

// State snapshots the current run, or returns nil when there is none.
func (s *Session) State() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return nil
	}
	return s.run.state()
}

// villagerKinds assigns a type tag per villager, red first.
func villagerKinds(red, blue int, mode string) ([]string, error) {
	total := red + blue
	if red < 0 || blue < 0 || total > sim.MaxPopulation {
		return nil, fmt.Errorf("%w: invalid population size (red=%d, blue=%d)", sim.ErrInvalidPopulation, red, blue)
	}

	fill := func(kind string) []string {
		kinds := make([]string, total)
		for i := range kinds {
			kinds[i] = kind
		}
		return kinds
	}
	switch mode {
	case ModeAllRemote:
		return fill(KindRemote), nil
	case ModeAllLogician:
		return fill(sim.DefaultKind), nil
	case ModeMixedEnds:
		kinds := fill(sim.DefaultKind)
		if total > 0 {
			kinds[0] = KindRemote
			kinds[total-1] = KindRemote
		}
		return kinds, nil
	default:
		return nil, fmt.Errorf("%w: unknown villager mode %q", ErrInvalidRequest, mode)
	}
}
