package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/markqiu/red-blud-eyes/sim"
	"github.com/markqiu/red-blud-eyes/sim/policy"
	"github.com/markqiu/red-blud-eyes/sim/remote"
)

// nameRemote selects the chat-completion policy; the other names come from
// the policy package.
const nameRemote = "remote"

// Scenario is a village described in a YAML file.
// Every field must be listed to satisfy KnownFields(true) strict parsing.
type Scenario struct {
	Red         int                   `yaml:"red"`
	Blue        int                   `yaml:"blue"`
	Announce    *bool                 `yaml:"announce"` // nil = announce
	Rounds      int                   `yaml:"rounds"`   // 0 = sim.DefaultRoundCap
	Kind        string                `yaml:"kind"`
	Kinds       []string              `yaml:"kinds"`
	Concurrency int                   `yaml:"concurrency"`
	Policy      PolicySpec            `yaml:"policy"`
	Routes      map[string]PolicySpec `yaml:"routes"` // per-kind overrides of Policy
	Remote      RemoteSpec            `yaml:"remote"`
}

// PolicySpec names a policy and its parameters. Inner wraps max-day and
// fallible.
type PolicySpec struct {
	Name        string      `yaml:"name"`
	MaxK        int         `yaml:"max_k"`
	MaxDay      int         `yaml:"max_day"`
	MistakeRate float64     `yaml:"mistake_rate"`
	Seed        int64       `yaml:"seed"`
	Inner       *PolicySpec `yaml:"inner"`
}

// RemoteSpec overrides remote settings taken from the environment.
type RemoteSpec struct {
	Model              string   `yaml:"model"`
	BaseURL            string   `yaml:"base_url"`
	Style              string   `yaml:"style"`
	Temperature        *float64 `yaml:"temperature"`
	MaxTokens          int      `yaml:"max_tokens"`
	TimeoutSeconds     float64  `yaml:"timeout_seconds"`
	CertaintyThreshold float64  `yaml:"certainty_threshold"`
	Align              bool     `yaml:"align"`
	RequestsPerMinute  int      `yaml:"requests_per_minute"`
}

// LoadScenario parses path with strict field checking: typos must cause errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := sc.Policy.validate(); err != nil {
		return nil, err
	}
	for kind, spec := range sc.Routes {
		if err := spec.validate(); err != nil {
			return nil, fmt.Errorf("route %q: %w", kind, err)
		}
	}
	if sc.Remote.Style != "" {
		if _, err := remote.ParseStyle(sc.Remote.Style); err != nil {
			return nil, err
		}
	}
	return &sc, nil
}

// Announced reports whether the visitor speaks before day 1.
func (sc *Scenario) Announced() bool {
	return sc.Announce == nil || *sc.Announce
}

// RemoteConfig applies the scenario's remote overrides to base.
func (sc *Scenario) RemoteConfig(base remote.Config) remote.Config {
	r := sc.Remote
	if r.Model != "" {
		base.Model = r.Model
	}
	if r.BaseURL != "" {
		base.BaseURL = r.BaseURL
	}
	if r.Style != "" {
		base.Style = remote.Style(r.Style)
	}
	if r.Temperature != nil {
		base.Temperature = *r.Temperature
	}
	if r.MaxTokens > 0 {
		base.MaxTokens = r.MaxTokens
	}
	if r.TimeoutSeconds > 0 {
		base.Timeout = time.Duration(r.TimeoutSeconds * float64(time.Second))
	}
	if r.CertaintyThreshold > 0 {
		base.CertaintyThreshold = r.CertaintyThreshold
	}
	base.Align = base.Align || r.Align
	if r.RequestsPerMinute > 0 {
		base.RequestsPerMinute = r.RequestsPerMinute
	}
	return base
}

// BuildPolicy assembles the village policy: Policy for every kind, with
// Routes overriding it per kind.
func (sc *Scenario) BuildPolicy(rc remote.Config) sim.Policy {
	def := sc.Policy.build(rc)
	if len(sc.Routes) == 0 {
		return def
	}
	routes := make(map[string]sim.Policy, len(sc.Routes))
	for kind, spec := range sc.Routes {
		routes[kind] = spec.build(rc)
	}
	return policy.ByKind{Routes: routes, Default: def}
}

func (ps PolicySpec) validate() error {
	if ps.Name != "" && ps.Name != nameRemote && !policy.IsValidPolicy(ps.Name) {
		return fmt.Errorf("unknown policy %q; valid policies: %v", ps.Name, append(policy.ValidPolicyNames(), nameRemote))
	}
	if ps.MistakeRate < 0 || ps.MistakeRate > 1 {
		return fmt.Errorf("mistake_rate must be in [0,1], got %v", ps.MistakeRate)
	}
	if ps.Inner != nil {
		return ps.Inner.validate()
	}
	return nil
}

// build constructs a validated spec. An empty name is perfect induction.
func (ps PolicySpec) build(rc remote.Config) sim.Policy {
	switch ps.Name {
	case "":
		return policy.Perfect{}
	case nameRemote:
		return remote.New(rc)
	}
	var inner sim.Policy
	if ps.Inner != nil {
		inner = ps.Inner.build(rc)
	}
	return policy.New(ps.Name, policy.Params{
		MaxK:        ps.MaxK,
		MaxDay:      ps.MaxDay,
		MistakeRate: ps.MistakeRate,
		Seed:        ps.Seed,
		Inner:       inner,
	})
}
