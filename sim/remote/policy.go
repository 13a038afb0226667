// Package remote implements a villager policy that delegates each decision
// to an OpenAI-compatible chat-completion endpoint.
//
// The model's answer is treated as a proposal. Unreachable endpoints and
// unparseable replies fall back to the closed-form proof; alignment mode
// replaces the proposal with the proof outright; and the certainty rule
// turns any sufficiently certain stay into a departure.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/markqiu/red-blud-eyes/sim"
	"github.com/markqiu/red-blud-eyes/sim/policy"
)

// ErrMissingAPIKey is returned by Decide when no API key is configured.
var ErrMissingAPIKey = errors.New("no API key found: set OPENAI_API_KEY or SILICONFLOW_API_KEY")

// Verdict is the full outcome of one remote decision.
type Verdict struct {
	Leave      bool
	Confidence *float64
	Reason     string
	KeyPoints  []string

	// Aligned is set when alignment mode was on; Overridden when it changed
	// the model's decision.
	Aligned    bool
	Overridden bool
	// Forced is set when the certainty rule turned a stay into a departure.
	Forced bool
	// Fallback is set when the proof summary replaced the model's reply;
	// Err then describes why.
	Fallback bool
	Err      string
	Attempts int
}

// Policy is a sim.Policy backed by a chat-completion endpoint. Safe for
// concurrent calls on distinct agents.
type Policy struct {
	cfg    Config
	client *chatClient
}

// New creates a remote policy. A missing API key is reported on the first
// decision, not here.
func New(cfg Config) *Policy {
	cfg = cfg.withDefaults()
	return &Policy{cfg: cfg, client: newChatClient(cfg)}
}

// Config returns the effective configuration.
func (p *Policy) Config() Config {
	return p.cfg
}

// Decide implements sim.Policy. It appends one line describing the
// decision to the agent's reasoning log.
func (p *Policy) Decide(ctx context.Context, a *sim.Agent, day int, announced bool) (bool, error) {
	if a.Departed {
		return false, nil
	}
	v, err := p.Evaluate(ctx, a, day, announced)
	if err != nil {
		return false, err
	}
	a.Logf("%s", v.LogLine(day))
	return v.Leave, nil
}

// Evaluate computes the decision for a without touching the agent.
func (p *Policy) Evaluate(ctx context.Context, a *sim.Agent, day int, announced bool) (Verdict, error) {
	if a.Departed {
		return Verdict{Reason: "I have already left."}, nil
	}
	if p.cfg.APIKey == "" {
		return Verdict{}, ErrMissingAPIKey
	}

	aligned := p.cfg.AlignmentOn()
	system, user := buildPrompts(p.cfg.Style, aligned, a, day, announced)
	temperature := p.cfg.Style.Temperature(p.cfg.Temperature)

	logrus.Debugf("[remote] start day=%d villager=%s style=%s model=%s", day, a.Name, p.cfg.Style, p.cfg.Model)
	content, n, err := p.client.complete(ctx, system, user, temperature, p.cfg.MaxTokens)
	v := Verdict{Aligned: aligned, Attempts: n}

	var r reply
	switch {
	case err != nil:
		v.Fallback, v.Err = true, err.Error()
		fallbacksTotal.WithLabelValues("transport").Inc()
		logrus.Warnf("[remote] day=%d villager=%s: %v; using proof summary", day, a.Name, err)
		r = proofSummary(a, day, announced)
	default:
		if r, err = parseReply(content); err != nil {
			v.Fallback, v.Err = true, "parse failed: "+err.Error()
			fallbacksTotal.WithLabelValues("parse").Inc()
			logrus.Warnf("[remote] day=%d villager=%s: unparseable reply: %v; using proof summary", day, a.Name, err)
			r = proofSummary(a, day, announced)
		}
	}

	v.Leave, v.Confidence, v.KeyPoints = r.Leave, r.Confidence, r.KeyPoints
	v.Reason = strings.TrimSpace(strings.ReplaceAll(r.Reason, "\n", " "))
	if v.Reason == "" {
		v.Reason = "(no reason given)"
	}

	if aligned {
		expected := policy.Verdict(a, day, announced)
		if v.Leave != expected {
			v.Overridden = true
			alignmentOverridesTotal.Inc()
		}
		v.Leave = expected
		conf := 0.0
		if expected {
			conf = 1.0
		}
		v.Confidence = &conf
	}

	v.Leave, v.Forced = enforceCertainty(v.Leave, v.Confidence, v.Reason, p.cfg.CertaintyThreshold)
	if v.Forced {
		forcedLeavesTotal.Inc()
	}

	decisionsTotal.WithLabelValues(string(p.cfg.Style), outcome(v.Leave)).Inc()
	logrus.Debugf("[remote] end day=%d villager=%s leave=%v attempts=%d", day, a.Name, v.Leave, v.Attempts)
	return v, nil
}

// LogLine renders v as one reasoning-log entry.
func (v Verdict) LogLine(day int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "day %d: [remote] decision=%s", day, outcome(v.Leave))
	if v.Aligned {
		b.WriteString(" (aligned to the standard proof)")
	}
	if v.Forced {
		b.WriteString(" (forced: certain of red eyes)")
	}
	conf := "?"
	if v.Confidence != nil {
		conf = fmt.Sprintf("%.2f", *v.Confidence)
	}
	fmt.Fprintf(&b, "; confidence_red=%s; reason: %s", conf, v.Reason)
	if len(v.KeyPoints) > 0 {
		fmt.Fprintf(&b, "; key points: %s", strings.Join(v.KeyPoints, " | "))
	}
	if v.Err != "" {
		fmt.Fprintf(&b, "; remote error: %s", v.Err)
	}
	return b.String()
}

func outcome(leave bool) string {
	if leave {
		return "leave"
	}
	return "stay"
}
