// Package sim provides the core round-based simulation engine for the
// red/blue eyes puzzle.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - agent.go: Agent (villager) state, its trait and what it can observe
//   - population.go: the village, the announcement and the round loop
//   - policy.go: the Policy interface every decision goes through
//
// # Architecture
//
// The sim package defines the entity model and the Policy interface;
// implementations live in sub-packages:
//   - sim/policy/: deterministic policies (perfect induction and its degraded variants)
//   - sim/remote/: a policy that delegates to an OpenAI-compatible chat endpoint
//   - sim/session/: the single run context behind the HTTP demo
//   - sim/trace/: decision trace recording
//
// # Rounds
//
// A round is one day. Every present agent decides against the same frozen
// snapshot of the village; departures are applied together afterwards. The
// outcome therefore cannot depend on the order in which agents decide, and
// decisions may run concurrently (WithConcurrency).
//
// # Key Functions
//
//   - NewVillage: validate counts and build red-then-blue agents
//   - Population.Announce: make the existence of red eyes common knowledge
//   - Population.AdvanceRound: simulate one day
//   - Run: advance until every red-eyed agent has left or a cap is hit
//   - KnowledgeAnalysis: how deep the existence fact is known without an announcement
package sim
