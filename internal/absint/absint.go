// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package absint implements the Galois-connected abstract interpretation
// that verifies safety properties of a Canonical Effect Model. Every
// verdict is Proven, Refuted (with a counterexample), or Unknown; Unknown
// is never treated as safe.
package absint

import (
	"fmt"
	"sort"

	"github.com/nightisyang/frankentui-migrate/internal/effectmodel"
	"github.com/nightisyang/frankentui-migrate/internal/ir"
)

// AbstractEffectState is the lattice element: (may_write, may_read,
// executed) over NodeIds. Join is set union; bottom is all-empty.
type AbstractEffectState struct {
	MayWrite map[ir.NodeId]bool
	MayRead  map[ir.NodeId]bool
	Executed map[ir.NodeId]bool
}

// Bottom returns the all-empty lattice element.
func Bottom() AbstractEffectState {
	return AbstractEffectState{
		MayWrite: map[ir.NodeId]bool{},
		MayRead:  map[ir.NodeId]bool{},
		Executed: map[ir.NodeId]bool{},
	}
}

// Join unions two states; a ⊔ b.
func Join(a, b AbstractEffectState) AbstractEffectState {
	out := Bottom()
	for id := range a.MayWrite {
		out.MayWrite[id] = true
	}
	for id := range b.MayWrite {
		out.MayWrite[id] = true
	}
	for id := range a.MayRead {
		out.MayRead[id] = true
	}
	for id := range b.MayRead {
		out.MayRead[id] = true
	}
	for id := range a.Executed {
		out.Executed[id] = true
	}
	for id := range b.Executed {
		out.Executed[id] = true
	}
	return out
}

// Transfer unions one effect's reads/writes into a state and marks it
// executed, the transfer function the model's concretization must
// over-approximate.
func Transfer(s AbstractEffectState, eff *effectmodel.CanonicalEffect) AbstractEffectState {
	out := Join(s, Bottom())
	for _, id := range eff.Writes {
		out.MayWrite[id] = true
	}
	for _, id := range eff.Reads {
		out.MayRead[id] = true
	}
	out.Executed[eff.ID] = true
	return out
}

// VerdictStatus is the three-valued safety outcome.
type VerdictStatus string

const (
	Proven  VerdictStatus = "Proven"
	Refuted VerdictStatus = "Refuted"
	Unknown VerdictStatus = "Unknown"
)

// Counterexample is the witness attached to a Refuted (or Unknown) verdict.
type Counterexample struct {
	WitnessPath []ir.NodeId
	Explanation string
}

// Verdict is one property's outcome.
type Verdict struct {
	Property    string
	Status      VerdictStatus
	Reason      string
	Counterexample *Counterexample
}

// IsConservativelySafe reports Proven only; Unknown and Refuted are both
// treated as unsafe by any downstream reader of this method.
func (v Verdict) IsConservativelySafe() bool {
	return v.Status == Proven
}

// ProofObligation is a per-effect record of which properties were checked
// against it and their outcomes.
type ProofObligation struct {
	EffectID ir.NodeId
	Checked  []string
}

// AnalysisResult is the full abstract-interpretation artifact.
type AnalysisResult struct {
	Verdicts    map[string]Verdict
	Obligations []ProofObligation
	AllSafe     bool
}

// Config holds the analysis settings. ForbiddenWrites is the configured
// forbidden-state set for NoForbiddenSideEffects; empty by default (no
// forbidden state configured).
type Config struct {
	ForbiddenWrites map[ir.NodeId]bool
	MaxIterations   int
}

// DefaultConfig returns a Config with no forbidden writes and a generous
// iteration bound for the idempotence BFS.
func DefaultConfig() Config {
	return Config{ForbiddenWrites: map[ir.NodeId]bool{}, MaxIterations: 10000}
}

// Analyze checks all six safety properties and returns the combined result.
func Analyze(model effectmodel.Model, cfg Config) AnalysisResult {
	result := AnalysisResult{Verdicts: map[string]Verdict{}}

	result.Verdicts["EffectOrderingSafety"] = checkEffectOrderingSafety(model)
	result.Verdicts["NoForbiddenSideEffects"] = checkNoForbiddenSideEffects(model, cfg)
	result.Verdicts["DeterminismGuarantee"] = checkDeterminismGuarantee(model)
	result.Verdicts["CleanupCompleteness"] = checkCleanupCompleteness(model)
	result.Verdicts["IdempotencePreservation"] = checkIdempotencePreservation(model, cfg)
	result.Verdicts["SingleWriterRule"] = checkSingleWriterRule(model)

	result.Obligations = buildObligations(model, result.Verdicts)

	allSafe := true
	for _, v := range result.Verdicts {
		if v.Status != Proven {
			allSafe = false
			break
		}
	}
	result.AllSafe = allSafe
	return result
}

func buildObligations(model effectmodel.Model, verdicts map[string]Verdict) []ProofObligation {
	ids := ir.SortedNodeIds(model.Effects)
	props := make([]string, 0, len(verdicts))
	for p := range verdicts {
		props = append(props, p)
	}
	sort.Strings(props)

	obligations := make([]ProofObligation, 0, len(ids))
	for _, id := range ids {
		obligations = append(obligations, ProofObligation{EffectID: id, Checked: props})
	}
	return obligations
}

// checkEffectOrderingSafety builds the ordering-constraint DAG and looks
// for a cycle; a cycle refutes with the cycle as the witness path.
func checkEffectOrderingSafety(model effectmodel.Model) Verdict {
	adj := map[ir.NodeId][]ir.NodeId{}
	for _, c := range model.Ordering {
		adj[c.Before] = append(adj[c.Before], c.After)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	colors := map[ir.NodeId]int{}
	var cycle []ir.NodeId

	var dfs func(id ir.NodeId, path []ir.NodeId) bool
	dfs = func(id ir.NodeId, path []ir.NodeId) bool {
		colors[id] = gray
		path = append(path, id)
		for _, next := range adj[id] {
			switch colors[next] {
			case gray:
				// Found the back edge; cycle is the path from next onward.
				for i, p := range path {
					if p == next {
						cycle = append(append([]ir.NodeId{}, path[i:]...), next)
						break
					}
				}
				return true
			case white:
				if dfs(next, path) {
					return true
				}
			}
		}
		colors[id] = black
		return false
	}

	nodes := map[ir.NodeId]bool{}
	for id := range model.Effects {
		nodes[id] = true
	}
	sortedNodes := ir.SortedNodeIds(model.Effects)
	for _, id := range sortedNodes {
		if colors[id] == white {
			if dfs(id, nil) {
				return Verdict{
					Property: "EffectOrderingSafety",
					Status:   Refuted,
					Reason:   "ordering constraint graph contains a cycle",
					Counterexample: &Counterexample{WitnessPath: cycle, Explanation: "cyclic before/after ordering constraints"},
				}
			}
		}
	}
	return Verdict{Property: "EffectOrderingSafety", Status: Proven, Reason: "ordering constraint graph is acyclic"}
}

// checkNoForbiddenSideEffects refutes if any effect's writes intersect the
// configured forbidden set.
func checkNoForbiddenSideEffects(model effectmodel.Model, cfg Config) Verdict {
	if len(cfg.ForbiddenWrites) == 0 {
		return Verdict{Property: "NoForbiddenSideEffects", Status: Proven, Reason: "no forbidden writes configured"}
	}
	for _, id := range ir.SortedNodeIds(model.Effects) {
		eff := model.Effects[id]
		for _, w := range eff.Writes {
			if cfg.ForbiddenWrites[w] {
				return Verdict{
					Property: "NoForbiddenSideEffects",
					Status:   Refuted,
					Reason:   fmt.Sprintf("effect %s writes forbidden state %s", id, w),
					Counterexample: &Counterexample{WitnessPath: []ir.NodeId{id, w}, Explanation: "write to forbidden state"},
				}
			}
		}
	}
	return Verdict{Property: "NoForbiddenSideEffects", Status: Proven, Reason: "no writes intersect the forbidden set"}
}

// checkDeterminismGuarantee refutes if any non-FireAndForget effect lacks
// deterministic=true.
func checkDeterminismGuarantee(model effectmodel.Model) Verdict {
	for _, id := range ir.SortedNodeIds(model.Effects) {
		eff := model.Effects[id]
		if eff.ExecutionModel == effectmodel.ExecutionFireAndForget {
			continue
		}
		if !eff.Deterministic {
			return Verdict{
				Property: "DeterminismGuarantee",
				Status:   Refuted,
				Reason:   fmt.Sprintf("effect %s is non-deterministic", id),
				Counterexample: &Counterexample{WitnessPath: []ir.NodeId{id}, Explanation: "non-FireAndForget effect without deterministic=true"},
			}
		}
	}
	return Verdict{Property: "DeterminismGuarantee", Status: Proven, Reason: "every non-FireAndForget effect is deterministic"}
}

// checkCleanupCompleteness refutes if any Subscription effect has
// cleanup == None.
func checkCleanupCompleteness(model effectmodel.Model) Verdict {
	for _, id := range model.Subscriptions {
		eff := model.Effects[id]
		if eff.Cleanup == effectmodel.CleanupNone {
			return Verdict{
				Property: "CleanupCompleteness",
				Status:   Refuted,
				Reason:   fmt.Sprintf("subscription effect %s has no cleanup", id),
				Counterexample: &Counterexample{WitnessPath: []ir.NodeId{id}, Explanation: "subscription effect with cleanup=None"},
			}
		}
	}
	return Verdict{Property: "CleanupCompleteness", Status: Proven, Reason: "every subscription effect has a cleanup strategy"}
}

// checkIdempotencePreservation BFS-walks the depends_on closure of every
// idempotent effect (the Deps field of the original EffectDef, carried
// forward as CanonicalEffect doesn't track deps directly, so the walk uses
// shared-state edges as the dependency relation); if any reached effect is
// non-idempotent, Refuted; exceeding max_iterations yields Unknown. "Depends
// on" means predecessor: an ordering constraint (before -> after) means
// after depends on before having already run, so the walk follows after ->
// before, not before -> after.
func checkIdempotencePreservation(model effectmodel.Model, cfg Config) Verdict {
	adj := dependencyAdjacency(model)

	for _, id := range ir.SortedNodeIds(model.Effects) {
		eff := model.Effects[id]
		if !eff.Idempotent {
			continue
		}
		visited := map[ir.NodeId]bool{id: true}
		queue := []ir.NodeId{id}
		iterations := 0
		for len(queue) > 0 {
			iterations++
			if iterations > cfg.MaxIterations {
				return Verdict{Property: "IdempotencePreservation", Status: Unknown, Reason: "exceeded max_iterations during BFS"}
			}
			cur := queue[0]
			queue = queue[1:]
			for _, next := range adj[cur] {
				if visited[next] {
					continue
				}
				visited[next] = true
				if next != id {
					if other, ok := model.Effects[next]; ok && !other.Idempotent {
						return Verdict{
							Property: "IdempotencePreservation",
							Status:   Refuted,
							Reason:   fmt.Sprintf("idempotent effect %s depends transitively on non-idempotent effect %s", id, next),
							Counterexample: &Counterexample{WitnessPath: []ir.NodeId{id, next}, Explanation: "idempotent effect depends transitively on a non-idempotent effect"},
						}
					}
				}
				queue = append(queue, next)
			}
		}
	}
	return Verdict{Property: "IdempotencePreservation", Status: Proven, Reason: "every idempotent effect's dependency closure is idempotent"}
}

func dependencyAdjacency(model effectmodel.Model) map[ir.NodeId][]ir.NodeId {
	adj := map[ir.NodeId][]ir.NodeId{}
	for _, c := range model.Ordering {
		adj[c.After] = append(adj[c.After], c.Before)
	}
	return adj
}

// checkSingleWriterRule groups effects by the state they write; any state
// with more than one writer refutes.
func checkSingleWriterRule(model effectmodel.Model) Verdict {
	writers := map[ir.NodeId][]ir.NodeId{}
	for _, id := range ir.SortedNodeIds(model.Effects) {
		eff := model.Effects[id]
		for _, w := range eff.Writes {
			writers[w] = append(writers[w], id)
		}
	}

	var states []ir.NodeId
	for s := range writers {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })

	for _, s := range states {
		if len(writers[s]) > 1 {
			return Verdict{
				Property: "SingleWriterRule",
				Status:   Refuted,
				Reason:   fmt.Sprintf("state %s has %d writers", s, len(writers[s])),
				Counterexample: &Counterexample{WitnessPath: writers[s], Explanation: "state written by more than one effect"},
			}
		}
	}
	return Verdict{Property: "SingleWriterRule", Status: Proven, Reason: "every written state has exactly one writer"}
}
