// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package normalize applies ordering canonicalization, fragment desugaring,
// dead-state/dead-event pruning, token deduplication, and provenance
// normalization to a MigrationIr, each pass recording a mutation count.
package normalize

import (
	"path"
	"sort"
	"strings"

	"github.com/nightisyang/frankentui-migrate/internal/ir"
)

// PassReport counts the mutations one normalization pass made.
type PassReport struct {
	Name    string
	Mutated int
}

// Report is the NormalizationReport artifact: the per-pass mutation counts
// in application order.
type Report struct {
	Passes []PassReport
}

// Run applies all six passes in order and returns the normalized IR
// alongside the mutation report. Run is idempotent: Run(Run(m).IR) produces
// the same IR with every pass reporting zero mutations.
func Run(m ir.MigrationIr) (ir.MigrationIr, Report) {
	var report Report

	m, n := canonicalizeOrdering(m)
	report.Passes = append(report.Passes, PassReport{"canonicalize_ordering", n})

	m, n = desugarFragments(m)
	report.Passes = append(report.Passes, PassReport{"desugar_fragments", n})

	m, n = pruneDeadState(m)
	report.Passes = append(report.Passes, PassReport{"prune_dead_state", n})

	m, n = pruneDeadEvents(m)
	report.Passes = append(report.Passes, PassReport{"prune_dead_events", n})

	m, n = mergeDuplicateTokens(m)
	report.Passes = append(report.Passes, PassReport{"merge_duplicate_tokens", n})

	m, n = normalizeProvenance(m)
	report.Passes = append(report.Passes, PassReport{"normalize_provenance", n})

	// The passes mutate the IR, so the integrity hash is re-stamped over the
	// normalized content to keep V007 satisfied.
	if stamped, err := ir.StampIntegrityHash(m); err == nil {
		m = stamped
	}

	return m, report
}

func sortIds(ids []ir.NodeId) []ir.NodeId {
	out := make([]ir.NodeId, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func idsEqual(a, b []ir.NodeId) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// canonicalizeOrdering sorts every children list and the root list by
// NodeId. Mutation count is the number of lists that changed.
func canonicalizeOrdering(m ir.MigrationIr) (ir.MigrationIr, int) {
	mutated := 0

	sortedRoots := sortIds(m.ViewTree.Roots)
	if !idsEqual(sortedRoots, m.ViewTree.Roots) {
		mutated++
	}
	m.ViewTree.Roots = sortedRoots

	for _, node := range m.ViewTree.Nodes {
		sorted := sortIds(node.Children)
		if !idsEqual(sorted, node.Children) {
			mutated++
		}
		node.Children = sorted
	}
	return m, mutated
}

// desugarFragments replaces each Fragment node whose children are all valid
// with its children spliced into the parent's children list, in order, then
// deletes the Fragment node. Repeats until no Fragment remains reachable, so
// nested fragments fully desugar in one pass.
func desugarFragments(m ir.MigrationIr) (ir.MigrationIr, int) {
	mutated := 0

	isFragment := func(id ir.NodeId) bool {
		n, ok := m.ViewTree.Nodes[id]
		return ok && n.Kind == ir.ViewNodeFragment
	}

	expand := func(children []ir.NodeId) ([]ir.NodeId, bool) {
		changed := false
		out := make([]ir.NodeId, 0, len(children))
		for _, c := range children {
			if isFragment(c) {
				frag := m.ViewTree.Nodes[c]
				allValid := true
				for _, fc := range frag.Children {
					if _, ok := m.ViewTree.Nodes[fc]; !ok {
						allValid = false
						break
					}
				}
				if allValid {
					out = append(out, frag.Children...)
					delete(m.ViewTree.Nodes, c)
					changed = true
					continue
				}
			}
			out = append(out, c)
		}
		return out, changed
	}

	for {
		anyChange := false

		newRoots, changed := expand(m.ViewTree.Roots)
		if changed {
			m.ViewTree.Roots = newRoots
			anyChange = true
		}
		for id, node := range m.ViewTree.Nodes {
			newChildren, changed := expand(node.Children)
			if changed {
				node.Children = newChildren
				m.ViewTree.Nodes[id] = node
				anyChange = true
			}
		}

		if !anyChange {
			break
		}
		mutated++
	}

	return m, mutated
}

// pruneDeadState removes state variables with an empty reader set and no
// referenced writers: no transition targets it and no effect reads/writes it.
func pruneDeadState(m ir.MigrationIr) (ir.MigrationIr, int) {
	referenced := map[ir.NodeId]bool{}
	for _, t := range m.EventCatalog.Transitions {
		referenced[t.TargetState] = true
	}
	for _, eff := range m.EffectRegistry.Effects {
		for _, id := range eff.Reads {
			referenced[id] = true
		}
		for _, id := range eff.Writes {
			referenced[id] = true
		}
	}
	for _, edge := range m.StateGraph.Edges {
		referenced[edge.From] = true
		referenced[edge.To] = true
	}

	mutated := 0
	for id, v := range m.StateGraph.Variables {
		if len(v.Readers) > 0 || len(v.Writers) > 0 || referenced[id] {
			continue
		}
		delete(m.StateGraph.Variables, id)
		mutated++
	}
	return m, mutated
}

// pruneDeadEvents removes events with no outgoing transitions.
func pruneDeadEvents(m ir.MigrationIr) (ir.MigrationIr, int) {
	hasTransition := map[ir.NodeId]bool{}
	for _, t := range m.EventCatalog.Transitions {
		hasTransition[t.EventID] = true
	}
	mutated := 0
	for id := range m.EventCatalog.Events {
		if hasTransition[id] {
			continue
		}
		delete(m.EventCatalog.Events, id)
		mutated++
	}
	return m, mutated
}

// mergeDuplicateTokens coalesces style tokens whose (category, value) pair
// is identical, keeping the one with the smallest NodeId.
func mergeDuplicateTokens(m ir.MigrationIr) (ir.MigrationIr, int) {
	type key struct {
		cat TokenCategoryKey
		val string
	}
	keep := map[key]ir.NodeId{}
	ids := ir.SortedNodeIds(m.StyleIntent.Tokens)
	for _, id := range ids {
		t := m.StyleIntent.Tokens[id]
		k := key{cat: TokenCategoryKey(t.Category), val: t.Value}
		if existing, ok := keep[k]; ok {
			if id < existing {
				keep[k] = id
			}
			continue
		}
		keep[k] = id
	}

	survivors := map[ir.NodeId]bool{}
	for _, id := range keep {
		survivors[id] = true
	}

	mutated := 0
	for id := range m.StyleIntent.Tokens {
		if !survivors[id] {
			delete(m.StyleIntent.Tokens, id)
			mutated++
		}
	}
	return m, mutated
}

// TokenCategoryKey is a plain string alias used as a map key for token
// dedup; it exists only to keep mergeDuplicateTokens readable.
type TokenCategoryKey = ir.TokenCategory

// normalizeProvenance canonicalizes file paths: collapses "./", "..", and
// repeated separators without changing provenance identity (the file still
// refers to the same source; only its textual form changes).
func normalizeProvenance(m ir.MigrationIr) (ir.MigrationIr, int) {
	mutated := 0
	clean := func(f string) string {
		if f == "" {
			return f
		}
		return path.Clean(strings.ReplaceAll(f, "\\", "/"))
	}

	for id, node := range m.ViewTree.Nodes {
		cleaned := clean(node.Provenance.File)
		if cleaned != node.Provenance.File {
			node.Provenance.File = cleaned
			m.ViewTree.Nodes[id] = node
			mutated++
		}
	}
	for _, v := range m.StateGraph.Variables {
		if cleaned := clean(v.Provenance.File); cleaned != v.Provenance.File {
			v.Provenance.File = cleaned
			mutated++
		}
	}
	for _, e := range m.EventCatalog.Events {
		if cleaned := clean(e.Provenance.File); cleaned != e.Provenance.File {
			e.Provenance.File = cleaned
			mutated++
		}
	}
	for _, eff := range m.EffectRegistry.Effects {
		if cleaned := clean(eff.Provenance.File); cleaned != eff.Provenance.File {
			eff.Provenance.File = cleaned
			mutated++
		}
	}
	return m, mutated
}
