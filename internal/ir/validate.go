// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ir

import "fmt"

// color is the three-coloring state used by the view-tree cycle check.
type color int

const (
	white color = iota // unvisited
	gray               // on the current DFS path
	black              // fully processed
)

// Validate runs validate_ir: all seven structural invariants (V001..V007).
// It never panics and always returns a (possibly empty) ValidationErrors;
// an empty result means m is well-formed.
func Validate(m MigrationIr) ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, checkSchemaVersion(m)...)
	errs = append(errs, checkAcyclic(m)...)
	errs = append(errs, checkDanglingIds(m)...)
	errs = append(errs, checkSortedChildren(m)...)
	errs = append(errs, checkStateRefs(m)...)
	errs = append(errs, checkProvenance(m)...)
	errs = append(errs, checkIntegrityHash(m)...)

	return errs
}

func checkSchemaVersion(m MigrationIr) ValidationErrors {
	if m.Metadata.SchemaVersion == "" {
		// Absence is tolerated for in-progress IRs (lowering hasn't
		// stamped metadata yet); only a mismatched, non-empty value is
		// a violation.
		return nil
	}
	if m.Metadata.SchemaVersion != SchemaVersion {
		return ValidationErrors{{
			Code:    V001SchemaVersion,
			Message: fmt.Sprintf("schema_version %q does not match build constant %q", m.Metadata.SchemaVersion, SchemaVersion),
		}}
	}
	return nil
}

// checkAcyclic runs a DFS with three-coloring over the view tree, as
// BaseNode's dag.Builder.detectCycles does for the execution DAG.
func checkAcyclic(m MigrationIr) ValidationErrors {
	colors := make(map[NodeId]color, len(m.ViewTree.Nodes))
	var errs ValidationErrors

	var dfs func(id NodeId) bool // returns false on cycle
	dfs = func(id NodeId) bool {
		switch colors[id] {
		case gray:
			return false
		case black:
			return true
		}
		colors[id] = gray
		node, ok := m.ViewTree.Nodes[id]
		if ok {
			for _, child := range node.Children {
				if !dfs(child) {
					return false
				}
			}
		}
		colors[id] = black
		return true
	}

	for _, root := range m.ViewTree.Roots {
		if !dfs(root) {
			errs = append(errs, &ValidationError{
				Code:    V002ViewTreeAcyclic,
				Message: "view tree contains a cycle reachable from a root",
				NodeID:  root,
			})
		}
	}
	return errs
}

func checkDanglingIds(m MigrationIr) ValidationErrors {
	var errs ValidationErrors
	for _, root := range m.ViewTree.Roots {
		if _, ok := m.ViewTree.Nodes[root]; !ok {
			errs = append(errs, &ValidationError{
				Code:    V003DanglingID,
				Message: "root id not present in node map",
				NodeID:  root,
			})
		}
	}
	for id, node := range m.ViewTree.Nodes {
		for _, child := range node.Children {
			if _, ok := m.ViewTree.Nodes[child]; !ok {
				errs = append(errs, &ValidationError{
					Code:    V003DanglingID,
					Message: fmt.Sprintf("child id %s of node %s not present in node map", child, id),
					NodeID:  id,
				})
			}
		}
	}
	return errs
}

func checkSortedChildren(m MigrationIr) ValidationErrors {
	var errs ValidationErrors
	for id, node := range m.ViewTree.Nodes {
		sorted := node.SortedChildren()
		for i, c := range node.Children {
			if c != sorted[i] {
				errs = append(errs, &ValidationError{
					Code:    V004UnsortedChildren,
					Message: "children list is not sorted ascending by NodeId",
					NodeID:  id,
				})
				break
			}
		}
	}
	return errs
}

func checkStateRefs(m MigrationIr) ValidationErrors {
	var errs ValidationErrors

	stateExists := func(id NodeId) bool {
		if _, ok := m.StateGraph.Variables[id]; ok {
			return true
		}
		_, ok := m.StateGraph.Derived[id]
		return ok
	}

	for _, t := range m.EventCatalog.Transitions {
		if !stateExists(t.TargetState) {
			errs = append(errs, &ValidationError{
				Code:    V005DanglingRef,
				Message: fmt.Sprintf("transition target_state %s does not exist", t.TargetState),
				NodeID:  t.EventID,
			})
		}
	}

	for id, eff := range m.EffectRegistry.Effects {
		for _, ref := range eff.Reads {
			if !stateExists(ref) {
				errs = append(errs, &ValidationError{
					Code:    V005DanglingRef,
					Message: fmt.Sprintf("effect read %s does not exist", ref),
					NodeID:  id,
				})
			}
		}
		for _, ref := range eff.Writes {
			if !stateExists(ref) {
				errs = append(errs, &ValidationError{
					Code:    V005DanglingRef,
					Message: fmt.Sprintf("effect write %s does not exist", ref),
					NodeID:  id,
				})
			}
		}
	}
	return errs
}

func checkProvenance(m MigrationIr) ValidationErrors {
	var errs ValidationErrors
	for id, node := range m.ViewTree.Nodes {
		if node.Provenance.Empty() {
			errs = append(errs, &ValidationError{
				Code:    V006BadProvenance,
				Message: "view node has empty file or zero line",
				NodeID:  id,
			})
		}
	}
	return errs
}

func checkIntegrityHash(m MigrationIr) ValidationErrors {
	if m.Metadata.IntegrityHash == "" {
		return nil
	}
	want, err := ComputeIntegrityHash(m)
	if err != nil {
		return ValidationErrors{{
			Code:    V007IntegrityHash,
			Message: fmt.Sprintf("failed to compute integrity hash: %v", err),
		}}
	}
	if want != m.Metadata.IntegrityHash {
		return ValidationErrors{{
			Code:    V007IntegrityHash,
			Message: "integrity_hash does not match canonical serialization",
		}}
	}
	return nil
}
