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

import "sort"

// Builder accumulates the dimensions of a MigrationIr incrementally, the way
// lowering produces it: view nodes first, then state/event/effect/style
// entries discovered while walking the source tree. Children are sorted as
// each view node is added (V004); Build sorts the roots and stamps Metadata
// before returning the assembled IR.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	roots   []NodeId
	nodes   map[NodeId]*ViewNode
	vars    map[NodeId]*StateVariable
	derived map[NodeId]*DerivedComputation
	edges   []DataFlowEdge
	events  map[NodeId]*EventDef
	transns []Transition
	effects map[NodeId]*EffectDef
	tokens  map[NodeId]*StyleToken
	layouts map[NodeId]*LayoutIntent
	themes  []Theme
	reqCaps []Capability
	optCaps []Capability
	platform []string
	a11y    []AccessibilityEntry
	warnings []Diagnostic
	sourceProject string
	runID         string
	fileCount     int
}

// NewBuilder returns an empty Builder.
func NewBuilder(sourceProject, runID string) *Builder {
	return &Builder{
		nodes:         make(map[NodeId]*ViewNode),
		vars:          make(map[NodeId]*StateVariable),
		derived:       make(map[NodeId]*DerivedComputation),
		events:        make(map[NodeId]*EventDef),
		effects:       make(map[NodeId]*EffectDef),
		tokens:        make(map[NodeId]*StyleToken),
		layouts:       make(map[NodeId]*LayoutIntent),
		sourceProject: sourceProject,
		runID:         runID,
	}
}

// AddRoot registers a top-level view node id.
func (b *Builder) AddRoot(id NodeId) *Builder {
	b.roots = append(b.roots, id)
	return b
}

// AddViewNode inserts or replaces a view node. Children are sorted on
// insertion so Build never has to repair ordering.
func (b *Builder) AddViewNode(n *ViewNode) *Builder {
	sort.Slice(n.Children, func(i, j int) bool { return n.Children[i] < n.Children[j] })
	b.nodes[n.ID] = n
	return b
}

// AddStateVariable registers a state-graph variable.
func (b *Builder) AddStateVariable(v *StateVariable) *Builder {
	b.vars[v.ID] = v
	return b
}

// AddDerived registers a derived computation.
func (b *Builder) AddDerived(d *DerivedComputation) *Builder {
	b.derived[d.ID] = d
	return b
}

// AddDataFlowEdge registers a provider/consumer edge.
func (b *Builder) AddDataFlowEdge(e DataFlowEdge) *Builder {
	b.edges = append(b.edges, e)
	return b
}

// AddEvent registers an event catalog entry.
func (b *Builder) AddEvent(e *EventDef) *Builder {
	b.events[e.ID] = e
	return b
}

// AddTransition registers an event-to-state transition.
func (b *Builder) AddTransition(t Transition) *Builder {
	b.transns = append(b.transns, t)
	return b
}

// AddEffect registers an effect registry entry.
func (b *Builder) AddEffect(e *EffectDef) *Builder {
	b.effects[e.ID] = e
	return b
}

// AddStyleToken registers a style token.
func (b *Builder) AddStyleToken(t *StyleToken) *Builder {
	b.tokens[t.ID] = t
	return b
}

// AddLayoutIntent registers a node's layout strategy.
func (b *Builder) AddLayoutIntent(l *LayoutIntent) *Builder {
	b.layouts[l.NodeID] = l
	return b
}

// AddTheme registers a named theme.
func (b *Builder) AddTheme(t Theme) *Builder {
	b.themes = append(b.themes, t)
	return b
}

// RequireCapability records a required runtime capability.
func (b *Builder) RequireCapability(c Capability) *Builder {
	b.reqCaps = append(b.reqCaps, c)
	return b
}

// OptionalCapability records an optional runtime capability.
func (b *Builder) OptionalCapability(c Capability) *Builder {
	b.optCaps = append(b.optCaps, c)
	return b
}

// AssumePlatform records a platform assumption string.
func (b *Builder) AssumePlatform(assumption string) *Builder {
	b.platform = append(b.platform, assumption)
	return b
}

// AddAccessibility registers an accessibility annotation.
func (b *Builder) AddAccessibility(e AccessibilityEntry) *Builder {
	b.a11y = append(b.a11y, e)
	return b
}

// Warn attaches a non-fatal diagnostic to the final Metadata.
func (b *Builder) Warn(d Diagnostic) *Builder {
	b.warnings = append(b.warnings, d)
	return b
}

// SetFileCount records how many source files were lowered.
func (b *Builder) SetFileCount(n int) *Builder {
	b.fileCount = n
	return b
}

// Build assembles the MigrationIr, stamps schema version, counts, and the
// integrity hash, and returns the result alongside validate_ir's verdict.
// The returned IR is always populated; callers decide whether a non-empty
// ValidationErrors should block further processing.
func (b *Builder) Build() (MigrationIr, ValidationErrors) {
	roots := make([]NodeId, len(b.roots))
	copy(roots, b.roots)
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	m := MigrationIr{
		ViewTree: ViewTree{Roots: roots, Nodes: b.nodes},
		StateGraph: StateGraph{
			Variables: b.vars,
			Derived:   b.derived,
			Edges:     b.edges,
		},
		EventCatalog: EventCatalog{
			Events:      b.events,
			Transitions: b.transns,
		},
		EffectRegistry: EffectRegistry{Effects: b.effects},
		StyleIntent: StyleIntent{
			Tokens:  b.tokens,
			Layouts: b.layouts,
			Themes:  b.themes,
		},
		Capabilities: Capabilities{
			Required:            b.reqCaps,
			Optional:             b.optCaps,
			PlatformAssumptions: b.platform,
		},
		Accessibility: b.a11y,
		Metadata: Metadata{
			SchemaVersion:   SchemaVersion,
			RunID:           b.runID,
			SourceProject:   b.sourceProject,
			SourceFileCount: b.fileCount,
			Counts: map[string]int{
				"view_nodes": len(b.nodes),
				"state_vars": len(b.vars),
				"events":     len(b.events),
				"effects":    len(b.effects),
				"tokens":     len(b.tokens),
			},
			Warnings: b.warnings,
		},
	}

	stamped, err := StampIntegrityHash(m)
	if err != nil {
		return m, ValidationErrors{{Code: V007IntegrityHash, Message: err.Error()}}
	}
	return stamped, Validate(stamped)
}
