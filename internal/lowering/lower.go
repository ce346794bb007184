// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lowering

import (
	"fmt"

	"github.com/nightisyang/frankentui-migrate/internal/extract"
	"github.com/nightisyang/frankentui-migrate/internal/ir"
)

// Config carries the values lowering needs that have no other natural
// owner: the run identity and source project name stamped into metadata.
type Config struct {
	RunID         string
	SourceProject string
}

// aliasMap resolves a human-readable state variable key ("file:comp:name")
// to the NodeId lowering allocated for it, so setters, derived dependencies,
// event writes, and effect reads/writes all converge on one id per variable.
type aliasMap map[string]ir.NodeId

func stateKey(file, comp, name string) string {
	return fmt.Sprintf("%s:%s:%s", file, comp, name)
}

// LowerToIr fuses composition, style, and state/effects extraction into a
// single MigrationIr. It is total: no input makes it fail, and every
// unresolved reference becomes a diagnostic instead of an error.
func LowerToIr(
	cfg Config,
	project extract.ProjectParse,
	composition extract.CompositionResult,
	styles extract.StyleResult,
	stateModel extract.StateModel,
) (ir.MigrationIr, ir.ValidationErrors) {
	b := ir.NewBuilder(cfg.SourceProject, cfg.RunID)
	b.SetFileCount(len(project.Files))

	aliases := lowerViewTree(b, composition)
	lowerStateGraph(b, stateModel, aliases)
	lowerEvents(b, stateModel, aliases)
	lowerEffects(b, stateModel, aliases)
	lowerStyleIntent(b, styles, aliases)
	lowerCapabilities(b, project)
	lowerAccessibility(b, stateModel)

	for _, diag := range project.Diagnostics {
		b.Warn(ir.Diagnostic{Code: "EXTRACT", Message: diag, Severity: ir.SeverityWarning})
	}

	return b.Build()
}

// lowerViewTree copies roots and their descendants from composition,
// assigning a content-addressed NodeId to every node from its file + kind +
// name + line, and diagnosing L001. An empty root list yields no view nodes
// and no L002 diagnostic.
func lowerViewTree(b *ir.Builder, composition extract.CompositionResult) aliasMap {
	aliases := aliasMap{}
	if len(composition.Roots) == 0 {
		return aliases
	}

	var walk func(n extract.CompositionNode) ir.NodeId
	walk = func(n extract.CompositionNode) ir.NodeId {
		content := fmt.Sprintf("view:%s:%s:%s:%d", n.File, n.Kind, n.Name, n.Line)
		id := ir.MakeNodeIdFromString(content)

		children := make([]ir.NodeId, 0, len(n.Children))
		for _, c := range n.Children {
			children = append(children, walk(c))
		}

		prov := ir.Provenance{File: n.File, Line: n.Line, Column: n.Column, SourceName: n.Name}
		if prov.Empty() {
			b.Warn(ir.Diagnostic{
				Code:     DCodeEmptyProvenance,
				Message:  fmt.Sprintf("view node %q has no usable provenance", n.Key),
				Severity: ir.SeverityWarning,
				Provenance: &prov,
			})
		}

		b.AddViewNode(&ir.ViewNode{
			ID:         id,
			Kind:       viewNodeKindFromString(n.Kind),
			Name:       n.Name,
			Children:   children,
			Props:      n.Props,
			Provenance: prov,
		})
		return id
	}

	for _, root := range composition.Roots {
		b.AddRoot(walk(root))
	}
	return aliases
}

// lowerStateGraph allocates a NodeId from sha256("state:{file}:{comp}:{name}")
// for every state variable and its setter aliases (a setter resolves to the
// same id as the variable it sets), then allocates derived-state ids and
// resolves dependency names through the alias map.
func lowerStateGraph(b *ir.Builder, sm extract.StateModel, aliases aliasMap) {
	for _, v := range sm.Variables {
		if v.SetterOf != "" {
			continue // setters are resolved as aliases, not separate variables
		}
		key := stateKey(v.File, v.Component, v.Name)
		id := ir.MakeNodeIdFromString("state:" + key)
		aliases[key] = id
		b.AddStateVariable(&ir.StateVariable{
			ID:           id,
			Name:         v.Name,
			Scope:        stateScopeFromString(v.Scope),
			TypeHint:     v.TypeHint,
			InitialValue: v.InitialValue,
			Provenance:   ir.Provenance{File: v.File, Line: v.Line},
		})
	}
	for _, v := range sm.Variables {
		if v.SetterOf == "" {
			continue
		}
		key := stateKey(v.File, v.Component, v.SetterOf)
		setterKey := stateKey(v.File, v.Component, v.Name)
		if id, ok := aliases[key]; ok {
			aliases[setterKey] = id
		}
	}

	for _, d := range sm.Derived {
		key := stateKey(d.File, d.Component, d.Name)
		id := ir.MakeNodeIdFromString("derived:" + key)
		aliases[key] = id

		var deps []ir.NodeId
		for _, depName := range d.DependsOn {
			depKey := stateKey(d.File, d.Component, depName)
			depID, ok := aliases[depKey]
			if !ok {
				b.Warn(ir.Diagnostic{
					Code:     DCodeUnresolvedDerived,
					Message:  fmt.Sprintf("derived %q depends on unresolved name %q", d.Name, depName),
					Severity: ir.SeverityWarning,
				})
				continue
			}
			deps = append(deps, depID)
			b.AddDataFlowEdge(ir.DataFlowEdge{From: depID, To: id, Kind: "derive"})
		}
		b.AddDerived(&ir.DerivedComputation{
			ID:         id,
			Name:       d.Name,
			DependsOn:  deps,
			Provenance: ir.Provenance{File: d.File, Line: d.Line},
		})
	}
}

// lowerEvents allocates event:{file}:{comp}:{evt}:{line} ids, classifies
// EventKind, and emits a transition for every state write in the handler,
// recording L020 for unresolved targets.
func lowerEvents(b *ir.Builder, sm extract.StateModel, aliases aliasMap) {
	for _, e := range sm.Events {
		id := ir.MakeNodeIdFromString(fmt.Sprintf("event:%s:%s:%s:%d", e.File, e.Component, e.Name, e.Line))
		b.AddEvent(&ir.EventDef{
			ID:         id,
			Name:       e.Name,
			Kind:       classifyEventKind(e.Name),
			Provenance: ir.Provenance{File: e.File, Line: e.Line},
		})

		for _, target := range e.Writes {
			targetID, ok := aliases[stateKey(e.File, e.Component, target)]
			if !ok {
				b.Warn(ir.Diagnostic{
					Code:     DCodeUnresolvedTransition,
					Message:  fmt.Sprintf("event %q writes unresolved state %q", e.Name, target),
					Severity: ir.SeverityWarning,
				})
				continue
			}
			b.AddTransition(ir.Transition{EventID: id, TargetState: targetID, Guard: e.Guard})
		}
	}
}

// lowerEffects allocates effect:{file}:{comp}:{hook}:{line} ids, maps
// EffectClassification to EffectKind, and resolves read/write/dep
// references through the alias map, recording L030 for unresolved counts.
func lowerEffects(b *ir.Builder, sm extract.StateModel, aliases aliasMap) {
	eventIDByName := map[string]ir.NodeId{}
	for _, e := range sm.Events {
		eventIDByName[stateKey(e.File, e.Component, e.Name)] = ir.MakeNodeIdFromString(
			fmt.Sprintf("event:%s:%s:%s:%d", e.File, e.Component, e.Name, e.Line))
	}

	resolve := func(file, comp string, names []string, label string) []ir.NodeId {
		var out []ir.NodeId
		for _, n := range names {
			id, ok := aliases[stateKey(file, comp, n)]
			if !ok {
				b.Warn(ir.Diagnostic{
					Code:     DCodeUnresolvedEffectRef,
					Message:  fmt.Sprintf("effect %s reference %q did not resolve", label, n),
					Severity: ir.SeverityWarning,
				})
				continue
			}
			out = append(out, id)
		}
		return out
	}

	for _, eff := range sm.Effects {
		id := ir.MakeNodeIdFromString(fmt.Sprintf("effect:%s:%s:%s:%d", eff.File, eff.Component, eff.Hook, eff.Line))

		var registeredTo ir.NodeId
		if eff.RegisteredTo != "" {
			registeredTo = eventIDByName[stateKey(eff.File, eff.Component, eff.RegisteredTo)]
		}

		b.AddEffect(&ir.EffectDef{
			ID:            id,
			Name:          eff.Hook,
			Kind:          classifyEffectKind(eff.Classification),
			Deps:          resolve(eff.File, eff.Component, eff.Deps, "dep"),
			Reads:         resolve(eff.File, eff.Component, eff.Reads, "read"),
			Writes:        resolve(eff.File, eff.Component, eff.Writes, "write"),
			RegisteredTo:  registeredTo,
			HasCleanup:    eff.HasCleanup,
			Abortable:     eff.Abortable || eff.HasAbortController,
			Deterministic: eff.Classification != "DataFetch",
			Idempotent:    true,
			Provenance:    ir.Provenance{File: eff.File, Line: eff.Line},
		})
	}
}

func lowerStyleIntent(b *ir.Builder, styles extract.StyleResult, _ aliasMap) {
	for _, t := range styles.Tokens {
		id := ir.MakeNodeIdFromString("token:" + t.Key)
		b.AddStyleToken(&ir.StyleToken{
			ID:         id,
			Category:   tokenCategoryFromString(t.Category),
			Value:      t.Value,
			Provenance: ir.Provenance{File: t.File, Line: t.Line},
		})
	}
	for _, l := range styles.Layouts {
		nodeID := ir.MakeNodeIdFromString(l.NodeKey)
		b.AddLayoutIntent(&ir.LayoutIntent{
			NodeID: nodeID,
			Kind:   layoutKindFromString(l.Kind),
			Params: l.Params,
		})
	}
	for _, th := range styles.Themes {
		b.AddTheme(ir.Theme{Name: th.Name, Overrides: th.Overrides})
	}
}

func lowerCapabilities(b *ir.Builder, project extract.ProjectParse) {
	// Adds no capabilities: the IR LowerToIr returns has empty
	// required/optional sets and platform assumptions. ForwardCapabilities
	// adds them to a builder from an extract.CapabilityProfile.
	_ = project
}

// ForwardCapabilities forwards a capability profile unchanged, per §4.1 step
// 7. Kept separate from lowerCapabilities so callers that have a real
// extract.CapabilityProfile (rather than just a ProjectParse) can supply it.
func ForwardCapabilities(b *ir.Builder, profile extract.CapabilityProfile) {
	for _, name := range profile.Required {
		b.RequireCapability(ir.WellKnown(name))
	}
	for _, name := range profile.Optional {
		b.OptionalCapability(ir.WellKnown(name))
	}
	for _, a := range profile.PlatformAssumptions {
		b.AssumePlatform(a)
	}
}

// lowerAccessibility adds no entries: the IR LowerToIr returns has no
// accessibility entries and no L040 diagnostics. ForwardAccessibility
// synthesizes them on a builder from an extract.AccessibilitySource.
func lowerAccessibility(b *ir.Builder, sm extract.StateModel) {
	_ = sm // accessibility source is forwarded via ForwardAccessibility below
}

// ForwardAccessibility synthesizes L040 accessibility entries from an
// extract.AccessibilitySource, mirrored from ForwardCapabilities for the
// same reason: the richer input type isn't always available to LowerToIr's
// four required arguments.
func ForwardAccessibility(b *ir.Builder, src extract.AccessibilitySource) {
	for _, comp := range src.ComponentsWithColor {
		id := ir.MakeNodeIdFromString("a11y:color:" + comp)
		b.AddAccessibility(ir.AccessibilityEntry{
			NodeID:   id,
			Hint:     "verify-contrast",
			Severity: ir.SeverityInfo,
		})
		b.Warn(ir.Diagnostic{
			Code:     DCodeAccessibilityHint,
			Message:  fmt.Sprintf("component %q declares color tokens; verify contrast", comp),
			Severity: ir.SeverityInfo,
		})
	}
	for _, comp := range src.InteractiveComponents {
		id := ir.MakeNodeIdFromString("a11y:interactive:" + comp)
		b.AddAccessibility(ir.AccessibilityEntry{
			NodeID:   id,
			Hint:     "interactive-focusable",
			Severity: ir.SeverityInfo,
		})
		b.Warn(ir.Diagnostic{
			Code:     DCodeAccessibilityHint,
			Message:  fmt.Sprintf("component %q exposes interactive callbacks; ensure focusability", comp),
			Severity: ir.SeverityInfo,
		})
	}
}
