// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package planner

import (
	"sort"

	"github.com/nightisyang/frankentui-migrate/internal/ir"
	"github.com/nightisyang/frankentui-migrate/internal/planner/signals"
)

// SegmentsFromIr walks every dimension of m and produces one Segment per
// node, each keyed by its own NodeId and looked up in the mapping atlas by
// the node's source name — a view node's component name, an event's
// handler name, an effect's name, or a style token's category. Segments come
// back sorted by ID, matching Build's own sort so planning is
// deterministic end to end.
func SegmentsFromIr(m ir.MigrationIr) []Segment {
	var segments []Segment

	for _, id := range ir.SortedNodeIds(m.ViewTree.Nodes) {
		node := m.ViewTree.Nodes[id]
		segments = append(segments, Segment{
			ID:               id,
			Category:         "view",
			MappingSignature: node.Name,
			Env: signals.Env{
				Category: "view",
			},
		})
	}

	for _, id := range ir.SortedNodeIds(m.StateGraph.Variables) {
		v := m.StateGraph.Variables[id]
		segments = append(segments, Segment{
			ID:               id,
			Category:         "state",
			MappingSignature: v.Name,
			Env: signals.Env{
				Category: "state",
			},
		})
	}

	for _, id := range ir.SortedNodeIds(m.EventCatalog.Events) {
		e := m.EventCatalog.Events[id]
		segments = append(segments, Segment{
			ID:               id,
			Category:         "event",
			MappingSignature: e.Name,
			Env: signals.Env{
				Category:      "event",
				IsInteractive: e.Kind == ir.EventKindUserInput,
			},
		})
	}

	for _, id := range ir.SortedNodeIds(m.EffectRegistry.Effects) {
		e := m.EffectRegistry.Effects[id]
		segments = append(segments, Segment{
			ID:               id,
			Category:         "effect",
			MappingSignature: e.Name,
			Env: signals.Env{
				Category:    "effect",
				HasCleanup:  len(e.Writes) > 0,
				WriterCount: len(e.Writes),
			},
		})
	}

	for _, id := range ir.SortedNodeIds(m.StyleIntent.Tokens) {
		t := m.StyleIntent.Tokens[id]
		segments = append(segments, Segment{
			ID:               id,
			Category:         "style",
			MappingSignature: string(t.Category),
			Env: signals.Env{
				Category: "style",
			},
		})
	}

	for _, id := range ir.SortedNodeIds(m.StyleIntent.Layouts) {
		l := m.StyleIntent.Layouts[id]
		segments = append(segments, Segment{
			ID:               id,
			Category:         "layout",
			MappingSignature: string(l.Kind),
			Env: signals.Env{
				Category: "layout",
			},
		})
	}

	for _, c := range m.Capabilities.Required {
		segments = append(segments, Segment{
			ID:               ir.MakeNodeIdFromString("capability:" + c.Name),
			Category:         "capability",
			MappingSignature: c.Name,
			Env: signals.Env{
				Category: "capability",
			},
		})
	}

	for _, entry := range m.Accessibility {
		segments = append(segments, Segment{
			ID:               entry.NodeID,
			Category:         "accessibility",
			MappingSignature: entry.Hint,
			Env: signals.Env{
				Category: "accessibility",
			},
		})
	}

	sort.Slice(segments, func(i, j int) bool { return segments[i].ID < segments[j].ID })
	return segments
}
