// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package effects translates the canonical effect model into orchestration
// entries (schema "effect-translator-v1"): one entry per effect, aligned
// with its trigger/cleanup/async-boundary classification and the ordering
// constraints between effects that share state.
package effects

import (
	"sort"

	"github.com/nightisyang/frankentui-migrate/internal/effectmodel"
	"github.com/nightisyang/frankentui-migrate/internal/ir"
)

const SchemaVersion = "effect-translator-v1"

// OrchestrationEntry is one effect's translated runtime wiring.
type OrchestrationEntry struct {
	EffectID      ir.NodeId
	Name          string
	ExecutionModel effectmodel.ExecutionModel
	Trigger        effectmodel.Trigger
	Cleanup        effectmodel.CleanupKind
	AsyncBoundary  effectmodel.AsyncBoundary
	Before         []ir.NodeId
	After          []ir.NodeId
}

// TranslatedEffects is the full artifact this translator produces.
type TranslatedEffects struct {
	Version string
	Entries []OrchestrationEntry
}

// Translate runs the effect translator over the canonical effect model,
// producing one orchestration entry per effect in stable NodeId order.
func Translate(model effectmodel.Model) TranslatedEffects {
	before := map[ir.NodeId][]ir.NodeId{}
	after := map[ir.NodeId][]ir.NodeId{}
	for _, c := range model.Ordering {
		before[c.Before] = append(before[c.Before], c.After)
		after[c.After] = append(after[c.After], c.Before)
	}

	var entries []OrchestrationEntry
	for _, id := range ir.SortedNodeIds(model.Effects) {
		ce := model.Effects[id]
		b := sortedCopy(before[id])
		a := sortedCopy(after[id])
		entries = append(entries, OrchestrationEntry{
			EffectID:       id,
			Name:           ce.Name,
			ExecutionModel: ce.ExecutionModel,
			Trigger:        ce.Trigger,
			Cleanup:        ce.Cleanup,
			AsyncBoundary:  ce.AsyncBoundary,
			Before:         b,
			After:          a,
		})
	}

	return TranslatedEffects{Version: SchemaVersion, Entries: entries}
}

func sortedCopy(ids []ir.NodeId) []ir.NodeId {
	if len(ids) == 0 {
		return nil
	}
	out := make([]ir.NodeId, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
