// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package effectmodel derives the Canonical Effect Model (schema
// "effect-canonical-v1") from an IR's EffectRegistry and event/state
// context: execution model, trigger, cleanup strategy, async boundary,
// ordering constraints, and determinism/idempotence defaults.
package effectmodel

import (
	"sort"

	"github.com/nightisyang/frankentui-migrate/internal/ir"
)

const SchemaVersion = "effect-canonical-v1"

type ExecutionModel string

const (
	ExecutionCommand      ExecutionModel = "Command"
	ExecutionSubscription ExecutionModel = "Subscription"
	ExecutionFireAndForget ExecutionModel = "FireAndForget"
)

type TriggerKind string

const (
	TriggerOnMount      TriggerKind = "OnMount"
	TriggerOnDepsChange TriggerKind = "OnDepsChange"
	TriggerOnEvent      TriggerKind = "OnEvent"
	TriggerOnInterval   TriggerKind = "OnInterval"
	TriggerManual       TriggerKind = "Manual"
)

// Trigger carries the kind plus the deps/event payload that kind needs.
type Trigger struct {
	Kind  TriggerKind
	Deps  []ir.NodeId // populated for OnDepsChange
	Event ir.NodeId   // populated for OnEvent
}

type MessageProtocolKind string

const (
	ProtocolDataResult MessageProtocolKind = "DataResult"
	ProtocolUnit       MessageProtocolKind = "Unit"
	ProtocolTyped      MessageProtocolKind = "Typed"
)

type MessageProtocol struct {
	Kind MessageProtocolKind
	Name string // populated for DataResult/Typed
}

type CleanupKind string

const (
	CleanupNone              CleanupKind = "None"
	CleanupDropHandle        CleanupKind = "DropHandle"
	CleanupSubscriptionStop  CleanupKind = "SubscriptionStop"
	CleanupAbortController   CleanupKind = "AbortController"
	CleanupExplicitCallback  CleanupKind = "ExplicitCallback"
)

type AsyncBoundary string

const (
	AsyncSync       AsyncBoundary = "Sync"
	AsyncTask       AsyncBoundary = "AsyncTask"
	AsyncThreadPool AsyncBoundary = "ThreadPool"
)

// CanonicalEffect is the per-effect record of the canonical model.
type CanonicalEffect struct {
	ID             ir.NodeId
	Name           string
	OriginalKind   ir.EffectKind
	ExecutionModel ExecutionModel
	Trigger        Trigger
	Protocol       MessageProtocol
	Cleanup        CleanupKind
	AsyncBoundary  AsyncBoundary
	Reads          []ir.NodeId
	Writes         []ir.NodeId
	Deterministic  bool
	Idempotent     bool
	Confidence     float64
}

// OrderingConstraint is a directed "before must happen before after" edge.
type OrderingConstraint struct {
	Before ir.NodeId
	After  ir.NodeId
	Reason string
}

// Model is the CanonicalEffectModel artifact.
type Model struct {
	SchemaVersion  string
	Effects        map[ir.NodeId]*CanonicalEffect
	Ordering       []OrderingConstraint
	Commands       []ir.NodeId
	Subscriptions  []ir.NodeId
	FireAndForgets []ir.NodeId
}

// Build derives the canonical effect model from an EffectRegistry.
func Build(reg ir.EffectRegistry) Model {
	m := Model{
		SchemaVersion: SchemaVersion,
		Effects:       make(map[ir.NodeId]*CanonicalEffect, len(reg.Effects)),
	}

	for _, id := range ir.SortedNodeIds(reg.Effects) {
		eff := reg.Effects[id]
		ce := &CanonicalEffect{
			ID:            id,
			Name:          eff.Name,
			OriginalKind:  eff.Kind,
			ExecutionModel: executionModelOf(eff.Kind),
			Trigger:       triggerOf(eff),
			Protocol:      protocolOf(eff),
			Cleanup:       cleanupOf(eff),
			AsyncBoundary: asyncBoundaryOf(eff.Kind),
			Reads:         eff.Reads,
			Writes:        eff.Writes,
			Deterministic: deterministicDefault(eff),
			Idempotent:    eff.Idempotent,
			Confidence:    1.0,
		}
		m.Effects[id] = ce

		switch ce.ExecutionModel {
		case ExecutionCommand:
			m.Commands = append(m.Commands, id)
		case ExecutionSubscription:
			m.Subscriptions = append(m.Subscriptions, id)
		case ExecutionFireAndForget:
			m.FireAndForgets = append(m.FireAndForgets, id)
		}
	}

	m.Ordering = buildOrdering(reg)
	return m
}

// executionModelOf: Timer/Subscription/Process -> Subscription; Telemetry ->
// FireAndForget; all others -> Command.
func executionModelOf(kind ir.EffectKind) ExecutionModel {
	switch kind {
	case ir.EffectKindTimer, ir.EffectKindSubscription, ir.EffectKindProcess:
		return ExecutionSubscription
	case ir.EffectKindTelemetry:
		return ExecutionFireAndForget
	default:
		return ExecutionCommand
	}
}

// triggerOf: OnMount if deps empty and not a listener; else OnDepsChange if
// deps nonempty; else OnEvent if registered to an event id; else Manual.
func triggerOf(eff *ir.EffectDef) Trigger {
	isListener := eff.Kind == ir.EffectKindSubscription
	if len(eff.Deps) == 0 && !isListener {
		return Trigger{Kind: TriggerOnMount}
	}
	if len(eff.Deps) > 0 {
		return Trigger{Kind: TriggerOnDepsChange, Deps: eff.Deps}
	}
	if eff.RegisteredTo != "" {
		return Trigger{Kind: TriggerOnEvent, Event: eff.RegisteredTo}
	}
	return Trigger{Kind: TriggerManual}
}

func protocolOf(eff *ir.EffectDef) MessageProtocol {
	switch eff.Kind {
	case ir.EffectKindNetwork:
		return MessageProtocol{Kind: ProtocolDataResult, Name: eff.Name + "Result"}
	case ir.EffectKindTelemetry:
		return MessageProtocol{Kind: ProtocolUnit}
	default:
		return MessageProtocol{Kind: ProtocolTyped, Name: eff.Name + "Msg"}
	}
}

// cleanupOf derives cleanup from EffectKind and the has_cleanup flag.
func cleanupOf(eff *ir.EffectDef) CleanupKind {
	if eff.Kind == ir.EffectKindNetwork && eff.Abortable {
		return CleanupAbortController
	}
	switch eff.Kind {
	case ir.EffectKindSubscription:
		return CleanupSubscriptionStop
	case ir.EffectKindTimer, ir.EffectKindProcess:
		if eff.HasCleanup {
			return CleanupSubscriptionStop
		}
		return CleanupDropHandle
	default:
		if eff.HasCleanup {
			return CleanupExplicitCallback
		}
		return CleanupNone
	}
}

// asyncBoundaryOf: Network/Process -> AsyncTask (ThreadPool is defined but
// never chosen here), Dom/Storage -> Sync, Timer -> AsyncTask.
func asyncBoundaryOf(kind ir.EffectKind) AsyncBoundary {
	switch kind {
	case ir.EffectKindNetwork, ir.EffectKindProcess:
		return AsyncTask
	case ir.EffectKindDom, ir.EffectKindStorage:
		return AsyncSync
	case ir.EffectKindTimer:
		return AsyncTask
	default:
		return AsyncSync
	}
}

// deterministicDefault: every kind defaults deterministic except Network,
// which is non-idempotent/non-deterministic by default per signal
// adjustment guidance in §4.3 step 6.
func deterministicDefault(eff *ir.EffectDef) bool {
	if eff.Kind == ir.EffectKindNetwork {
		return false
	}
	return eff.Deterministic
}

// buildOrdering adds (E1 -> E2, "write-before-read on X") for every pair
// (E1 writes X, E2 reads X), the same for (E1 reads X, E2 writes X), and for
// (writer, writer) pairs on the same state.
func buildOrdering(reg ir.EffectRegistry) []OrderingConstraint {
	writers := map[ir.NodeId][]ir.NodeId{}
	readers := map[ir.NodeId][]ir.NodeId{}

	ids := ir.SortedNodeIds(reg.Effects)
	for _, id := range ids {
		eff := reg.Effects[id]
		for _, w := range eff.Writes {
			writers[w] = append(writers[w], id)
		}
		for _, r := range eff.Reads {
			readers[r] = append(readers[r], id)
		}
	}

	var out []OrderingConstraint
	stateIDs := map[ir.NodeId]bool{}
	for s := range writers {
		stateIDs[s] = true
	}
	for s := range readers {
		stateIDs[s] = true
	}

	sortedStates := make([]ir.NodeId, 0, len(stateIDs))
	for s := range stateIDs {
		sortedStates = append(sortedStates, s)
	}
	sort.Slice(sortedStates, func(i, j int) bool { return sortedStates[i] < sortedStates[j] })

	for _, s := range sortedStates {
		for _, w := range writers[s] {
			for _, r := range readers[s] {
				if w == r {
					continue
				}
				out = append(out, OrderingConstraint{Before: w, After: r, Reason: "write-before-read on " + string(s)})
			}
		}
		for _, r := range readers[s] {
			for _, w := range writers[s] {
				if w == r {
					continue
				}
				out = append(out, OrderingConstraint{Before: r, After: w, Reason: "write-before-read on " + string(s)})
			}
		}
		ws := writers[s]
		for i := 0; i < len(ws); i++ {
			for j := 0; j < len(ws); j++ {
				if i == j {
					continue
				}
				out = append(out, OrderingConstraint{Before: ws[i], After: ws[j], Reason: "write-before-read on " + string(s)})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Before != out[j].Before {
			return out[i].Before < out[j].Before
		}
		return out[i].After < out[j].After
	})
	return out
}
