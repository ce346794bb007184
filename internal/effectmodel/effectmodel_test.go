package effectmodel

import (
	"testing"

	"github.com/nightisyang/frankentui-migrate/internal/ir"
)

func TestBuildClassifiesExecutionModel(t *testing.T) {
	reg := ir.EffectRegistry{Effects: map[ir.NodeId]*ir.EffectDef{
		"e1": {ID: "e1", Name: "poll", Kind: ir.EffectKindTimer},
		"e2": {ID: "e2", Name: "track", Kind: ir.EffectKindTelemetry},
		"e3": {ID: "e3", Name: "fetchUser", Kind: ir.EffectKindNetwork},
	}}
	m := Build(reg)

	if m.Effects["e1"].ExecutionModel != ExecutionSubscription {
		t.Errorf("expected Timer effect classified Subscription, got %s", m.Effects["e1"].ExecutionModel)
	}
	if m.Effects["e2"].ExecutionModel != ExecutionFireAndForget {
		t.Errorf("expected Telemetry effect classified FireAndForget, got %s", m.Effects["e2"].ExecutionModel)
	}
	if m.Effects["e3"].ExecutionModel != ExecutionCommand {
		t.Errorf("expected Network effect classified Command, got %s", m.Effects["e3"].ExecutionModel)
	}
	if m.Effects["e3"].Deterministic {
		t.Error("expected Network effect to default non-deterministic")
	}
}

func TestBuildCleanupMapping(t *testing.T) {
	reg := ir.EffectRegistry{Effects: map[ir.NodeId]*ir.EffectDef{
		"sub": {ID: "sub", Kind: ir.EffectKindSubscription},
		"net": {ID: "net", Kind: ir.EffectKindNetwork, Abortable: true},
		"dom": {ID: "dom", Kind: ir.EffectKindDom},
	}}
	m := Build(reg)

	if m.Effects["sub"].Cleanup != CleanupSubscriptionStop {
		t.Errorf("expected subscription cleanup, got %s", m.Effects["sub"].Cleanup)
	}
	if m.Effects["net"].Cleanup != CleanupAbortController {
		t.Errorf("expected abort controller cleanup, got %s", m.Effects["net"].Cleanup)
	}
	if m.Effects["dom"].Cleanup != CleanupNone {
		t.Errorf("expected no cleanup for plain dom effect, got %s", m.Effects["dom"].Cleanup)
	}
}

func TestBuildOrderingConstraintsFromSharedState(t *testing.T) {
	reg := ir.EffectRegistry{Effects: map[ir.NodeId]*ir.EffectDef{
		"writer": {ID: "writer", Kind: ir.EffectKindOther, Writes: []ir.NodeId{"x"}},
		"reader": {ID: "reader", Kind: ir.EffectKindOther, Reads: []ir.NodeId{"x"}},
	}}
	m := Build(reg)
	if len(m.Ordering) == 0 {
		t.Fatal("expected at least one ordering constraint for shared state x")
	}
	found := false
	for _, c := range m.Ordering {
		if c.Before == "writer" && c.After == "reader" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected writer->reader constraint, got %v", m.Ordering)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	reg := ir.EffectRegistry{Effects: map[ir.NodeId]*ir.EffectDef{
		"a": {ID: "a", Kind: ir.EffectKindTimer, Writes: []ir.NodeId{"x"}},
		"b": {ID: "b", Kind: ir.EffectKindNetwork, Reads: []ir.NodeId{"x"}},
	}}
	m1 := Build(reg)
	m2 := Build(reg)
	if len(m1.Ordering) != len(m2.Ordering) {
		t.Fatal("expected identical ordering length across builds")
	}
	for i := range m1.Ordering {
		if m1.Ordering[i] != m2.Ordering[i] {
			t.Fatalf("expected identical ordering at %d, got %v vs %v", i, m1.Ordering[i], m2.Ordering[i])
		}
	}
}
