package lowering

import (
	"testing"

	"github.com/nightisyang/frankentui-migrate/internal/extract"
	"github.com/nightisyang/frankentui-migrate/internal/ir"
)

func counterAppFixture() (extract.ProjectParse, extract.CompositionResult, extract.StyleResult, extract.StateModel) {
	project := extract.ProjectParse{
		Files: map[string]extract.FileParse{
			"App.tsx": {Path: "App.tsx"},
		},
	}
	composition := extract.CompositionResult{
		Roots: []extract.CompositionNode{
			{Key: "App", Kind: "Component", Name: "App", File: "App.tsx", Line: 1},
		},
	}
	styles := extract.StyleResult{}
	stateModel := extract.StateModel{
		Variables: []extract.StateVarSummary{
			{File: "App.tsx", Component: "App", Name: "count", Scope: "Local", TypeHint: "number", InitialValue: "0", Line: 2},
		},
		Events: []extract.EventSummary{
			{File: "App.tsx", Component: "App", Name: "onClick", Line: 3, Writes: []string{"count"}},
		},
	}
	return project, composition, styles, stateModel
}

func TestLowerToIrCounterApp(t *testing.T) {
	project, composition, styles, stateModel := counterAppFixture()
	m, errs := LowerToIr(Config{RunID: "run-1", SourceProject: "counter-app"}, project, composition, styles, stateModel)
	if len(errs) != 0 {
		t.Fatalf("expected valid ir, got %v", errs)
	}
	if len(m.ViewTree.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(m.ViewTree.Roots))
	}
	if len(m.StateGraph.Variables) != 1 {
		t.Fatalf("expected 1 state variable, got %d", len(m.StateGraph.Variables))
	}
	if len(m.EventCatalog.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(m.EventCatalog.Events))
	}
	if len(m.EventCatalog.Transitions) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(m.EventCatalog.Transitions))
	}

	var ev *ir.EventDef
	for _, e := range m.EventCatalog.Events {
		ev = e
	}
	if ev.Kind != ir.EventKindUserInput {
		t.Fatalf("expected onClick classified UserInput, got %s", ev.Kind)
	}
}

func TestLowerToIrIsDeterministic(t *testing.T) {
	project, composition, styles, stateModel := counterAppFixture()
	cfg := Config{RunID: "run-1", SourceProject: "counter-app"}
	m1, _ := LowerToIr(cfg, project, composition, styles, stateModel)
	m2, _ := LowerToIr(cfg, project, composition, styles, stateModel)
	if m1.Metadata.IntegrityHash != m2.Metadata.IntegrityHash {
		t.Fatalf("expected identical hash across runs, got %s vs %s", m1.Metadata.IntegrityHash, m2.Metadata.IntegrityHash)
	}
}

func TestLowerToIrUnresolvedTransitionIsDiagnostic(t *testing.T) {
	project, composition, styles, _ := counterAppFixture()
	stateModel := extract.StateModel{
		Events: []extract.EventSummary{
			{File: "App.tsx", Component: "App", Name: "onClick", Line: 3, Writes: []string{"missing"}},
		},
	}
	m, errs := LowerToIr(Config{RunID: "run-1", SourceProject: "counter-app"}, project, composition, styles, stateModel)
	if len(errs) != 0 {
		t.Fatalf("lowering must be total, got validation errors: %v", errs)
	}
	found := false
	for _, w := range m.Metadata.Warnings {
		if w.Code == DCodeUnresolvedTransition {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an L020 diagnostic for unresolved transition target")
	}
}

func TestClassifyEventKind(t *testing.T) {
	cases := map[string]ir.EventKind{
		"onClick":        ir.EventKindUserInput,
		"onKeyDown":      ir.EventKindUserInput,
		"onMount":        ir.EventKindLifecycle,
		"onIntervalTick": ir.EventKindTimer,
		"onFetchDone":    ir.EventKindNetwork,
		"onSomethingElse": ir.EventKindCustom,
	}
	for name, want := range cases {
		if got := classifyEventKind(name); got != want {
			t.Errorf("classifyEventKind(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestClassifyEffectKind(t *testing.T) {
	cases := map[string]ir.EffectKind{
		"DataFetch":       ir.EffectKindNetwork,
		"DomManipulation": ir.EffectKindDom,
		"Timer":           ir.EffectKindTimer,
		"EventListener":   ir.EffectKindSubscription,
		"Sync":            ir.EffectKindStorage,
		"Telemetry":       ir.EffectKindTelemetry,
		"Unknown":         ir.EffectKindOther,
	}
	for in, want := range cases {
		if got := classifyEffectKind(in); got != want {
			t.Errorf("classifyEffectKind(%q) = %s, want %s", in, got, want)
		}
	}
}
