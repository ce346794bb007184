package emit

import (
	"strings"
	"testing"

	"github.com/nightisyang/frankentui-migrate/internal/contract"
	"github.com/nightisyang/frankentui-migrate/internal/effectmodel"
	"github.com/nightisyang/frankentui-migrate/internal/gap"
	"github.com/nightisyang/frankentui-migrate/internal/ir"
	"github.com/nightisyang/frankentui-migrate/internal/planner"
	"github.com/nightisyang/frankentui-migrate/internal/translate/effects"
	"github.com/nightisyang/frankentui-migrate/internal/translate/state"
	"github.com/nightisyang/frankentui-migrate/internal/translate/style"
	"github.com/nightisyang/frankentui-migrate/internal/translate/view"
)

// buildCounterIR constructs the S1 counter-app scenario: one root
// component, one Local state var, one UserInput event, one transition.
func buildCounterIR(t *testing.T) ir.MigrationIr {
	t.Helper()
	b := ir.NewBuilder("counter-app", "run-1")

	root := ir.MakeNodeIdFromString("view:App.tsx:App")
	count := ir.MakeNodeIdFromString("state:App.tsx:App:count")
	click := ir.MakeNodeIdFromString("event:App.tsx:App:onClick")

	b.AddRoot(root).
		AddViewNode(&ir.ViewNode{ID: root, Kind: ir.ViewNodeComponent, Name: "App", Provenance: ir.Provenance{File: "App.tsx", Line: 1}}).
		AddStateVariable(&ir.StateVariable{ID: count, Name: "count", Scope: ir.StateScopeLocal, TypeHint: "number", InitialValue: "0", Provenance: ir.Provenance{File: "App.tsx", Line: 2}}).
		AddEvent(&ir.EventDef{ID: click, Name: "onClick", Kind: ir.EventKindUserInput, Provenance: ir.Provenance{File: "App.tsx", Line: 3}}).
		AddTransition(ir.Transition{EventID: click, TargetState: count}).
		SetFileCount(1)

	m, errs := b.Build()
	if len(errs) != 0 {
		t.Fatalf("expected valid ir, got %v", errs)
	}
	return m
}

func TestBuildEmitsMandatoryFileSet(t *testing.T) {
	m := buildCounterIR(t)
	model := effectmodel.Build(m.EffectRegistry)
	runtime := state.Translate(m, model)
	widgets := view.Translate(m)
	styleOut := style.Translate(m)
	orchestration := effects.Translate(model)

	plan := planner.Plan{Decisions: []planner.StrategyDecision{
		{SegmentID: "seg-1", Category: "state", Gate: contract.AutoApprove, Confidence: 0.95},
	}}
	report := gap.Build(plan, m, nil)

	out := Build("counter-app", runtime, widgets, styleOut, orchestration, plan, report)

	for _, name := range MandatoryFiles() {
		if _, ok := out.Files[name]; !ok {
			t.Errorf("missing mandatory file %s", name)
		}
	}

	if !strings.Contains(out.Files["src/model.rs"].Content, "count") {
		t.Errorf("expected model.rs to mention count field, got:\n%s", out.Files["src/model.rs"].Content)
	}
	if !strings.Contains(out.Files["src/msg.rs"].Content, "Click") {
		t.Errorf("expected msg.rs to contain a Click variant, got:\n%s", out.Files["src/msg.rs"].Content)
	}
	if !strings.Contains(out.Files["src/msg.rs"].Content, "TerminalEvent") {
		t.Errorf("expected msg.rs to contain the synthetic TerminalEvent variant")
	}
	if out.Scaffold.CrateName != "counter_app" && out.Scaffold.CrateName != "counter-app" {
		t.Errorf("unexpected crate name %q", out.Scaffold.CrateName)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	m := buildCounterIR(t)
	model := effectmodel.Build(m.EffectRegistry)
	runtime := state.Translate(m, model)
	widgets := view.Translate(m)
	styleOut := style.Translate(m)
	orchestration := effects.Translate(model)
	plan := planner.Plan{}
	report := gap.Build(plan, m, nil)

	a := Build("counter-app", runtime, widgets, styleOut, orchestration, plan, report)
	b := Build("counter-app", runtime, widgets, styleOut, orchestration, plan, report)

	for name := range a.Files {
		if a.Files[name].Content != b.Files[name].Content {
			t.Errorf("emission not deterministic for %s", name)
		}
	}
}

func TestBuildRequiresHumanReviewWhenPlanHas(t *testing.T) {
	m := buildCounterIR(t)
	model := effectmodel.Build(m.EffectRegistry)
	runtime := state.Translate(m, model)
	widgets := view.Translate(m)
	styleOut := style.Translate(m)
	orchestration := effects.Translate(model)
	plan := planner.Plan{Decisions: []planner.StrategyDecision{
		{SegmentID: "seg-1", Gate: contract.HumanReview, Confidence: 0.6},
	}}
	report := gap.Build(plan, m, nil)

	out := Build("counter-app", runtime, widgets, styleOut, orchestration, plan, report)
	if !out.Manifest.RequiresHumanReview {
		t.Error("expected RequiresHumanReview to be true")
	}
}

func TestCrateNameFromPascalCase(t *testing.T) {
	cases := map[string]string{
		"MyApp":        "my-app",
		"counter_app":  "counter_app",
		"Weird Name!!": "weirdname",
	}
	for in, want := range cases {
		got := crateNameFor(in)
		if got != want {
			t.Errorf("crateNameFor(%q) = %q, want %q", in, got, want)
		}
	}
}
