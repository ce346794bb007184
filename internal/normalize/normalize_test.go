package normalize

import (
	"testing"

	"github.com/nightisyang/frankentui-migrate/internal/ir"
)

func buildFixture(t *testing.T) ir.MigrationIr {
	t.Helper()
	b := ir.NewBuilder("demo", "run-1")

	root := ir.MakeNodeIdFromString("root")
	fragChild1 := ir.MakeNodeIdFromString("fc1")
	fragChild2 := ir.MakeNodeIdFromString("fc2")
	frag := ir.MakeNodeIdFromString("frag")

	b.AddRoot(root)
	b.AddViewNode(&ir.ViewNode{ID: root, Children: []ir.NodeId{frag}, Provenance: ir.Provenance{File: "./a/../a.tsx", Line: 1}})
	b.AddViewNode(&ir.ViewNode{ID: frag, Kind: ir.ViewNodeFragment, Children: []ir.NodeId{fragChild2, fragChild1}, Provenance: ir.Provenance{File: "a.tsx", Line: 2}})
	b.AddViewNode(&ir.ViewNode{ID: fragChild1, Provenance: ir.Provenance{File: "a.tsx", Line: 3}})
	b.AddViewNode(&ir.ViewNode{ID: fragChild2, Provenance: ir.Provenance{File: "a.tsx", Line: 4}})

	tokA := ir.MakeNodeIdFromString("tok-a")
	tokB := ir.MakeNodeIdFromString("tok-b")
	b.AddStyleToken(&ir.StyleToken{ID: tokA, Category: ir.TokenColor, Value: "#fff"})
	b.AddStyleToken(&ir.StyleToken{ID: tokB, Category: ir.TokenColor, Value: "#fff"})

	deadState := ir.MakeNodeIdFromString("dead-state")
	b.AddStateVariable(&ir.StateVariable{ID: deadState, Name: "unused", Provenance: ir.Provenance{File: "a.tsx", Line: 5}})

	deadEvent := ir.MakeNodeIdFromString("dead-event")
	b.AddEvent(&ir.EventDef{ID: deadEvent, Name: "onNoop", Kind: ir.EventKindCustom, Provenance: ir.Provenance{File: "a.tsx", Line: 6}})

	m, errs := b.Build()
	if len(errs) != 0 {
		t.Fatalf("fixture must validate, got %v", errs)
	}
	return m
}

func TestRunDesugarsFragmentAndPrunesDeadEntities(t *testing.T) {
	m := buildFixture(t)
	normalized, report := Run(m)

	rootID := normalized.ViewTree.Roots[0]
	root := normalized.ViewTree.Nodes[rootID]
	if len(root.Children) != 2 {
		t.Fatalf("expected fragment desugared into 2 children, got %d", len(root.Children))
	}
	for i := 1; i < len(root.Children); i++ {
		if root.Children[i-1] > root.Children[i] {
			t.Fatalf("expected children sorted after normalization: %v", root.Children)
		}
	}

	if len(normalized.StyleIntent.Tokens) != 1 {
		t.Fatalf("expected duplicate tokens merged to 1, got %d", len(normalized.StyleIntent.Tokens))
	}
	if len(normalized.StateGraph.Variables) != 0 {
		t.Fatalf("expected dead state pruned, got %d remaining", len(normalized.StateGraph.Variables))
	}
	if len(normalized.EventCatalog.Events) != 0 {
		t.Fatalf("expected dead event pruned, got %d remaining", len(normalized.EventCatalog.Events))
	}

	if errs := ir.Validate(normalized); len(errs) != 0 {
		t.Fatalf("expected normalized ir to still validate, got %v", errs)
	}

	names := map[string]bool{}
	for _, p := range report.Passes {
		names[p.Name] = true
	}
	for _, want := range []string{"canonicalize_ordering", "desugar_fragments", "prune_dead_state", "prune_dead_events", "merge_duplicate_tokens", "normalize_provenance"} {
		if !names[want] {
			t.Errorf("expected pass %q in report", want)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	m := buildFixture(t)
	once, _ := Run(m)
	twice, report := Run(once)

	onceCanon, _ := ir.CanonicalJSON(once)
	twiceCanon, _ := ir.CanonicalJSON(twice)
	if string(onceCanon) != string(twiceCanon) {
		t.Fatalf("expected second run to be a no-op on the ir content")
	}

	for _, p := range report.Passes {
		if p.Mutated != 0 {
			t.Errorf("expected pass %q to report 0 mutations on second run, got %d", p.Name, p.Mutated)
		}
	}
}
