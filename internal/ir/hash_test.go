package ir

import "testing"

func simpleIr() MigrationIr {
	root := MakeNodeIdFromString("view:App.tsx:App")
	return MigrationIr{
		ViewTree: ViewTree{
			Roots: []NodeId{root},
			Nodes: map[NodeId]*ViewNode{
				root: {
					ID:         root,
					Kind:       ViewNodeComponent,
					Name:       "App",
					Provenance: Provenance{File: "App.tsx", Line: 1},
				},
			},
		},
		StateGraph:     StateGraph{Variables: map[NodeId]*StateVariable{}, Derived: map[NodeId]*DerivedComputation{}},
		EventCatalog:   EventCatalog{Events: map[NodeId]*EventDef{}},
		EffectRegistry: EffectRegistry{Effects: map[NodeId]*EffectDef{}},
		StyleIntent:    StyleIntent{Tokens: map[NodeId]*StyleToken{}, Layouts: map[NodeId]*LayoutIntent{}},
		Metadata:       Metadata{SchemaVersion: SchemaVersion},
	}
}

func TestComputeIntegrityHashDeterministic(t *testing.T) {
	m := simpleIr()
	h1, err := ComputeIntegrityHash(m)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := ComputeIntegrityHash(m)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatalf("expected deterministic hash, got %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h1))
	}
}

func TestStampIntegrityHashDetectsTamper(t *testing.T) {
	m := simpleIr()
	stamped, err := StampIntegrityHash(m)
	if err != nil {
		t.Fatal(err)
	}
	if stamped.Metadata.IntegrityHash == "" {
		t.Fatal("expected non-empty integrity hash")
	}

	tampered := stamped
	node := *tampered.ViewTree.Nodes[stamped.ViewTree.Roots[0]]
	node.Name = "Tampered"
	nodes := map[NodeId]*ViewNode{node.ID: &node}
	tampered.ViewTree.Nodes = nodes

	recomputed, err := ComputeIntegrityHash(tampered)
	if err != nil {
		t.Fatal(err)
	}
	if recomputed == stamped.Metadata.IntegrityHash {
		t.Fatal("expected tampering to change the integrity hash")
	}
}

func TestCanonicalJSONIgnoresExistingHash(t *testing.T) {
	m := simpleIr()
	m.Metadata.IntegrityHash = "stale"
	withHash, err := CanonicalJSON(m)
	if err != nil {
		t.Fatal(err)
	}
	m.Metadata.IntegrityHash = "different-stale"
	withOtherHash, err := CanonicalJSON(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(withHash) != string(withOtherHash) {
		t.Fatal("expected canonical JSON to ignore the existing integrity hash value")
	}
}
