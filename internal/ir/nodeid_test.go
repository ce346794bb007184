package ir

import "testing"

func TestMakeNodeIdStable(t *testing.T) {
	a := MakeNodeIdFromString("state:App.tsx:App:count")
	b := MakeNodeIdFromString("state:App.tsx:App:count")
	if a != b {
		t.Fatalf("expected stable id, got %s vs %s", a, b)
	}
}

func TestMakeNodeIdDistinct(t *testing.T) {
	a := MakeNodeIdFromString("state:App.tsx:App:count")
	b := MakeNodeIdFromString("state:App.tsx:App:total")
	if a == b {
		t.Fatalf("expected distinct ids for distinct content, got %s", a)
	}
}

func TestMakeNodeIdShape(t *testing.T) {
	id := MakeNodeIdFromString("anything")
	if !id.Valid() {
		t.Fatalf("expected valid shape, got %s", id)
	}
	if len(id) != len(nodeIdPrefix)+nodeIdHexLen {
		t.Fatalf("unexpected length %d for %s", len(id), id)
	}
}

func TestNodeIdValidRejectsGarbage(t *testing.T) {
	cases := []NodeId{"", "ir-", "ir-xyz", NodeId("not-an-id"), NodeId("ir-" + "0123456789abcdef" + "0")}
	for _, c := range cases {
		if c.Valid() {
			t.Errorf("expected %q to be invalid", c)
		}
	}
}
