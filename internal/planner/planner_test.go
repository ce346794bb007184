package planner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/nightisyang/frankentui-migrate/internal/atlas"
	"github.com/nightisyang/frankentui-migrate/internal/planner/signals"
)

const testAtlas = `
[[entry]]
source_signature = "useState"
target_construct = "Model field"
category = "state"
policy = "Exact"
risk = "Low"

[[entry]]
source_signature = "video"
target_construct = ""
category = "view"
policy = "Unsupported"
risk = "Critical"
remediation = "no terminal video target"
`

func TestBuildIsDeterministic(t *testing.T) {
	atl, err := atlas.LoadBytes([]byte(testAtlas))
	require.NoError(t, err)
	segments := []Segment{
		{ID: "seg-b", Category: "state", MappingSignature: "useState"},
		{ID: "seg-a", Category: "view", MappingSignature: "video"},
	}
	cfg := DefaultConfig()

	p1 := Build("run-1", segments, atl, cfg)
	p2 := Build("run-1", segments, atl, cfg)

	require.Len(t, p2.Decisions, len(p1.Decisions))
	if diff := cmp.Diff(p1.Decisions, p2.Decisions); diff != "" {
		t.Fatalf("plan built twice from identical inputs must be byte-identical (-first +second):\n%s", diff)
	}
}

func TestBuildSortsDecisionsBySegmentID(t *testing.T) {
	atl, _ := atlas.LoadBytes([]byte(testAtlas))
	segments := []Segment{
		{ID: "seg-z", Category: "state", MappingSignature: "useState"},
		{ID: "seg-a", Category: "state", MappingSignature: "useState"},
	}
	p := Build("run-1", segments, atl, DefaultConfig())
	if p.Decisions[0].SegmentID != "seg-a" || p.Decisions[1].SegmentID != "seg-z" {
		t.Fatalf("expected sorted order, got %v", p.Decisions)
	}
}

func TestBuildEmitsUnsupportedGapTicket(t *testing.T) {
	atl, _ := atlas.LoadBytes([]byte(testAtlas))
	segments := []Segment{{ID: "seg-video", Category: "view", MappingSignature: "video"}}
	p := Build("run-1", segments, atl, DefaultConfig())
	if len(p.GapTickets) != 1 {
		t.Fatalf("expected 1 gap ticket, got %d", len(p.GapTickets))
	}
	if p.GapTickets[0].Kind != GapUnsupported {
		t.Fatalf("expected Unsupported ticket, got %s", p.GapTickets[0].Kind)
	}
}

func TestBuildEmitsLowConfidenceGapTicketWithSignalPenalty(t *testing.T) {
	atl, _ := atlas.LoadBytes([]byte(testAtlas))
	segments := []Segment{{
		ID:               "seg-state",
		Category:         "state",
		MappingSignature: "useState",
		Env:              signals.Env{Risk: "High"},
	}}
	cfg := DefaultConfig()
	cfg.MinConfidenceThreshold = 0.99
	cfg.SignalAdjustments = []signals.Adjustment{
		{Name: "high-risk-penalty", Condition: `Risk == "High"`, Penalty: 20},
	}
	p := Build("run-1", segments, atl, cfg)
	if len(p.GapTickets) != 1 || p.GapTickets[0].Kind != GapLowConfidence {
		t.Fatalf("expected a LowConfidence ticket, got %v", p.GapTickets)
	}
}

func TestStatsSumsMatchDecisionCount(t *testing.T) {
	atl, _ := atlas.LoadBytes([]byte(testAtlas))
	segments := []Segment{
		{ID: "a", Category: "state", MappingSignature: "useState"},
		{ID: "b", Category: "state", MappingSignature: "useState"},
		{ID: "c", Category: "view", MappingSignature: "video"},
	}
	p := Build("run-1", segments, atl, DefaultConfig())
	sum := 0
	for _, n := range p.Stats.ByCategory {
		sum += n
	}
	if sum != len(p.Decisions) {
		t.Fatalf("expected by-category sum %d to equal decision count %d", sum, len(p.Decisions))
	}
}
