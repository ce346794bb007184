package pipeline

import (
	"context"
	"testing"

	"github.com/nightisyang/frankentui-migrate/internal/atlas"
	"github.com/nightisyang/frankentui-migrate/internal/config"
	"github.com/nightisyang/frankentui-migrate/internal/extract"
)

func counterAppFixture() Input {
	return Input{
		Project: extract.ProjectParse{
			Files: map[string]extract.FileParse{"App.tsx": {Path: "App.tsx"}},
		},
		Composition: extract.CompositionResult{
			Roots: []extract.CompositionNode{
				{Key: "App", Kind: "Component", Name: "App", File: "App.tsx", Line: 1},
			},
		},
		StateModel: extract.StateModel{
			Variables: []extract.StateVarSummary{
				{File: "App.tsx", Component: "App", Name: "count", Scope: "Local", TypeHint: "number", InitialValue: "0", Line: 2},
			},
			Events: []extract.EventSummary{
				{File: "App.tsx", Component: "App", Name: "onClick", Line: 3, Writes: []string{"count"}},
			},
		},
	}
}

func TestPipelineRunProducesEveryArtifact(t *testing.T) {
	atl, err := atlas.LoadBytes([]byte(""))
	if err != nil {
		t.Fatalf("unexpected atlas error: %v", err)
	}

	p := New(config.DefaultConfig(), atl, nil, nil)
	res, err := p.Run(context.Background(), "run-1", "counter-app", counterAppFixture())
	if err != nil {
		t.Fatalf("unexpected pipeline error: %v", err)
	}

	if len(res.LoweringErrors) != 0 {
		t.Fatalf("expected valid ir, got %v", res.LoweringErrors)
	}
	if len(res.Plan.Decisions) == 0 {
		t.Error("expected at least one planner decision")
	}
	if res.Emission.Stats.TotalFiles == 0 {
		t.Error("expected emitted files")
	}
	if len(res.Optimized.Plan.Files) != len(res.Emission.Files) {
		t.Errorf("expected optimize to preserve the file set, got %d vs %d", len(res.Optimized.Plan.Files), len(res.Emission.Files))
	}
}

func TestPipelineRunIsDeterministic(t *testing.T) {
	atl, err := atlas.LoadBytes([]byte(""))
	if err != nil {
		t.Fatalf("unexpected atlas error: %v", err)
	}
	p := New(config.DefaultConfig(), atl, nil, nil)

	r1, err := p.Run(context.Background(), "run-1", "counter-app", counterAppFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := p.Run(context.Background(), "run-1", "counter-app", counterAppFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.Ir.Metadata.IntegrityHash != r2.Ir.Metadata.IntegrityHash {
		t.Errorf("expected identical ir hash across runs, got %s vs %s", r1.Ir.Metadata.IntegrityHash, r2.Ir.Metadata.IntegrityHash)
	}
	if r1.Emission.Stats.MeanConfidence != r2.Emission.Stats.MeanConfidence {
		t.Errorf("expected identical mean confidence across runs")
	}
}
