package review

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nightisyang/frankentui-migrate/internal/contract"
	"github.com/nightisyang/frankentui-migrate/internal/gap"
	"github.com/nightisyang/frankentui-migrate/internal/ir"
	"github.com/nightisyang/frankentui-migrate/internal/planner"
)

func TestQueueFiltersToHumanReviewAndRollback(t *testing.T) {
	seg1 := ir.NodeId("ir-aaaaaaaaaaaaaaaa")
	seg2 := ir.NodeId("ir-bbbbbbbbbbbbbbbb")
	seg3 := ir.NodeId("ir-cccccccccccccccc")

	plan := planner.Plan{Decisions: []planner.StrategyDecision{
		{SegmentID: seg1, Category: "state", Gate: contract.AutoApprove},
		{SegmentID: seg2, Category: "view", Gate: contract.HumanReview},
		{SegmentID: seg3, Category: "effect", Gate: contract.Rollback},
	}}
	report := gap.Report{Records: []gap.Record{
		{SegmentID: seg2, Severity: gap.SeverityMajor, Description: "ambiguous mapping"},
	}}

	items := Queue(plan, report)
	if len(items) != 2 {
		t.Fatalf("expected 2 queued items, got %d", len(items))
	}
	if items[0].Decision.SegmentID != seg2 || len(items[0].Gaps) != 1 {
		t.Errorf("expected seg2 with 1 gap record, got %+v", items[0])
	}
	if items[1].Decision.SegmentID != seg3 {
		t.Errorf("expected seg3 second, got %+v", items[1])
	}
}

func TestModelResolvesItemsInOrder(t *testing.T) {
	seg1 := ir.NodeId("ir-aaaaaaaaaaaaaaaa")
	seg2 := ir.NodeId("ir-bbbbbbbbbbbbbbbb")
	items := []Item{
		{Decision: planner.StrategyDecision{SegmentID: seg1, Category: "state", Gate: contract.HumanReview}},
		{Decision: planner.StrategyDecision{SegmentID: seg2, Category: "view", Gate: contract.Rollback}},
	}

	m := NewModel(items)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m = next.(Model)

	result := m.Result()
	if result.Resolutions[seg1] != ResolutionApproved {
		t.Errorf("expected seg1 approved, got %v", result.Resolutions[seg1])
	}
	if result.Resolutions[seg2] != ResolutionRejected {
		t.Errorf("expected seg2 rejected, got %v", result.Resolutions[seg2])
	}
	if !m.Done() {
		t.Error("expected model done after resolving every item")
	}
}

func TestModelQuitSetsCancelled(t *testing.T) {
	items := []Item{
		{Decision: planner.StrategyDecision{SegmentID: ir.NodeId("ir-aaaaaaaaaaaaaaaa"), Gate: contract.HumanReview}},
	}
	m := NewModel(items)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)
	if !m.Done() || !m.Result().Cancelled {
		t.Error("expected ctrl+c to quit and mark the session cancelled")
	}
}

func TestRunWithNoItemsReturnsEmptyResultWithoutStartingProgram(t *testing.T) {
	result, err := Run(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Resolutions) != 0 || result.Cancelled {
		t.Errorf("expected empty, non-cancelled result, got %+v", result)
	}
}
