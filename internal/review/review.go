// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package review implements the interactive operator review session for
// every translation-plan decision the gate routed to HumanReview or
// Rollback: a bubbletea program walks one decision at a time, a bubbles
// table tracks resolutions made so far, and a huh confirmation guards the
// irreversible "approve everything remaining" shortcut.
package review

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nightisyang/frankentui-migrate/internal/contract"
	"github.com/nightisyang/frankentui-migrate/internal/gap"
	"github.com/nightisyang/frankentui-migrate/internal/ir"
	"github.com/nightisyang/frankentui-migrate/internal/planner"
)

// Resolution is the operator's final call on one queued decision.
type Resolution string

const (
	ResolutionApproved Resolution = "approved"
	ResolutionRejected Resolution = "rejected"
	ResolutionDeferred Resolution = "deferred"
)

// Item is one queued decision paired with the gap records that explain why
// it needs a human.
type Item struct {
	Decision planner.StrategyDecision
	Gaps     []gap.Record
}

// Queue builds the review queue: every plan decision whose gate is
// HumanReview or Rollback, each paired with the gap records sharing its
// segment ID.
func Queue(plan planner.Plan, report gap.Report) []Item {
	bySegment := map[ir.NodeId][]gap.Record{}
	for _, r := range report.Records {
		bySegment[r.SegmentID] = append(bySegment[r.SegmentID], r)
	}

	var items []Item
	for _, d := range plan.Decisions {
		if d.Gate != contract.HumanReview && d.Gate != contract.Rollback {
			continue
		}
		items = append(items, Item{Decision: d, Gaps: bySegment[d.SegmentID]})
	}
	return items
}

// Result is the completed review session's output: every item's resolution
// plus whether the operator cancelled before finishing.
type Result struct {
	Resolutions map[ir.NodeId]Resolution
	Cancelled   bool
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Model is the bubbletea model driving the review session.
type Model struct {
	items   []Item
	cursor  int
	result  Result
	table   table.Model
	quit    bool
	confirm bool
}

// NewModel builds a review Model over items.
func NewModel(items []Item) Model {
	columns := []table.Column{
		{Title: "Segment", Width: 24},
		{Title: "Category", Width: 12},
		{Title: "Gate", Width: 16},
		{Title: "Resolution", Width: 12},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rowsFor(items, map[ir.NodeId]Resolution{})),
		table.WithHeight(len(items)+1),
	)
	return Model{
		items:  items,
		result: Result{Resolutions: map[ir.NodeId]Resolution{}},
		table:  t,
	}
}

func rowsFor(items []Item, resolutions map[ir.NodeId]Resolution) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, it := range items {
		res := string(resolutions[it.Decision.SegmentID])
		if res == "" {
			res = "pending"
		}
		rows = append(rows, table.Row{
			string(it.Decision.SegmentID),
			it.Decision.Category,
			string(it.Decision.Gate),
			res,
		})
	}
	return rows
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if len(m.items) == 0 {
		m.quit = true
		return m, tea.Quit
	}

	switch keyMsg.String() {
	case "y", "a":
		m.resolve(ResolutionApproved)
	case "n", "r":
		m.resolve(ResolutionRejected)
	case "s":
		m.resolve(ResolutionDeferred)
	case "q", "ctrl+c":
		m.result.Cancelled = true
		m.quit = true
		return m, tea.Quit
	}

	if m.cursor >= len(m.items) {
		m.quit = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) resolve(r Resolution) {
	if m.cursor >= len(m.items) {
		return
	}
	m.result.Resolutions[m.items[m.cursor].Decision.SegmentID] = r
	m.cursor++
	m.table.SetRows(rowsFor(m.items, m.result.Resolutions))
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Migration review"))
	b.WriteString("\n\n")

	if m.cursor < len(m.items) {
		item := m.items[m.cursor]
		b.WriteString(fmt.Sprintf("segment %s (%s)\n", item.Decision.SegmentID, item.Decision.Category))
		b.WriteString(warnStyle.Render(fmt.Sprintf("gate: %s  confidence: %.2f", item.Decision.Gate, item.Decision.Confidence)))
		b.WriteString("\n")
		for _, g := range item.Gaps {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  [%s] %s", g.Severity, g.Description)))
			b.WriteString("\n")
		}
		b.WriteString("\n[y] approve  [n] reject  [s] defer  [q] quit\n\n")
	} else {
		b.WriteString(dimStyle.Render("review complete\n\n"))
	}

	b.WriteString(m.table.View())
	return b.String()
}

// Done reports whether the session should exit.
func (m Model) Done() bool {
	return m.quit
}

// Result returns the session's accumulated resolutions.
func (m Model) Result() Result {
	return m.result
}

// ConfirmBulkApprove asks the operator, via a huh confirmation, whether to
// approve every remaining pending item in one shot — used by the CLI's
// non-interactive "--approve-all" escape hatch so it still requires an
// explicit yes in a terminal session.
func ConfirmBulkApprove(pendingCount int) (bool, error) {
	if pendingCount == 0 {
		return false, nil
	}
	var confirmed bool
	confirm := huh.NewConfirm().
		Title(fmt.Sprintf("Approve all %d remaining items?", pendingCount)).
		Affirmative("Yes, approve all").
		Negative("No, review individually").
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(confirm))
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("review: confirm form failed: %w", err)
	}
	return confirmed, nil
}

// Run drives the bubbletea program to completion and returns the final
// Result.
func Run(items []Item) (Result, error) {
	if len(items) == 0 {
		return Result{Resolutions: map[ir.NodeId]Resolution{}}, nil
	}
	m := NewModel(items)
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("review: program failed: %w", err)
	}
	return final.(Model).Result(), nil
}
