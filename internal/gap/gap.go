// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gap implements the Capability Gap Detector (schema
// "gap-report-v1"): it turns planner output and the IR's capability
// profile into a ranked GapReport with an overall feasibility verdict.
package gap

import (
	"fmt"
	"sort"

	"github.com/nightisyang/frankentui-migrate/internal/atlas"
	"github.com/nightisyang/frankentui-migrate/internal/contract"
	"github.com/nightisyang/frankentui-migrate/internal/ir"
	"github.com/nightisyang/frankentui-migrate/internal/planner"
)

const SchemaVersion = "gap-report-v1"

// Severity orders from most to least urgent; Blocker sorts first.
type Severity string

const (
	SeverityBlocker  Severity = "Blocker"
	SeverityCritical Severity = "Critical"
	SeverityMajor    Severity = "Major"
	SeverityMinor    Severity = "Minor"
	SeverityInfo     Severity = "Info"
)

var severityOrder = map[Severity]int{
	SeverityBlocker:  0,
	SeverityCritical: 1,
	SeverityMajor:    2,
	SeverityMinor:    3,
	SeverityInfo:     4,
}

// BacklogAction is the machine-actionable triage action a gap record
// suggests to the operator.
type BacklogAction string

const (
	BacklogCreateFeatureRequest BacklogAction = "CreateFeatureRequest"
	BacklogCreateMigrationTask  BacklogAction = "CreateMigrationTask"
	BacklogFlagForReview        BacklogAction = "FlagForReview"
	BacklogNoAction             BacklogAction = "NoAction"
)

// Record is one entry in the gap report.
type Record struct {
	SegmentID     ir.NodeId
	Severity      Severity
	Category      string
	Description   string
	BacklogAction BacklogAction
}

// Feasibility is the overall migration feasibility rollup.
type Feasibility string

const (
	Blocked    Feasibility = "Blocked"
	Challenging Feasibility = "Challenging"
	Feasible   Feasibility = "Feasible"
	Clear      Feasibility = "Clear"
)

// Summary rolls up the records by severity/category/segment-category plus
// the overall feasibility verdict.
type Summary struct {
	CountsBySeverity       map[Severity]int
	CountsByCategory       map[string]int
	CountsBySegmentCategory map[string]int
	MigrationFeasibility   Feasibility
}

// Report is the GapReport artifact.
type Report struct {
	Version          string
	Records          []Record
	CapabilityGaps   []Record
	Summary          Summary
}

// Build assembles the GapReport from planner decisions/gap tickets and the
// IR's capability profile. atl may be nil; WalkCapabilitiesWithAtlas then
// treats every required/optional capability as having no atlas entry.
func Build(plan planner.Plan, m ir.MigrationIr, atl *atlas.Atlas) Report {
	var records []Record

	covered := map[ir.NodeId]bool{}
	for _, d := range plan.Decisions {
		if rec := recordForDecision(d); rec != nil {
			records = append(records, *rec)
			covered[d.SegmentID] = true
		}
	}

	for _, t := range plan.GapTickets {
		if covered[t.SegmentID] {
			continue
		}
		records = append(records, Record{
			SegmentID:     t.SegmentID,
			Severity:      severityForGapKind(t.Kind),
			Category:      string(t.Kind),
			Description:   t.Description,
			BacklogAction: backlogActionForCategory(string(t.Kind)),
		})
		covered[t.SegmentID] = true
	}

	var capabilityGaps []Record
	capabilityGaps = append(capabilityGaps, walkCapabilities(m)...)
	capabilityGaps = append(capabilityGaps, WalkCapabilitiesWithAtlas(m, atl)...)

	records = append(records, capabilityGaps...)

	sort.Slice(records, func(i, j int) bool {
		if severityOrder[records[i].Severity] != severityOrder[records[j].Severity] {
			return severityOrder[records[i].Severity] < severityOrder[records[j].Severity]
		}
		return records[i].SegmentID < records[j].SegmentID
	})
	sort.Slice(capabilityGaps, func(i, j int) bool {
		if severityOrder[capabilityGaps[i].Severity] != severityOrder[capabilityGaps[j].Severity] {
			return severityOrder[capabilityGaps[i].Severity] < severityOrder[capabilityGaps[j].Severity]
		}
		return capabilityGaps[i].SegmentID < capabilityGaps[j].SegmentID
	})

	return Report{
		Version:        SchemaVersion,
		Records:        records,
		CapabilityGaps: capabilityGaps,
		Summary:        summarize(records),
	}
}

// recordForDecision maps a StrategyDecision to a GapRecord when policy is
// Unsupported/ExtendFtui/Rejected/HumanReview-with-low-confidence/
// AutoApprove-with-very-low-confidence; otherwise nil.
func recordForDecision(d planner.StrategyDecision) *Record {
	const veryLowConfidence = 0.3
	const lowConfidence = 0.6

	switch {
	case d.Chosen == "Unsupported":
		return &Record{SegmentID: d.SegmentID, Severity: SeverityCritical, Category: "Unsupported",
			Description:   fmt.Sprintf("segment %s has no supported mapping", d.SegmentID),
			BacklogAction: backlogActionForCategory("Unsupported")}
	case d.Gate == contract.Reject || d.Gate == contract.HardReject:
		return &Record{SegmentID: d.SegmentID, Severity: SeverityMajor, Category: "Rejected",
			Description:   fmt.Sprintf("segment %s rejected by decision gate (%s)", d.SegmentID, d.Gate),
			BacklogAction: backlogActionForCategory("Rejected")}
	case d.Gate == contract.HumanReview && d.Confidence < lowConfidence:
		return &Record{SegmentID: d.SegmentID, Severity: SeverityMinor, Category: "HumanReview",
			Description:   fmt.Sprintf("segment %s needs human review at low confidence %.3f", d.SegmentID, d.Confidence),
			BacklogAction: backlogActionForCategory("HumanReview")}
	case d.Gate == contract.AutoApprove && d.Confidence < veryLowConfidence:
		return &Record{SegmentID: d.SegmentID, Severity: SeverityMinor, Category: "AutoApproveLowConfidence",
			Description:   fmt.Sprintf("segment %s auto-approved at surprisingly low confidence %.3f", d.SegmentID, d.Confidence),
			BacklogAction: backlogActionForCategory("AutoApproveLowConfidence")}
	default:
		return nil
	}
}

// backlogActionForCategory derives the suggested triage action from a gap's
// category, mirroring the reference implementation's gap_kind_to_action /
// remediation_from_mapping: Unsupported always asks for a new FrankenTUI
// feature, RequiresExtension asks for a manual migration task, and every
// other category (low confidence, human review, rejected, capability
// checks) falls back to flagging for human review.
func backlogActionForCategory(category string) BacklogAction {
	switch category {
	case "Unsupported":
		return BacklogCreateFeatureRequest
	case "RequiresExtension":
		return BacklogCreateMigrationTask
	default:
		return BacklogFlagForReview
	}
}

func severityForGapKind(kind planner.GapKind) Severity {
	switch kind {
	case planner.GapUnsupported:
		return SeverityCritical
	case planner.GapRequiresExtension:
		return SeverityMajor
	case planner.GapLowConfidence:
		return SeverityMinor
	default:
		return SeverityInfo
	}
}

// walkCapabilities inspects the IR's required/optional capabilities and
// platform assumptions. Capability-to-atlas-entry matching is delegated to
// WalkCapabilitiesWithAtlas; this plain walker only covers platform
// assumptions, which need no atlas lookup.
func walkCapabilities(m ir.MigrationIr) []Record {
	var out []Record
	for _, assumption := range m.Capabilities.PlatformAssumptions {
		id := ir.MakeNodeIdFromString("platform:" + assumption)
		out = append(out, Record{
			SegmentID:     id,
			Severity:      SeverityMajor,
			Category:      "PlatformAssumption",
			Description:   fmt.Sprintf("platform assumption %q must hold on the target runtime", assumption),
			BacklogAction: backlogActionForCategory("PlatformAssumption"),
		})
	}
	return out
}

// WalkCapabilitiesWithAtlas inspects required/optional capabilities against
// the atlas: required with no entry -> Critical; required with Unsupported
// policy -> Blocker; required with ExtendFtui policy -> Major; optional
// with no entry -> Info. atl == nil is treated as an atlas with no entries
// (every capability misses), so a pipeline run with no atlas configured
// still surfaces required capabilities as gaps instead of silently passing.
func WalkCapabilitiesWithAtlas(m ir.MigrationIr, atl *atlas.Atlas) []Record {
	var out []Record
	lookup := func(name string) (atlas.Entry, bool) {
		if atl == nil {
			return atlas.Entry{}, false
		}
		return atl.Lookup(name)
	}
	for _, cap := range m.Capabilities.Required {
		id := ir.MakeNodeIdFromString("capability:required:" + cap.Name)
		entry, hit := lookup(cap.Name)
		switch {
		case !hit:
			out = append(out, Record{SegmentID: id, Severity: SeverityCritical, Category: "RequiredCapability",
				Description:   fmt.Sprintf("required capability %q has no atlas entry", cap.Name),
				BacklogAction: backlogActionForCategory("RequiredCapability")})
		case entry.Policy == atlas.PolicyUnsupported:
			out = append(out, Record{SegmentID: id, Severity: SeverityBlocker, Category: "RequiredCapability",
				Description:   fmt.Sprintf("required capability %q is unsupported", cap.Name),
				BacklogAction: backlogActionForCategory("Unsupported")})
		case entry.Policy == atlas.PolicyExtendFtui:
			out = append(out, Record{SegmentID: id, Severity: SeverityMajor, Category: "RequiredCapability",
				Description:   fmt.Sprintf("required capability %q needs a FrankenTUI extension", cap.Name),
				BacklogAction: backlogActionForCategory("RequiresExtension")})
		}
	}
	for _, cap := range m.Capabilities.Optional {
		id := ir.MakeNodeIdFromString("capability:optional:" + cap.Name)
		if _, hit := lookup(cap.Name); !hit {
			out = append(out, Record{SegmentID: id, Severity: SeverityInfo, Category: "OptionalCapability",
				Description:   fmt.Sprintf("optional capability %q has no atlas entry", cap.Name),
				BacklogAction: backlogActionForCategory("OptionalCapability")})
		}
	}
	return out
}

func summarize(records []Record) Summary {
	s := Summary{
		CountsBySeverity:        map[Severity]int{},
		CountsByCategory:        map[string]int{},
		CountsBySegmentCategory: map[string]int{},
	}
	for _, r := range records {
		s.CountsBySeverity[r.Severity]++
		s.CountsByCategory[r.Category]++
		s.CountsBySegmentCategory[r.Category]++
	}

	blockers := s.CountsBySeverity[SeverityBlocker]
	critical := s.CountsBySeverity[SeverityCritical]
	major := s.CountsBySeverity[SeverityMajor]
	other := len(records) - blockers - critical - major

	switch {
	case blockers > 0:
		s.MigrationFeasibility = Blocked
	case critical > 0:
		s.MigrationFeasibility = Challenging
	case major > 0 && other == 0:
		s.MigrationFeasibility = Feasible
	default:
		s.MigrationFeasibility = Clear
	}
	return s
}
