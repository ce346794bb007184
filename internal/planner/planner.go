// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package planner implements the Translation Planner (schema
// "translation-planner-v1"): for every IR segment it queries the atlas,
// derives candidate strategies, computes a posterior from atlas evidence
// plus optional signal adjustments, calls the contract's decide and
// expected-loss rule, and emits a StrategyDecision. Unsupported/low
// confidence/extension-needed segments also emit a CapabilityGapTicket.
package planner

import (
	"fmt"
	"sort"

	"github.com/nightisyang/frankentui-migrate/internal/atlas"
	"github.com/nightisyang/frankentui-migrate/internal/contract"
	"github.com/nightisyang/frankentui-migrate/internal/ir"
	"github.com/nightisyang/frankentui-migrate/internal/planner/signals"
)

const SchemaVersion = "translation-planner-v1"

// Segment is one unit of planning input: an IR construct identified by its
// NodeId plus the data needed to query the atlas and evaluate signals.
type Segment struct {
	ID              ir.NodeId
	Category        string // view, state, event, effect, layout, style, capability, accessibility
	MappingSignature string
	Env             signals.Env
}

// Config is the planner's operator-supplied configuration.
type Config struct {
	Seed                   int64
	MinConfidenceThreshold float64
	SignalAdjustments      []signals.Adjustment
	Prior                  contract.Prior
	GateThresholds         contract.GateThresholds
	LossPolicy             contract.LossPolicy
	CredibleLevel          float64
}

// DefaultConfig returns sane defaults for every threshold the planner needs.
func DefaultConfig() Config {
	return Config{
		Seed:                   0,
		MinConfidenceThreshold: 0.5,
		Prior:                  contract.DefaultPrior(),
		GateThresholds:         contract.DefaultGateThresholds(),
		LossPolicy:             contract.DefaultLossPolicy(),
		CredibleLevel:          0.95,
	}
}

// StrategyDecision is the per-segment planner output.
type StrategyDecision struct {
	SegmentID       ir.NodeId
	Category        string
	Chosen          string
	Alternatives    []string
	Posterior       contract.BayesianPosterior
	ExpectedLoss    contract.ExpectedLossResult
	Gate            contract.MigrationDecision
	Confidence      float64
	Rationale       string
}

// GapKind classifies why a segment needs attention.
type GapKind string

const (
	GapUnsupported        GapKind = "Unsupported"
	GapRequiresExtension   GapKind = "RequiresExtension"
	GapLowConfidence       GapKind = "LowConfidence"
)

// GapTicket is the planner's own gap surface, later promoted by the gap
// detector if not already covered by a GapRecord.
type GapTicket struct {
	SegmentID            ir.NodeId
	Kind                 GapKind
	Description          string
	SuggestedRemediation string
	Priority             int
}

// Stats summarizes a plan: counts by category/handling-class and mean
// confidence, recomputed from the decisions rather than tracked
// incrementally, so it can never drift from the decision list.
type Stats struct {
	ByCategory      map[string]int
	ByHandlingClass map[string]int
	MeanConfidence  float64
}

// Plan is the TranslationPlan artifact.
type Plan struct {
	Version    string
	RunID      string
	Seed       int64
	Decisions  []StrategyDecision
	GapTickets []GapTicket
	Stats      Stats
}

// Build runs the planner over every segment, sorted by segment.id, and
// returns the assembled, byte-stable Plan.
func Build(runID string, segments []Segment, atl *atlas.Atlas, cfg Config) Plan {
	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	evaluator := signals.NewEvaluator()

	var decisions []StrategyDecision
	var tickets []GapTicket

	for _, seg := range sorted {
		decision, ticket := planSegment(seg, atl, cfg, evaluator)
		decisions = append(decisions, decision)
		if ticket != nil {
			tickets = append(tickets, *ticket)
		}
	}

	sort.Slice(tickets, func(i, j int) bool { return tickets[i].SegmentID < tickets[j].SegmentID })

	return Plan{
		Version:    SchemaVersion,
		RunID:      runID,
		Seed:       cfg.Seed,
		Decisions:  decisions,
		GapTickets: tickets,
		Stats:      computeStats(decisions),
	}
}

func planSegment(seg Segment, atl *atlas.Atlas, cfg Config, evaluator *signals.Evaluator) (StrategyDecision, *GapTicket) {
	entry, hit := atl.Lookup(seg.MappingSignature)

	baseSuccesses, baseFailures := baseEvidence(entry, hit)
	boost, penalty := evaluator.ApplyAll(cfg.SignalAdjustments, seg.Env)

	posterior := contract.ComputePosterior(cfg.Prior, baseSuccesses+boost, baseFailures+penalty, cfg.CredibleLevel)
	gate := contract.Decide(posterior, cfg.GateThresholds)
	lossResult := contract.ExpectedLossDecision(posterior, string(seg.ID), cfg.LossPolicy)

	chosen := "Unsupported"
	var alternatives []string
	if hit {
		chosen = entry.TargetConstruct
		if chosen == "" {
			chosen = "Unsupported"
		}
	}

	decision := StrategyDecision{
		SegmentID:    seg.ID,
		Category:     seg.Category,
		Chosen:       chosen,
		Alternatives: alternatives,
		Posterior:    posterior,
		ExpectedLoss: lossResult,
		Gate:         gate,
		Confidence:   posterior.Mean,
		Rationale:    rationale(hit, entry, posterior, gate),
	}

	ticket := gapTicketFor(seg, entry, hit, posterior, cfg)
	return decision, ticket
}

func baseEvidence(entry atlas.Entry, hit bool) (successes, failures float64) {
	if !hit {
		return 0, 1
	}
	switch entry.Policy {
	case atlas.PolicyExact:
		return 9, 1
	case atlas.PolicyApproximate:
		return 6, 2
	case atlas.PolicyExtendFtui:
		return 3, 3
	case atlas.PolicyUnsupported:
		return 0, 8
	default:
		return 1, 1
	}
}

func rationale(hit bool, entry atlas.Entry, p contract.BayesianPosterior, gate contract.MigrationDecision) string {
	if !hit {
		return fmt.Sprintf("no atlas entry; gate=%s mean=%.3f", gate, p.Mean)
	}
	return fmt.Sprintf("atlas policy=%s risk=%s; gate=%s mean=%.3f", entry.Policy, entry.Risk, gate, p.Mean)
}

func gapTicketFor(seg Segment, entry atlas.Entry, hit bool, p contract.BayesianPosterior, cfg Config) *GapTicket {
	belowThreshold := p.Mean < cfg.MinConfidenceThreshold

	switch {
	case !hit:
		return &GapTicket{
			SegmentID:            seg.ID,
			Kind:                 GapUnsupported,
			Description:          fmt.Sprintf("no atlas mapping for signature %q", seg.MappingSignature),
			SuggestedRemediation: "add an atlas entry or mark the construct out of scope",
			Priority:             1,
		}
	case entry.Policy == atlas.PolicyUnsupported:
		return &GapTicket{
			SegmentID:            seg.ID,
			Kind:                 GapUnsupported,
			Description:          fmt.Sprintf("atlas marks %q unsupported: %s", seg.MappingSignature, entry.Remediation),
			SuggestedRemediation: entry.Remediation,
			Priority:             1,
		}
	case entry.Policy == atlas.PolicyExtendFtui:
		return &GapTicket{
			SegmentID:            seg.ID,
			Kind:                 GapRequiresExtension,
			Description:          fmt.Sprintf("%q requires a FrankenTUI extension point", seg.MappingSignature),
			SuggestedRemediation: entry.Remediation,
			Priority:             2,
		}
	case belowThreshold && (entry.Policy == atlas.PolicyExact || entry.Policy == atlas.PolicyApproximate):
		return &GapTicket{
			SegmentID:            seg.ID,
			Kind:                 GapLowConfidence,
			Description:          fmt.Sprintf("confidence %.3f below threshold %.3f for %q", p.Mean, cfg.MinConfidenceThreshold, seg.MappingSignature),
			SuggestedRemediation: "collect more evidence or route to human review",
			Priority:             3,
		}
	default:
		return nil
	}
}

func computeStats(decisions []StrategyDecision) Stats {
	stats := Stats{ByCategory: map[string]int{}, ByHandlingClass: map[string]int{}}
	if len(decisions) == 0 {
		return stats
	}
	var sumConfidence float64
	for _, d := range decisions {
		stats.ByCategory[d.Category]++
		stats.ByHandlingClass[string(d.Gate)]++
		sumConfidence += d.Confidence
	}
	stats.MeanConfidence = sumConfidence / float64(len(decisions))
	return stats
}
