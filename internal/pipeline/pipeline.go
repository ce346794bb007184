// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipeline wires lowering, normalization, abstract interpretation,
// planning, gap detection, translation, emission, and optimization into one
// ordered run, instrumenting every stage through internal/telemetry and
// logging stage completion through pkg/logging. The pipeline itself adds no
// semantics: each stage is still the pure function its own package exports.
package pipeline

import (
	"context"
	"fmt"

	"github.com/nightisyang/frankentui-migrate/internal/absint"
	"github.com/nightisyang/frankentui-migrate/internal/atlas"
	"github.com/nightisyang/frankentui-migrate/internal/config"
	"github.com/nightisyang/frankentui-migrate/internal/effectmodel"
	"github.com/nightisyang/frankentui-migrate/internal/emit"
	"github.com/nightisyang/frankentui-migrate/internal/evidence"
	"github.com/nightisyang/frankentui-migrate/internal/extract"
	"github.com/nightisyang/frankentui-migrate/internal/gap"
	"github.com/nightisyang/frankentui-migrate/internal/ir"
	"github.com/nightisyang/frankentui-migrate/internal/lowering"
	"github.com/nightisyang/frankentui-migrate/internal/normalize"
	"github.com/nightisyang/frankentui-migrate/internal/optimize"
	"github.com/nightisyang/frankentui-migrate/internal/planner"
	"github.com/nightisyang/frankentui-migrate/internal/telemetry"
	"github.com/nightisyang/frankentui-migrate/internal/translate/effects"
	"github.com/nightisyang/frankentui-migrate/internal/translate/state"
	"github.com/nightisyang/frankentui-migrate/internal/translate/style"
	"github.com/nightisyang/frankentui-migrate/internal/translate/view"

	"github.com/nightisyang/frankentui-migrate/pkg/logging"
)

// Input bundles the extractor output lowering consumes. Nothing in this
// repository produces it from source; it arrives as a JSON fixture or from
// an external extractor.
type Input struct {
	Project     extract.ProjectParse
	Composition extract.CompositionResult
	Styles      extract.StyleResult
	StateModel  extract.StateModel
}

// Result bundles every artifact the pipeline produced, in stage order.
type Result struct {
	Ir              ir.MigrationIr
	LoweringErrors  ir.ValidationErrors
	NormalizeReport normalize.Report
	EffectModel     effectmodel.Model
	Analysis        absint.AnalysisResult
	Plan            planner.Plan
	GapReport       gap.Report
	Runtime         state.TranslatedRuntime
	Widgets         view.TranslatedView
	Style           style.TranslatedStyle
	Orchestration   effects.TranslatedEffects
	Emission        emit.EmissionPlan
	Optimized       optimize.Result
}

// Pipeline holds the dependencies every stage shares: configuration, the
// mapping atlas, the evidence store, and a logger scoped to "pipeline".
type Pipeline struct {
	cfg     config.Config
	atl     *atlas.Atlas
	ev      *evidence.Store
	log     *logging.Logger
	metrics *telemetry.StageMetrics
}

// New builds a Pipeline. ev may be nil: evidence persistence becomes a
// no-op. The planner does not read ev either way; its posteriors come from
// atlas base weights, signal adjustments and the configured prior.
func New(cfg config.Config, atl *atlas.Atlas, ev *evidence.Store, log *logging.Logger) *Pipeline {
	if log == nil {
		log = logging.Default()
	}
	return &Pipeline{
		cfg:     cfg,
		atl:     atl,
		ev:      ev,
		log:     log.With("component", "pipeline"),
		metrics: telemetry.Metrics(),
	}
}

// Run executes every stage in order, stopping at the first stage that
// returns an error. Lowering itself never fails (see lowering.LowerToIr);
// its diagnostics are attached to Result.LoweringErrors for the caller to
// inspect.
func (p *Pipeline) Run(ctx context.Context, runID, sourceProject string, in Input) (Result, error) {
	var res Result

	err := telemetry.Instrument(ctx, p.metrics, "lowering", func(ctx context.Context) error {
		m, errs := lowering.LowerToIr(lowering.Config{RunID: runID, SourceProject: sourceProject}, in.Project, in.Composition, in.Styles, in.StateModel)
		res.Ir = m
		res.LoweringErrors = errs
		p.log.Info("lowering complete", "view_nodes", len(m.ViewTree.Nodes), "state_vars", len(m.StateGraph.Variables), "diagnostics", len(errs))
		return nil
	})
	if err != nil {
		return res, err
	}

	err = telemetry.Instrument(ctx, p.metrics, "normalize", func(ctx context.Context) error {
		m, report := normalize.Run(res.Ir)
		res.Ir = m
		res.NormalizeReport = report
		p.log.Info("normalize complete", "passes", len(report.Passes))
		return nil
	})
	if err != nil {
		return res, err
	}

	err = telemetry.Instrument(ctx, p.metrics, "absint", func(ctx context.Context) error {
		res.EffectModel = effectmodel.Build(res.Ir.EffectRegistry)
		res.Analysis = absint.Analyze(res.EffectModel, absint.DefaultConfig())
		p.log.Info("abstract interpretation complete", "obligations", len(res.Analysis.Obligations))
		return nil
	})
	if err != nil {
		return res, err
	}

	err = telemetry.Instrument(ctx, p.metrics, "plan", func(ctx context.Context) error {
		segments := planner.SegmentsFromIr(res.Ir)
		plannerCfg := planner.Config{
			Seed:                   0,
			MinConfidenceThreshold: 0.5,
			SignalAdjustments:      p.cfg.ActiveSignalRules(),
			Prior:                  p.cfg.ToPrior(),
			GateThresholds:         p.cfg.ToThresholds(),
			LossPolicy:             p.cfg.ToLossPolicy(),
			CredibleLevel:          p.cfg.CredibleLevel,
		}
		res.Plan = planner.Build(runID, segments, p.atl, plannerCfg)
		p.log.Info("plan complete", "decisions", len(res.Plan.Decisions), "gap_tickets", len(res.Plan.GapTickets))
		return nil
	})
	if err != nil {
		return res, err
	}

	err = telemetry.Instrument(ctx, p.metrics, "gap", func(ctx context.Context) error {
		res.GapReport = gap.Build(res.Plan, res.Ir, p.atl)
		p.log.Info("gap report complete", "records", len(res.GapReport.Records), "feasibility", res.GapReport.Summary.MigrationFeasibility)
		return nil
	})
	if err != nil {
		return res, err
	}

	err = telemetry.Instrument(ctx, p.metrics, "translate", func(ctx context.Context) error {
		res.Runtime = state.Translate(res.Ir, res.EffectModel)
		res.Widgets = view.Translate(res.Ir)
		res.Style = style.Translate(res.Ir)
		res.Orchestration = effects.Translate(res.EffectModel)
		return nil
	})
	if err != nil {
		return res, err
	}

	err = telemetry.Instrument(ctx, p.metrics, "emit", func(ctx context.Context) error {
		res.Emission = emit.Build(sourceProject, res.Runtime, res.Widgets, res.Style, res.Orchestration, res.Plan, res.GapReport)
		p.log.Info("emit complete", "files", res.Emission.Stats.TotalFiles, "mean_confidence", res.Emission.Stats.MeanConfidence)
		return nil
	})
	if err != nil {
		return res, err
	}

	err = telemetry.Instrument(ctx, p.metrics, "optimize", func(ctx context.Context) error {
		res.Optimized = optimize.Optimize(res.Emission, optimize.DefaultConfig())
		p.log.Info("optimize complete", "audit_entries", len(res.Optimized.Audit))
		return nil
	})
	if err != nil {
		return res, err
	}

	if p.ev != nil {
		p.recordEvidence(res.Plan)
	}

	return res, nil
}

// recordEvidence folds each decision's gate back into the evidence store:
// AutoApprove strengthens the mapping signature's success count, anything
// past it (Reject/HardReject/Rollback) strengthens its failure count.
// HumanReview and ConservativeFallback are left unrecorded — an operator
// has not yet confirmed either way.
func (p *Pipeline) recordEvidence(plan planner.Plan) {
	for _, d := range plan.Decisions {
		var err error
		switch d.Gate {
		case "AutoApprove":
			err = p.ev.RecordSuccess(string(d.SegmentID))
		case "Reject", "HardReject", "Rollback":
			err = p.ev.RecordFailure(string(d.SegmentID))
		default:
			continue
		}
		if err != nil {
			p.log.Warn("evidence record failed", "segment", d.SegmentID, "error", err)
		}
	}
}

// ApplyReview folds operator resolutions from a review session back into
// the evidence store: an approval strengthens the segment's mapping
// signature, a rejection weakens it. Deferred items are left unrecorded.
func (p *Pipeline) ApplyReview(decisions []planner.StrategyDecision, resolutions map[ir.NodeId]string) error {
	if p.ev == nil {
		return nil
	}
	for _, d := range decisions {
		res, ok := resolutions[d.SegmentID]
		if !ok {
			continue
		}
		var err error
		switch res {
		case "approved":
			err = p.ev.RecordSuccess(string(d.SegmentID))
		case "rejected":
			err = p.ev.RecordFailure(string(d.SegmentID))
		}
		if err != nil {
			return fmt.Errorf("pipeline: recording review resolution for %s: %w", d.SegmentID, err)
		}
	}
	return nil
}
