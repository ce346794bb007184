// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package emit implements Code Emission (§4.10): deterministic synthesis of
// the target FrankenTUI project tree from the four translator artifacts.
// Every file is assembled from pure string templates; emission performs no
// I/O and never fails — a degraded input simply yields a lower-confidence
// EmittedFile, per §7's "emission never fails" propagation policy.
package emit

import (
	"sort"
	"strings"

	"github.com/nightisyang/frankentui-migrate/internal/contract"
	"github.com/nightisyang/frankentui-migrate/internal/gap"
	"github.com/nightisyang/frankentui-migrate/internal/ir"
	"github.com/nightisyang/frankentui-migrate/internal/planner"
	"github.com/nightisyang/frankentui-migrate/internal/translate/effects"
	"github.com/nightisyang/frankentui-migrate/internal/translate/state"
	"github.com/nightisyang/frankentui-migrate/internal/translate/style"
	"github.com/nightisyang/frankentui-migrate/internal/translate/view"
)

// FileKind classifies an EmittedFile.
type FileKind string

const (
	KindSource   FileKind = "target source"
	KindManifest FileKind = "manifest"
	KindReadme   FileKind = "readme"
)

// ProvenanceLink back-links an emitted file to a source IR node.
type ProvenanceLink struct {
	NodeID ir.NodeId
	Note   string
}

// EmittedFile is one write-once file in the generated crate.
type EmittedFile struct {
	Kind        FileKind
	Content     string
	Confidence  float64
	Provenance  []ProvenanceLink
}

// Scaffold describes the generated Cargo crate's identity.
type Scaffold struct {
	CrateName    string
	Edition      string
	Dependencies []string
}

// MigrationManifest summarizes an emission run for operator triage.
type MigrationManifest struct {
	OverallConfidence   float64
	RequiresHumanReview bool
	GapCount            int
}

// Stats summarizes the emitted file set.
type Stats struct {
	TotalFiles     int
	RustFiles      int
	MinConfidence  float64
	MaxConfidence  float64
	MeanConfidence float64
}

// EmissionPlan is the full Code Emission artifact.
type EmissionPlan struct {
	Scaffold    Scaffold
	Files       map[string]EmittedFile
	ModuleGraph map[string][]string
	Manifest    MigrationManifest
	Diagnostics []ir.Diagnostic
	Stats       Stats
}

// mandatoryFiles is the minimum file set §4.10 requires in every emission.
var mandatoryFiles = []string{
	"src/model.rs",
	"src/msg.rs",
	"src/update.rs",
	"src/view.rs",
	"src/style.rs",
	"src/effects.rs",
	"src/main.rs",
	"Cargo.toml",
}

// Build synthesizes the target project tree from the four translator
// artifacts, the translation plan, and the capability gap report. Build is
// deterministic: identical inputs produce byte-identical file contents.
func Build(
	sourceProject string,
	runtime state.TranslatedRuntime,
	widgets view.TranslatedView,
	styleOut style.TranslatedStyle,
	orchestration effects.TranslatedEffects,
	plan planner.Plan,
	gapReport gap.Report,
) EmissionPlan {
	crateName := crateNameFor(sourceProject)
	scaffold := Scaffold{
		CrateName:    crateName,
		Edition:      "2021",
		Dependencies: dependenciesFor(runtime, orchestration),
	}

	confidenceByCategory := meanConfidenceByCategory(plan)

	files := map[string]EmittedFile{}
	files["src/model.rs"] = emitModel(runtime, confidenceOrDefault(confidenceByCategory, "state"))
	files["src/msg.rs"] = emitMsg(runtime, confidenceOrDefault(confidenceByCategory, "event"))
	files["src/update.rs"] = emitUpdate(runtime, confidenceOrDefault(confidenceByCategory, "event"))
	files["src/view.rs"] = emitView(widgets, confidenceOrDefault(confidenceByCategory, "view"))
	files["src/style.rs"] = emitStyle(styleOut, confidenceOrDefault(confidenceByCategory, "style"))
	files["src/effects.rs"] = emitEffects(orchestration, confidenceOrDefault(confidenceByCategory, "effect"))
	files["src/main.rs"] = emitMain(crateName)
	files["Cargo.toml"] = emitCargoToml(scaffold)

	moduleGraph := map[string][]string{
		"src/main.rs":   {"src/model.rs", "src/msg.rs", "src/update.rs", "src/view.rs", "src/style.rs", "src/effects.rs"},
		"src/update.rs": {"src/model.rs", "src/msg.rs", "src/effects.rs"},
		"src/view.rs":   {"src/model.rs", "src/style.rs"},
	}

	manifest := MigrationManifest{
		OverallConfidence:   meanConfidence(files),
		RequiresHumanReview: anyHumanReview(plan),
		GapCount:            len(gapReport.Records),
	}

	var diagnostics []ir.Diagnostic
	diagnostics = append(diagnostics, runtime.Diagnostics...)

	return EmissionPlan{
		Scaffold:    scaffold,
		Files:       files,
		ModuleGraph: moduleGraph,
		Manifest:    manifest,
		Diagnostics: diagnostics,
		Stats:       computeStats(files),
	}
}

// crateNameFor derives a Cargo-legal crate name from the source project
// name: letters are lowercased, a PascalCase word boundary (lowercase
// followed by uppercase) becomes a kebab-case dash, digits are kept, each
// '_' or '-' becomes '_', and every other character is dropped.
func crateNameFor(sourceProject string) string {
	var b strings.Builder
	runes := []rune(sourceProject)
	for i, r := range runes {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 && (runes[i-1] >= 'a' && runes[i-1] <= 'z') {
				b.WriteByte('-')
			}
			b.WriteRune(r - ('A' - 'a'))
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteByte('_')
		default:
			// drop anything else (spaces, punctuation)
		}
	}
	name := b.String()
	if name == "" {
		name = "frankentui_app"
	}
	return name
}

func dependenciesFor(runtime state.TranslatedRuntime, orchestration effects.TranslatedEffects) []string {
	deps := map[string]bool{
		"ftui-core":    true,
		"ftui-runtime": true,
		"ftui-layout":  true,
	}
	for _, e := range orchestration.Entries {
		if e.AsyncBoundary == "AsyncTask" || e.AsyncBoundary == "ThreadPool" {
			deps["tokio"] = true
		}
	}
	if len(runtime.Subscriptions) > 0 {
		deps["ftui-pty"] = true
	}
	out := make([]string, 0, len(deps))
	for d := range deps {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func meanConfidenceByCategory(plan planner.Plan) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, d := range plan.Decisions {
		sums[d.Category] += d.Confidence
		counts[d.Category]++
	}
	out := map[string]float64{}
	for cat, sum := range sums {
		if counts[cat] > 0 {
			out[cat] = sum / float64(counts[cat])
		}
	}
	return out
}

func confidenceOrDefault(byCategory map[string]float64, category string) float64 {
	if v, ok := byCategory[category]; ok {
		return v
	}
	return 0.5
}

func anyHumanReview(plan planner.Plan) bool {
	for _, d := range plan.Decisions {
		if d.Gate == contract.HumanReview || d.Gate == contract.Rollback {
			return true
		}
	}
	return false
}

func meanConfidence(files map[string]EmittedFile) float64 {
	if len(files) == 0 {
		return 0
	}
	var sum float64
	for _, f := range files {
		sum += f.Confidence
	}
	return sum / float64(len(files))
}

func computeStats(files map[string]EmittedFile) Stats {
	stats := Stats{TotalFiles: len(files)}
	if len(files) == 0 {
		return stats
	}
	first := true
	var sum float64
	for name, f := range files {
		if strings.HasSuffix(name, ".rs") {
			stats.RustFiles++
		}
		sum += f.Confidence
		if first {
			stats.MinConfidence = f.Confidence
			stats.MaxConfidence = f.Confidence
			first = false
		}
		if f.Confidence < stats.MinConfidence {
			stats.MinConfidence = f.Confidence
		}
		if f.Confidence > stats.MaxConfidence {
			stats.MaxConfidence = f.Confidence
		}
	}
	stats.MeanConfidence = sum / float64(len(files))
	return stats
}

// MandatoryFiles returns the minimum file set every emission must contain.
func MandatoryFiles() []string {
	out := make([]string, len(mandatoryFiles))
	copy(out, mandatoryFiles)
	return out
}
