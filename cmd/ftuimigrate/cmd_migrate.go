// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nightisyang/frankentui-migrate/internal/atlas"
	"github.com/nightisyang/frankentui-migrate/internal/config"
	"github.com/nightisyang/frankentui-migrate/internal/emit"
	"github.com/nightisyang/frankentui-migrate/internal/evidence"
	"github.com/nightisyang/frankentui-migrate/internal/pipeline"
	"github.com/nightisyang/frankentui-migrate/pkg/logging"
)

// fixture is the on-disk shape of an extractor fixture: the four inputs
// lowering consumes, bundled for a single `--input` flag. Nothing in this
// repository produces fixture.json itself; it stands in for whatever an
// external extractor emits.
type fixture struct {
	Project     json.RawMessage
	Composition json.RawMessage
	Styles      json.RawMessage
	StateModel  json.RawMessage
}

func loadInput(path string) (pipeline.Input, error) {
	var in pipeline.Input

	raw, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	var f fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return in, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	if err := json.Unmarshal(f.Project, &in.Project); err != nil {
		return in, fmt.Errorf("parsing fixture %s: project: %w", path, err)
	}
	if err := json.Unmarshal(f.Composition, &in.Composition); err != nil {
		return in, fmt.Errorf("parsing fixture %s: composition: %w", path, err)
	}
	if err := json.Unmarshal(f.Styles, &in.Styles); err != nil {
		return in, fmt.Errorf("parsing fixture %s: styles: %w", path, err)
	}
	if err := json.Unmarshal(f.StateModel, &in.StateModel); err != nil {
		return in, fmt.Errorf("parsing fixture %s: state model: %w", path, err)
	}
	return in, nil
}

func openEvidenceStore(path string, log *logging.Logger) (*evidence.Store, error) {
	if path == "" {
		return nil, nil
	}
	return evidence.Open(path, log)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := logging.Default()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	atl, err := atlas.Load(atlasPath)
	if err != nil {
		return fmt.Errorf("loading atlas: %w", err)
	}

	ev, err := openEvidenceStore(evidenceDBPath, log)
	if err != nil {
		return fmt.Errorf("opening evidence store: %w", err)
	}
	if ev != nil {
		defer ev.Close()
	}

	in, err := loadInput(fixturePath)
	if err != nil {
		return err
	}

	runID := runIDFlag
	if runID == "" {
		runID = uuid.NewString()
	}
	sourceProject := filepath.Base(fixturePath)

	p := pipeline.New(cfg, atl, ev, log.With("run_id", runID))
	result, err := p.Run(cmd.Context(), runID, sourceProject, in)
	if err != nil {
		return fmt.Errorf("pipeline run %s failed: %w", runID, err)
	}

	if err := writeEmission(cmd.Context(), outputDir, result.Optimized.Plan.Files); err != nil {
		return fmt.Errorf("writing emission to %s: %w", outputDir, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d decisions, %d gap tickets, feasibility=%s\n",
		runID, len(result.Plan.Decisions), len(result.GapReport.Records), result.GapReport.Summary.MigrationFeasibility)
	fmt.Fprintf(cmd.OutOrStdout(), "emitted %d files (mean confidence %.2f) to %s\n",
		result.Emission.Stats.TotalFiles, result.Emission.Stats.MeanConfidence, outputDir)
	if result.Emission.Manifest.RequiresHumanReview {
		fmt.Fprintln(cmd.OutOrStdout(), "manifest requires human review: run `ftuimigrate review` before relying on this crate")
	}
	return nil
}

// writeEmission fans the emitted files out to disk concurrently: each file
// is an independent leaf (code emission never cross-references another
// file's on-disk state on write), so an errgroup collects the first write
// failure without serializing unrelated files behind it.
func writeEmission(ctx context.Context, dir string, files map[string]emit.EmittedFile) error {
	g, _ := errgroup.WithContext(ctx)
	for name, file := range files {
		name, file := name, file
		g.Go(func() error {
			full := filepath.Join(dir, filepath.FromSlash(name))
			if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if err := os.WriteFile(full, []byte(file.Content), 0o644); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
