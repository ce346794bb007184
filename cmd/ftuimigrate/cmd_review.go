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
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nightisyang/frankentui-migrate/internal/atlas"
	"github.com/nightisyang/frankentui-migrate/internal/config"
	"github.com/nightisyang/frankentui-migrate/internal/evidence"
	"github.com/nightisyang/frankentui-migrate/internal/ir"
	"github.com/nightisyang/frankentui-migrate/internal/pipeline"
	"github.com/nightisyang/frankentui-migrate/internal/review"
	"github.com/nightisyang/frankentui-migrate/pkg/logging"
)

// runReview re-runs the full pipeline (review reads only the plan and gap
// records) and then either drives the interactive bubbletea session or,
// with --approve-all or when stdout isn't a terminal, asks for one bulk
// confirmation without listing the queue.
func runReview(cmd *cobra.Command, args []string) error {
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

	p := pipeline.New(cfg, atl, ev, log.With("run_id", runID))
	result, err := p.Run(cmd.Context(), runID, "review-session", in)
	if err != nil {
		return fmt.Errorf("pipeline run %s failed: %w", runID, err)
	}

	items := review.Queue(result.Plan, result.GapReport)
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing queued for review: no HumanReview or Rollback decisions")
		return nil
	}

	var session review.Result
	if approveAll || !isTTY() {
		confirmed, err := review.ConfirmBulkApprove(len(items))
		if err != nil {
			return fmt.Errorf("confirming bulk approve: %w", err)
		}
		session = review.Result{Resolutions: map[ir.NodeId]review.Resolution{}}
		if confirmed {
			for _, it := range items {
				session.Resolutions[it.Decision.SegmentID] = review.ResolutionApproved
			}
		}
	} else {
		session, err = review.Run(items)
		if err != nil {
			return fmt.Errorf("review session failed: %w", err)
		}
	}

	resolutions := make(map[ir.NodeId]string, len(session.Resolutions))
	for seg, res := range session.Resolutions {
		resolutions[seg] = string(res)
	}
	if err := p.ApplyReview(result.Plan.Decisions, resolutions); err != nil {
		return fmt.Errorf("applying review resolutions: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "reviewed %d item(s), %d resolved\n", len(items), len(session.Resolutions))
	return nil
}
