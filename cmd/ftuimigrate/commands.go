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
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/nightisyang/frankentui-migrate/internal/telemetry"
)

// version is the service version stamped on every emitted trace's
// resource attributes. Overridden at build time via -ldflags if a release
// process wants a real tag instead of "dev".
var version = "dev"

// tracerProvider is the process-wide SDK provider started in
// rootCmd's PersistentPreRunE and flushed in PersistentPostRunE, so every
// subcommand's spans (recorded through internal/telemetry.Instrument)
// actually get exported instead of silently dropped by otel's default
// no-op provider.
var tracerProvider *sdktrace.TracerProvider

// isTTY reports whether stdout is attached to an interactive terminal,
// gating the review command's bubbletea session versus its single
// bulk-approve confirmation.
func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

var (
	fixturePath    string
	outputDir      string
	configPath     string
	atlasPath      string
	evidenceDBPath string
	runIDFlag      string
	approveAll     bool

	rootCmd = &cobra.Command{
		Use:   "ftuimigrate",
		Short: "Migrate an OpenTUI project into a FrankenTUI Rust crate",
		Long: `ftuimigrate lowers an extracted OpenTUI project into the Migration IR,
verifies effect safety, classifies every construct through the Bayesian
semantic contract, plans a translation strategy, and emits the FrankenTUI
project tree.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			tp, err := telemetry.InitTracerProvider(cmd.Context(), os.Stderr, version)
			if err != nil {
				return err
			}
			tracerProvider = tp
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if tracerProvider == nil {
				return nil
			}
			return tracerProvider.Shutdown(context.Background())
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Run the full semantic pipeline and emit a FrankenTUI crate",
		RunE:  runMigrate,
	}

	reviewCmd = &cobra.Command{
		Use:   "review",
		Short: "Re-run the pipeline over --input and walk its HumanReview/Rollback decisions",
		RunE:  runReview,
	}

	atlasCmd = &cobra.Command{
		Use:   "atlas",
		Short: "Inspect the mapping atlas",
	}

	atlasStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Print atlas partition counts by policy, risk, and category",
		RunE:  runAtlasStats,
	}
)

func init() {
	migrateCmd.Flags().StringVar(&fixturePath, "input", "", "path to a JSON-encoded extractor fixture (required)")
	migrateCmd.Flags().StringVar(&outputDir, "out", "./ftui-out", "directory to write the generated crate into")
	migrateCmd.Flags().StringVar(&configPath, "config", "migration.yaml", "path to the operator policy file")
	migrateCmd.Flags().StringVar(&atlasPath, "atlas", "configs/atlas.toml", "path to the mapping atlas")
	migrateCmd.Flags().StringVar(&evidenceDBPath, "evidence-db", "", "path to the BadgerDB evidence store (empty disables persistence)")
	migrateCmd.Flags().StringVar(&runIDFlag, "run-id", "", "run identifier stamped into the plan (generated if empty)")
	_ = migrateCmd.MarkFlagRequired("input")

	reviewCmd.Flags().StringVar(&fixturePath, "input", "", "path to the same JSON-encoded extractor fixture used for migrate (required)")
	reviewCmd.Flags().StringVar(&configPath, "config", "migration.yaml", "path to the operator policy file")
	reviewCmd.Flags().StringVar(&atlasPath, "atlas", "configs/atlas.toml", "path to the mapping atlas")
	reviewCmd.Flags().StringVar(&evidenceDBPath, "evidence-db", "", "path to the BadgerDB evidence store (empty disables persistence)")
	reviewCmd.Flags().StringVar(&runIDFlag, "run-id", "", "run identifier stamped into the plan (generated if empty)")
	reviewCmd.Flags().BoolVar(&approveAll, "approve-all", false, "skip the interactive session and approve every pending item after one confirmation")
	_ = reviewCmd.MarkFlagRequired("input")

	atlasCmd.Flags().StringVar(&atlasPath, "atlas", "configs/atlas.toml", "path to the mapping atlas")
	atlasCmd.AddCommand(atlasStatsCmd)

	rootCmd.AddCommand(migrateCmd, reviewCmd, atlasCmd)
}
