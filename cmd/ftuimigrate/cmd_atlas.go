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

	"github.com/spf13/cobra"

	"github.com/nightisyang/frankentui-migrate/internal/atlas"
)

func runAtlasStats(cmd *cobra.Command, args []string) error {
	atl, err := atlas.Load(atlasPath)
	if err != nil {
		return fmt.Errorf("loading atlas %s: %w", atlasPath, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d entries\n\nby policy:\n", atl.Len())
	for policy, n := range atl.PartitionByPolicy() {
		fmt.Fprintf(out, "  %-14s %d\n", policy, n)
	}
	fmt.Fprintln(out, "\nby risk:")
	for risk, n := range atl.PartitionByRisk() {
		fmt.Fprintf(out, "  %-14s %d\n", risk, n)
	}
	fmt.Fprintln(out, "\nby category:")
	for category, n := range atl.PartitionByCategory() {
		fmt.Fprintf(out, "  %-14s %d\n", category, n)
	}
	return nil
}
