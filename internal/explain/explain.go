// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package explain renders the effect a normalization or translation pass
// had on the IR as a human-reviewable unified diff: a before/after
// canonical text dump is line-diffed, formatted as a standard unified
// diff, and parsed back into structured hunks with go-diff so review
// tooling can walk additions and deletions without re-parsing text.
package explain

import (
	"encoding/json"
	"fmt"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/nightisyang/frankentui-migrate/internal/ir"
)

// Hunk is one reviewable block of change: a contiguous run of context,
// additions, and deletions with their line numbers in each side.
type Hunk struct {
	OldStart, OldLines int
	NewStart, NewLines int
	Lines              []string // unified-diff lines, each prefixed " ", "+", or "-"
}

// Explanation is the diff artifact for one pass over one IR label.
type Explanation struct {
	Label    string
	Hunks    []Hunk
	Added    int
	Removed  int
	Identical bool
}

// contextLines is the number of unchanged lines kept around each change,
// matching standard unified-diff conventions.
const contextLines = 3

// ExplainIR diffs the canonical text form of before and after, labeling
// the result with the pass name that produced after from before.
func ExplainIR(label string, before, after ir.MigrationIr) (Explanation, error) {
	return ExplainText(label, canonicalText(before), canonicalText(after))
}

// ExplainText diffs two arbitrary text blobs (already-rendered IR dumps,
// generated source files, anything line-oriented) and returns a structured
// Explanation.
func ExplainText(label, before, after string) (Explanation, error) {
	if before == after {
		return Explanation{Label: label, Identical: true}, nil
	}

	oldLines := splitLines(before)
	newLines := splitLines(after)
	edits := computeEdits(oldLines, newLines)
	unified := formatUnifiedDiff(label, oldLines, newLines, edits)

	fileDiffs, err := godiff.ParseMultiFileDiff([]byte(unified))
	if err != nil {
		return Explanation{}, fmt.Errorf("explain: parsing generated diff: %w", err)
	}

	exp := Explanation{Label: label}
	for _, fd := range fileDiffs {
		for _, h := range fd.Hunks {
			lines := strings.Split(strings.TrimSuffix(string(h.Body), "\n"), "\n")
			hunk := Hunk{
				OldStart: int(h.OrigStartLine),
				OldLines: int(h.OrigLines),
				NewStart: int(h.NewStartLine),
				NewLines: int(h.NewLines),
				Lines:    lines,
			}
			exp.Hunks = append(exp.Hunks, hunk)
			for _, l := range lines {
				switch {
				case strings.HasPrefix(l, "+"):
					exp.Added++
				case strings.HasPrefix(l, "-"):
					exp.Removed++
				}
			}
		}
	}
	return exp, nil
}

// canonicalText renders a MigrationIr as deterministic indented JSON, so
// two semantically-equal IRs always diff to nothing and any field change
// shows up as a readable line-level delta.
func canonicalText(m ir.MigrationIr) string {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Sprintf("<unrenderable ir: %v>", err)
	}
	return string(data)
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" && !strings.HasSuffix(content, "\n") {
		lines = lines[:len(lines)-1]
	}
	return lines
}
