// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package optimize implements the post-emission Optimization passes
// (§4.11): dead-branch elimination, import deduplication, whitespace
// collapse, style-constant folding, and helper extraction. Every pass
// operates only on "target source" files and records its transformations
// in an audit trail. Optimize is deterministic and idempotent:
// Optimize(Optimize(plan)) == Optimize(plan).
package optimize

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nightisyang/frankentui-migrate/internal/emit"
)

// PassKind names one of the five optimization passes.
type PassKind string

const (
	PassDeadBranchElimination PassKind = "DeadBranchElimination"
	PassImportDeduplication   PassKind = "ImportDeduplication"
	PassWhitespaceCollapse    PassKind = "WhitespaceCollapse"
	PassStyleConstantFolding  PassKind = "StyleConstantFolding"
	PassHelperExtraction      PassKind = "HelperExtraction"
)

// DefaultPasses is every pass kind, in the fixed application order §4.11
// lists them.
func DefaultPasses() []PassKind {
	return []PassKind{
		PassDeadBranchElimination,
		PassImportDeduplication,
		PassWhitespaceCollapse,
		PassStyleConstantFolding,
		PassHelperExtraction,
	}
}

// AuditEntry records one transformation a pass applied to one file.
type AuditEntry struct {
	Pass        PassKind
	File        string
	Description string
}

// Config selects which passes run and their thresholds.
type Config struct {
	Passes                  []PassKind
	StyleConstantThreshold  int // min occurrences of an identical literal before folding
	HelperExtractionMin     int // min repeated-line-pattern occurrences before extraction
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		Passes:                 DefaultPasses(),
		StyleConstantThreshold: 3,
		HelperExtractionMin:    3,
	}
}

// Result is an optimized EmissionPlan plus its audit trail.
type Result struct {
	Plan  emit.EmissionPlan
	Audit []AuditEntry
}

// Optimize runs every configured pass, in order, over every "target
// source" file in plan.Files. Non-source files (manifests, readmes) pass
// through untouched.
func Optimize(plan emit.EmissionPlan, cfg Config) Result {
	files := make(map[string]emit.EmittedFile, len(plan.Files))
	for name, f := range plan.Files {
		files[name] = f
	}

	var audit []AuditEntry
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, pass := range cfg.Passes {
		for _, name := range names {
			f := files[name]
			if f.Kind != emit.KindSource {
				continue
			}
			newContent, entries := applyPass(pass, name, f.Content, cfg)
			if newContent != f.Content {
				f.Content = newContent
				files[name] = f
			}
			audit = append(audit, entries...)
		}
	}

	out := plan
	out.Files = files
	return Result{Plan: out, Audit: audit}
}

func applyPass(pass PassKind, file, content string, cfg Config) (string, []AuditEntry) {
	switch pass {
	case PassDeadBranchElimination:
		return deadBranchElimination(file, content)
	case PassImportDeduplication:
		return importDeduplication(file, content)
	case PassWhitespaceCollapse:
		return whitespaceCollapse(file, content)
	case PassStyleConstantFolding:
		return styleConstantFolding(file, content, cfg.StyleConstantThreshold)
	case PassHelperExtraction:
		return helperExtraction(file, content, cfg.HelperExtractionMin)
	default:
		return content, nil
	}
}

var (
	ifFalsePattern = regexp.MustCompile(`(?m)^(\s*)if\s+false\s*\{\n((?:.*\n)*?)\1\}\n`)
	ifTruePattern  = regexp.MustCompile(`(?m)^(\s*)if\s+true\s*\{\n((?:.*\n)*?)\1\}\n`)
)

// deadBranchElimination removes `if false { ... }` blocks entirely and
// unwraps `if true { body }` to just `body`, preserving the body's
// indentation. It repeats to a fixed point so nested dead branches are
// fully resolved within a single pass, keeping Optimize idempotent.
func deadBranchElimination(file, content string) (string, []AuditEntry) {
	var audit []AuditEntry
	out := content

	for {
		changed := false

		next := ifFalsePattern.ReplaceAllStringFunc(out, func(m string) string {
			changed = true
			audit = append(audit, AuditEntry{Pass: PassDeadBranchElimination, File: file, Description: "removed dead `if false` branch"})
			return ""
		})

		next = ifTruePattern.ReplaceAllStringFunc(next, func(m string) string {
			sub := ifTruePattern.FindStringSubmatch(m)
			changed = true
			audit = append(audit, AuditEntry{Pass: PassDeadBranchElimination, File: file, Description: "unwrapped always-true `if true` branch"})
			return sub[2]
		})

		out = next
		if !changed {
			break
		}
	}

	return out, audit
}

// importDeduplication drops second and later occurrences of an identical
// `use ...;` line within a file.
func importDeduplication(file, content string) (string, []AuditEntry) {
	lines := strings.Split(content, "\n")
	seen := map[string]bool{}
	var audit []AuditEntry
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "use ") && strings.HasSuffix(trimmed, ";") {
			if seen[trimmed] {
				audit = append(audit, AuditEntry{Pass: PassImportDeduplication, File: file, Description: "dropped duplicate import: " + trimmed})
				continue
			}
			seen[trimmed] = true
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n"), audit
}

var blankRunPattern = regexp.MustCompile(`\n{4,}`)

// whitespaceCollapse collapses runs of 3 or more consecutive blank lines
// down to 2.
func whitespaceCollapse(file, content string) (string, []AuditEntry) {
	var audit []AuditEntry
	out := blankRunPattern.ReplaceAllStringFunc(content, func(m string) string {
		audit = append(audit, AuditEntry{Pass: PassWhitespaceCollapse, File: file, Description: "collapsed a run of blank lines"})
		return "\n\n\n"
	})
	return out, audit
}

var constPattern = regexp.MustCompile(`(?m)^(\s*pub const )(\w+)(: \w+(?:<[^>]*>)?\s*=\s*)(.+?);\s*$`)
var bareIdentifierPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// styleConstantFolding, when >= threshold constants in a file share an
// identical literal value, keeps the first declaration and rewrites the
// remainder to alias it instead of repeating the literal.
func styleConstantFolding(file, content string, threshold int) (string, []AuditEntry) {
	matches := constPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return content, nil
	}

	byValue := map[string][]string{} // value -> const names, in order
	for _, m := range matches {
		value := m[4]
		if bareIdentifierPattern.MatchString(value) {
			// already an alias from a prior fold; don't re-group by it so
			// the pass stays idempotent.
			continue
		}
		byValue[value] = append(byValue[value], m[2])
	}

	aliasOf := map[string]string{} // const name -> canonical const name
	for _, names := range byValue {
		if len(names) < threshold {
			continue
		}
		first := names[0]
		for _, n := range names[1:] {
			aliasOf[n] = first
		}
	}
	if len(aliasOf) == 0 {
		return content, nil
	}

	var audit []AuditEntry
	out := constPattern.ReplaceAllStringFunc(content, func(m string) string {
		sub := constPattern.FindStringSubmatch(m)
		name := sub[2]
		typeDecl := sub[3]
		canonical, isAlias := aliasOf[name]
		if !isAlias {
			return m
		}
		audit = append(audit, AuditEntry{Pass: PassStyleConstantFolding, File: file, Description: "folded " + name + " into alias of " + canonical})
		return sub[1] + name + typeDecl + canonical + ";"
	})

	return out, audit
}

// helperExtraction identifies line patterns repeated >= threshold times
// and records a candidate helper extraction in the audit trail. Pattern
// equivalence is exact textual match on trimmed, non-blank, non-comment
// lines; per §9's open question this is intentionally permissive and the
// pass does not rewrite call sites — it surfaces the opportunity for a
// human or a follow-up pass to act on.
func helperExtraction(file, content string, threshold int) (string, []AuditEntry) {
	lines := strings.Split(content, "\n")
	counts := map[string]int{}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		counts[trimmed]++
	}

	var patterns []string
	for pattern, count := range counts {
		if count >= threshold {
			patterns = append(patterns, pattern)
		}
	}
	sort.Strings(patterns)

	var audit []AuditEntry
	for _, p := range patterns {
		audit = append(audit, AuditEntry{
			Pass:        PassHelperExtraction,
			File:        file,
			Description: "candidate helper: line repeated " + strconv.Itoa(counts[p]) + " times: " + p,
		})
	}

	return content, audit
}
