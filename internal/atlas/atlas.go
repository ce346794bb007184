// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package atlas implements the Mapping Atlas: a static, content-addressed
// dictionary from source signature to target construct, loaded from a TOML
// file so operators can extend it without a rebuild.
package atlas

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// Policy classifies how confidently a mapping carries over to the target.
type Policy string

const (
	PolicyExact       Policy = "Exact"
	PolicyApproximate Policy = "Approximate"
	PolicyExtendFtui  Policy = "ExtendFtui"
	PolicyUnsupported Policy = "Unsupported"
)

// Risk classifies the consequence of a mapping being wrong.
type Risk string

const (
	RiskLow      Risk = "Low"
	RiskMedium   Risk = "Medium"
	RiskHigh     Risk = "High"
	RiskCritical Risk = "Critical"
)

// Entry is one mapping from a source signature to a target construct.
type Entry struct {
	SourceSignature string `toml:"source_signature"`
	TargetConstruct string `toml:"target_construct"`
	TargetCrate     string `toml:"target_crate"`
	Category        string `toml:"category"`
	Policy          Policy `toml:"policy"`
	Risk            Risk   `toml:"risk"`
	Remediation     string `toml:"remediation"`
}

// fileFormat is the on-disk TOML shape: a flat array of tables under
// [[entry]].
type fileFormat struct {
	Entry []Entry `toml:"entry"`
}

// Atlas is the loaded, validated dictionary, indexed by source signature.
type Atlas struct {
	entries map[string]Entry
}

// Load reads and validates a TOML atlas file. Exact-policy entries must
// carry risk Low or Medium; a file violating this is a load-time error
// since the atlas is meant to be operator-editable but still must satisfy
// the invariant every downstream consumer assumes.
func Load(path string) (*Atlas, error) {
	var ff fileFormat
	if _, err := toml.DecodeFile(path, &ff); err != nil {
		return nil, fmt.Errorf("atlas: decode %s: %w", path, err)
	}
	return build(ff.Entry)
}

// LoadBytes is Load's in-memory twin, used by tests and by callers that
// already hold the file contents (e.g. an embedded default atlas).
func LoadBytes(data []byte) (*Atlas, error) {
	var ff fileFormat
	if _, err := toml.Decode(string(data), &ff); err != nil {
		return nil, fmt.Errorf("atlas: decode: %w", err)
	}
	return build(ff.Entry)
}

func build(entries []Entry) (*Atlas, error) {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Policy == PolicyExact && e.Risk != RiskLow && e.Risk != RiskMedium {
			return nil, fmt.Errorf("atlas: entry %q is Exact but risk is %s (must be Low or Medium)", e.SourceSignature, e.Risk)
		}
		m[e.SourceSignature] = e
	}
	return &Atlas{entries: m}, nil
}

// Lookup is total: it returns (entry, true) on a hit, or (zero, false) for
// an unknown signature.
func (a *Atlas) Lookup(sourceSignature string) (Entry, bool) {
	e, ok := a.entries[sourceSignature]
	return e, ok
}

// Len returns the total number of atlas entries.
func (a *Atlas) Len() int {
	return len(a.entries)
}

// PartitionByPolicy groups every entry by policy; the returned counts sum to
// Len().
func (a *Atlas) PartitionByPolicy() map[Policy]int {
	out := map[Policy]int{}
	for _, e := range a.entries {
		out[e.Policy]++
	}
	return out
}

// PartitionByRisk groups every entry by risk; the returned counts sum to
// Len().
func (a *Atlas) PartitionByRisk() map[Risk]int {
	out := map[Risk]int{}
	for _, e := range a.entries {
		out[e.Risk]++
	}
	return out
}

// PartitionByCategory groups every entry by category; the returned counts
// sum to Len().
func (a *Atlas) PartitionByCategory() map[string]int {
	out := map[string]int{}
	for _, e := range a.entries {
		out[e.Category]++
	}
	return out
}

// Signatures returns every source signature in sorted order, for
// deterministic iteration by callers that need to walk the whole atlas.
func (a *Atlas) Signatures() []string {
	out := make([]string, 0, len(a.entries))
	for sig := range a.entries {
		out = append(out, sig)
	}
	sort.Strings(out)
	return out
}
