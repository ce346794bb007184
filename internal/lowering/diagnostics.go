// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lowering

// Diagnostic codes emitted by lower_to_ir. Every one is non-fatal: lowering
// is total and records these on the IR rather than failing.
const (
	// DCodeEmptyProvenance marks a view node with no usable source location.
	DCodeEmptyProvenance = "L001"
	// DCodeRootlessTree marks a nonempty node map with no declared roots.
	// LowerToIr never emits it: a CompositionResult holds nodes only under
	// its Roots.
	DCodeRootlessTree = "L002"
	// DCodeUnresolvedDerived marks a derived computation dependency name
	// that didn't resolve through the alias map.
	DCodeUnresolvedDerived = "L010"
	// DCodeUnresolvedTransition marks an event write that didn't resolve to
	// a known state variable.
	DCodeUnresolvedTransition = "L020"
	// DCodeUnresolvedEffectRef marks an effect read/write/dep that didn't
	// resolve to a known state variable.
	DCodeUnresolvedEffectRef = "L030"
	// DCodeAccessibilityHint marks a synthesized accessibility annotation.
	DCodeAccessibilityHint = "L040"
)
