// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lowering fuses composition, style, and state/effects extraction
// results into a single MigrationIr via an ir.Builder.
package lowering

import (
	"strings"

	"github.com/nightisyang/frankentui-migrate/internal/ir"
)

var userInputWords = []string{
	"click", "mouse", "key", "touch", "pointer", "drag", "drop",
	"input", "change", "submit", "focus", "blur", "scroll",
}

// classifyEventKind applies the event-name classification rule: lowercase,
// "on"+word match first, then lifecycle/timer/network substrings, else
// Custom.
func classifyEventKind(name string) ir.EventKind {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "on") {
		rest := lower[2:]
		for _, w := range userInputWords {
			if strings.HasPrefix(rest, w) {
				return ir.EventKindUserInput
			}
		}
	}
	switch {
	case containsAny(lower, "mount", "unmount", "update"):
		return ir.EventKindLifecycle
	case containsAny(lower, "timer", "interval", "timeout"):
		return ir.EventKindTimer
	case containsAny(lower, "fetch", "response", "request"):
		return ir.EventKindNetwork
	default:
		return ir.EventKindCustom
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// classifyEffectKind maps an extractor EffectClassification string to an
// ir.EffectKind.
func classifyEffectKind(classification string) ir.EffectKind {
	switch classification {
	case "DataFetch":
		return ir.EffectKindNetwork
	case "DomManipulation":
		return ir.EffectKindDom
	case "Timer":
		return ir.EffectKindTimer
	case "EventListener":
		return ir.EffectKindSubscription
	case "Sync":
		return ir.EffectKindStorage
	case "Telemetry":
		return ir.EffectKindTelemetry
	default:
		return ir.EffectKindOther
	}
}

func viewNodeKindFromString(kind string) ir.ViewNodeKind {
	switch ir.ViewNodeKind(kind) {
	case ir.ViewNodeComponent, ir.ViewNodeElement, ir.ViewNodeFragment,
		ir.ViewNodePortal, ir.ViewNodeProvider, ir.ViewNodeConsumer, ir.ViewNodeRoute:
		return ir.ViewNodeKind(kind)
	default:
		return ir.ViewNodeComponent
	}
}

func stateScopeFromString(scope string) ir.StateScope {
	switch ir.StateScope(scope) {
	case ir.StateScopeLocal, ir.StateScopeContext, ir.StateScopeGlobal, ir.StateScopeRoute, ir.StateScopeServer:
		return ir.StateScope(scope)
	default:
		return ir.StateScopeLocal
	}
}

func layoutKindFromString(kind string) ir.LayoutKind {
	switch ir.LayoutKind(kind) {
	case ir.LayoutFlex, ir.LayoutGrid, ir.LayoutAbsolute, ir.LayoutStack, ir.LayoutFlow:
		return ir.LayoutKind(kind)
	default:
		return ir.LayoutFlow
	}
}

func tokenCategoryFromString(cat string) ir.TokenCategory {
	switch ir.TokenCategory(cat) {
	case ir.TokenColor, ir.TokenSpacing, ir.TokenTypography, ir.TokenBorder,
		ir.TokenShadow, ir.TokenAnimation, ir.TokenBreakpoint, ir.TokenZIndex:
		return ir.TokenCategory(cat)
	default:
		return ir.TokenColor
	}
}
