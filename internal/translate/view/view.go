// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package view translates the IR's view tree into a widget tree (schema
// "view-layout-translator-v1"): one WidgetNode per ViewNode, a per-node
// layout strategy, and focus groups over keyboard-handled interactive
// sub-trees.
package view

import (
	"sort"
	"strconv"

	"github.com/nightisyang/frankentui-migrate/internal/ir"
)

const SchemaVersion = "view-layout-translator-v1"

// LayoutStrategy is the per-node layout decision.
type LayoutStrategy struct {
	Kind   ir.LayoutKind
	Params map[string]string
}

// WidgetNode is one node of the translated widget tree.
type WidgetNode struct {
	ID       ir.NodeId
	Kind     ir.ViewNodeKind
	Name     string
	Layout   LayoutStrategy
	Children []ir.NodeId
}

// FocusGroup is an ordered set of interactive widget ids reachable via
// keyboard, discovered by a preorder walk of the view tree.
type FocusGroup struct {
	RootID  ir.NodeId
	Members []ir.NodeId
}

// TranslatedView is the full artifact this translator produces.
type TranslatedView struct {
	Version     string
	Widgets     map[ir.NodeId]*WidgetNode
	Roots       []ir.NodeId
	FocusGroups []FocusGroup
}

// interactiveKeys are the view-node Props keys that mark a node as
// keyboard-handled and interactive.
var interactiveKeys = []string{"onKeyDown", "onKeyUp", "onKeyPress", "tabIndex", "onSubmit"}

// Translate runs the view/layout translator over an IR's view tree.
func Translate(m ir.MigrationIr) TranslatedView {
	out := TranslatedView{
		Version: SchemaVersion,
		Widgets: map[ir.NodeId]*WidgetNode{},
	}

	roots := make([]ir.NodeId, len(m.ViewTree.Roots))
	copy(roots, m.ViewTree.Roots)
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	out.Roots = roots

	for id, n := range m.ViewTree.Nodes {
		out.Widgets[id] = &WidgetNode{
			ID:       id,
			Kind:     n.Kind,
			Name:     n.Name,
			Layout:   layoutFor(n, m),
			Children: n.SortedChildren(),
		}
	}

	for _, root := range roots {
		out.FocusGroups = append(out.FocusGroups, focusGroupFor(root, m))
	}

	return out
}

// layoutFor derives a node's layout strategy: the IR's own LayoutIntent when
// present, falling back to Flex for Component/Element nodes (vertical with
// more than one child, horizontal otherwise) and Stack for everything else (Fragment/Portal/Provider/Consumer/Route carry
// no visual geometry of their own).
func layoutFor(n *ir.ViewNode, m ir.MigrationIr) LayoutStrategy {
	if intent, ok := m.StyleIntent.Layouts[n.ID]; ok {
		params := map[string]string{}
		for k, v := range intent.Params {
			params[k] = v
		}
		if intent.Kind == ir.LayoutGrid && gridFallback(params) {
			return LayoutStrategy{Kind: ir.LayoutGrid, Params: map[string]string{"columns": "1"}}
		}
		return LayoutStrategy{Kind: intent.Kind, Params: params}
	}

	switch n.Kind {
	case ir.ViewNodeComponent, ir.ViewNodeElement:
		if len(n.Children) > 1 {
			return LayoutStrategy{Kind: ir.LayoutFlex, Params: map[string]string{"direction": "vertical"}}
		}
		return LayoutStrategy{Kind: ir.LayoutFlex, Params: map[string]string{"direction": "horizontal"}}
	default:
		return LayoutStrategy{Kind: ir.LayoutStack, Params: map[string]string{}}
	}
}

// gridFallback reports whether a node's declared "columns" param is not an
// integer and should fall back to Grid's single-column default.
func gridFallback(params map[string]string) bool {
	if cols, ok := params["columns"]; ok {
		if _, err := strconv.Atoi(cols); err != nil {
			return true
		}
	}
	return false
}

// focusGroupFor walks the sub-tree rooted at root in preorder and collects
// every keyboard-interactive node into one FocusGroup, in traversal order.
func focusGroupFor(root ir.NodeId, m ir.MigrationIr) FocusGroup {
	group := FocusGroup{RootID: root}
	var walk func(id ir.NodeId)
	walk = func(id ir.NodeId) {
		n, ok := m.ViewTree.Nodes[id]
		if !ok {
			return
		}
		if isInteractive(n) {
			group.Members = append(group.Members, id)
		}
		for _, child := range n.SortedChildren() {
			walk(child)
		}
	}
	walk(root)
	return group
}

func isInteractive(n *ir.ViewNode) bool {
	for _, key := range interactiveKeys {
		if _, ok := n.Props[key]; ok {
			return true
		}
	}
	return false
}
