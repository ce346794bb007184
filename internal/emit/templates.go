// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nightisyang/frankentui-migrate/internal/ir"
	"github.com/nightisyang/frankentui-migrate/internal/translate/effects"
	"github.com/nightisyang/frankentui-migrate/internal/translate/state"
	"github.com/nightisyang/frankentui-migrate/internal/translate/style"
	"github.com/nightisyang/frankentui-migrate/internal/translate/view"
)

func emitModel(runtime state.TranslatedRuntime, confidence float64) EmittedFile {
	var b strings.Builder
	b.WriteString("// Generated by the migration compiler. Do not edit by hand.\n")
	b.WriteString("use ftui_runtime::SharedFieldRef;\n\n")
	b.WriteString("#[derive(Debug, Clone, Default)]\n")
	b.WriteString("pub struct Model {\n")

	var provenance []ProvenanceLink
	for _, f := range runtime.Model.Fields {
		fieldName := snakeCase(f.Name)
		rustType := string(f.Type)
		if f.Shared {
			rustType = fmt.Sprintf("SharedFieldRef<%s>", rustType)
		}
		b.WriteString(fmt.Sprintf("    pub %s: %s,\n", fieldName, rustType))
		provenance = append(provenance, ProvenanceLink{NodeID: f.StateID, Note: "state field " + fieldName})
	}
	b.WriteString("}\n")

	return EmittedFile{Kind: KindSource, Content: b.String(), Confidence: confidence, Provenance: provenance}
}

func emitMsg(runtime state.TranslatedRuntime, confidence float64) EmittedFile {
	var b strings.Builder
	b.WriteString("// Generated by the migration compiler. Do not edit by hand.\n\n")
	b.WriteString("#[derive(Debug, Clone)]\n")
	b.WriteString("pub enum Msg {\n")

	var provenance []ProvenanceLink
	for _, v := range runtime.Messages.Variants {
		b.WriteString(fmt.Sprintf("    %s,\n", v.Name))
		if v.EventID != "" {
			provenance = append(provenance, ProvenanceLink{NodeID: v.EventID, Note: "message variant " + v.Name})
		}
	}
	b.WriteString("}\n")

	return EmittedFile{Kind: KindSource, Content: b.String(), Confidence: confidence, Provenance: provenance}
}

func emitUpdate(runtime state.TranslatedRuntime, confidence float64) EmittedFile {
	var b strings.Builder
	b.WriteString("// Generated by the migration compiler. Do not edit by hand.\n")
	b.WriteString("use crate::model::Model;\n")
	b.WriteString("use crate::msg::Msg;\n\n")
	b.WriteString("pub fn update(model: &mut Model, msg: Msg) -> Option<ftui_runtime::Cmd<Msg>> {\n")
	b.WriteString("    match msg {\n")

	variantName := map[ir.NodeId]string{}
	for _, v := range runtime.Messages.Variants {
		if v.EventID != "" {
			variantName[v.EventID] = v.Name
		}
	}

	var provenance []ProvenanceLink
	for _, arm := range runtime.UpdateArms {
		guard := ""
		if arm.Guard != "" {
			guard = fmt.Sprintf(" if %s", arm.Guard)
		}
		name, ok := variantName[arm.EventID]
		if !ok {
			name = pascalCaseMsg(string(arm.EventID))
		}
		b.WriteString(fmt.Sprintf("        // transition %s -> %s\n", arm.EventID, arm.TargetState))
		b.WriteString(fmt.Sprintf("        Msg::%s%s => { /* mutate %s */ }\n", name, guard, arm.TargetState))
		provenance = append(provenance, ProvenanceLink{NodeID: arm.EventID, Note: "update arm"})
	}
	for _, cmd := range runtime.InitCommands {
		b.WriteString(fmt.Sprintf("        // init command for effect %s\n", cmd.EffectID))
	}
	b.WriteString("        Msg::TerminalEvent => {}\n")
	b.WriteString("        _ => {}\n")
	b.WriteString("    }\n")
	b.WriteString("    None\n")
	b.WriteString("}\n")

	return EmittedFile{Kind: KindSource, Content: b.String(), Confidence: confidence, Provenance: provenance}
}

func emitView(widgets view.TranslatedView, confidence float64) EmittedFile {
	var b strings.Builder
	b.WriteString("// Generated by the migration compiler. Do not edit by hand.\n")
	b.WriteString("use ftui_layout::{Flex, Grid, Stack};\n")
	b.WriteString("use crate::model::Model;\n\n")
	b.WriteString("pub fn view(model: &Model) -> ftui_core::Widget {\n")

	var provenance []ProvenanceLink
	roots := widgets.Roots
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	for _, root := range roots {
		w, ok := widgets.Widgets[root]
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("    // root widget %s (%s): layout %s\n", w.Name, w.Kind, w.Layout.Kind))
		provenance = append(provenance, ProvenanceLink{NodeID: root, Note: "view root"})
	}
	for _, fg := range widgets.FocusGroups {
		if len(fg.Members) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("    // focus group rooted at %s: %d members\n", fg.RootID, len(fg.Members)))
	}
	b.WriteString("    ftui_core::Widget::default()\n")
	b.WriteString("}\n")

	return EmittedFile{Kind: KindSource, Content: b.String(), Confidence: confidence, Provenance: provenance}
}

func emitStyle(styleOut style.TranslatedStyle, confidence float64) EmittedFile {
	var b strings.Builder
	b.WriteString("// Generated by the migration compiler. Do not edit by hand.\n")
	b.WriteString("use ftui_core::style::{Color, StyleFlags};\n\n")

	var provenance []ProvenanceLink
	var tokenIDs []ir.NodeId
	for id := range styleOut.Colors {
		tokenIDs = append(tokenIDs, id)
	}
	sort.Slice(tokenIDs, func(i, j int) bool { return tokenIDs[i] < tokenIDs[j] })
	for _, id := range tokenIDs {
		c := styleOut.Colors[id]
		b.WriteString(fmt.Sprintf("pub const %s: Color = Color::rgb(%d, %d, %d);\n", constName(string(id)), c.R, c.G, c.B))
		provenance = append(provenance, ProvenanceLink{NodeID: id, Note: "color token"})
	}
	b.WriteString("\n")
	for _, u := range styleOut.Upgrades {
		b.WriteString(fmt.Sprintf("// contrast upgrade: fg %s -> %s vs bg %s (target %.2f, achieved %.2f)\n",
			u.OriginalFg, u.UpgradedFg, u.BackgroundID, u.TargetRatio, u.AchievedRatio))
	}
	for _, u := range styleOut.Unsupported {
		b.WriteString(fmt.Sprintf("// unsupported token %s (%s): %s\n", u.TokenID, u.Category, u.Hint))
	}

	return EmittedFile{Kind: KindSource, Content: b.String(), Confidence: confidence, Provenance: provenance}
}

func emitEffects(orchestration effects.TranslatedEffects, confidence float64) EmittedFile {
	var b strings.Builder
	b.WriteString("// Generated by the migration compiler. Do not edit by hand.\n")
	b.WriteString("use crate::msg::Msg;\n\n")

	var provenance []ProvenanceLink
	for _, e := range orchestration.Entries {
		b.WriteString(fmt.Sprintf(
			"// effect %s: model=%s trigger=%s cleanup=%s async=%s\n",
			e.EffectID, e.ExecutionModel, e.Trigger.Kind, e.Cleanup, e.AsyncBoundary,
		))
		for _, before := range e.Before {
			b.WriteString(fmt.Sprintf("//   ordered before %s\n", before))
		}
		provenance = append(provenance, ProvenanceLink{NodeID: e.EffectID, Note: "orchestration entry"})
	}

	return EmittedFile{Kind: KindSource, Content: b.String(), Confidence: confidence, Provenance: provenance}
}

func emitMain(crateName string) EmittedFile {
	const content = `// Generated by the migration compiler. Do not edit by hand.
mod model;
mod msg;
mod update;
mod view;
mod style;
mod effects;

use model::Model;
use msg::Msg;

fn main() {
    ftui_runtime::run::<Model, Msg>(Model::default(), update::update, view::view);
}
`
	_ = crateName
	return EmittedFile{Kind: KindSource, Content: content, Confidence: 1.0}
}

func emitCargoToml(scaffold Scaffold) EmittedFile {
	var b strings.Builder
	b.WriteString("[package]\n")
	b.WriteString(fmt.Sprintf("name = %q\n", scaffold.CrateName))
	b.WriteString("version = \"0.1.0\"\n")
	b.WriteString(fmt.Sprintf("edition = %q\n", scaffold.Edition))
	b.WriteString("\n[dependencies]\n")
	for _, dep := range scaffold.Dependencies {
		b.WriteString(fmt.Sprintf("%s = \"*\"\n", dep))
	}
	return EmittedFile{Kind: KindManifest, Content: b.String(), Confidence: 1.0}
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - ('A' - 'a'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func pascalCaseMsg(s string) string {
	s = strings.TrimPrefix(s, "ir-")
	if strings.HasPrefix(s, "on") && len(s) > 2 {
		s = s[2:]
	}
	if s == "" {
		return "Unknown"
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] = r[0] - ('a' - 'A')
	}
	return string(r)
}

func constName(id string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimPrefix(id, "ir-"), "-", "_"))
}
