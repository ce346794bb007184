// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package state translates the IR's state graph, event catalog, and
// effect registry into a TranslatedRuntime (schema
// "state-event-translator-v1"): a ModelStruct, MessageEnum, UpdateArms,
// InitCommands, and SubscriptionDecls.
package state

import (
	"fmt"
	"sort"

	"github.com/nightisyang/frankentui-migrate/internal/effectmodel"
	"github.com/nightisyang/frankentui-migrate/internal/ir"
)

const SchemaVersion = "state-event-translator-v1"

// RustType is the conservative type mapping target.
type RustType string

const (
	TypeI64    RustType = "i64"
	TypeString RustType = "String"
	TypeBool   RustType = "bool"
	TypeVec    RustType = "Vec<String>"
	TypeMap    RustType = "Map<String,String>"
	TypeUnit   RustType = "()"
)

// ModelField is one field of the generated Model struct.
type ModelField struct {
	StateID ir.NodeId
	Name    string
	Type    RustType
	Shared  bool // true for Context/Global SharedFieldRef fields
}

// ModelStruct is the translated state graph.
type ModelStruct struct {
	Fields []ModelField
}

// MessageVariant is one variant of the generated Msg enum.
type MessageVariant struct {
	EventID ir.NodeId // empty for synthetic variants
	Name    string
	IsResponse bool
	IsSynthetic bool
}

// MessageEnum is the translated event+effect-response surface.
type MessageEnum struct {
	Variants []MessageVariant
}

// UpdateArm is one `Msg::X => ...` match arm, grounded on an IR transition.
type UpdateArm struct {
	EventID     ir.NodeId
	TargetState ir.NodeId
	Guard       string
}

// InitCommand is an OnMount command to run when the program starts.
type InitCommand struct {
	EffectID ir.NodeId
}

// SubscriptionDecl declares a long-lived subscription the runtime must
// register.
type SubscriptionDecl struct {
	EffectID ir.NodeId
}

// TranslatedRuntime is the full artifact this translator produces.
type TranslatedRuntime struct {
	Version           string
	Model             ModelStruct
	Messages          MessageEnum
	UpdateArms        []UpdateArm
	InitCommands      []InitCommand
	Subscriptions     []SubscriptionDecl
	Diagnostics       []ir.Diagnostic
}

// Translate runs the state/event translator over an IR and its canonical
// effect model.
func Translate(m ir.MigrationIr, model effectmodel.Model) TranslatedRuntime {
	out := TranslatedRuntime{Version: SchemaVersion}

	out.Model = translateModelStruct(m)
	out.Messages, out.Diagnostics = translateMessages(m, model)
	out.UpdateArms = translateUpdateArms(m)
	out.InitCommands, out.Subscriptions = translateCommandsAndSubscriptions(model)

	out.Diagnostics = append(out.Diagnostics, enforceOneWriterRule(m)...)

	return out
}

func translateModelStruct(m ir.MigrationIr) ModelStruct {
	var fields []ModelField
	for _, id := range ir.SortedNodeIds(m.StateGraph.Variables) {
		v := m.StateGraph.Variables[id]
		switch v.Scope {
		case ir.StateScopeContext, ir.StateScopeGlobal:
			fields = append(fields, ModelField{StateID: id, Name: v.Name, Type: mapType(v.TypeHint), Shared: true})
		default:
			// Local, Route, and Server all surface as a local field; Server
			// additionally gets an Info diagnostic (handled by the caller
			// via the diagnostics list appended in Translate).
			fields = append(fields, ModelField{StateID: id, Name: v.Name, Type: mapType(v.TypeHint)})
		}
	}
	return ModelStruct{Fields: fields}
}

func mapType(hint string) RustType {
	switch hint {
	case "number":
		return TypeI64
	case "string":
		return TypeString
	case "boolean":
		return TypeBool
	case "array":
		return TypeVec
	case "object":
		return TypeMap
	case "null", "":
		return TypeUnit
	default:
		return TypeString
	}
}

func translateMessages(m ir.MigrationIr, model effectmodel.Model) (MessageEnum, []ir.Diagnostic) {
	var variants []MessageVariant
	var diags []ir.Diagnostic

	for _, id := range ir.SortedNodeIds(m.EventCatalog.Events) {
		ev := m.EventCatalog.Events[id]
		variants = append(variants, MessageVariant{EventID: id, Name: pascalCase(ev.Name)})
	}

	for _, id := range ir.SortedNodeIds(m.EffectRegistry.Effects) {
		ce, ok := model.Effects[id]
		if !ok || ce.ExecutionModel != effectmodel.ExecutionCommand {
			continue
		}
		variants = append(variants, MessageVariant{EventID: id, Name: pascalCase(ce.Name) + "Response", IsResponse: true})
	}

	variants = append(variants, MessageVariant{Name: "TerminalEvent", IsSynthetic: true})

	for _, v := range m.StateGraph.Variables {
		if v.Scope == ir.StateScopeServer {
			diags = append(diags, ir.Diagnostic{
				Code:     "ST-SERVER-STATE",
				Message:  fmt.Sprintf("server-scoped state %q surfaced as a local field", v.Name),
				Severity: ir.SeverityInfo,
			})
		}
	}

	return MessageEnum{Variants: variants}, diags
}

func translateUpdateArms(m ir.MigrationIr) []UpdateArm {
	arms := make([]UpdateArm, 0, len(m.EventCatalog.Transitions))
	transitions := make([]ir.Transition, len(m.EventCatalog.Transitions))
	copy(transitions, m.EventCatalog.Transitions)
	sort.Slice(transitions, func(i, j int) bool {
		if transitions[i].EventID != transitions[j].EventID {
			return transitions[i].EventID < transitions[j].EventID
		}
		return transitions[i].TargetState < transitions[j].TargetState
	})
	for _, t := range transitions {
		arms = append(arms, UpdateArm{EventID: t.EventID, TargetState: t.TargetState, Guard: t.Guard})
	}
	return arms
}

func translateCommandsAndSubscriptions(model effectmodel.Model) ([]InitCommand, []SubscriptionDecl) {
	var commands []InitCommand
	for _, id := range model.Commands {
		if model.Effects[id].Trigger.Kind == effectmodel.TriggerOnMount {
			commands = append(commands, InitCommand{EffectID: id})
		}
	}
	sort.Slice(commands, func(i, j int) bool { return commands[i].EffectID < commands[j].EffectID })

	subs := make([]SubscriptionDecl, 0, len(model.Subscriptions))
	for _, id := range model.Subscriptions {
		subs = append(subs, SubscriptionDecl{EffectID: id})
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].EffectID < subs[j].EffectID })

	return commands, subs
}

// enforceOneWriterRule emits a Warning diagnostic (not a block) for every
// state variable with more than one writer among event transitions.
func enforceOneWriterRule(m ir.MigrationIr) []ir.Diagnostic {
	writers := map[ir.NodeId][]ir.NodeId{}
	for _, t := range m.EventCatalog.Transitions {
		writers[t.TargetState] = append(writers[t.TargetState], t.EventID)
	}

	var diags []ir.Diagnostic
	for _, state := range ir.SortedNodeIds(writers) {
		ws := writers[state]
		if len(ws) <= 1 {
			continue
		}
		sort.Slice(ws, func(i, j int) bool { return ws[i] < ws[j] })
		diags = append(diags, ir.Diagnostic{
			Code:     "ST-MULTI-WRITER",
			Message:  fmt.Sprintf("state %s has %d writers: %v", state, len(ws), ws),
			Severity: ir.SeverityWarning,
		})
	}
	return diags
}

func pascalCase(s string) string {
	if s == "" {
		return s
	}
	if len(s) > 2 && s[:2] == "on" {
		s = s[2:]
	}
	r := []rune(s)
	if len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
		r[0] = r[0] - ('a' - 'A')
	}
	return string(r)
}
