// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLevel_slogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo},
	}

	for _, tt := range tests {
		got := tt.level.slogLevel()
		if got != tt.want {
			t.Errorf("Level(%d).slogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelInfo, Service: "planner", Writer: &buf})

	log.Info("plan built", "decisions", 3)

	out := buf.String()
	if !strings.Contains(out, "plan built") {
		t.Errorf("expected output to contain message, got %q", out)
	}
	if !strings.Contains(out, "service=planner") {
		t.Errorf("expected output to contain service attribute, got %q", out)
	}
	if !strings.Contains(out, "decisions=3") {
		t.Errorf("expected output to contain decisions attribute, got %q", out)
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelInfo, Service: "gap", Writer: &buf, JSON: true})

	log.Warn("feasibility degraded", "category", "state")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected valid JSON line, got error: %v (body=%q)", err, buf.String())
	}
	if record["msg"] != "feasibility degraded" {
		t.Errorf("msg = %v, want %q", record["msg"], "feasibility degraded")
	}
	if record["service"] != "gap" {
		t.Errorf("service = %v, want %q", record["service"], "gap")
	}
	if record["category"] != "state" {
		t.Errorf("category = %v, want %q", record["category"], "state")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelWarn, Writer: &buf})

	log.Debug("dropped")
	log.Info("also dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below configured level, got %q", buf.String())
	}

	log.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("expected Warn to pass the filter, got %q", buf.String())
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelError, Writer: &buf})

	log.Info("dropped before SetLevel")
	if buf.Len() != 0 {
		t.Fatalf("expected Info below Error level to be dropped, got %q", buf.String())
	}

	log.SetLevel(LevelInfo)
	log.Info("kept after SetLevel")
	if !strings.Contains(buf.String(), "kept after SetLevel") {
		t.Errorf("expected Info to pass after SetLevel(LevelInfo), got %q", buf.String())
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: LevelInfo, Writer: &buf})
	derived := base.With("run_id", "abc123")

	derived.Info("stage started")

	if !strings.Contains(buf.String(), "run_id=abc123") {
		t.Errorf("expected derived logger to carry run_id, got %q", buf.String())
	}
}

func TestDefault(t *testing.T) {
	log := Default()
	if log == nil {
		t.Fatal("Default() returned nil")
	}
	log.Info("default logger smoke test")
}
