// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package style translates the IR's style tokens into target-ready values
// (schema "style-translator-v1"): colors, typography flags, quantized
// spacing, border classification, theme assembly, and a WCAG contrast
// accessibility upgrade pass.
package style

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nightisyang/frankentui-migrate/internal/ir"
)

const SchemaVersion = "style-translator-v1"

// RGB is a resolved 0-255 color triple.
type RGB struct {
	R, G, B uint8
}

// StyleFlag is a typography rendering attribute.
type StyleFlag string

const (
	FlagBold          StyleFlag = "BOLD"
	FlagItalic        StyleFlag = "ITALIC"
	FlagUnderline     StyleFlag = "UNDERLINE"
	FlagStrikethrough StyleFlag = "STRIKETHROUGH"
	FlagDim           StyleFlag = "DIM"
)

// BorderKind classifies a border style token.
type BorderKind string

const (
	BorderPlain   BorderKind = "Plain"
	BorderRounded BorderKind = "Rounded"
	BorderDouble  BorderKind = "Double"
	BorderThick   BorderKind = "Thick"
	BorderNone    BorderKind = "None"
)

// UnsupportedToken records a style token this translator cannot express on
// a terminal target, with a workaround hint.
type UnsupportedToken struct {
	TokenID ir.NodeId
	Category ir.TokenCategory
	Hint    string
}

// ContrastUpgrade records a reversible accessibility-driven color shift.
type ContrastUpgrade struct {
	ForegroundID  ir.NodeId
	BackgroundID  ir.NodeId
	OriginalFg    RGB
	UpgradedFg    RGB
	TargetRatio   float64
	AchievedRatio float64
	Reversible    bool
}

// TranslatedStyle is the full artifact this translator produces.
type TranslatedStyle struct {
	Version      string
	Colors       map[ir.NodeId]RGB
	Flags        map[ir.NodeId][]StyleFlag
	Spacing      map[ir.NodeId]int // quantized to terminal cells
	Borders      map[ir.NodeId]BorderKind
	Themes       []ir.Theme
	Unsupported  []UnsupportedToken
	Upgrades     []ContrastUpgrade
}

var (
	hexShortPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3})$`)
	hexLongPattern  = regexp.MustCompile(`^#([0-9a-fA-F]{6})$`)
	rgbFuncPattern  = regexp.MustCompile(`^rgb\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*\)$`)
)

// namedColors is the common CSS named-color subset this translator
// resolves directly, without delegating to an external palette.
var namedColors = map[string]RGB{
	"black":   {0, 0, 0},
	"white":   {255, 255, 255},
	"red":     {255, 0, 0},
	"green":   {0, 128, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"cyan":    {0, 255, 255},
	"magenta": {255, 0, 255},
	"gray":    {128, 128, 128},
	"grey":    {128, 128, 128},
	"orange":  {255, 165, 0},
	"purple":  {128, 0, 128},
}

// Translate runs the style translator over an IR's style tokens.
func Translate(m ir.MigrationIr) TranslatedStyle {
	out := TranslatedStyle{
		Version: SchemaVersion,
		Colors:  map[ir.NodeId]RGB{},
		Flags:   map[ir.NodeId][]StyleFlag{},
		Spacing: map[ir.NodeId]int{},
		Borders: map[ir.NodeId]BorderKind{},
		Themes:  m.StyleIntent.Themes,
	}

	for _, id := range ir.SortedNodeIds(m.StyleIntent.Tokens) {
		tok := m.StyleIntent.Tokens[id]
		switch tok.Category {
		case ir.TokenColor:
			if rgb, ok := ParseColor(tok.Value); ok {
				out.Colors[id] = rgb
			} else {
				out.Unsupported = append(out.Unsupported, UnsupportedToken{TokenID: id, Category: tok.Category, Hint: "unrecognized color syntax; falls back to default foreground"})
			}
		case ir.TokenTypography:
			out.Flags[id] = typographyFlags(tok.Value)
		case ir.TokenSpacing:
			out.Spacing[id] = quantizeSpacing(tok.Value)
		case ir.TokenBorder:
			out.Borders[id] = classifyBorder(tok.Value)
		case ir.TokenShadow, ir.TokenAnimation, ir.TokenBreakpoint, ir.TokenZIndex:
			out.Unsupported = append(out.Unsupported, UnsupportedToken{
				TokenID:  id,
				Category: tok.Category,
				Hint:     workaroundHint(tok.Category),
			})
		}
	}

	out.Upgrades = accessibilityUpgrade(m, out.Colors)

	return out
}

// ParseColor resolves a CSS-ish color literal to an RGB triple: #rgb,
// #rrggbb, rgb(r,g,b), or the named subset above.
func ParseColor(value string) (RGB, bool) {
	v := strings.TrimSpace(value)

	if m := hexShortPattern.FindStringSubmatch(v); m != nil {
		r := expandHexDigit(m[1][0])
		g := expandHexDigit(m[1][1])
		b := expandHexDigit(m[1][2])
		return RGB{r, g, b}, true
	}
	if m := hexLongPattern.FindStringSubmatch(v); m != nil {
		r, _ := strconv.ParseUint(m[1][0:2], 16, 8)
		g, _ := strconv.ParseUint(m[1][2:4], 16, 8)
		b, _ := strconv.ParseUint(m[1][4:6], 16, 8)
		return RGB{uint8(r), uint8(g), uint8(b)}, true
	}
	if m := rgbFuncPattern.FindStringSubmatch(v); m != nil {
		r, _ := strconv.Atoi(m[1])
		g, _ := strconv.Atoi(m[2])
		b, _ := strconv.Atoi(m[3])
		return RGB{clampByte(r), clampByte(g), clampByte(b)}, true
	}
	if rgb, ok := namedColors[strings.ToLower(v)]; ok {
		return rgb, true
	}
	return RGB{}, false
}

func expandHexDigit(c byte) uint8 {
	n, _ := strconv.ParseUint(string(c), 16, 8)
	return uint8(n)*16 + uint8(n)
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func typographyFlags(value string) []StyleFlag {
	var flags []StyleFlag
	lower := strings.ToLower(value)
	if strings.Contains(lower, "bold") {
		flags = append(flags, FlagBold)
	}
	if strings.Contains(lower, "italic") {
		flags = append(flags, FlagItalic)
	}
	if strings.Contains(lower, "underline") {
		flags = append(flags, FlagUnderline)
	}
	if strings.Contains(lower, "line-through") || strings.Contains(lower, "strikethrough") {
		flags = append(flags, FlagStrikethrough)
	}
	if strings.Contains(lower, "dim") || strings.Contains(lower, "faint") {
		flags = append(flags, FlagDim)
	}
	return flags
}

// quantizeSpacing reduces a CSS spacing value to terminal cells: px/8,
// rem*2, em*2, and a bare number is treated as px.
func quantizeSpacing(value string) int {
	v := strings.TrimSpace(value)
	switch {
	case strings.HasSuffix(v, "px"):
		return quantizeUnit(v, "px", 8)
	case strings.HasSuffix(v, "rem"):
		return quantizeUnit(v, "rem", 1.0/2.0)
	case strings.HasSuffix(v, "em"):
		return quantizeUnit(v, "em", 1.0/2.0)
	default:
		return quantizeUnit(v, "", 8)
	}
}

func quantizeUnit(v, suffix string, divisor float64) int {
	numeric := strings.TrimSuffix(v, suffix)
	f, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0
	}
	if divisor >= 1 {
		return int(math.Round(f / divisor))
	}
	return int(math.Round(f / divisor))
}

func classifyBorder(value string) BorderKind {
	lower := strings.ToLower(strings.TrimSpace(value))
	switch {
	case lower == "none" || lower == "":
		return BorderNone
	case strings.Contains(lower, "double"):
		return BorderDouble
	case strings.Contains(lower, "thick") || strings.Contains(lower, "heavy"):
		return BorderThick
	case strings.Contains(lower, "round"):
		return BorderRounded
	default:
		return BorderPlain
	}
}

func workaroundHint(cat ir.TokenCategory) string {
	switch cat {
	case ir.TokenShadow:
		return "approximate with a dim border instead"
	case ir.TokenAnimation:
		return "approximate with a static final-frame style"
	case ir.TokenBreakpoint:
		return "collapse to the terminal's current column width at render time"
	case ir.TokenZIndex:
		return "approximate with explicit render order"
	default:
		return "no terminal equivalent"
	}
}

// relativeLuminance computes WCAG relative luminance for an sRGB triple.
func relativeLuminance(c RGB) float64 {
	lin := func(v uint8) float64 {
		x := float64(v) / 255.0
		if x <= 0.03928 {
			return x / 12.92
		}
		return math.Pow((x+0.055)/1.055, 2.4)
	}
	r, g, b := lin(c.R), lin(c.G), lin(c.B)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// contrastRatio computes the WCAG contrast ratio between two colors.
func contrastRatio(a, b RGB) float64 {
	l1 := relativeLuminance(a) + 0.05
	l2 := relativeLuminance(b) + 0.05
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return l1 / l2
}

// fgKeyword and bgKeyword classify a token's name by the fg/bg role it
// plays, based on substring match against the well-known naming convention.
func fgKeyword(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "fg") || strings.Contains(lower, "text") || strings.Contains(lower, "foreground")
}

func bgKeyword(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "bg") || strings.Contains(lower, "background")
}

// accessibilityUpgrade pairs every fg/bg color token whose name (its source
// name, else its value) matches the fg/bg naming convention, checks WCAG contrast, and shifts the
// foreground toward white or black (whichever is farther from the
// background's luminance) until the ratio clears the target threshold.
func accessibilityUpgrade(m ir.MigrationIr, colors map[ir.NodeId]RGB) []ContrastUpgrade {
	target := 3.0
	if len(m.Accessibility) > 0 {
		target = 4.5
	}

	var fgIDs, bgIDs []ir.NodeId
	for _, id := range ir.SortedNodeIds(m.StyleIntent.Tokens) {
		tok := m.StyleIntent.Tokens[id]
		if tok.Category != ir.TokenColor {
			continue
		}
		name := tokenName(tok)
		if fgKeyword(name) {
			fgIDs = append(fgIDs, id)
		}
		if bgKeyword(name) {
			bgIDs = append(bgIDs, id)
		}
	}

	var upgrades []ContrastUpgrade
	for _, fgID := range fgIDs {
		fg, ok := colors[fgID]
		if !ok {
			continue
		}
		for _, bgID := range bgIDs {
			bg, ok := colors[bgID]
			if !ok {
				continue
			}
			ratio := contrastRatio(fg, bg)
			if ratio >= target {
				continue
			}
			upgraded, achieved := shiftForContrast(fg, bg, target)
			colors[fgID] = upgraded
			upgrades = append(upgrades, ContrastUpgrade{
				ForegroundID:  fgID,
				BackgroundID:  bgID,
				OriginalFg:    fg,
				UpgradedFg:    upgraded,
				TargetRatio:   target,
				AchievedRatio: achieved,
				Reversible:    true,
			})
		}
	}

	sort.Slice(upgrades, func(i, j int) bool {
		if upgrades[i].ForegroundID != upgrades[j].ForegroundID {
			return upgrades[i].ForegroundID < upgrades[j].ForegroundID
		}
		return upgrades[i].BackgroundID < upgrades[j].BackgroundID
	})
	return upgrades
}

func tokenName(tok *ir.StyleToken) string {
	if tok.Provenance.SourceName != "" {
		return tok.Provenance.SourceName
	}
	return tok.Value
}

// shiftForContrast walks fg toward the extreme (white or black) farther
// from bg's luminance, one step at a time, until the contrast target is
// met or the extreme is reached.
func shiftForContrast(fg, bg RGB, target float64) (RGB, float64) {
	bgLum := relativeLuminance(bg)
	extreme := RGB{255, 255, 255}
	if bgLum > 0.5 {
		extreme = RGB{0, 0, 0}
	}

	current := fg
	ratio := contrastRatio(current, bg)
	for step := 1; step <= 255 && ratio < target; step++ {
		current = lerpRGB(fg, extreme, float64(step)/255.0)
		ratio = contrastRatio(current, bg)
	}
	return current, ratio
}

func lerpRGB(a, b RGB, t float64) RGB {
	lerp := func(x, y uint8) uint8 {
		return clampByte(int(math.Round(float64(x) + (float64(y)-float64(x))*t)))
	}
	return RGB{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B)}
}

// String renders an RGB triple as a debug-friendly "#rrggbb" string.
func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
