package style

import (
	"math"
	"testing"

	"github.com/nightisyang/frankentui-migrate/internal/ir"
)

func TestParseColorVariants(t *testing.T) {
	cases := map[string]RGB{
		"#fff":              {255, 255, 255},
		"#000000":           {0, 0, 0},
		"#ff0000":           {255, 0, 0},
		"rgb(10, 20, 30)":   {10, 20, 30},
		"red":               {255, 0, 0},
		"Blue":              {0, 0, 255},
	}
	for input, want := range cases {
		got, ok := ParseColor(input)
		if !ok {
			t.Errorf("ParseColor(%q) failed to parse", input)
			continue
		}
		if got != want {
			t.Errorf("ParseColor(%q) = %+v, want %+v", input, got, want)
		}
	}
}

func TestParseColorRejectsUnknownSyntax(t *testing.T) {
	if _, ok := ParseColor("hsl(0, 100%, 50%)"); ok {
		t.Fatal("expected hsl() to be unrecognized")
	}
}

func TestQuantizeSpacing(t *testing.T) {
	cases := map[string]int{
		"16px": 2,
		"1rem": 2,
		"2em":  4,
		"3":    0,
	}
	for input, want := range cases {
		if got := quantizeSpacing(input); got != want {
			t.Errorf("quantizeSpacing(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestClassifyBorder(t *testing.T) {
	cases := map[string]BorderKind{
		"none":          BorderNone,
		"double":        BorderDouble,
		"thick":         BorderThick,
		"rounded":       BorderRounded,
		"solid 1px":     BorderPlain,
	}
	for input, want := range cases {
		if got := classifyBorder(input); got != want {
			t.Errorf("classifyBorder(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestTranslateUnsupportedCategoriesProduceWorkaroundHints(t *testing.T) {
	shadowID := ir.MakeNodeIdFromString("token:shadow")
	m := ir.MigrationIr{
		StyleIntent: ir.StyleIntent{
			Tokens: map[ir.NodeId]*ir.StyleToken{
				shadowID: {ID: shadowID, Category: ir.TokenShadow, Value: "0 1px 2px black"},
			},
		},
	}
	out := Translate(m)
	if len(out.Unsupported) != 1 || out.Unsupported[0].Category != ir.TokenShadow {
		t.Fatalf("expected 1 unsupported shadow token, got %+v", out.Unsupported)
	}
	if out.Unsupported[0].Hint == "" {
		t.Fatal("expected a non-empty workaround hint")
	}
}

// TestTranslateAccessibilityUpgrade mirrors scenario S5: a low-contrast
// fg/bg color pair gets shifted until it clears the WCAG threshold.
func TestTranslateAccessibilityUpgrade(t *testing.T) {
	fgID := ir.MakeNodeIdFromString("token:fg")
	bgID := ir.MakeNodeIdFromString("token:bg")
	m := ir.MigrationIr{
		StyleIntent: ir.StyleIntent{
			Tokens: map[ir.NodeId]*ir.StyleToken{
				fgID: {ID: fgID, Category: ir.TokenColor, Value: "#777777", Provenance: ir.Provenance{SourceName: "text-fg"}},
				bgID: {ID: bgID, Category: ir.TokenColor, Value: "#808080", Provenance: ir.Provenance{SourceName: "panel-bg"}},
			},
		},
	}

	out := Translate(m)

	if len(out.Upgrades) != 1 {
		t.Fatalf("expected 1 contrast upgrade, got %d", len(out.Upgrades))
	}
	up := out.Upgrades[0]
	if !up.Reversible {
		t.Fatal("expected upgrade to be marked reversible")
	}
	if up.AchievedRatio < up.TargetRatio-0.01 {
		t.Fatalf("expected achieved ratio >= target, got %.3f < %.3f", up.AchievedRatio, up.TargetRatio)
	}
	if out.Colors[fgID] != up.UpgradedFg {
		t.Fatalf("expected translated color map to reflect the upgraded fg")
	}
}

func TestTranslateSkipsUpgradeWhenContrastAlreadySufficient(t *testing.T) {
	fgID := ir.MakeNodeIdFromString("token:fg2")
	bgID := ir.MakeNodeIdFromString("token:bg2")
	m := ir.MigrationIr{
		StyleIntent: ir.StyleIntent{
			Tokens: map[ir.NodeId]*ir.StyleToken{
				fgID: {ID: fgID, Category: ir.TokenColor, Value: "#ffffff", Provenance: ir.Provenance{SourceName: "text-fg"}},
				bgID: {ID: bgID, Category: ir.TokenColor, Value: "#000000", Provenance: ir.Provenance{SourceName: "panel-bg"}},
			},
		},
	}
	out := Translate(m)
	if len(out.Upgrades) != 0 {
		t.Fatalf("expected no upgrade for already-sufficient contrast, got %+v", out.Upgrades)
	}
}

func TestContrastRatioIsSymmetric(t *testing.T) {
	a := RGB{10, 20, 30}
	b := RGB{200, 210, 220}
	if math.Abs(contrastRatio(a, b)-contrastRatio(b, a)) > 1e-9 {
		t.Fatal("expected contrast ratio to be symmetric")
	}
}
