package signals

import "testing"

func TestEvaluateTrueAndFalse(t *testing.T) {
	e := NewEvaluator()
	env := Env{Category: "effect", Risk: "High", Confidence: 0.4}

	ok, err := e.Evaluate(`Risk == "High"`, env)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected condition to evaluate true")
	}

	ok, err = e.Evaluate(`Confidence > 0.9`, env)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected condition to evaluate false")
	}
}

func TestEvaluateEmptyConditionAlwaysTrue(t *testing.T) {
	e := NewEvaluator()
	ok, err := e.Evaluate("", Env{})
	if err != nil || !ok {
		t.Fatalf("expected empty condition to be true, got ok=%v err=%v", ok, err)
	}
}

func TestEvaluateCachesCompiledProgram(t *testing.T) {
	e := NewEvaluator()
	env := Env{Risk: "Low"}
	cond := `Risk == "Low"`

	for i := 0; i < 5; i++ {
		ok, err := e.Evaluate(cond, env)
		if err != nil || !ok {
			t.Fatalf("iteration %d: ok=%v err=%v", i, ok, err)
		}
	}
	if len(e.cache.entries) != 1 {
		t.Fatalf("expected 1 cached program, got %d", len(e.cache.entries))
	}
}

func TestApplyAllSumsMatchingAdjustments(t *testing.T) {
	e := NewEvaluator()
	env := Env{IsInteractive: true, HasCleanup: false}
	adjustments := []Adjustment{
		{Name: "interactive-boost", Condition: "IsInteractive", Boost: 2},
		{Name: "missing-cleanup-penalty", Condition: "!HasCleanup", Penalty: 1},
		{Name: "never-matches", Condition: "Risk == \"Critical\"", Boost: 100},
	}
	boost, penalty := e.ApplyAll(adjustments, env)
	if boost != 2 {
		t.Errorf("expected boost 2, got %f", boost)
	}
	if penalty != 1 {
		t.Errorf("expected penalty 1, got %f", penalty)
	}
}

func TestEvaluateMalformedConditionDoesNotPanic(t *testing.T) {
	e := NewEvaluator()
	_, err := e.Evaluate("this is not valid expr syntax {{{", Env{})
	if err == nil {
		t.Fatal("expected an error for malformed condition")
	}
}
