package explain

import "testing"

func TestExplainTextIdenticalInputsYieldIdenticalExplanation(t *testing.T) {
	exp, err := ExplainText("pass", "a\nb\nc\n", "a\nb\nc\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exp.Identical {
		t.Error("expected Identical=true for equal inputs")
	}
	if len(exp.Hunks) != 0 {
		t.Errorf("expected no hunks, got %d", len(exp.Hunks))
	}
}

func TestExplainTextReportsAddedAndRemoved(t *testing.T) {
	before := "alpha\nbeta\ngamma\n"
	after := "alpha\ndelta\ngamma\n"

	exp, err := ExplainText("pass", before, after)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.Identical {
		t.Fatal("expected Identical=false for differing inputs")
	}
	if exp.Added != 1 || exp.Removed != 1 {
		t.Errorf("expected 1 added and 1 removed line, got added=%d removed=%d", exp.Added, exp.Removed)
	}
	if len(exp.Hunks) != 1 {
		t.Fatalf("expected a single hunk, got %d", len(exp.Hunks))
	}
}

func TestExplainTextPreservesContextAroundChange(t *testing.T) {
	before := "l1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9\nl10\n"
	after := "l1\nl2\nl3\nl4\nCHANGED\nl6\nl7\nl8\nl9\nl10\n"

	exp, err := ExplainText("pass", before, after)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exp.Hunks) != 1 {
		t.Fatalf("expected single hunk, got %d", len(exp.Hunks))
	}
	h := exp.Hunks[0]
	if h.OldLines == 0 || h.NewLines == 0 {
		t.Errorf("expected non-zero hunk line counts, got %+v", h)
	}
}

func TestExplainTextAppendOnlyHasNoRemovals(t *testing.T) {
	before := "one\ntwo\n"
	after := "one\ntwo\nthree\n"

	exp, err := ExplainText("pass", before, after)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.Removed != 0 {
		t.Errorf("expected no removals, got %d", exp.Removed)
	}
	if exp.Added != 1 {
		t.Errorf("expected 1 addition, got %d", exp.Added)
	}
}
