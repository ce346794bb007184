package evidence

import (
	"path/filepath"
	"testing"

	"github.com/nightisyang/frankentui-migrate/internal/contract"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "evidence"), nil)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordSuccessAndFailureAccumulate(t *testing.T) {
	s := openTestStore(t)
	sig := "view:button->ftui_core::Button"

	for i := 0; i < 3; i++ {
		if err := s.RecordSuccess(sig); err != nil {
			t.Fatalf("RecordSuccess: %v", err)
		}
	}
	if err := s.RecordFailure(sig); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}

	rec, err := s.Get(sig)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Successes != 3 || rec.Failures != 1 {
		t.Errorf("expected 3 successes / 1 failure, got %+v", rec)
	}
}

func TestGetUnknownSignatureReturnsZeroRecord(t *testing.T) {
	s := openTestStore(t)
	rec, err := s.Get("never-seen")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Successes != 0 || rec.Failures != 0 {
		t.Errorf("expected zero record, got %+v", rec)
	}
}

func TestPosteriorFoldsPersistedEvidenceIntoPrior(t *testing.T) {
	s := openTestStore(t)
	sig := "style:color-token"
	for i := 0; i < 9; i++ {
		s.RecordSuccess(sig)
	}
	s.RecordFailure(sig)

	post, err := s.Posterior(sig, contract.DefaultPrior(), 0.95)
	if err != nil {
		t.Fatalf("Posterior: %v", err)
	}
	if post.Mean <= 0.5 {
		t.Errorf("expected posterior mean to reflect mostly-success evidence, got %v", post.Mean)
	}
}

func TestAllReturnsEverySignature(t *testing.T) {
	s := openTestStore(t)
	s.RecordSuccess("a")
	s.RecordSuccess("b")
	s.RecordFailure("c")

	all, err := s.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 signatures, got %d: %+v", len(all), all)
	}
	sigs := Signatures(all)
	if len(sigs) != 3 || sigs[0] != "a" || sigs[2] != "c" {
		t.Errorf("expected sorted signatures [a b c], got %v", sigs)
	}
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	s := openTestStore(t)
	s.Close()
	if _, err := s.Get("x"); err != ErrStoreClosed {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
	if err := s.RecordSuccess("x"); err != ErrStoreClosed {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
}
