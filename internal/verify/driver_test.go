package verify_test

import (
	"testing"

	"github.com/cwbudde/ooxverify/internal/exec"
	"github.com/cwbudde/ooxverify/internal/oox/fixtures"
	"github.com/cwbudde/ooxverify/internal/verify"
)

// TestProperty5_Determinism asserts spec.md §8 universal property 5: with
// applyRandomInterleaving = false and a fixed solver, two runs of the
// same (program, entry, config) produce the same verdict.
func TestProperty5_Determinism(t *testing.T) {
	cu, ok := fixtures.Get("concursimple1")
	if !ok {
		t.Fatal("fixture concursimple1 not registered")
	}

	cfg := verify.Default()
	cfg.EntryPoint = "Main.m2"
	cfg.MaximumDepth = 200

	first, err := verify.Verify(cu, cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	cu2, _ := fixtures.Get("concursimple1")
	second, err := verify.Verify(cu2, cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.Kind != second.Kind {
		t.Fatalf("non-deterministic verdict: %s then %s", first.Kind, second.Kind)
	}
}

// TestProperty7_DepthMonotonicity asserts spec.md §8 universal property
// 7: if depth d yields Invalid, every depth d' >= d also yields Invalid.
func TestProperty7_DepthMonotonicity(t *testing.T) {
	for depth := 30; depth <= 40; depth++ {
		cu, ok := fixtures.Get("simple1")
		if !ok {
			t.Fatal("fixture simple1 not registered")
		}
		cfg := verify.Default()
		cfg.EntryPoint = "SomeClass.m1Invalid"
		cfg.MaximumDepth = depth

		result, err := verify.Verify(cu, cfg)
		if err != nil {
			t.Fatalf("depth %d: %v", depth, err)
		}
		if result.Kind != exec.Invalid {
			t.Fatalf("depth %d: got %s, want Invalid (once Invalid at a shallower depth, it must stay Invalid)", depth, result.Kind)
		}
	}
}

// TestBoundary_ZeroDepthIsVacuouslyValid asserts spec.md §8's documented
// boundary behavior: maximumDepth = 0 on any non-trivial entry reports
// Valid, since the search terminates before it can ever reach an assert.
func TestBoundary_ZeroDepthIsVacuouslyValid(t *testing.T) {
	cu, ok := fixtures.Get("simple1")
	if !ok {
		t.Fatal("fixture simple1 not registered")
	}
	cfg := verify.Default()
	cfg.EntryPoint = "SomeClass.m1Invalid"
	cfg.MaximumDepth = 0

	result, err := verify.Verify(cu, cfg)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Kind != exec.Valid {
		t.Fatalf("zero-depth run reported %s, want vacuous Valid", result.Kind)
	}
}

// TestUnknownEntryPoint asserts spec.md §7's UnknownEntryPoint engine
// error is surfaced as a Go error, not a verdict.
func TestUnknownEntryPoint(t *testing.T) {
	cu, ok := fixtures.Get("simple1")
	if !ok {
		t.Fatal("fixture simple1 not registered")
	}
	cfg := verify.Default()
	cfg.EntryPoint = "SomeClass.DoesNotExist"

	_, err := verify.Verify(cu, cfg)
	if err == nil {
		t.Fatal("expected an error for an unknown entry point")
	}
}
