package verify_test

import (
	"testing"

	"github.com/cwbudde/ooxverify/internal/oox/fixtures"
	"github.com/cwbudde/ooxverify/internal/verify"
)

// TestProperty6_PORSoundness asserts spec.md §8 universal property 6: for
// any program, the verdict with applyPOR = true equals the verdict with
// applyPOR = false. POR only prunes interleavings that are provably
// equivalent to ones still explored — it must never change the verdict,
// only the amount of search performed to reach it.
func TestProperty6_PORSoundness(t *testing.T) {
	cases := []struct {
		fixture string
		entry   string
		depth   int
	}{
		{"concursimple1", "Main.m2", 200},
		{"concursimple1", "Main.m3_invalid1", 300},
		{"locks1", "Main.main", 50},
		{"deadlock", "Main.main", 50},
		{"philosophers", "Main.main", 200},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.fixture+"/"+tc.entry, func(t *testing.T) {
			withPOR := verify.Default()
			withPOR.EntryPoint = tc.entry
			withPOR.MaximumDepth = tc.depth
			withPOR.ApplyPOR = true

			withoutPOR := withPOR
			withoutPOR.ApplyPOR = false

			cuA, _ := fixtures.Get(tc.fixture)
			resultA, err := verify.Verify(cuA, withPOR)
			if err != nil {
				t.Fatalf("verify with POR: %v", err)
			}

			cuB, _ := fixtures.Get(tc.fixture)
			resultB, err := verify.Verify(cuB, withoutPOR)
			if err != nil {
				t.Fatalf("verify without POR: %v", err)
			}

			if resultA.Kind != resultB.Kind {
				t.Fatalf("POR changed the verdict: with POR %s, without POR %s", resultA.Kind, resultB.Kind)
			}
		})
	}
}
