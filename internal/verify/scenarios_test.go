package verify_test

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/ooxverify/internal/exec"
	"github.com/cwbudde/ooxverify/internal/oox/fixtures"
	"github.com/cwbudde/ooxverify/internal/verify"
)

// TestEndToEndScenarios runs spec.md §8's eight literal end-to-end
// programs against their expected verdicts, and snapshots the full
// result (verdict plus, for non-Valid verdicts, the violated position)
// so a regression that changes *which* assertion fails is caught even
// when the verdict kind itself doesn't change.
func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name     string
		fixture  string
		entry    string
		cfg      func(verify.Configuration) verify.Configuration
		expected exec.VerdictKind
	}{
		{
			name:     "simple1",
			fixture:  "simple1",
			entry:    "SomeClass.m1",
			expected: exec.Valid,
		},
		{
			name:     "simple1_invalid",
			fixture:  "simple1",
			entry:    "SomeClass.m1Invalid",
			expected: exec.Invalid,
		},
		{
			name:    "simple1_m3_invalid",
			fixture: "simple1",
			entry:   "SomeClass.m3Invalid",
			cfg: func(c verify.Configuration) verify.Configuration {
				c.MaximumDepth = 100
				c.SymbolicArraySize = 4
				return c
			},
			expected: exec.Invalid,
		},
		{
			name:    "concursimple1_m2",
			fixture: "concursimple1",
			entry:   "Main.m2",
			cfg: func(c verify.Configuration) verify.Configuration {
				c.MaximumDepth = 200
				return c
			},
			expected: exec.Valid,
		},
		{
			name:    "concursimple1_m3_invalid1",
			fixture: "concursimple1",
			entry:   "Main.m3_invalid1",
			cfg: func(c verify.Configuration) verify.Configuration {
				c.MaximumDepth = 300
				return c
			},
			expected: exec.Invalid,
		},
		{
			name:    "locks1",
			fixture: "locks1",
			entry:   "Main.main",
			cfg: func(c verify.Configuration) verify.Configuration {
				c.MaximumDepth = 50
				return c
			},
			expected: exec.Valid,
		},
		{
			name:    "deadlock",
			fixture: "deadlock",
			entry:   "Main.main",
			cfg: func(c verify.Configuration) verify.Configuration {
				c.MaximumDepth = 50
				return c
			},
			expected: exec.Deadlock,
		},
		{
			name:    "philosophers",
			fixture: "philosophers",
			entry:   "Main.main",
			cfg: func(c verify.Configuration) verify.Configuration {
				c.MaximumDepth = 200
				return c
			},
			expected: exec.Deadlock,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cu, ok := fixtures.Get(tc.fixture)
			require.True(t, ok, "unknown fixture %q", tc.fixture)

			cfg := verify.Default()
			cfg.EntryPoint = tc.entry
			if tc.cfg != nil {
				cfg = tc.cfg(cfg)
			}

			result, err := verify.Verify(cu, cfg)
			require.NoError(t, err)
			require.Equal(t, tc.expected, result.Kind, "verdict for %s :: %s", tc.fixture, tc.entry)

			summary := fmt.Sprintf("verdict=%s", result.Kind)
			if result.Kind != exec.Valid {
				summary += fmt.Sprintf(" pos=%d:%d formula=%s", result.Pos.Line, result.Pos.Column, result.Formula)
			}
			snaps.MatchSnapshot(t, tc.name, summary)
		})
	}
}
