package fixtures

import "github.com/cwbudde/ooxverify/internal/oox"

// Named is keyed by the literal program names spec.md §8 cites, the same
// names the ooxverify CLI's `verify --fixture` flag and the end-to-end test
// suite resolve against: there is no file-based front end in this module
// (spec.md §1), so these are the only entry points a `verify` run can name.
var Named = map[string]func() *oox.CompilationUnit{
	"simple1":       Simple1,
	"concursimple1": Concursimple1,
	"locks1":        Locks1,
	"deadlock":      Deadlock,
	"philosophers":  Philosophers,
}

// Get resolves a fixture by name, building a fresh CompilationUnit on every
// call so callers never share (and can't accidentally mutate) a cached
// graph across verification runs.
func Get(name string) (*oox.CompilationUnit, bool) {
	build, ok := Named[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

// Names lists the known fixture names, sorted, for CLI help text and
// table-driven tests.
func Names() []string {
	out := make([]string, 0, len(Named))
	for k := range Named {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
