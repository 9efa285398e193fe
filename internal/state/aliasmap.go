package state

// AliasMap maps a symbolic-reference name to the finite set of concrete
// References it may denote, populated lazily during concretization
// (spec.md §3, §4.1).
type AliasMap struct {
	aliases map[string][]Reference
}

func NewAliasMap() AliasMap {
	return AliasMap{aliases: map[string][]Reference{}}
}

// Aliases returns the known alias set for name, or (nil, false) if no
// concretization has touched it yet.
func (a AliasMap) Aliases(name string) ([]Reference, bool) {
	refs, ok := a.aliases[name]
	return refs, ok
}

// WithAlias returns a new AliasMap recording that name may denote ref, in
// addition to whatever was already known.
func (a AliasMap) WithAlias(name string, ref Reference) AliasMap {
	out := cloneAliases(a.aliases)
	existing := out[name]
	for _, r := range existing {
		if r == ref {
			return AliasMap{aliases: out}
		}
	}
	out[name] = append(append([]Reference{}, existing...), ref)
	return AliasMap{aliases: out}
}

// WithAliasSet returns a new AliasMap fixing name's alias set outright
// (used once a symbolic reference's alias set is fully known).
func (a AliasMap) WithAliasSet(name string, refs []Reference) AliasMap {
	out := cloneAliases(a.aliases)
	out[name] = append([]Reference{}, refs...)
	return AliasMap{aliases: out}
}

func cloneAliases(m map[string][]Reference) map[string][]Reference {
	out := make(map[string][]Reference, len(m))
	for k, v := range m {
		out[k] = append([]Reference{}, v...)
	}
	return out
}
