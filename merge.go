package ndecor

import (
	"sort"
	"strings"
)

// ChainSet maps each implementation definition to its merged decorator
// chain.  Chains run innermost first: chain[0] wraps the implementation
// directly and the last entry is the outermost wrapper.  Implementations
// whose chains come up empty are absent from the map.
type ChainSet map[TypeDef][]TypeDef

// Merge resolves the decorator chain for every implementation the store
// knows about.  The result depends only on the store's contents: feeding
// the same facts in any order produces an identical ChainSet.  Merge never
// fails; configuration problems that need reporting surface later, during
// code generation.
//
// Per implementation: blanket rows are dropped when the implementation
// skips blanket decoration, disabled rows are dropped, duplicate rows for
// one decorator collapse to the most specific one, excluded decorators are
// removed, and the survivors are ordered by Order with ties broken by
// source and then by name.
func Merge(store *Store) ChainSet {
	debugLock.RLock()
	defer debugLock.RUnlock()
	chains := make(ChainSet)
	for _, impl := range store.Implementations() {
		if chain := mergeOne(store, impl); len(chain) > 0 {
			chains[impl] = chain
		}
	}
	return chains
}

// Explain reruns the merge for one implementation with the decision log
// turned on and returns the log: every candidate, every drop with its
// reason, and the final chain.  It answers "why is my decorator not
// applied?" without disturbing normal merges.
func Explain(store *Store, impl TypeDef) string {
	return captureMergeDebugging(store, impl)
}

// supersedes reports whether row a beats row b for the same decorator.
// More specific sources win; within a source the lowest order wins.
func supersedes(a, b Declaration) bool {
	if a.Source != b.Source {
		return a.Source == SourcePerImplementation
	}
	return a.Order < b.Order
}

func mergeOne(s *Store, impl TypeDef) []TypeDef {
	rows := s.byImpl[impl]
	debugf("merging %s: %d declarations", impl, len(rows))
	skipping := s.skips[impl]

	candidates := make([]Declaration, 0, len(rows))
	for _, d := range rows {
		if skipping && d.Source == SourceBlanket {
			debugf("  dropped %s (order %d, %s): implementation skips blanket decoration",
				d.Decorator, d.Order, d.Source)
			continue
		}
		if !d.Enabled {
			debugf("  dropped %s (order %d, %s): disabled", d.Decorator, d.Order, d.Source)
			continue
		}
		debugf("  candidate %s (order %d, %s)", d.Decorator, d.Order, d.Source)
		candidates = append(candidates, d)
	}

	// One row per decorator definition.  The winner map is keyed by the
	// definition, so duplicate declarations of an open generic decorator
	// collapse no matter how they will later be closed.
	winners := make(map[TypeDef]int, len(candidates))
	deduped := candidates[:0]
	for _, d := range candidates {
		at, seen := winners[d.Decorator]
		if !seen {
			winners[d.Decorator] = len(deduped)
			deduped = append(deduped, d)
			continue
		}
		prior := deduped[at]
		if supersedes(d, prior) {
			debugf("  dropped %s (order %d, %s): superseded by order %d (%s)",
				prior.Decorator, prior.Order, prior.Source, d.Order, d.Source)
			deduped[at] = d
		} else {
			debugf("  dropped %s (order %d, %s): superseded by order %d (%s)",
				d.Decorator, d.Order, d.Source, prior.Order, prior.Source)
		}
	}

	final := deduped[:0]
	for _, d := range deduped {
		if s.excludes[impl][d.Decorator] {
			debugf("  dropped %s (order %d, %s): excluded", d.Decorator, d.Order, d.Source)
			continue
		}
		final = append(final, d)
	}

	// The comparator is total: after dedupe no two rows share a decorator
	// definition, and sortKey orders distinct definitions totally.
	sort.Slice(final, func(i, j int) bool {
		a, b := final[i], final[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if a.Source != b.Source {
			return a.Source == SourcePerImplementation
		}
		return a.Decorator.sortKey() < b.Decorator.sortKey()
	})

	if len(final) == 0 {
		debugf("  no decorators remain for %s", impl)
		return nil
	}
	chain := make([]TypeDef, len(final))
	names := make([]string, len(final))
	for i, d := range final {
		chain[i] = d.Decorator
		names[i] = d.Decorator.String()
	}
	debugf("  final chain for %s: %s", impl, strings.Join(names, " -> "))
	return chain
}
