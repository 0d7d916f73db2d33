package ndecor

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainOf(chains ChainSet, impl TypeDef) []TypeDef {
	return chains[impl]
}

func TestMergePerImplAndBlanketCombine(t *testing.T) {
	// LoggingDeco declared on the implementation, CachingDeco arriving
	// via blanket: both survive, ordered by their orders.
	chains := Merge(NewStore(
		Decorate(sqlRepo, loggingDeco, 1),
		BlanketDecorate(sqlRepo, cachingDeco, 2),
	))
	assert.Equal(t, []TypeDef{loggingDeco, cachingDeco}, chainOf(chains, sqlRepo))
}

func TestMergeSkipAllDropsOnlyBlanket(t *testing.T) {
	chains := Merge(NewStore(
		Decorate(sqlRepo, loggingDeco, 1),
		BlanketDecorate(sqlRepo, cachingDeco, 2),
		SkipAll{Implementation: sqlRepo},
	))
	assert.Equal(t, []TypeDef{loggingDeco}, chainOf(chains, sqlRepo))
}

func TestMergeSkipAllScopedToImplementation(t *testing.T) {
	chains := Merge(NewStore(
		BlanketDecorate(sqlRepo, cachingDeco, 2),
		BlanketDecorate(memRepo, cachingDeco, 2),
		SkipAll{Implementation: memRepo},
	))
	assert.Equal(t, []TypeDef{cachingDeco}, chainOf(chains, sqlRepo))
	assert.NotContains(t, chains, memRepo)
}

func TestMergeDuplicatePrefersPerImplementation(t *testing.T) {
	chains := Merge(NewStore(
		Decorate(sqlRepo, metricsDeco, 5),
		BlanketDecorate(sqlRepo, metricsDeco, 9),
	))
	require.Equal(t, []TypeDef{metricsDeco}, chainOf(chains, sqlRepo))

	// The surviving row keeps the per-implementation order.  With another
	// decorator between the two orders, the winner sorts ahead of it.
	chains = Merge(NewStore(
		Decorate(sqlRepo, metricsDeco, 5),
		BlanketDecorate(sqlRepo, metricsDeco, 9),
		Decorate(sqlRepo, cachingDeco, 7),
	))
	assert.Equal(t, []TypeDef{metricsDeco, cachingDeco}, chainOf(chains, sqlRepo))
}

func TestMergeDuplicateSameSourceKeepsLowestOrder(t *testing.T) {
	chains := Merge(NewStore(
		Decorate(sqlRepo, metricsDeco, 9),
		Decorate(sqlRepo, metricsDeco, 5),
		Decorate(sqlRepo, cachingDeco, 7),
	))
	assert.Equal(t, []TypeDef{metricsDeco, cachingDeco}, chainOf(chains, sqlRepo))
}

func TestMergeDisabledDoesNotContribute(t *testing.T) {
	chains := Merge(NewStore(
		BlanketDecorate(sqlRepo, cachingDeco, 2).Disabled(),
	))
	assert.NotContains(t, chains, sqlRepo)
}

func TestMergeDisabledDoesNotShadow(t *testing.T) {
	// A disabled per-implementation row must not knock out the enabled
	// blanket row for the same decorator.  The blanket row's order is the
	// one that counts.
	chains := Merge(NewStore(
		Decorate(sqlRepo, loggingDeco, 1).Disabled(),
		BlanketDecorate(sqlRepo, loggingDeco, 3),
		Decorate(sqlRepo, cachingDeco, 2),
	))
	assert.Equal(t, []TypeDef{cachingDeco, loggingDeco}, chainOf(chains, sqlRepo))
}

func TestMergeExcludeRemovesRegardlessOfSource(t *testing.T) {
	chains := Merge(NewStore(
		Decorate(sqlRepo, loggingDeco, 1),
		BlanketDecorate(sqlRepo, cachingDeco, 2),
		Exclude{Implementation: sqlRepo, Decorator: loggingDeco},
	))
	assert.Equal(t, []TypeDef{cachingDeco}, chainOf(chains, sqlRepo))

	chains = Merge(NewStore(
		Decorate(sqlRepo, loggingDeco, 1),
		BlanketDecorate(sqlRepo, cachingDeco, 2),
		Exclude{Implementation: sqlRepo, Decorator: cachingDeco},
	))
	assert.Equal(t, []TypeDef{loggingDeco}, chainOf(chains, sqlRepo))
}

func TestMergeExcludeScopedToImplementation(t *testing.T) {
	chains := Merge(NewStore(
		Decorate(sqlRepo, loggingDeco, 1),
		Decorate(memRepo, loggingDeco, 1),
		Exclude{Implementation: sqlRepo, Decorator: loggingDeco},
	))
	assert.NotContains(t, chains, sqlRepo)
	assert.Equal(t, []TypeDef{loggingDeco}, chainOf(chains, memRepo))
}

func TestMergeTieBreak(t *testing.T) {
	// Equal orders: per-implementation rows come first, then names decide.
	chains := Merge(NewStore(
		BlanketDecorate(sqlRepo, cachingDeco, 5),
		Decorate(sqlRepo, metricsDeco, 5),
		Decorate(sqlRepo, loggingDeco, 5),
	))
	assert.Equal(t, []TypeDef{loggingDeco, metricsDeco, cachingDeco}, chainOf(chains, sqlRepo))
}

func TestMergeEmptyChainsOmitted(t *testing.T) {
	chains := Merge(NewStore(
		Decorate(sqlRepo, loggingDeco, 1),
		Exclude{Implementation: sqlRepo, Decorator: loggingDeco},
		Decorate(memRepo, cachingDeco, 2),
	))
	require.Len(t, chains, 1)
	assert.NotContains(t, chains, sqlRepo)
	assert.Contains(t, chains, memRepo)
}

func TestMergeEmptyStore(t *testing.T) {
	assert.Empty(t, Merge(NewStore()))
}

func TestMergeDeterministicUnderPermutation(t *testing.T) {
	facts := []Fact{
		Decorate(sqlRepo, loggingDeco, 1),
		BlanketDecorate(sqlRepo, cachingDeco, 2),
		Decorate(sqlRepo, metricsDeco, 5),
		BlanketDecorate(sqlRepo, metricsDeco, 9),
		Decorate(memRepo, loggingDeco, 4).Disabled(),
		BlanketDecorate(memRepo, cachingDeco, 2),
		SkipAll{Implementation: memRepo},
		Exclude{Implementation: sqlRepo, Decorator: cachingDeco},
	}
	base := Merge(NewStore(facts...))
	perms := [][]int{
		{7, 6, 5, 4, 3, 2, 1, 0},
		{3, 1, 4, 7, 0, 6, 2, 5},
		{5, 0, 7, 2, 6, 1, 3, 4},
	}
	for _, perm := range perms {
		shuffled := make([]Fact, len(facts))
		for i, j := range perm {
			shuffled[i] = facts[j]
		}
		assert.Equal(t, base, Merge(NewStore(shuffled...)))
	}
}

func TestMergeChainsIndependentPerImplementation(t *testing.T) {
	chains := Merge(NewStore(
		Decorate(sqlRepo, loggingDeco, 1),
		Decorate(sqlRepo, cachingDeco, 2),
		Decorate(memRepo, cachingDeco, 1),
		Decorate(memRepo, loggingDeco, 2),
	))
	if diff := cmp.Diff([]TypeDef{loggingDeco, cachingDeco}, chainOf(chains, sqlRepo)); diff != "" {
		t.Error(diff)
	}
	if diff := cmp.Diff([]TypeDef{cachingDeco, loggingDeco}, chainOf(chains, memRepo)); diff != "" {
		t.Error(diff)
	}
}

func TestExplainNamesEveryDrop(t *testing.T) {
	store := NewStore(
		Decorate(sqlRepo, loggingDeco, 1),
		BlanketDecorate(sqlRepo, cachingDeco, 2),
		Decorate(sqlRepo, metricsDeco, 5),
		BlanketDecorate(sqlRepo, metricsDeco, 9),
		Decorate(sqlRepo, cachingDeco, 3).Disabled(),
		Exclude{Implementation: sqlRepo, Decorator: loggingDeco},
	)
	out := Explain(store, sqlRepo)
	assert.Contains(t, out, "merging repos.SqlRepo[1]: 5 declarations")
	assert.Contains(t, out, "candidate obs.LoggingDeco[1] (order 1, per-implementation)")
	assert.Contains(t, out, "dropped obs.CachingDeco[1] (order 3, per-implementation): disabled")
	assert.Contains(t, out, "dropped obs.MetricsDeco[1] (order 9, blanket): superseded by order 5 (per-implementation)")
	assert.Contains(t, out, "dropped obs.LoggingDeco[1] (order 1, per-implementation): excluded")
	assert.Contains(t, out, "final chain")
}

func TestExplainSkipAll(t *testing.T) {
	store := NewStore(
		BlanketDecorate(sqlRepo, cachingDeco, 2),
		SkipAll{Implementation: sqlRepo},
	)
	out := Explain(store, sqlRepo)
	assert.Contains(t, out, "implementation skips blanket decoration")
	assert.Contains(t, out, "no decorators remain")
}

func TestExplainUnknownImplementation(t *testing.T) {
	out := Explain(NewStore(), sqlRepo)
	assert.Contains(t, out, "0 declarations")
}

func TestExplainDoesNotDisturbMerge(t *testing.T) {
	store := NewStore(
		Decorate(sqlRepo, loggingDeco, 1),
		BlanketDecorate(sqlRepo, cachingDeco, 2),
	)
	want := Merge(store)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				assert.Equal(t, want, Merge(store))
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = Explain(store, sqlRepo)
			}
		}()
	}
	wg.Wait()
}
