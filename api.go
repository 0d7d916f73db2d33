package ndecor

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
)

// DeclSource says where a declaration row came from.  Per-implementation
// rows are written against one implementation; blanket rows are written
// against a scope and expanded by the front-end into one row per
// implementation in that scope.  The source matters during merge: rows from
// a more specific source win over rows from a broader one.
type DeclSource int

const (
	// SourcePerImplementation marks a row declared directly on the
	// implementation it targets.
	SourcePerImplementation DeclSource = iota
	// SourceBlanket marks a row expanded from a scope-wide declaration.
	SourceBlanket
)

func (s DeclSource) String() string {
	switch s {
	case SourcePerImplementation:
		return "per-implementation"
	case SourceBlanket:
		return "blanket"
	default:
		return "source-" + strconv.Itoa(int(s))
	}
}

// Declaration says that one decorator wraps one implementation.  Order
// positions the decorator within the chain: lower orders sit closer to the
// implementation.  Disabled declarations are remembered but do not
// contribute to chains.
type Declaration struct {
	Implementation TypeDef
	Decorator      TypeDef
	Order          int
	Source         DeclSource
	Enabled        bool
}

// Decorate declares that decorator wraps implementation, as a
// per-implementation row.  The result is chainable with Disabled().
func Decorate(implementation TypeDef, decorator TypeDef, order int) Declaration {
	return Declaration{
		Implementation: implementation,
		Decorator:      decorator,
		Order:          order,
		Source:         SourcePerImplementation,
		Enabled:        true,
	}
}

// BlanketDecorate declares that decorator wraps implementation, as a row
// expanded from a blanket declaration.  Blanket rows lose to
// per-implementation rows for the same decorator and are dropped entirely
// for implementations that opt out with SkipAll.
func BlanketDecorate(implementation TypeDef, decorator TypeDef, order int) Declaration {
	return Declaration{
		Implementation: implementation,
		Decorator:      decorator,
		Order:          order,
		Source:         SourceBlanket,
		Enabled:        true,
	}
}

// Disabled returns an annotated copy of the declaration with Enabled turned
// off.  A disabled row never contributes to a chain, and it does not shadow
// an enabled row for the same decorator from another source.
func (d Declaration) Disabled() Declaration {
	d.Enabled = false
	return d
}

// SkipAll opts an implementation out of every blanket declaration.
// Per-implementation declarations still apply.
type SkipAll struct {
	Implementation TypeDef
}

// Exclude removes one decorator from one implementation's chain no matter
// where the decorator was declared.  Exclusion is by decorator definition,
// so excluding an open generic decorator covers all of its instantiations.
type Exclude struct {
	Implementation TypeDef
	Decorator      TypeDef
}

// Fact is one unit of decoration configuration: a Declaration, a SkipAll,
// an Exclude, or a group of them built with Facts.  The interface is sealed;
// outside packages supply facts, they do not define new kinds.
type Fact interface {
	applyTo(s *Store)
}

func (d Declaration) applyTo(s *Store) {
	s.decls = append(s.decls, d)
}

func (sk SkipAll) applyTo(s *Store) {
	s.skips[sk.Implementation] = true
}

func (e Exclude) applyTo(s *Store) {
	m := s.excludes[e.Implementation]
	if m == nil {
		m = make(map[TypeDef]bool)
		s.excludes[e.Implementation] = m
	}
	m[e.Decorator] = true
}

type factGroup []Fact

func (g factGroup) applyTo(s *Store) {
	for _, f := range g {
		f.applyTo(s)
	}
}

// Facts groups facts so that helper functions can build up configuration
// fragments and hand them to NewStore as one value.
func Facts(facts ...Fact) Fact {
	return factGroup(facts)
}

// Store holds a complete set of decoration facts.  It is immutable once
// built: accessors return copies and the merge operations only read.  A
// Store is safe for concurrent use.
type Store struct {
	decls    []Declaration
	skips    map[TypeDef]bool
	excludes map[TypeDef]map[TypeDef]bool
	byImpl   map[TypeDef][]Declaration
}

// NewStore collects facts into a store.  Facts may arrive in any order and
// may repeat; merge results do not depend on the order given here.
func NewStore(facts ...Fact) *Store {
	s := &Store{
		skips:    make(map[TypeDef]bool),
		excludes: make(map[TypeDef]map[TypeDef]bool),
	}
	for _, f := range facts {
		f.applyTo(s)
	}
	s.byImpl = make(map[TypeDef][]Declaration)
	for _, d := range s.decls {
		s.byImpl[d.Implementation] = append(s.byImpl[d.Implementation], d)
		noteDisplay(d.Implementation)
		noteDisplay(d.Decorator)
	}
	for impl := range s.skips {
		noteDisplay(impl)
	}
	for impl, decos := range s.excludes {
		noteDisplay(impl)
		for deco := range decos {
			noteDisplay(deco)
		}
	}
	return s
}

// Declarations returns all declaration rows, in the order they were given.
func (s *Store) Declarations() []Declaration {
	return append([]Declaration(nil), s.decls...)
}

// SkipsAll reports whether the implementation opted out of blanket
// declarations.
func (s *Store) SkipsAll(implementation TypeDef) bool {
	return s.skips[implementation]
}

// Excluded reports whether the decorator is excluded for the implementation.
func (s *Store) Excluded(implementation TypeDef, decorator TypeDef) bool {
	return s.excludes[implementation][decorator]
}

// Implementations returns every implementation named by any declaration,
// sorted so that callers iterating over the store behave the same way every
// run.
func (s *Store) Implementations() []TypeDef {
	impls := make([]TypeDef, 0, len(s.byImpl))
	for impl := range s.byImpl {
		impls = append(impls, impl)
	}
	sort.Slice(impls, func(i, j int) bool {
		return impls[i].sortKey() < impls[j].sortKey()
	})
	return impls
}

// Fingerprint returns a content hash of the store: equal for any two stores
// built from the same multiset of facts, regardless of the order the facts
// were given in.  Callers can key caches of merge results on it.
func (s *Store) Fingerprint() string {
	lines := make([]string, 0, len(s.decls)+len(s.skips)+len(s.excludes))
	for _, d := range s.decls {
		lines = append(lines, "decl|"+d.Implementation.key()+"|"+d.Decorator.key()+
			"|"+strconv.Itoa(d.Order)+"|"+d.Source.String()+"|"+strconv.FormatBool(d.Enabled))
	}
	for impl := range s.skips {
		lines = append(lines, "skip|"+impl.key())
	}
	for impl, decos := range s.excludes {
		for deco := range decos {
			lines = append(lines, "excl|"+impl.key()+"|"+deco.key())
		}
	}
	sort.Strings(lines)
	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
