package ndecor

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/muir/reflectutils"
)

// TypeDef is the identity of a type definition: where it comes from and what
// it is called, deliberately ignoring type arguments.  Declarations are
// written against definitions; registrations use closed types.  Two TypeDefs
// are equal (==) exactly when every field matches, so a TypeDef can be used
// directly as a map key and compares the same way in every process that sees
// the same inputs.
//
// Chains built from these identities are cached and compared across runs,
// so identity is content, never a process-local interned code.
type TypeDef struct {
	module  string // originating module or assembly; empty when unscoped
	pkg     string // slash-joined namespace segments
	nesting string // dot-joined enclosing type names, outermost first
	name    string
	arity   int // number of generic parameters on the definition
}

// Def creates the identity of a non-generic, non-nested type definition.
// Use Generic and In to annotate copies for generic or nested definitions.
func Def(module string, pkgPath string, name string) TypeDef {
	return TypeDef{
		module: module,
		pkg:    pkgPath,
		name:   name,
	}
}

// Generic returns a copy of the definition with its generic arity set.
func (d TypeDef) Generic(arity int) TypeDef {
	d.arity = arity
	return d
}

// In returns a copy of the definition nested inside the named enclosing
// types, outermost first.  Go has no nested types; this exists for hosts
// that do.
func (d TypeDef) In(enclosing ...string) TypeDef {
	d.nesting = strings.Join(enclosing, ".")
	return d
}

// Module returns the originating module or assembly name ("" if unscoped).
func (d TypeDef) Module() string { return d.module }

// PkgPath returns the slash-joined namespace of the definition.
func (d TypeDef) PkgPath() string { return d.pkg }

// Namespace returns the namespace segments of the definition.
func (d TypeDef) Namespace() []string {
	if d.pkg == "" {
		return nil
	}
	return strings.Split(d.pkg, "/")
}

// Enclosing returns the names of the enclosing types, outermost first.
func (d TypeDef) Enclosing() []string {
	if d.nesting == "" {
		return nil
	}
	return strings.Split(d.nesting, ".")
}

// Name returns the definition's own name, without namespace or arguments.
func (d TypeDef) Name() string { return d.name }

// Arity returns the number of generic parameters on the definition.
func (d TypeDef) Arity() int { return d.arity }

// IsZero reports whether the definition is the zero identity.
func (d TypeDef) IsZero() bool { return d == TypeDef{} }

// Equal is ==.  It exists so that diffing packages that respect Equal
// methods compare definitions without reaching into unexported fields.
func (d TypeDef) Equal(o TypeDef) bool { return d == o }

func (d TypeDef) qualified() string {
	var b strings.Builder
	if d.pkg != "" {
		b.WriteString(shortQualifier(d.pkg))
		b.WriteString(".")
	}
	if d.nesting != "" {
		b.WriteString(d.nesting)
		b.WriteString(".")
	}
	b.WriteString(d.name)
	return b.String()
}

func (d TypeDef) String() string {
	s := d.qualified()
	if d.arity > 0 {
		s += "[" + strconv.Itoa(d.arity) + "]"
	}
	return s
}

// key is an unambiguous canonical encoding.  It is content-equal across
// processes and feeds fingerprints and derived registration keys.
func (d TypeDef) key() string {
	return d.module + "|" + d.pkg + "|" + d.nesting + "|" + d.name + "|" + strconv.Itoa(d.arity)
}

// sortKey orders definitions by namespace segments, then enclosing types,
// then name.  Arity and module come last so that same-named types from
// different places still order totally.
func (d TypeDef) sortKey() string {
	return d.pkg + "\x00" + d.nesting + "\x00" + d.name + "\x00" + strconv.Itoa(d.arity) + "\x00" + d.module
}

// TypeRef is a fully closed type reference: a definition plus the type
// arguments that close it, plus the spelling emitted code should use.
// Registrations are always closed.
type TypeRef struct {
	def     TypeDef
	args    []TypeRef
	display string
}

// Ref closes a definition with type arguments.  The display spelling is
// computed from short package qualifiers; use WithDisplay when the host
// spells the type differently (import aliases, nested type syntax).
//
// Ref does not insist that len(args) match the definition's arity: the
// registration matcher leaves arity-mismatched decorators unclosed so that
// the emitter can report them as configuration errors instead of anyone
// panicking mid-pipeline.
func Ref(def TypeDef, args ...TypeRef) TypeRef {
	r := TypeRef{
		def:  def,
		args: append([]TypeRef(nil), args...),
	}
	r.display = r.computeDisplay()
	return r
}

// WithDisplay returns a copy of the reference using the given spelling in
// emitted code.
func (r TypeRef) WithDisplay(display string) TypeRef {
	r.display = display
	return r
}

// Def returns the definition the reference closes.
func (r TypeRef) Def() TypeDef { return r.def }

// Args returns the type arguments, in order.  The slice is a copy.
func (r TypeRef) Args() []TypeRef {
	if r.args == nil {
		return nil
	}
	return append([]TypeRef(nil), r.args...)
}

// Display returns the spelling of the type for emitted code.
func (r TypeRef) Display() string { return r.display }

// Closed reports whether the reference carries as many arguments as its
// definition has parameters.
func (r TypeRef) Closed() bool { return len(r.args) == r.def.arity }

// IsZero reports whether the reference is the zero reference.
func (r TypeRef) IsZero() bool { return r.def.IsZero() && r.args == nil }

// Equal compares definition and all corresponding type arguments,
// recursively.  Display spelling does not participate: it is presentation,
// not identity.
func (r TypeRef) Equal(o TypeRef) bool {
	if r.def != o.def || len(r.args) != len(o.args) {
		return false
	}
	for i := range r.args {
		if !r.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

// Key returns an unambiguous canonical encoding of the reference.  Two
// references are Equal exactly when their Keys match.
func (r TypeRef) Key() string {
	if len(r.args) == 0 {
		return r.def.key()
	}
	parts := make([]string, len(r.args))
	for i, a := range r.args {
		parts[i] = a.Key()
	}
	return r.def.key() + "<" + strings.Join(parts, ",") + ">"
}

func (r TypeRef) String() string { return r.display }

func (r TypeRef) computeDisplay() string {
	base := r.def.qualified()
	if len(r.args) == 0 {
		return base
	}
	parts := make([]string, len(r.args))
	for i, a := range r.args {
		parts[i] = a.display
	}
	return base + "[" + strings.Join(parts, ", ") + "]"
}

var (
	typeLock sync.Mutex
	defCache = make(map[reflect.Type]TypeDef)
	refCache = make(map[reflect.Type]TypeRef)
)

// DefOf canonicalizes a reflect.Type into a definition identity.  Generic
// instantiations collapse onto their definition: DefOf of Repo[Customer] and
// of Repo[Order] are equal.  Results are cached.
//
// Go's reflection cannot name a module, so the module field is left empty;
// front-ends for hosts that scope declarations by module fill it in through
// Def instead.
func DefOf(t reflect.Type) TypeDef {
	typeLock.Lock()
	defer typeLock.Unlock()
	return defOfLocked(t)
}

// DefFor is sugar for DefOf on a type parameter.  It follows the
// reflect.TypeOf((*T)(nil)).Elem() idiom so interface types survive.
func DefFor[T any]() TypeDef {
	return DefOf(reflect.TypeOf((*T)(nil)).Elem())
}

// RefOf canonicalizes a reflect.Type into a closed reference, recursing into
// generic type arguments.  The display spelling comes from
// reflectutils.TypeName, which matches how the type is written in source.
// Results are cached.
func RefOf(t reflect.Type) TypeRef {
	typeLock.Lock()
	defer typeLock.Unlock()
	return refOfLocked(t)
}

// RefFor is sugar for RefOf on a type parameter.
func RefFor[T any]() TypeRef {
	return RefOf(reflect.TypeOf((*T)(nil)).Elem())
}

func defOfLocked(t reflect.Type) TypeDef {
	if d, ok := defCache[t]; ok {
		return d
	}
	var d TypeDef
	if t.Name() == "" {
		// Unnamed composite (pointer, slice, map...).  Stable but
		// opaque; upstream discovery rejects what it cannot resolve.
		d = Def("", "", t.String())
	} else {
		base, args := splitInstantiation(t.Name())
		d = Def("", t.PkgPath(), base).Generic(len(args))
	}
	defCache[t] = d
	return d
}

func refOfLocked(t reflect.Type) TypeRef {
	if r, ok := refCache[t]; ok {
		return r
	}
	def := defOfLocked(t)
	var args []TypeRef
	if t.Name() != "" {
		_, rawArgs := splitInstantiation(t.Name())
		args = make([]TypeRef, len(rawArgs))
		for i, raw := range rawArgs {
			args[i] = parseArgRef(raw)
		}
	}
	r := Ref(def, args...).WithDisplay(reflectutils.TypeName(t))
	refCache[t] = r
	return r
}

// splitInstantiation breaks a reflect type name like
// "Repo[example.com/billing.Customer,int]" into its base name and raw
// argument strings.  Names without brackets come back with no arguments.
func splitInstantiation(name string) (string, []string) {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return name, nil
	}
	base := name[:open]
	inner := name[open+1 : len(name)-1]
	var args []string
	depth := 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	return base, args
}

// parseArgRef turns one raw type-argument string from a reflect type name
// ("example.com/billing.Customer", "int", "*example.com/x.T") into a
// reference.  Reflect prints arguments with full import paths; the display
// is rewritten to the short spelling source code would use.
func parseArgRef(raw string) TypeRef {
	base, rawArgs := splitInstantiation(raw)
	prefix := ""
	for len(base) > 0 && (base[0] == '*' || strings.HasPrefix(base, "[]")) {
		if base[0] == '*' {
			prefix += "*"
			base = base[1:]
		} else {
			prefix += "[]"
			base = base[2:]
		}
	}
	pkg, name := splitQualified(base)
	def := Def("", pkg, prefix+name).Generic(len(rawArgs))
	args := make([]TypeRef, len(rawArgs))
	for i, inner := range rawArgs {
		args[i] = parseArgRef(inner)
	}
	r := Ref(def, args...)
	if prefix != "" {
		// The prefix is part of the identity but spells before the
		// qualifier, not after it: *x.T, not x.*T.
		bare := Ref(Def("", pkg, name).Generic(len(rawArgs)), args...)
		r = r.WithDisplay(prefix + bare.Display())
	}
	return r
}

// splitQualified splits "gopkg.in/yaml.v3.Node" into package path and name.
// The name is whatever follows the last dot after the last slash; dots
// before that belong to the path.
func splitQualified(s string) (string, string) {
	slash := strings.LastIndexByte(s, '/')
	dot := strings.LastIndexByte(s, '.')
	if dot <= slash {
		return "", s
	}
	return s[:dot], s[dot+1:]
}

// shortQualifier returns the package qualifier source code would use: the
// last path segment.
func shortQualifier(pkgPath string) string {
	if i := strings.LastIndexByte(pkgPath, '/'); i >= 0 {
		return pkgPath[i+1:]
	}
	return pkgPath
}
