package ngen

import (
	"strings"

	"github.com/muir/ndecor"
)

// Dialect names the container API that generated code calls into.  The
// composition logic is the same for every host; only the spelling of the
// verbs differs.  The zero Dialect is not usable; start from
// DefaultDialect and override fields as needed.
type Dialect struct {
	// RegistrarType and ResolverType are the types of the values the
	// generated function receives and the factory closures accept.
	RegistrarType string
	ResolverType  string

	// Register verbs.  RegisterFunc and RegisterFactoryFunc are generic
	// over the registered type; RegisterInstanceFunc takes an
	// already-built value and implies a singleton.
	RegisterFunc         string
	RegisterFactoryFunc  string
	RegisterInstanceFunc string

	// Resolution verbs used inside factory closures.
	ResolveFunc      string
	ResolveKeyedFunc string

	// WithKeyFunc is the registration option attaching a key.
	// NestKeyFunc combines a user key with a derived key so that the
	// hidden base registration cannot collide with user keys.
	WithKeyFunc string
	NestKeyFunc string

	// LifetimeNames spell the lifetime constants.
	LifetimeNames map[ndecor.Lifetime]string

	// Import optionally qualifies every verb and type above with the
	// package at this import path.  Empty means the verbs are in scope
	// in the generated file's package.
	Import string
}

// DefaultDialect returns the dialect for a container API with bare generic
// verbs in scope: Register[T](r, lifetime, opts...), Resolve[T](c), and
// friends.
func DefaultDialect() Dialect {
	return Dialect{
		RegistrarType:        "Registrar",
		ResolverType:         "Resolver",
		RegisterFunc:         "Register",
		RegisterFactoryFunc:  "RegisterFactory",
		RegisterInstanceFunc: "RegisterInstance",
		ResolveFunc:          "Resolve",
		ResolveKeyedFunc:     "ResolveKeyed",
		WithKeyFunc:          "WithKey",
		NestKeyFunc:          "NestKey",
		LifetimeNames: map[ndecor.Lifetime]string{
			ndecor.Transient: "Transient",
			ndecor.Scoped:    "Scoped",
			ndecor.Singleton: "Singleton",
		},
		Import: "",
	}
}

// qualify prefixes a verb or type name with the dialect's package
// qualifier, when it has one.
func (d Dialect) qualify(name string) string {
	if d.Import == "" {
		return name
	}
	pkg := d.Import
	if i := strings.LastIndexByte(pkg, '/'); i >= 0 {
		pkg = pkg[i+1:]
	}
	return pkg + "." + name
}

func (d Dialect) lifetime(l ndecor.Lifetime) string {
	if name, ok := d.LifetimeNames[l]; ok {
		return d.qualify(name)
	}
	return d.qualify(l.String())
}
