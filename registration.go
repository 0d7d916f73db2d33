package ndecor

import (
	"fmt"
	"strconv"
)

// Lifetime is how long a registered service instance lives.
type Lifetime int

const (
	// Transient instances are built fresh for every resolution.
	Transient Lifetime = iota
	// Scoped instances are shared within one resolution scope.
	Scoped
	// Singleton instances are shared for the life of the container.
	Singleton
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return "lifetime-" + strconv.Itoa(int(l))
	}
}

// ShapeKind is the form of the original registration call.
type ShapeKind int

const (
	// Plain registers a service type with an implementation type.
	Plain ShapeKind = iota
	// Factory registers a service type with a user-supplied builder
	// function.
	Factory
	// Keyed registers a service type with an implementation type under a
	// user-chosen key.
	Keyed
	// KeyedFactory registers a service type with a builder function under
	// a user-chosen key.
	KeyedFactory
	// Instance registers an already-built value.  Only Singleton
	// lifetimes make sense for it; the generator reports others.
	Instance
)

func (k ShapeKind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Factory:
		return "factory"
	case Keyed:
		return "keyed"
	case KeyedFactory:
		return "keyed-factory"
	case Instance:
		return "instance"
	default:
		return "shape-" + strconv.Itoa(int(k))
	}
}

// Shape describes the form of a registration call and the names of the
// parameters the call received.  Generated composition functions take the
// same parameters under the same names so that the host can redirect the
// call site without rewriting arguments.
type Shape struct {
	Kind          ShapeKind
	KeyParam      string // Keyed and KeyedFactory
	BuilderParam  string // Factory and KeyedFactory
	InstanceParam string // Instance
}

// PlainShape describes a plain type registration.
func PlainShape() Shape {
	return Shape{Kind: Plain}
}

// FactoryShape describes a registration that received a builder function
// under the given parameter name.
func FactoryShape(builderParam string) Shape {
	return Shape{Kind: Factory, BuilderParam: builderParam}
}

// KeyedShape describes a registration that received a runtime key under the
// given parameter name.
func KeyedShape(keyParam string) Shape {
	return Shape{Kind: Keyed, KeyParam: keyParam}
}

// KeyedFactoryShape describes a registration that received both a runtime
// key and a builder function.
func KeyedFactoryShape(keyParam string, builderParam string) Shape {
	return Shape{Kind: KeyedFactory, KeyParam: keyParam, BuilderParam: builderParam}
}

// InstanceShape describes a registration that received an already-built
// value under the given parameter name.
func InstanceShape(instanceParam string) Shape {
	return Shape{Kind: Instance, InstanceParam: instanceParam}
}

// Validate checks that the shape carries the parameter names its kind
// needs.  Lifetime rules are not checked here: the generator collects those
// as configuration errors so one bad registration cannot abort a batch.
func (sh Shape) Validate() error {
	switch sh.Kind {
	case Plain:
	case Factory:
		if sh.BuilderParam == "" {
			return fmt.Errorf("factory shape missing builder parameter name")
		}
	case Keyed:
		if sh.KeyParam == "" {
			return fmt.Errorf("keyed shape missing key parameter name")
		}
	case KeyedFactory:
		if sh.KeyParam == "" {
			return fmt.Errorf("keyed-factory shape missing key parameter name")
		}
		if sh.BuilderParam == "" {
			return fmt.Errorf("keyed-factory shape missing builder parameter name")
		}
	case Instance:
		if sh.InstanceParam == "" {
			return fmt.Errorf("instance shape missing instance parameter name")
		}
	default:
		return fmt.Errorf("unknown shape kind %s", sh.Kind)
	}
	return nil
}

// Registration is one service registration discovered in the host
// configuration: a service type bound to an implementation, with a
// lifetime, the shape of the original call, and an opaque site token that
// addresses the call site for output routing.
type Registration struct {
	Service        TypeRef
	Implementation TypeRef
	Lifetime       Lifetime
	Shape          Shape
	Site           string
}

func (r Registration) String() string {
	return fmt.Sprintf("%s as %s (%s, %s)",
		r.Implementation.Display(), r.Service.Display(), r.Lifetime, r.Shape.Kind)
}
