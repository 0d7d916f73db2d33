package ngen

import (
	"github.com/pkg/errors"

	"github.com/muir/ndecor"
)

// FuncRef names a constructor function: where it is imported from and what
// it is called.  An empty ImportPath means the function is in scope in the
// generated file's package.
type FuncRef struct {
	ImportPath string
	Name       string
}

// Param is one constructor parameter of a decorator, in a form that can be
// closed against a concrete implementation.  Exactly one of three readings
// applies:
//
//   - Wrapped marks the parameter that receives the wrapped service value.
//   - Otherwise, a zero Def means the parameter's type is the
//     implementation's type argument at index TypeArg.
//   - Otherwise the parameter is a dependency of type Def closed with Args,
//     resolved from the container.
//
// Use WrappedParam, ArgParam, and DepParam instead of building the struct
// by hand.
type Param struct {
	Wrapped bool
	TypeArg int
	Def     ndecor.TypeDef
	Args    []Param
}

// WrappedParam is the parameter receiving the wrapped service value.
func WrappedParam() Param {
	return Param{Wrapped: true}
}

// ArgParam is a parameter whose type is the implementation's type argument
// at the given index.
func ArgParam(index int) Param {
	return Param{TypeArg: index}
}

// DepParam is a dependency parameter of the given definition, closed with
// the given argument parameters.
func DepParam(def ndecor.TypeDef, args ...Param) Param {
	return Param{Def: def, Args: args}
}

// Model describes how to construct one decorator: which function to call
// and what its parameters are, in order.  The host front-end extracts
// models from the decorator's declared constructor; when a decorator has no
// model the generator falls back to the New<Name> convention.
type Model struct {
	Decorator   ndecor.TypeDef
	Constructor FuncRef
	Params      []Param
}

// validate checks the shape of the model itself, independent of any
// implementation: a usable model has exactly one wrapped parameter and a
// named constructor.
func (m Model) validate() error {
	if m.Constructor.Name == "" {
		return errors.New("model has no constructor name")
	}
	wrapped := 0
	for _, p := range m.Params {
		if p.Wrapped {
			wrapped++
		}
	}
	if wrapped > 1 {
		return errors.Errorf("model has %d wrapped parameters", wrapped)
	}
	return nil
}

// hasWrapped reports whether any parameter receives the wrapped value.
// A decorator that never receives the value it wraps cannot decorate.
func (m Model) hasWrapped() bool {
	for _, p := range m.Params {
		if p.Wrapped {
			return true
		}
	}
	return false
}

// conventionModel synthesizes the fallback model for a decorator with no
// registered model: New<Name> in the decorator's own package, taking
// exactly the wrapped value.
func conventionModel(deco ndecor.TypeDef) Model {
	return Model{
		Decorator: deco,
		Constructor: FuncRef{
			ImportPath: deco.PkgPath(),
			Name:       "New" + deco.Name(),
		},
		Params: []Param{WrappedParam()},
	}
}

// closeParam resolves a parameter's type against the implementation's type
// arguments, recursively.  Wrapped parameters never reach here; the caller
// substitutes the service value for them.
func closeParam(p Param, implArgs []ndecor.TypeRef) (ndecor.TypeRef, error) {
	if p.Def.IsZero() {
		if p.TypeArg < 0 || p.TypeArg >= len(implArgs) {
			return ndecor.TypeRef{}, errors.Errorf(
				"parameter references type argument %d but the implementation has %d",
				p.TypeArg, len(implArgs))
		}
		return implArgs[p.TypeArg], nil
	}
	args := make([]ndecor.TypeRef, len(p.Args))
	for i, a := range p.Args {
		closed, err := closeParam(a, implArgs)
		if err != nil {
			return ndecor.TypeRef{}, err
		}
		args[i] = closed
	}
	return ndecor.Ref(p.Def, args...), nil
}
