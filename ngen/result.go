package ngen

import (
	"errors"
	"fmt"
	"strconv"
	"text/template"

	"github.com/muir/ndecor"
)

// ErrorKind classifies configuration errors.
type ErrorKind int

const (
	// ErrMissingWrapped: the decorator's constructor has no parameter
	// receiving the wrapped service.
	ErrMissingWrapped ErrorKind = iota
	// ErrArityMismatch: an open generic decorator cannot borrow the
	// implementation's type arguments.
	ErrArityMismatch
	// ErrInstanceLifetime: an instance registration with a lifetime
	// other than singleton.
	ErrInstanceLifetime
	// ErrBadShape: the registration shape is internally inconsistent.
	ErrBadShape
	// ErrBadModel: the decorator's construction model is unusable.
	ErrBadModel
)

func (k ErrorKind) String() string {
	switch k {
	case ErrMissingWrapped:
		return "missing wrapped dependency"
	case ErrArityMismatch:
		return "generic arity mismatch"
	case ErrInstanceLifetime:
		return "instance lifetime"
	case ErrBadShape:
		return "bad registration shape"
	case ErrBadModel:
		return "bad construction model"
	default:
		return "error-" + strconv.Itoa(int(k))
	}
}

// ConfigError is one collected configuration problem.  The registration it
// belongs to produced no unit; the rest of the batch is unaffected.
type ConfigError struct {
	Kind         ErrorKind
	Registration ndecor.Registration
	Decorator    ndecor.TypeDef // zero unless the problem is decorator-specific
	Reason       string
}

func (e *ConfigError) Error() string {
	if e.Decorator.IsZero() {
		return fmt.Sprintf("%s: %s: %s", e.Registration.Site, e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s: %s", e.Registration.Site, e.Kind, e.Decorator, e.Reason)
}

// Details returns the long form: everything needed to find and fix the
// registration without rerunning anything.
func (e *ConfigError) Details() string {
	out := "site:         " + e.Registration.Site + "\n" +
		"registration: " + e.Registration.String() + "\n"
	if !e.Decorator.IsZero() {
		out += "decorator:    " + e.Decorator.String() + "\n"
	}
	out += "problem:      " + e.Reason
	return out
}

// Result is the outcome of one Generate call: the units that emitted and
// the configuration errors that were collected instead of units.
type Result struct {
	Units  []Unit
	Errors []*ConfigError

	pkg    string
	header string
	tmpl   *template.Template
}

// Unit is one generated composition function, addressed to the
// registration site it replaces.
type Unit struct {
	Site        string
	Name        string
	InternalKey string
	Source      string
	Imports     []string
}

// HasErrors reports whether any configuration errors were collected.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Err joins all collected errors into one, or returns nil when generation
// was clean.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// UnitFor returns the unit addressed to a site.
func (r *Result) UnitFor(site string) (Unit, bool) {
	for _, u := range r.Units {
		if u.Site == site {
			return u, true
		}
	}
	return Unit{}, false
}
