package ngen

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/muir/ndecor"
)

// Generator emits composition functions for matched registrations.  A
// Generator is immutable after New and safe for concurrent Generate calls.
type Generator struct {
	dialect Dialect
	models  map[ndecor.TypeDef]Model
	pkg     string
	header  string
	tmpl    *template.Template
}

// Option configures a Generator.
type Option func(*Generator)

// WithDialect overrides the container API the generated code calls into.
func WithDialect(d Dialect) Option {
	return func(g *Generator) {
		g.dialect = d
	}
}

// WithModels registers decorator construction models.  A decorator without
// a model gets the New<Name> convention: a constructor in the decorator's
// package taking exactly the wrapped value.
func WithModels(models ...Model) Option {
	return func(g *Generator) {
		for _, m := range models {
			g.models[m.Decorator] = m
		}
	}
}

// WithPackage sets the package clause File uses when the caller does not
// name one.
func WithPackage(name string) Option {
	return func(g *Generator) {
		g.pkg = name
	}
}

// WithHeader overrides the header comment on assembled files.
func WithHeader(header string) Option {
	return func(g *Generator) {
		g.header = header
	}
}

// New builds a generator.  Without options it targets the default dialect,
// knows no models, and assembles files into package "wiring".
func New(opts ...Option) *Generator {
	g := &Generator{
		dialect: DefaultDialect(),
		models:  make(map[ndecor.TypeDef]Model),
		pkg:     "wiring",
		header:  "Code generated by ndecor. DO NOT EDIT.",
	}
	for _, opt := range opts {
		opt(g)
	}
	tmpl, err := template.New("ngen").Parse(newTemplateRegistry().all())
	if err != nil {
		panic(errors.Wrap(err, "ngen: registry templates do not parse"))
	}
	g.tmpl = tmpl
	return g
}

// Generate emits one composition unit per matched registration.
// Configuration problems are collected into the result instead of aborting
// the batch: a registration with problems produces errors and no unit, and
// every other registration still gets its unit.  Units come out in site
// token order, so the same input always produces the same output bytes.
func (g *Generator) Generate(matched []ndecor.Matched) *Result {
	result := &Result{
		pkg:    g.pkg,
		header: g.header,
		tmpl:   g.tmpl,
	}
	ordered := append([]ndecor.Matched(nil), matched...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Registration.Site < ordered[j].Registration.Site
	})
	for _, m := range ordered {
		unit, errs := g.emit(m)
		if len(errs) > 0 {
			result.Errors = append(result.Errors, errs...)
			continue
		}
		result.Units = append(result.Units, unit)
	}
	return result
}

// unitData is the fully preprocessed input to the unit templates.  Every
// field is a final string; the templates only arrange them.
type unitData struct {
	Name             string
	Registrar        string
	Resolver         string
	Service          string
	Impl             string
	Lifetime         string
	Register         string
	RegisterFactory  string
	RegisterInstance string
	ResolveKeyed     string
	BaseKey          string
	BaseOpt          string
	PublicOpt        string
	KeyParam         string
	BuilderParam     string
	BuilderType      string
	InstanceParam    string
	Wraps            []string
}

func (g *Generator) emit(m ndecor.Matched) (Unit, []*ConfigError) {
	reg := m.Registration
	var errs []*ConfigError

	if err := reg.Shape.Validate(); err != nil {
		errs = append(errs, &ConfigError{
			Kind:         ErrBadShape,
			Registration: reg,
			Reason:       err.Error(),
		})
	}
	for _, name := range []string{reg.Shape.KeyParam, reg.Shape.BuilderParam, reg.Shape.InstanceParam} {
		if reservedParam(name) {
			errs = append(errs, &ConfigError{
				Kind:         ErrBadShape,
				Registration: reg,
				Reason:       fmt.Sprintf("parameter name %q collides with a generated identifier", name),
			})
		}
	}
	if reg.Shape.Kind == ndecor.Instance && reg.Lifetime != ndecor.Singleton {
		errs = append(errs, &ConfigError{
			Kind:         ErrInstanceLifetime,
			Registration: reg,
			Reason:       fmt.Sprintf("instance registrations are singletons; %s is not allowed", reg.Lifetime),
		})
	}

	implArgs := reg.Implementation.Args()
	imports := newImportSet()
	wraps := make([]string, 0, len(m.Chain))
	for _, entry := range m.Chain {
		if !entry.Closed() {
			errs = append(errs, &ConfigError{
				Kind:         ErrArityMismatch,
				Registration: reg,
				Decorator:    entry.Def(),
				Reason: fmt.Sprintf("decorator takes %d type arguments but the implementation supplies %d",
					entry.Def().Arity(), len(implArgs)),
			})
			continue
		}
		expr, entryErrs := g.wrapExpr(entry, implArgs, reg, imports)
		if len(entryErrs) > 0 {
			errs = append(errs, entryErrs...)
			continue
		}
		wraps = append(wraps, expr)
	}
	if len(errs) > 0 {
		return Unit{}, errs
	}

	d := g.dialect
	key := InternalKey(reg.Service, reg.Implementation)
	quotedKey := strconv.Quote(key)
	baseKey := quotedKey
	publicOpt := ""
	if reg.Shape.Kind == ndecor.Keyed || reg.Shape.Kind == ndecor.KeyedFactory {
		baseKey = fmt.Sprintf("%s(%s, %s)", d.qualify(d.NestKeyFunc), reg.Shape.KeyParam, quotedKey)
		publicOpt = fmt.Sprintf(", %s(%s)", d.qualify(d.WithKeyFunc), reg.Shape.KeyParam)
	}

	imports.addRef(reg.Service)
	imports.addRef(reg.Implementation)
	if d.Import != "" {
		imports.add(d.Import)
	}

	data := unitData{
		Name:             funcName(reg.Implementation, reg.Site),
		Registrar:        d.qualify(d.RegistrarType),
		Resolver:         d.qualify(d.ResolverType),
		Service:          reg.Service.Display(),
		Impl:             reg.Implementation.Display(),
		Lifetime:         d.lifetime(reg.Lifetime),
		Register:         d.qualify(d.RegisterFunc),
		RegisterFactory:  d.qualify(d.RegisterFactoryFunc),
		RegisterInstance: d.qualify(d.RegisterInstanceFunc),
		ResolveKeyed:     d.qualify(d.ResolveKeyedFunc),
		BaseKey:          baseKey,
		BaseOpt:          fmt.Sprintf("%s(%s)", d.qualify(d.WithKeyFunc), baseKey),
		PublicOpt:        publicOpt,
		KeyParam:         reg.Shape.KeyParam,
		BuilderParam:     reg.Shape.BuilderParam,
		BuilderType:      fmt.Sprintf("func(%s) %s", d.qualify(d.ResolverType), reg.Implementation.Display()),
		InstanceParam:    reg.Shape.InstanceParam,
		Wraps:            wraps,
	}

	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, "unit-"+reg.Shape.Kind.String(), data); err != nil {
		panic(errors.Wrapf(err, "ngen: emitting %s", reg))
	}
	return Unit{
		Site:        reg.Site,
		Name:        data.Name,
		InternalKey: key,
		Source:      strings.TrimRight(buf.String(), "\n"),
		Imports:     imports.sorted(),
	}, nil
}

// wrapExpr builds the constructor call that wraps svc with one decorator:
// obs.NewCachingDeco[billing.Customer](svc, Resolve[obs.Cache](c)).
func (g *Generator) wrapExpr(entry ndecor.TypeRef, implArgs []ndecor.TypeRef, reg ndecor.Registration, imports *importSet) (string, []*ConfigError) {
	deco := entry.Def()
	model, ok := g.models[deco]
	if !ok {
		model = conventionModel(deco)
	}
	if err := model.validate(); err != nil {
		return "", []*ConfigError{{
			Kind:         ErrBadModel,
			Registration: reg,
			Decorator:    deco,
			Reason:       err.Error(),
		}}
	}
	if !model.hasWrapped() {
		return "", []*ConfigError{{
			Kind:         ErrMissingWrapped,
			Registration: reg,
			Decorator:    deco,
			Reason:       "the decorator's constructor never receives the service it wraps",
		}}
	}

	ctor := model.Constructor.Name
	if model.Constructor.ImportPath != "" {
		imports.add(model.Constructor.ImportPath)
		ctor = lastSegment(model.Constructor.ImportPath) + "." + ctor
	}
	if args := entry.Args(); len(args) > 0 {
		displays := make([]string, len(args))
		for i, a := range args {
			displays[i] = a.Display()
			imports.addRef(a)
		}
		ctor += "[" + strings.Join(displays, ", ") + "]"
	}

	callArgs := make([]string, 0, len(model.Params))
	var errs []*ConfigError
	for _, p := range model.Params {
		if p.Wrapped {
			callArgs = append(callArgs, "svc")
			continue
		}
		closed, err := closeParam(p, implArgs)
		if err != nil {
			errs = append(errs, &ConfigError{
				Kind:         ErrBadModel,
				Registration: reg,
				Decorator:    deco,
				Reason:       err.Error(),
			})
			continue
		}
		imports.addRef(closed)
		callArgs = append(callArgs, fmt.Sprintf("%s[%s](c)",
			g.dialect.qualify(g.dialect.ResolveFunc), closed.Display()))
	}
	if len(errs) > 0 {
		return "", errs
	}
	return ctor + "(" + strings.Join(callArgs, ", ") + ")", nil
}

// reservedParam reports whether a host-chosen parameter name would shadow
// an identifier the templates emit.
func reservedParam(name string) bool {
	switch name {
	case "r", "c", "svc":
		return true
	}
	return false
}

type importSet struct {
	paths map[string]struct{}
}

func newImportSet() *importSet {
	return &importSet{paths: make(map[string]struct{})}
}

func (s *importSet) add(path string) {
	if path == "" {
		return
	}
	s.paths[path] = struct{}{}
}

// addRef adds the import paths a reference's display spelling relies on,
// recursing through type arguments.
func (s *importSet) addRef(r ndecor.TypeRef) {
	s.add(r.Def().PkgPath())
	for _, a := range r.Args() {
		s.addRef(a)
	}
}

func (s *importSet) sorted() []string {
	if len(s.paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// fileData feeds the whole-file template.
type fileData struct {
	Header  string
	Package string
	Imports []string
	Units   []Unit
}

// File assembles every unit into one Go source file: header comment,
// package clause, merged imports, units in site order.  An empty pkg uses
// the generator's configured package name.  The per-site units remain the
// real output contract; File serves hosts whose redirection sink is "drop a
// file into the build".
func (r *Result) File(pkg string) string {
	if pkg == "" {
		pkg = r.pkg
	}
	merged := newImportSet()
	for _, u := range r.Units {
		for _, p := range u.Imports {
			merged.add(p)
		}
	}
	data := fileData{
		Header:  r.header,
		Package: pkg,
		Imports: merged.sorted(),
		Units:   r.Units,
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "file", data); err != nil {
		panic(errors.Wrap(err, "ngen: assembling file"))
	}
	return buf.String()
}
