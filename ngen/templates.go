package ngen

import "strings"

// Template components for the generated composition functions.  One
// component per registration shape plus the shared factory body and the
// whole-file frame.  The data they receive is fully preprocessed: every
// field is a final string, so the templates are pure structure.

const composeTemplate = `{{define "compose"}}{{.RegisterFactory}}[{{.Service}}](r, {{.Lifetime}}, func(c {{.Resolver}}) {{.Service}} {
		var svc {{.Service}} = {{.ResolveKeyed}}[{{.Impl}}](c, {{.BaseKey}})
{{- range .Wraps}}
		svc = {{.}}
{{- end}}
		return svc
	}{{.PublicOpt}}){{end}}`

const plainUnitTemplate = `{{define "unit-plain"}}func {{.Name}}(r {{.Registrar}}) {
	{{.Register}}[{{.Impl}}](r, {{.Lifetime}}, {{.BaseOpt}})
	{{template "compose" .}}
}
{{end}}`

const factoryUnitTemplate = `{{define "unit-factory"}}func {{.Name}}(r {{.Registrar}}, {{.BuilderParam}} {{.BuilderType}}) {
	{{.RegisterFactory}}[{{.Impl}}](r, {{.Lifetime}}, {{.BuilderParam}}, {{.BaseOpt}})
	{{template "compose" .}}
}
{{end}}`

const keyedUnitTemplate = `{{define "unit-keyed"}}func {{.Name}}(r {{.Registrar}}, {{.KeyParam}} any) {
	{{.Register}}[{{.Impl}}](r, {{.Lifetime}}, {{.BaseOpt}})
	{{template "compose" .}}
}
{{end}}`

const keyedFactoryUnitTemplate = `{{define "unit-keyed-factory"}}func {{.Name}}(r {{.Registrar}}, {{.KeyParam}} any, {{.BuilderParam}} {{.BuilderType}}) {
	{{.RegisterFactory}}[{{.Impl}}](r, {{.Lifetime}}, {{.BuilderParam}}, {{.BaseOpt}})
	{{template "compose" .}}
}
{{end}}`

const instanceUnitTemplate = `{{define "unit-instance"}}func {{.Name}}(r {{.Registrar}}, {{.InstanceParam}} {{.Impl}}) {
	{{.RegisterInstance}}[{{.Impl}}](r, {{.InstanceParam}}, {{.BaseOpt}})
	{{template "compose" .}}
}
{{end}}`

const fileTemplate = `{{define "file"}}// {{.Header}}

package {{.Package}}
{{if .Imports}}
import (
{{- range .Imports}}
	"{{.}}"
{{- end}}
)
{{end}}
{{- range .Units}}
{{.Source}}
{{end}}{{end}}`

// templateRegistry holds all template components by name.
type templateRegistry struct {
	templates map[string]string
}

func newTemplateRegistry() *templateRegistry {
	tr := &templateRegistry{templates: make(map[string]string)}
	tr.templates["compose"] = composeTemplate
	tr.templates["unit-plain"] = plainUnitTemplate
	tr.templates["unit-factory"] = factoryUnitTemplate
	tr.templates["unit-keyed"] = keyedUnitTemplate
	tr.templates["unit-keyed-factory"] = keyedFactoryUnitTemplate
	tr.templates["unit-instance"] = instanceUnitTemplate
	tr.templates["file"] = fileTemplate
	return tr
}

// all returns every component joined into one parseable template text.
func (tr *templateRegistry) all() string {
	parts := make([]string, 0, len(tr.templates))
	for _, name := range []string{
		"compose",
		"unit-plain",
		"unit-factory",
		"unit-keyed",
		"unit-keyed-factory",
		"unit-instance",
		"file",
	} {
		parts = append(parts, tr.templates[name])
	}
	return strings.Join(parts, "\n")
}
