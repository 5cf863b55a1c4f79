// Package codegen renders the endpoint schema into Go façade methods.
//
// For every endpoint it emits an Endpoint descriptor, a method on the
// owning service type, and a package-level helper that takes a Requester so
// the call path can be tested without a live Client.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/iancoleman/strcase"

	"github.com/larkkit/lark-cli/internal/schema"
)

const fileTemplate = `// Code generated by lark-gen from {{.Source}}. DO NOT EDIT.

package {{.Package}}

import (
	"context"
	"net/http"
)
{{range $svc := .Doc.Services}}{{range $ep := $svc.Endpoints}}
var {{endpointVar $svc $ep}} = Endpoint{
	Method: {{httpMethod $ep.Method}},
	Path: {{printf "%q" $ep.Path}},
	AccessTokenTypes: {{tokenTypes $ep.Tokens}},
{{- if $ep.Helpdesk}}
	Helpdesk: true,
{{- end}}
{{- if $ep.Multipart}}
	Multipart: true,
{{- end}}
{{- if $ep.Download}}
	Download: true,
{{- end}}
}

{{docComment $ep}}
func (s {{$svc.Name}}Service) {{$ep.Name}}({{params $ep}}) {{results $ep}} {
	return {{helper $svc $ep}}(ctx, s{{if $ep.Request}}, req{{end}}, opts...)
}

func {{helper $svc $ep}}(ctx context.Context, r Requester{{if $ep.Request}}, req *{{$ep.Request}}{{end}}, opts ...CallOption) {{results $ep}} {
{{- if resultType $ep}}
	var result {{resultType $ep}}
	if err := r.call(ctx, {{endpointVar $svc $ep}}, {{if $ep.Request}}req{{else}}nil{{end}}, &result, opts...); err != nil {
		return nil, err
	}
	return &result, nil
{{- else}}
	return r.call(ctx, {{endpointVar $svc $ep}}, {{if $ep.Request}}req{{else}}nil{{end}}, nil, opts...)
{{- end}}
}
{{end}}{{end}}`

// Options control rendering.
type Options struct {
	// Package is the package clause of the generated file.
	Package string
	// Source names the schema file in the generated header.
	Source string
}

var funcs = template.FuncMap{
	"endpointVar": endpointVar,
	"helper":      helperName,
	"httpMethod":  httpMethod,
	"tokenTypes":  tokenTypes,
	"docComment":  docComment,
	"params":      params,
	"results":     results,
	"resultType":  resultType,
}

var tmpl = template.Must(template.New("endpoints").Funcs(funcs).Parse(fileTemplate))

// Render produces the gofmt-formatted Go source for doc.
func Render(doc *schema.Document, opts Options) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = "api"
	}
	if opts.Source == "" {
		opts.Source = "endpoints.yaml"
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Options
		Doc *schema.Document
	}{opts, doc})
	if err != nil {
		return nil, fmt.Errorf("failed to render endpoints: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated code does not parse: %w", err)
	}
	return src, nil
}

// Generate renders the schema at schemaPath into outPath. With check set
// it writes nothing and fails when outPath is out of date.
func Generate(schemaPath, outPath, pkg string, check bool) error {
	doc, err := schema.Load(schemaPath)
	if err != nil {
		return err
	}
	src, err := Render(doc, Options{Package: pkg, Source: filepath.Base(schemaPath)})
	if err != nil {
		return err
	}

	if check {
		current, err := os.ReadFile(outPath)
		if err != nil {
			return fmt.Errorf("failed to read generated file: %w", err)
		}
		if !bytes.Equal(current, src) {
			return fmt.Errorf("%s is out of date; run go generate", outPath)
		}
		return nil
	}

	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		return fmt.Errorf("failed to write generated file: %w", err)
	}
	return nil
}

func endpointVar(svc schema.Service, ep schema.Endpoint) string {
	return "endpoint" + svc.Name + ep.Name
}

func helperName(svc schema.Service, ep schema.Endpoint) string {
	return strcase.ToLowerCamel(svc.Name) + ep.Name
}

func httpMethod(m string) string {
	switch m {
	case http.MethodGet:
		return "http.MethodGet"
	case http.MethodPost:
		return "http.MethodPost"
	case http.MethodPut:
		return "http.MethodPut"
	case http.MethodPatch:
		return "http.MethodPatch"
	case http.MethodDelete:
		return "http.MethodDelete"
	}
	return fmt.Sprintf("%q", m)
}

var tokenConsts = map[string]string{
	schema.TokenTenant: "AccessTokenTenant",
	schema.TokenApp:    "AccessTokenApp",
	schema.TokenUser:   "AccessTokenUser",
}

func tokenTypes(tokens []string) string {
	names := make([]string, 0, len(tokens))
	for _, t := range tokens {
		names = append(names, tokenConsts[t])
	}
	return "[]AccessTokenType{" + strings.Join(names, ", ") + "}"
}

func docComment(ep schema.Endpoint) string {
	route := ep.Method + " " + ep.Path
	if ep.Doc == "" {
		return "// " + ep.Name + " calls " + route + "."
	}
	return "// " + ep.Doc + "\n//\n// " + route
}

func params(ep schema.Endpoint) string {
	if ep.Request == "" {
		return "ctx context.Context, opts ...CallOption"
	}
	return "ctx context.Context, req *" + ep.Request + ", opts ...CallOption"
}

func resultType(ep schema.Endpoint) string {
	if ep.Download {
		return "File"
	}
	return ep.Response
}

func results(ep schema.Endpoint) string {
	if t := resultType(ep); t != "" {
		return "(*" + t + ", error)"
	}
	return "error"
}
