// Package schema describes the open platform endpoints this module binds:
// services, their endpoints, HTTP verbs, path templates and the credential
// kinds each endpoint accepts. The document is the single source the
// endpoint generator renders from.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/larkkit/lark-cli/internal/api"
)

// Credential kinds as spelled in the schema.
const (
	TokenTenant = "tenant"
	TokenApp    = "app"
	TokenUser   = "user"
)

// Document is the root of an endpoint schema file.
type Document struct {
	Services []Service `yaml:"services" json:"services"`
}

// Service groups the endpoints exposed through one client accessor.
type Service struct {
	Name      string     `yaml:"name" json:"name"`
	Endpoints []Endpoint `yaml:"endpoints" json:"endpoints"`
}

// Endpoint describes a single vendor operation.
type Endpoint struct {
	Name      string   `yaml:"name" json:"name"`
	Doc       string   `yaml:"doc,omitempty" json:"doc,omitempty"`
	Method    string   `yaml:"method" json:"method"`
	Path      string   `yaml:"path" json:"path"`
	Tokens    []string `yaml:"tokens" json:"tokens"`
	Request   string   `yaml:"request,omitempty" json:"request,omitempty"`
	Response  string   `yaml:"response,omitempty" json:"response,omitempty"`
	Helpdesk  bool     `yaml:"helpdesk,omitempty" json:"helpdesk,omitempty"`
	Multipart bool     `yaml:"multipart,omitempty" json:"multipart,omitempty"`
	Download  bool     `yaml:"download,omitempty" json:"download,omitempty"`
}

// PathParams returns the ":name" segments of the path template in order.
func (e Endpoint) PathParams() []string {
	var params []string
	for _, seg := range strings.Split(e.Path, "/") {
		if strings.HasPrefix(seg, ":") {
			params = append(params, seg[1:])
		}
	}
	return params
}

var (
	builtin    *Document
	builtinErr error
	once       sync.Once
)

// Builtin returns the schema compiled into the api package.
func Builtin() (*Document, error) {
	once.Do(func() {
		builtin, builtinErr = Parse(api.EndpointSchema)
	})
	return builtin, builtinErr
}

// Load reads and validates a schema file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a schema document. Unknown keys are rejected
// so a misspelled flag does not silently drop out of the generated code.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

var validMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

var validTokens = map[string]bool{
	TokenTenant: true,
	TokenApp:    true,
	TokenUser:   true,
}

// Validate reports every problem in the document at once.
func (d *Document) Validate() error {
	var result *multierror.Error
	if len(d.Services) == 0 {
		return errors.New("schema defines no services")
	}

	seenServices := map[string]bool{}
	for _, svc := range d.Services {
		if !isExported(svc.Name) {
			result = multierror.Append(result, fmt.Errorf("service %q: name must be an exported Go identifier", svc.Name))
		}
		if seenServices[svc.Name] {
			result = multierror.Append(result, fmt.Errorf("service %q: defined twice", svc.Name))
		}
		seenServices[svc.Name] = true

		seen := map[string]bool{}
		for _, ep := range svc.Endpoints {
			where := svc.Name + "." + ep.Name
			if seen[ep.Name] {
				result = multierror.Append(result, fmt.Errorf("%s: defined twice", where))
			}
			seen[ep.Name] = true
			for _, err := range ep.problems() {
				result = multierror.Append(result, fmt.Errorf("%s: %w", where, err))
			}
		}
	}
	return result.ErrorOrNil()
}

func (e Endpoint) problems() []error {
	var errs []error
	if !isExported(e.Name) {
		errs = append(errs, errors.New("name must be an exported Go identifier"))
	}
	if !validMethods[e.Method] {
		errs = append(errs, fmt.Errorf("unsupported method %q", e.Method))
	}
	if !strings.HasPrefix(e.Path, "/open-apis/") {
		errs = append(errs, fmt.Errorf("path %q must start with /open-apis/", e.Path))
	}
	if len(e.Tokens) == 0 {
		errs = append(errs, errors.New("at least one token kind is required"))
	}
	for _, t := range e.Tokens {
		if !validTokens[t] {
			errs = append(errs, fmt.Errorf("unknown token kind %q", t))
		}
	}
	if e.Request != "" && !isExported(e.Request) {
		errs = append(errs, fmt.Errorf("request type %q must be an exported Go identifier", e.Request))
	}
	if e.Response != "" && !isExported(e.Response) {
		errs = append(errs, fmt.Errorf("response type %q must be an exported Go identifier", e.Response))
	}
	if len(e.PathParams()) > 0 && e.Request == "" {
		errs = append(errs, errors.New("path parameters need a request type to fill them"))
	}
	if e.Download && e.Response != "" {
		errs = append(errs, errors.New("download endpoints return *File and take no response type"))
	}
	if e.Multipart && e.Method != "POST" {
		errs = append(errs, errors.New("multipart endpoints must use POST"))
	}
	return errs
}

func isExported(name string) bool {
	return token.IsIdentifier(name) && token.IsExported(name)
}

// Find returns the endpoint named "Service.Endpoint" (case-insensitive).
func (d *Document) Find(ref string) (*Service, *Endpoint, error) {
	svcName, epName, ok := strings.Cut(ref, ".")
	for i := range d.Services {
		svc := &d.Services[i]
		if !strings.EqualFold(svc.Name, svcName) {
			continue
		}
		if !ok {
			return svc, nil, nil
		}
		for j := range svc.Endpoints {
			if strings.EqualFold(svc.Endpoints[j].Name, epName) {
				return svc, &svc.Endpoints[j], nil
			}
		}
		return nil, nil, fmt.Errorf("endpoint %q not found in service %s", epName, svc.Name)
	}
	return nil, nil, fmt.Errorf("service %q not found; available: %s", svcName, strings.Join(d.ServiceNames(), ", "))
}

// ServiceNames returns the service names sorted alphabetically.
func (d *Document) ServiceNames() []string {
	names := make([]string, 0, len(d.Services))
	for _, svc := range d.Services {
		names = append(names, svc.Name)
	}
	sort.Strings(names)
	return names
}

// EndpointCount returns the number of endpoints across all services.
func (d *Document) EndpointCount() int {
	n := 0
	for _, svc := range d.Services {
		n += len(svc.Endpoints)
	}
	return n
}
