package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// AccessTokenType names a credential an endpoint accepts.
type AccessTokenType int

const (
	AccessTokenNone AccessTokenType = iota
	AccessTokenTenant
	AccessTokenApp
	AccessTokenUser
)

func (t AccessTokenType) String() string {
	switch t {
	case AccessTokenTenant:
		return "tenant_access_token"
	case AccessTokenApp:
		return "app_access_token"
	case AccessTokenUser:
		return "user_access_token"
	default:
		return "none"
	}
}

// Endpoint describes one vendor operation.
//
// Path is a template whose ":name" segments are filled from request fields
// tagged `path:"name"`. Fields tagged `query:"name"` become query parameters,
// fields tagged `form:"name"` become multipart parts, and the remaining
// exported fields form the JSON body.
type Endpoint struct {
	Method           string
	Path             string
	AccessTokenTypes []AccessTokenType
	Helpdesk         bool
	Multipart        bool
	Download         bool
}

func (e Endpoint) accepts(t AccessTokenType) bool {
	for _, a := range e.AccessTokenTypes {
		if a == t {
			return true
		}
	}
	return false
}

func (e Endpoint) hasBody() bool {
	switch e.Method {
	case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
		return false
	default:
		return true
	}
}

func (e Endpoint) String() string {
	return e.Method + " " + e.Path
}

var (
	errMissingPathParam = errors.New("missing path parameter")
	errInvalidPathParam = errors.New("invalid path parameter")
)

// buildPath substitutes each ":name" segment of tmpl exactly once.
// Values are escaped, so a value containing ":x" or "/" is never re-expanded.
// "." and ".." survive escaping and would address another endpoint once the
// path is cleaned, so they are rejected.
func buildPath(tmpl string, params map[string]string) (string, error) {
	segments := strings.Split(tmpl, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := seg[1:]
		value, ok := params[name]
		if !ok || value == "" {
			return "", fmt.Errorf("%w %q", errMissingPathParam, name)
		}
		if value == "." || value == ".." {
			return "", fmt.Errorf("%w %q: %q is not allowed", errInvalidPathParam, name, value)
		}
		segments[i] = url.PathEscape(value)
	}
	return strings.Join(segments, "/"), nil
}

// requestParams holds the parts of a request struct that are not JSON body.
type requestParams struct {
	path  map[string]string
	query url.Values
	form  []formField
	files []formFilePart
}

type formField struct {
	name  string
	value string
}

type formFilePart struct {
	name string
	file *FormFile
}

// extractParams walks the tagged fields of req, which must be a struct or a
// pointer to one. A nil req yields empty params.
func extractParams(req any) (requestParams, error) {
	params := requestParams{
		path:  map[string]string{},
		query: url.Values{},
	}
	if req == nil {
		return params, nil
	}
	rv := reflect.ValueOf(req)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return params, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return params, fmt.Errorf("request must be a struct, got %s", rv.Kind())
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := rv.Field(i)

		if name, ok := field.Tag.Lookup("path"); ok {
			if s, set := scalarString(fv); set {
				params.path[name] = s
			}
			continue
		}
		if name, ok := field.Tag.Lookup("query"); ok {
			for _, s := range queryValues(fv) {
				params.query.Add(name, s)
			}
			continue
		}
		if name, ok := field.Tag.Lookup("form"); ok {
			if f, isFile := fv.Interface().(*FormFile); isFile {
				if f != nil {
					params.files = append(params.files, formFilePart{name: name, file: f})
				}
				continue
			}
			if s, set := scalarString(fv); set {
				params.form = append(params.form, formField{name: name, value: s})
			}
		}
	}
	return params, nil
}

// scalarString formats a scalar or pointer-to-scalar. set is false for nil
// pointers and zero values, which are treated as "not provided".
func scalarString(v reflect.Value) (string, bool) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", false
		}
		// An explicitly set pointer is always sent, even when it points at
		// a zero value such as false or 0.
		return formatScalar(v.Elem())
	}
	if v.IsZero() {
		return "", false
	}
	return formatScalar(v)
}

func formatScalar(v reflect.Value) (string, bool) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), true
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), true
	default:
		return fmt.Sprint(v.Interface()), true
	}
}

func queryValues(v reflect.Value) []string {
	if v.Kind() == reflect.Slice {
		out := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			if s, ok := formatScalar(v.Index(i)); ok {
				out = append(out, s)
			}
		}
		return out
	}
	if s, ok := scalarString(v); ok {
		return []string{s}
	}
	return nil
}

// requestURL renders the absolute URL for ep using the tagged request fields.
func (c *Client) requestURL(ep Endpoint, params requestParams) (string, error) {
	path, err := buildPath(ep.Path, params.path)
	if err != nil {
		return "", err
	}
	u := c.url(path)
	if len(params.query) > 0 {
		u += "?" + params.query.Encode()
	}
	return u, nil
}
