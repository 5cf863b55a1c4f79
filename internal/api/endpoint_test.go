package api

import (
	"errors"
	"net/http"
	"net/url"
	"reflect"
	"testing"
)

func TestBuildPath(t *testing.T) {
	tests := []struct {
		name   string
		tmpl   string
		params map[string]string
		want   string
	}{
		{"single", "/open-apis/im/v1/chats/:chat_id", map[string]string{"chat_id": "oc_1"}, "/open-apis/im/v1/chats/oc_1"},
		{"two", "/open-apis/im/v1/messages/:message_id/resources/:file_key",
			map[string]string{"message_id": "om_1", "file_key": "file_1"}, "/open-apis/im/v1/messages/om_1/resources/file_1"},
		{"escaped slash", "/open-apis/contact/v3/departments/:department_id", map[string]string{"department_id": "a/b"},
			"/open-apis/contact/v3/departments/a%2Fb"},
		{"value looks like a placeholder", "/open-apis/calendar/v4/calendars/:calendar_id/events/:event_id",
			map[string]string{"calendar_id": ":event_id", "event_id": "ev_1"}, "/open-apis/calendar/v4/calendars/:event_id/events/ev_1"},
		{"no params", "/open-apis/im/v1/chats", nil, "/open-apis/im/v1/chats"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildPath(tt.tmpl, tt.params)
			if err != nil {
				t.Fatalf("buildPath() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("buildPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPath_MissingParam(t *testing.T) {
	for _, params := range []map[string]string{nil, {"chat_id": ""}} {
		_, err := buildPath("/open-apis/im/v1/chats/:chat_id", params)
		if !errors.Is(err, errMissingPathParam) {
			t.Errorf("expected errMissingPathParam for %v, got %v", params, err)
		}
	}
}

func TestBuildPath_RejectsDotSegments(t *testing.T) {
	for _, value := range []string{".", ".."} {
		_, err := buildPath("/open-apis/im/v1/messages/:message_id", map[string]string{"message_id": value})
		if !errors.Is(err, errInvalidPathParam) {
			t.Errorf("buildPath(%q) error = %v, want errInvalidPathParam", value, err)
		}
	}
	got, err := buildPath("/open-apis/im/v1/messages/:message_id", map[string]string{"message_id": "..."})
	if err != nil || got != "/open-apis/im/v1/messages/..." {
		t.Errorf("buildPath(\"...\") = %q, %v", got, err)
	}
}

type paramsFixture struct {
	ID       string    `path:"id" json:"-"`
	Type     string    `query:"type" json:"-"`
	Size     int       `query:"size" json:"-"`
	Tags     []string  `query:"tags" json:"-"`
	Flag     *bool     `query:"flag" json:"-"`
	Unset    *int      `query:"unset" json:"-"`
	Kind     string    `form:"kind" json:"-"`
	Duration int       `form:"duration" json:"-"`
	Upload   *FormFile `form:"upload" json:"-"`
	Name     string    `json:"name"`
	hidden   string
}

func TestExtractParams(t *testing.T) {
	f := false
	req := &paramsFixture{
		ID:     "x 1",
		Type:   "file",
		Tags:   []string{"a", "b"},
		Flag:   &f,
		Kind:   "stream",
		Upload: &FormFile{Name: "a.bin", Data: []byte{1}},
		Name:   "body only",
		hidden: "ignored",
	}

	params, err := extractParams(req)
	if err != nil {
		t.Fatalf("extractParams() error: %v", err)
	}
	if params.path["id"] != "x 1" {
		t.Errorf("path = %v", params.path)
	}
	wantQuery := url.Values{"type": {"file"}, "tags": {"a", "b"}, "flag": {"false"}}
	if !reflect.DeepEqual(params.query, wantQuery) {
		t.Errorf("query = %v, want %v", params.query, wantQuery)
	}
	if len(params.form) != 1 || params.form[0] != (formField{name: "kind", value: "stream"}) {
		t.Errorf("form = %v", params.form)
	}
	if len(params.files) != 1 || params.files[0].name != "upload" {
		t.Errorf("files = %v", params.files)
	}
}

func TestExtractParams_NilAndInvalid(t *testing.T) {
	var nilReq *paramsFixture
	for _, req := range []any{nil, nilReq} {
		params, err := extractParams(req)
		if err != nil || len(params.path) != 0 || len(params.query) != 0 {
			t.Errorf("extractParams(%v) = %v, %v", req, params, err)
		}
	}
	if _, err := extractParams("not a struct"); err == nil {
		t.Error("expected error for non-struct request")
	}
}

func TestRequestURL_OmitsUnsetQuery(t *testing.T) {
	client := newTestClient("https://open.feishu.cn")
	ep := Endpoint{Method: http.MethodGet, Path: "/open-apis/im/v1/messages"}

	params, err := extractParams(&ListMessagesRequest{
		ContainerIDType: "chat",
		ContainerID:     "oc_1",
		PageSize:        20,
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := client.requestURL(ep, params)
	if err != nil {
		t.Fatalf("requestURL() error: %v", err)
	}
	want := "https://open.feishu.cn/open-apis/im/v1/messages?container_id=oc_1&container_id_type=chat&page_size=20"
	if got != want {
		t.Errorf("requestURL() = %q, want %q", got, want)
	}
}

func TestEndpointAccepts(t *testing.T) {
	ep := Endpoint{AccessTokenTypes: []AccessTokenType{AccessTokenUser, AccessTokenTenant}}
	if !ep.accepts(AccessTokenUser) || !ep.accepts(AccessTokenTenant) {
		t.Error("expected user and tenant to be accepted")
	}
	if ep.accepts(AccessTokenApp) {
		t.Error("app should not be accepted")
	}
}

func TestEndpointHasBody(t *testing.T) {
	for method, want := range map[string]bool{
		http.MethodGet:    false,
		http.MethodDelete: false,
		http.MethodPost:   true,
		http.MethodPut:    true,
		http.MethodPatch:  true,
	} {
		if got := (Endpoint{Method: method}).hasBody(); got != want {
			t.Errorf("hasBody(%s) = %v, want %v", method, got, want)
		}
	}
}

func TestAccessTokenTypeString(t *testing.T) {
	tests := map[AccessTokenType]string{
		AccessTokenNone:   "none",
		AccessTokenTenant: "tenant_access_token",
		AccessTokenApp:    "app_access_token",
		AccessTokenUser:   "user_access_token",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
