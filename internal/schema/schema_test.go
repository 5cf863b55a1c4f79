package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalSchema = `
services:
  - name: Chats
    endpoints:
      - name: Get
        method: GET
        path: /open-apis/im/v1/chats/:chat_id
        tokens: [user, tenant]
        request: ChatIDRequest
        response: ChatInfo
`

func TestBuiltinParses(t *testing.T) {
	doc, err := Builtin()
	require.NoError(t, err)

	names := doc.ServiceNames()
	for _, want := range []string{"Approval", "Calendar", "Chats", "Contacts", "Drive", "Helpdesk", "Messages"} {
		assert.Contains(t, names, want)
	}
	assert.Greater(t, doc.EndpointCount(), 40)
}

func TestBuiltinHelpdeskEndpointsAreFlagged(t *testing.T) {
	doc, err := Builtin()
	require.NoError(t, err)

	svc, _, err := doc.Find("helpdesk")
	require.NoError(t, err)
	for _, ep := range svc.Endpoints {
		assert.True(t, ep.Helpdesk, "%s should send the helpdesk header", ep.Name)
	}
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(minimalSchema))
	require.NoError(t, err)
	require.Len(t, doc.Services, 1)

	ep := doc.Services[0].Endpoints[0]
	assert.Equal(t, "GET", ep.Method)
	assert.Equal(t, []string{"user", "tenant"}, ep.Tokens)
	assert.Equal(t, []string{"chat_id"}, ep.PathParams())
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	bad := strings.Replace(minimalSchema, "response: ChatInfo", "respones: ChatInfo", 1)
	_, err := Parse([]byte(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "respones")
}

func TestValidateCollectsAllProblems(t *testing.T) {
	doc := &Document{Services: []Service{{
		Name: "chats",
		Endpoints: []Endpoint{
			{Name: "Get", Method: "FETCH", Path: "/im/v1/chats/:chat_id", Tokens: []string{"bot"}},
			{Name: "Get", Method: "GET", Path: "/open-apis/x", Tokens: []string{"tenant"}},
		},
	}}}

	err := doc.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"exported Go identifier",
		`unsupported method "FETCH"`,
		"must start with /open-apis/",
		`unknown token kind "bot"`,
		"path parameters need a request type",
		"chats.Get: defined twice",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestValidateRejectsEmptyDocument(t *testing.T) {
	err := (&Document{}).Validate()
	assert.EqualError(t, err, "schema defines no services")
}

func TestValidateDownloadWithResponse(t *testing.T) {
	doc := &Document{Services: []Service{{
		Name: "Images",
		Endpoints: []Endpoint{{
			Name: "Download", Method: "GET", Path: "/open-apis/im/v1/images/:image_key",
			Tokens: []string{"tenant"}, Request: "ImageKeyRequest", Response: "File", Download: true,
		}},
	}}}
	err := doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download endpoints return *File")
}

func TestFind(t *testing.T) {
	doc, err := Parse([]byte(minimalSchema))
	require.NoError(t, err)

	svc, ep, err := doc.Find("chats.get")
	require.NoError(t, err)
	assert.Equal(t, "Chats", svc.Name)
	assert.Equal(t, "Get", ep.Name)

	_, _, err = doc.Find("chats.nope")
	assert.ErrorContains(t, err, `endpoint "nope" not found`)

	_, _, err = doc.Find("wiki.get")
	assert.ErrorContains(t, err, "available: Chats")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalSchema), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.EndpointCount())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read schema")
}

func TestPathParamsOrder(t *testing.T) {
	ep := Endpoint{Path: "/open-apis/im/v1/messages/:message_id/resources/:file_key"}
	assert.Equal(t, []string{"message_id", "file_key"}, ep.PathParams())
	assert.Nil(t, Endpoint{Path: "/open-apis/im/v1/chats"}.PathParams())
}
