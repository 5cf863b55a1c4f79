package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestCall_ReusesCachedTenantToken(t *testing.T) {
	var calls atomic.Int32
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.Header.Get("Authorization"); got != "Bearer t-1" {
			t.Errorf("Authorization = %q, want Bearer t-1", got)
		}
		writeEnvelope(w, 0, "ok", map[string]any{"chat_id": "oc_1", "name": "ops"})
	})
	client := newTestClient(ls.URL)

	for i := 0; i < 3; i++ {
		chat, err := client.Chats().Get(context.Background(), &ChatIDRequest{ChatID: "oc_1"})
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if chat.Name != "ops" {
			t.Errorf("Name = %q", chat.Name)
		}
	}
	if n := ls.tenantFetches.Load(); n != 1 {
		t.Errorf("tenant token fetched %d times, want 1", n)
	}
	if calls.Load() != 3 {
		t.Errorf("endpoint called %d times, want 3", calls.Load())
	}
}

func TestCall_RefreshesExpiredTokenOnce(t *testing.T) {
	var calls atomic.Int32
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") == "Bearer t-1" {
			writeEnvelope(w, CodeTenantTokenInvalid, "Invalid access token for authorization", nil)
			return
		}
		writeEnvelope(w, 0, "ok", map[string]any{"chat_id": "oc_1", "name": "ops"})
	})
	client := newTestClient(ls.URL)

	chat, err := client.Chats().Get(context.Background(), &ChatIDRequest{ChatID: "oc_1"})
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if chat.ChatID != "oc_1" {
		t.Errorf("ChatID = %q", chat.ChatID)
	}
	if n := ls.tenantFetches.Load(); n != 2 {
		t.Errorf("tenant token fetched %d times, want 2", n)
	}
	if calls.Load() != 2 {
		t.Errorf("endpoint called %d times, want 2", calls.Load())
	}
}

func TestCall_SecondExpiryIsReturned(t *testing.T) {
	var calls atomic.Int32
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("X-Tt-Logid", "log-expired")
		writeEnvelope(w, CodeTenantTokenInvalid, "Invalid access token for authorization", nil)
	})
	client := newTestClient(ls.URL)

	_, err := client.Chats().Get(context.Background(), &ChatIDRequest{ChatID: "oc_1"})
	if !IsTokenExpired(err) {
		t.Fatalf("expected token expired error, got %v", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.LogID != "log-expired" {
		t.Errorf("LogID = %q", apiErr.LogID)
	}
	if calls.Load() != 2 {
		t.Errorf("endpoint called %d times, want exactly 2", calls.Load())
	}
}

func TestCall_ExpiredTokenOnHTTPError(t *testing.T) {
	var calls atomic.Int32
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":99991663,"msg":"Invalid access token for authorization"}`))
			return
		}
		writeEnvelope(w, 0, "ok", nil)
	})
	client := newTestClient(ls.URL)

	if err := client.Chats().Delete(context.Background(), &ChatIDRequest{ChatID: "oc_1"}); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("endpoint called %d times, want 2", calls.Load())
	}
}

func TestCall_ConcurrentCallsShareOneTokenFetch(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 0, "ok", map[string]any{"items": []any{}})
	})
	client := newTestClient(ls.URL)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Chats().List(context.Background(), &ListChatsRequest{}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("List() error: %v", err)
	}
	if n := ls.tenantFetches.Load(); n != 1 {
		t.Errorf("tenant token fetched %d times, want 1", n)
	}
}

func TestCall_PrefersUserToken(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer u-abc" {
			t.Errorf("Authorization = %q, want user token", got)
		}
		writeEnvelope(w, 0, "ok", map[string]any{"items": []any{}})
	})
	client := newTestClient(ls.URL)

	if _, err := client.Calendar().ListCalendars(context.Background(), &ListCalendarsRequest{}, WithUserAccessToken("u-abc")); err != nil {
		t.Fatalf("ListCalendars() error: %v", err)
	}
	if n := ls.tenantFetches.Load(); n != 0 {
		t.Errorf("tenant token fetched %d times, want 0", n)
	}
}

func TestCall_TenantOnlyEndpointIgnoresUserToken(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer t-1" {
			t.Errorf("Authorization = %q, want tenant token", got)
		}
		writeEnvelope(w, 0, "ok", map[string]any{"user_list": []any{}})
	})
	client := newTestClient(ls.URL)

	req := &BatchGetUserIDRequest{Emails: []string{"a@example.com"}}
	if _, err := client.Contacts().BatchGetUserID(context.Background(), req, WithUserAccessToken("u-abc")); err != nil {
		t.Fatalf("BatchGetUserID() error: %v", err)
	}
}

func TestCall_UserTokenExpiryIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEnvelope(w, CodeUserTokenExpired, "user access token expired", nil)
	})
	client := newTestClient(ls.URL)

	_, err := client.Calendar().ListCalendars(context.Background(), &ListCalendarsRequest{}, WithUserAccessToken("u-old"))
	if !IsTokenExpired(err) {
		t.Fatalf("expected token expired error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("endpoint called %d times, want 1", calls.Load())
	}
}

func TestCall_UserTokenSource(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer u-src" {
			t.Errorf("Authorization = %q", got)
		}
		writeEnvelope(w, 0, "ok", map[string]any{"name": "Ada", "open_id": "ou_1"})
	})
	client := newTestClient(ls.URL)

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "u-src"})
	info, err := client.Authen().GetUserInfo(context.Background(), WithUserTokenSource(src))
	if err != nil {
		t.Fatalf("GetUserInfo() error: %v", err)
	}
	if info.OpenID != "ou_1" {
		t.Errorf("OpenID = %q", info.OpenID)
	}
}

func TestCall_UserOnlyEndpointWithoutUserToken(t *testing.T) {
	var calls atomic.Int32
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	client := newTestClient(ls.URL)

	_, err := client.Authen().GetUserInfo(context.Background())
	if !IsAuthError(err) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if calls.Load() != 0 || ls.tenantFetches.Load() != 0 {
		t.Error("no request should be sent without a user token")
	}
}

func TestCall_AppTokenEndpoint(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer a-1" {
			t.Errorf("Authorization = %q, want app token", got)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["code"] != "auth-code" || body["grant_type"] != "authorization_code" {
			t.Errorf("unexpected body %v", body)
		}
		writeEnvelope(w, 0, "ok", map[string]any{"access_token": "u-new", "refresh_token": "r-new", "expires_in": 7200})
	})
	client := newTestClient(ls.URL)

	tok, err := client.Authen().GetUserAccessToken(context.Background(), &UserAccessTokenRequest{
		GrantType: "authorization_code",
		Code:      "auth-code",
	})
	if err != nil {
		t.Fatalf("GetUserAccessToken() error: %v", err)
	}
	if tok.AccessToken != "u-new" || tok.RefreshToken != "r-new" {
		t.Errorf("unexpected token %+v", tok)
	}
}

func TestCall_HelpdeskHeader(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		want := base64.StdEncoding.EncodeToString([]byte("hd-1:hd-secret"))
		if got := r.Header.Get("X-Lark-Helpdesk-Authorization"); got != want {
			t.Errorf("helpdesk header = %q, want %q", got, want)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer t-1" {
			t.Errorf("Authorization = %q", got)
		}
		writeEnvelope(w, 0, "ok", map[string]any{"ticket": map[string]any{"ticket_id": "6626871355780366331", "status": 1}})
	})
	client := newTestClient(ls.URL)
	client.SetHelpdesk("hd-1", "hd-secret")

	resp, err := client.Helpdesk().GetTicket(context.Background(), &TicketIDRequest{TicketID: "6626871355780366331"})
	if err != nil {
		t.Fatalf("GetTicket() error: %v", err)
	}
	if resp.Ticket.Status != TicketStatusProcessing {
		t.Errorf("Status = %d", resp.Ticket.Status)
	}
}

func TestCall_HelpdeskWithoutCredentials(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})
	client := newTestClient(ls.URL)

	_, err := client.Helpdesk().ListFAQs(context.Background(), &ListFAQsRequest{})
	if !IsAuthError(err) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestCall_ValidationFailsBeforeNetwork(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})
	client := newTestClient(ls.URL)

	_, err := client.Messages().Send(context.Background(), &SendMessageRequest{
		ReceiveIDType: "nickname",
		ReceiveID:     "ou_1",
		MsgType:       MsgTypeText,
		Content:       "not json",
	})
	if !IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "POST /open-apis/im/v1/messages") {
		t.Errorf("error should name the endpoint: %v", err)
	}
	if ls.tenantFetches.Load() != 0 {
		t.Error("no token should be fetched for an invalid request")
	}
}

func TestCall_DotSegmentPathParamRejected(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request should not be sent, got %s", r.URL.Path)
	})
	client := newTestClient(ls.URL)

	_, err := client.Chats().Get(context.Background(), &ChatIDRequest{ChatID: ".."})
	if !IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !errors.Is(err, errInvalidPathParam) {
		t.Errorf("error should wrap errInvalidPathParam: %v", err)
	}
}

func TestCall_SendFillsUUID(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("receive_id_type"); got != IDTypeChatID {
			t.Errorf("receive_id_type = %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["uuid"] != "uuid-1" {
			t.Errorf("uuid = %v", body["uuid"])
		}
		if _, ok := body["receive_id_type"]; ok {
			t.Error("query parameter leaked into the body")
		}
		writeEnvelope(w, 0, "ok", map[string]any{"message_id": "om_1", "msg_type": "text"})
	})
	client := newTestClient(ls.URL)
	client.newUUID = func() string { return "uuid-1" }

	req := &SendMessageRequest{
		ReceiveIDType: IDTypeChatID,
		ReceiveID:     "oc_1",
		MsgType:       MsgTypeText,
		Content:       TextContent("hello"),
	}
	msg, err := client.Messages().Send(context.Background(), req)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if msg.MessageID != "om_1" {
		t.Errorf("MessageID = %q", msg.MessageID)
	}
	if req.UUID != "uuid-1" {
		t.Errorf("request UUID = %q", req.UUID)
	}
}

func TestCall_SendRetriedOnRateLimitWithUUID(t *testing.T) {
	var calls atomic.Int32
	var uuids sync.Map
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		uuids.Store(body["uuid"], true)
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeEnvelope(w, 0, "ok", map[string]any{"message_id": "om_1"})
	})
	client := newTestClient(ls.URL)
	client.RetryConfig.RateLimitBaseDelay = 0

	_, err := client.Messages().Send(context.Background(), &SendMessageRequest{
		ReceiveIDType: IDTypeOpenID,
		ReceiveID:     "ou_1",
		MsgType:       MsgTypeText,
		Content:       TextContent("hi"),
	})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("endpoint called %d times, want 2", calls.Load())
	}
	n := 0
	uuids.Range(func(_, _ any) bool { n++; return true })
	if n != 1 {
		t.Errorf("retries should reuse one uuid, saw %d", n)
	}
}

func TestCall_EnvelopeErrorOnSuccessStatus(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tt-Logid", "log-230002")
		writeEnvelope(w, 230002, "Bot/User can NOT be out of the chat.", nil)
	})
	client := newTestClient(ls.URL)

	_, err := client.Chats().ListMembers(context.Background(), &ListChatMembersRequest{ChatID: "oc_1"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Code != 230002 || apiErr.StatusCode != http.StatusOK || apiErr.LogID != "log-230002" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}

func TestCall_PathAndQuery(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/open-apis/contact/v3/departments/od%2Fsales/children" {
			t.Errorf("path = %q", r.URL.EscapedPath())
		}
		q := r.URL.Query()
		if q.Get("page_size") != "20" || q.Get("fetch_child") != "false" {
			t.Errorf("query = %v", q)
		}
		if q.Has("page_token") || q.Has("user_id_type") {
			t.Errorf("zero-valued parameters should be omitted: %v", q)
		}
		writeEnvelope(w, 0, "ok", map[string]any{"items": []any{map[string]any{"name": "Sales"}}, "has_more": false})
	})
	client := newTestClient(ls.URL)

	fetchChild := false
	resp, err := client.Contacts().ListDepartmentChildren(context.Background(), &ListDepartmentChildrenRequest{
		DepartmentID: "od/sales",
		FetchChild:   &fetchChild,
		PageSize:     20,
	})
	if err != nil {
		t.Fatalf("ListDepartmentChildren() error: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Name != "Sales" {
		t.Errorf("unexpected items %+v", resp.Items)
	}
}

func TestCall_QueryValuesPercentEncoded(t *testing.T) {
	const keyword = "a b&c=d/é"
	const pageToken = "tok+/="

	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/open-apis/im/v1/chats/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if want := "page_token=tok%2B%2F%3D&query=a+b%26c%3Dd%2F%C3%A9"; r.URL.RawQuery != want {
			t.Errorf("RawQuery = %q, want %q", r.URL.RawQuery, want)
		}
		q := r.URL.Query()
		if q.Get("query") != keyword || q.Get("page_token") != pageToken {
			t.Errorf("decoded query = %v", q)
		}
		if q.Has("user_id_type") || q.Has("page_size") {
			t.Errorf("unset parameters should be omitted: %v", q)
		}
		writeEnvelope(w, 0, "ok", map[string]any{"items": []any{}, "has_more": false})
	})
	client := newTestClient(ls.URL)

	if _, err := client.Chats().Search(context.Background(), &SearchChatsRequest{
		Query:     keyword,
		PageToken: pageToken,
	}); err != nil {
		t.Fatalf("Search() error: %v", err)
	}
}

func TestCall_DownloadFile(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "file" {
			t.Errorf("type = %q", r.URL.Query().Get("type"))
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.7"))
	})
	client := newTestClient(ls.URL)

	f, err := client.Messages().GetResource(context.Background(), &GetMessageResourceRequest{
		MessageID: "om_1",
		FileKey:   "file_v2_1",
		Type:      "file",
	})
	if err != nil {
		t.Fatalf("GetResource() error: %v", err)
	}
	if f.Name != "report.pdf" || f.ContentType != "application/pdf" || string(f.Data) != "%PDF-1.7" {
		t.Errorf("unexpected file %+v", f)
	}
}

func TestCall_DownloadErrorEnvelope(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 234001, "Invalid request param.", nil)
	})
	client := newTestClient(ls.URL)

	_, err := client.Images().Download(context.Background(), &ImageKeyRequest{ImageKey: "img_1"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 234001 {
		t.Fatalf("expected APIError 234001, got %v", err)
	}
}

func TestCall_MultipartUpload(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("image_type"); got != "message" {
			t.Errorf("image_type = %q", got)
		}
		f, hdr, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer func() { _ = f.Close() }()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "cat.png" || string(data) != "png-bytes" {
			t.Errorf("unexpected file %q %q", hdr.Filename, data)
		}
		writeEnvelope(w, 0, "ok", map[string]any{"image_key": "img_v2_1"})
	})
	client := newTestClient(ls.URL)

	resp, err := client.Images().Upload(context.Background(), &UploadImageRequest{
		ImageType: "message",
		Image:     &FormFile{Name: "cat.png", ContentType: "image/png", Data: []byte("png-bytes")},
	})
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if resp.ImageKey != "img_v2_1" {
		t.Errorf("ImageKey = %q", resp.ImageKey)
	}
}

func TestCall_CallOptions(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Request-Source"); got != "cli" {
			t.Errorf("X-Request-Source = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer t-1" {
			t.Errorf("Authorization must not be overridable, got %q", got)
		}
		time.Sleep(50 * time.Millisecond)
		writeEnvelope(w, 0, "ok", nil)
	})
	client := newTestClient(ls.URL)

	err := client.Chats().Delete(context.Background(), &ChatIDRequest{ChatID: "oc_1"},
		WithHeader("X-Request-Source", "cli"),
		WithHeader("Authorization", "Bearer forged"),
	)
	if err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	err = client.Chats().Delete(context.Background(), &ChatIDRequest{ChatID: "oc_1"},
		WithHeader("X-Request-Source", "cli"),
		WithTimeout(5*time.Millisecond),
	)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestCall_MissingAppCredentials(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})
	client := newTestClient(ls.URL)
	client.AppSecret = ""

	_, err := client.Chats().List(context.Background(), &ListChatsRequest{})
	if !IsAuthError(err) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestCall_TokenEndpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != testTenantTokenPath {
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
		writeJSON(w, map[string]any{"code": CodeInvalidAppCredentials, "msg": "app secret invalid"})
	}))
	defer server.Close()
	client := newTestClient(server.URL)

	_, err := client.Chats().List(context.Background(), &ListChatsRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != CodeInvalidAppCredentials {
		t.Fatalf("expected APIError %d, got %v", CodeInvalidAppCredentials, err)
	}
}
