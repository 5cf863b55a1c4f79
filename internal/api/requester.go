package api

import "context"

// PathResolver turns a vendor path into an absolute URL on the client's
// base URL.
type PathResolver interface {
	// url returns BaseURL joined with path.
	// Example: url("/open-apis/im/v1/chats") -> "https://open.feishu.cn/open-apis/im/v1/chats"
	url(path string) string
}

// Dispatcher executes one endpoint call.
//
// call validates req, renders the endpoint's path and query from req's
// tagged fields, attaches the credential the endpoint accepts, and decodes
// the data member of the response envelope into result. A stale cached
// token is refreshed and the call replayed at most once.
type Dispatcher interface {
	call(ctx context.Context, ep Endpoint, req any, result any, opts ...CallOption) error
}

// Requester combines PathResolver and Dispatcher to provide the complete
// request surface used by the generated endpoint helpers.
//
// Helpers take a Requester rather than *Client so they can be exercised
// against a fake:
//
//	type recordingRequester struct{ calls []Endpoint }
//	func (r *recordingRequester) url(p string) string { return "http://fake" + p }
//	func (r *recordingRequester) call(ctx context.Context, ep Endpoint, req, result any, opts ...CallOption) error {
//		r.calls = append(r.calls, ep)
//		return nil
//	}
type Requester interface {
	PathResolver
	Dispatcher
}
