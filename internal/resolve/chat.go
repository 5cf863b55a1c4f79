package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/larkkit/lark-cli/internal/api"
)

// maxChatPages bounds how many pages of chats are scanned for a name.
const maxChatPages = 20

// ChatLister lists the chats the caller is a member of.
type ChatLister interface {
	List(ctx context.Context, req *api.ListChatsRequest, opts ...api.CallOption) (*api.ListChatsResponse, error)
}

// IsChatID reports whether s is already a chat ID.
func IsChatID(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "oc_")
}

// ChatID resolves query to a chat ID. Values that already look like chat
// IDs are returned unchanged; anything else is matched against the names of
// the chats visible to the caller.
func ChatID(ctx context.Context, chats ChatLister, query string, opts ...api.CallOption) (string, error) {
	query = strings.TrimSpace(query)
	if IsChatID(query) {
		return query, nil
	}
	if query == "" {
		return "", ErrEmptyQuery
	}

	var named []Named
	pageToken := ""
	for page := 0; page < maxChatPages; page++ {
		resp, err := chats.List(ctx, &api.ListChatsRequest{PageSize: 100, PageToken: pageToken}, opts...)
		if err != nil {
			return "", fmt.Errorf("list chats: %w", err)
		}
		for _, c := range resp.Items {
			named = append(named, Named{ID: c.ChatID, Name: c.Name})
		}
		if !resp.HasMore || resp.PageToken == "" {
			break
		}
		pageToken = resp.PageToken
	}

	id, err := FuzzyMatch(query, named)
	if err != nil {
		return "", fmt.Errorf("resolve chat %q: %w", query, err)
	}
	return id, nil
}
