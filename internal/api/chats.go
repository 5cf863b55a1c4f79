package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Chat is a group chat as returned by list and search.
type Chat struct {
	ChatID      string `json:"chat_id"`
	Avatar      string `json:"avatar,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"`
	OwnerIDType string `json:"owner_id_type,omitempty"`
	External    bool   `json:"external"`
	TenantKey   string `json:"tenant_key,omitempty"`
	ChatStatus  string `json:"chat_status,omitempty"`
}

// ChatInfo is the detailed view of one chat.
type ChatInfo struct {
	ChatID                 string `json:"chat_id,omitempty"`
	Avatar                 string `json:"avatar,omitempty"`
	Name                   string `json:"name"`
	Description            string `json:"description,omitempty"`
	OwnerID                string `json:"owner_id,omitempty"`
	OwnerIDType            string `json:"owner_id_type,omitempty"`
	ChatMode               string `json:"chat_mode,omitempty"`
	ChatType               string `json:"chat_type,omitempty"`
	External               bool   `json:"external"`
	TenantKey              string `json:"tenant_key,omitempty"`
	UserCount              string `json:"user_count,omitempty"`
	BotCount               string `json:"bot_count,omitempty"`
	AddMemberPermission    string `json:"add_member_permission,omitempty"`
	ShareCardPermission    string `json:"share_card_permission,omitempty"`
	MembershipApproval     string `json:"membership_approval,omitempty"`
	ModerationPermission   string `json:"moderation_permission,omitempty"`
	ChatTag                string `json:"chat_tag,omitempty"`
	ChatStatus             string `json:"chat_status,omitempty"`
	RestrictedModeSettings any    `json:"restricted_mode_setting,omitempty"`
}

// CreateChatRequest creates a group chat. UUID de-duplicates retries within
// an hour.
type CreateChatRequest struct {
	UserIDType    string   `query:"user_id_type" json:"-"`
	SetBotManager *bool    `query:"set_bot_manager" json:"-"`
	UUID          string   `query:"uuid" json:"-"`
	Avatar        string   `json:"avatar,omitempty"`
	Name          string   `json:"name,omitempty"`
	Description   string   `json:"description,omitempty"`
	OwnerID       string   `json:"owner_id,omitempty"`
	UserIDList    []string `json:"user_id_list,omitempty"`
	BotIDList     []string `json:"bot_id_list,omitempty"`
	ChatMode      string   `json:"chat_mode,omitempty"`
	ChatType      string   `json:"chat_type,omitempty"`
	External      *bool    `json:"external,omitempty"`
}

func (r *CreateChatRequest) fillUUID(newUUID func() string) {
	if r.UUID == "" {
		r.UUID = newUUID()
	}
}

// ListChatsRequest pages through chats the bot or user belongs to.
type ListChatsRequest struct {
	UserIDType string `query:"user_id_type" json:"-"`
	SortType   string `query:"sort_type" json:"-"`
	PageToken  string `query:"page_token" json:"-"`
	PageSize   int    `query:"page_size" json:"-"`
}

// ListChatsResponse is one page of chats.
type ListChatsResponse struct {
	Items     []Chat `json:"items"`
	PageToken string `json:"page_token"`
	HasMore   bool   `json:"has_more"`
}

// ChatIDRequest addresses one chat.
type ChatIDRequest struct {
	ChatID     string `path:"chat_id" json:"-"`
	UserIDType string `query:"user_id_type" json:"-"`
}

func (r *ChatIDRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ChatID, validation.Required),
	)
}

// UpdateChatRequest changes chat settings. Empty fields are left untouched.
type UpdateChatRequest struct {
	ChatID              string `path:"chat_id" json:"-"`
	UserIDType          string `query:"user_id_type" json:"-"`
	Avatar              string `json:"avatar,omitempty"`
	Name                string `json:"name,omitempty"`
	Description         string `json:"description,omitempty"`
	OwnerID             string `json:"owner_id,omitempty"`
	AddMemberPermission string `json:"add_member_permission,omitempty"`
	ShareCardPermission string `json:"share_card_permission,omitempty"`
	MembershipApproval  string `json:"membership_approval,omitempty"`
}

func (r *UpdateChatRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ChatID, validation.Required),
	)
}

// SearchChatsRequest finds chats visible to the caller by keyword.
type SearchChatsRequest struct {
	UserIDType string `query:"user_id_type" json:"-"`
	Query      string `query:"query" json:"-"`
	PageToken  string `query:"page_token" json:"-"`
	PageSize   int    `query:"page_size" json:"-"`
}

// AddChatMembersRequest invites users or bots into a chat.
type AddChatMembersRequest struct {
	ChatID       string   `path:"chat_id" json:"-"`
	MemberIDType string   `query:"member_id_type" json:"-"`
	SucceedType  int      `query:"succeed_type" json:"-"`
	IDList       []string `json:"id_list"`
}

func (r *AddChatMembersRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ChatID, validation.Required),
		validation.Field(&r.IDList, validation.Required, validation.Length(1, 50)),
	)
}

// AddChatMembersResponse reports IDs that could not be added.
type AddChatMembersResponse struct {
	InvalidIDList         []string `json:"invalid_id_list"`
	NotExistedIDList      []string `json:"not_existed_id_list"`
	PendingApprovalIDList []string `json:"pending_approval_id_list"`
}

// ListChatMembersRequest pages through the members of a chat.
type ListChatMembersRequest struct {
	ChatID       string `path:"chat_id" json:"-"`
	MemberIDType string `query:"member_id_type" json:"-"`
	PageSize     int    `query:"page_size" json:"-"`
	PageToken    string `query:"page_token" json:"-"`
}

func (r *ListChatMembersRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ChatID, validation.Required),
	)
}

// ChatMember is one member of a chat.
type ChatMember struct {
	MemberIDType string `json:"member_id_type"`
	MemberID     string `json:"member_id"`
	Name         string `json:"name"`
	TenantKey    string `json:"tenant_key"`
}

// ListChatMembersResponse is one page of members.
type ListChatMembersResponse struct {
	Items       []ChatMember `json:"items"`
	PageToken   string       `json:"page_token"`
	HasMore     bool         `json:"has_more"`
	MemberTotal int          `json:"member_total"`
}
