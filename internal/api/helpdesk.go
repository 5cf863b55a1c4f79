package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Ticket statuses.
const (
	TicketStatusProcessing = 1
	TicketStatusReplied    = 2
	TicketStatusClosed     = 50
)

// HelpdeskUser is a guest, agent or closer on a ticket.
type HelpdeskUser struct {
	ID        string `json:"id"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
}

// Ticket is a helpdesk conversation.
type Ticket struct {
	TicketID      string         `json:"ticket_id"`
	HelpdeskID    string         `json:"helpdesk_id"`
	Guest         *HelpdeskUser  `json:"guest,omitempty"`
	Comments      any            `json:"comments,omitempty"`
	TicketType    int            `json:"ticket_type"`
	Status        int            `json:"status"`
	Score         int            `json:"score"`
	CreatedAt     int64          `json:"created_at"`
	UpdatedAt     int64          `json:"updated_at"`
	ClosedAt      int64          `json:"closed_at"`
	Agents        []HelpdeskUser `json:"agents,omitempty"`
	Channel       int            `json:"channel"`
	Solve         int            `json:"solve"`
	ClosedBy      *HelpdeskUser  `json:"closed_by,omitempty"`
	Collaborators []HelpdeskUser `json:"collaborators,omitempty"`
	ChatID        string         `json:"chat_id,omitempty"`
}

// TicketIDRequest addresses one ticket.
type TicketIDRequest struct {
	TicketID string `path:"ticket_id" json:"-"`
}

func (r *TicketIDRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TicketID, validation.Required),
	)
}

// GetTicketResponse wraps a ticket.
type GetTicketResponse struct {
	Ticket Ticket `json:"ticket"`
}

// ListTicketsRequest filters tickets. Page is 1-based.
type ListTicketsRequest struct {
	TicketID        string   `query:"ticket_id" json:"-"`
	AgentID         string   `query:"agent_id" json:"-"`
	ClosedByID      string   `query:"closed_by_id" json:"-"`
	Type            int      `query:"type" json:"-"`
	Channel         int      `query:"channel" json:"-"`
	Solved          int      `query:"solved" json:"-"`
	Score           int      `query:"score" json:"-"`
	StatusList      []int    `query:"status_list" json:"-"`
	GuestName       string   `query:"guest_name" json:"-"`
	GuestID         string   `query:"guest_id" json:"-"`
	Tags            []string `query:"tags" json:"-"`
	Page            int      `query:"page" json:"-"`
	PageSize        int      `query:"page_size" json:"-"`
	CreateTimeStart int64    `query:"create_time_start" json:"-"`
	CreateTimeEnd   int64    `query:"create_time_end" json:"-"`
	UpdateTimeStart int64    `query:"update_time_start" json:"-"`
	UpdateTimeEnd   int64    `query:"update_time_end" json:"-"`
}

func (r *ListTicketsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PageSize, validation.Max(200)),
	)
}

// ListTicketsResponse is one page of tickets.
type ListTicketsResponse struct {
	Total   int      `json:"total"`
	Tickets []Ticket `json:"tickets"`
}

// UpdateTicketRequest changes ticket state.
type UpdateTicketRequest struct {
	TicketID   string   `path:"ticket_id" json:"-"`
	Status     int      `json:"status,omitempty"`
	TagNames   []string `json:"tag_names,omitempty"`
	Comment    string   `json:"comment,omitempty"`
	TicketType int      `json:"ticket_type,omitempty"`
	Solved     int      `json:"solved,omitempty"`
	Channel    int      `json:"channel,omitempty"`
}

func (r *UpdateTicketRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TicketID, validation.Required),
		validation.Field(&r.Status, validation.In(TicketStatusProcessing, TicketStatusReplied, TicketStatusClosed)),
	)
}

// ListTicketMessagesRequest pages through a ticket's messages.
type ListTicketMessagesRequest struct {
	TicketID  string `path:"ticket_id" json:"-"`
	TimeStart int64  `query:"time_start" json:"-"`
	TimeEnd   int64  `query:"time_end" json:"-"`
	Page      int    `query:"page" json:"-"`
	PageSize  int    `query:"page_size" json:"-"`
}

func (r *ListTicketMessagesRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TicketID, validation.Required),
	)
}

// TicketMessage is one message in a ticket.
type TicketMessage struct {
	ID          string `json:"id"`
	MessageID   string `json:"message_id"`
	MessageType string `json:"message_type"`
	CreatedAt   int64  `json:"created_at"`
	Content     string `json:"content"`
	UserName    string `json:"user_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	UserID      string `json:"user_id"`
}

// ListTicketMessagesResponse is one page of ticket messages.
type ListTicketMessagesResponse struct {
	Messages []TicketMessage `json:"messages"`
	Total    int             `json:"total"`
}

// SendTicketMessageRequest replies to a ticket as the helpdesk.
type SendTicketMessageRequest struct {
	TicketID string         `path:"ticket_id" json:"-"`
	MsgType  string         `json:"msg_type"`
	Content  map[string]any `json:"content"`
}

func (r *SendTicketMessageRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TicketID, validation.Required),
		validation.Field(&r.MsgType, validation.Required, validation.In(MsgTypeText, MsgTypePost)),
		validation.Field(&r.Content, validation.Required),
	)
}

// SendTicketMessageResponse carries the new message ID.
type SendTicketMessageResponse struct {
	MessageID string `json:"message_id"`
}

// ListFAQsRequest searches the helpdesk knowledge base.
type ListFAQsRequest struct {
	ID         string `query:"id" json:"-"`
	CategoryID string `query:"category_id" json:"-"`
	Search     string `query:"search" json:"-"`
	PageToken  string `query:"page_token" json:"-"`
	PageSize   int    `query:"page_size" json:"-"`
}

// FAQ is a knowledge base entry.
type FAQ struct {
	FAQID      string   `json:"faq_id"`
	ID         string   `json:"id"`
	HelpdeskID string   `json:"helpdesk_id"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Tags       []string `json:"tags,omitempty"`
	CreateTime int64    `json:"create_time"`
	UpdateTime int64    `json:"update_time"`
	Categories any      `json:"categories,omitempty"`
	CreateUser any      `json:"create_user,omitempty"`
	UpdateUser any      `json:"update_user,omitempty"`
}

// ListFAQsResponse is one page of FAQs.
type ListFAQsResponse struct {
	HasMore   bool   `json:"has_more"`
	PageToken string `json:"page_token"`
	PageSize  int    `json:"page_size"`
	Total     int    `json:"total"`
	Items     []FAQ  `json:"items"`
}
