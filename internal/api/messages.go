package api

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Message types.
const (
	MsgTypeText        = "text"
	MsgTypePost        = "post"
	MsgTypeImage       = "image"
	MsgTypeFile        = "file"
	MsgTypeAudio       = "audio"
	MsgTypeMedia       = "media"
	MsgTypeSticker     = "sticker"
	MsgTypeInteractive = "interactive"
	MsgTypeShareChat   = "share_chat"
	MsgTypeShareUser   = "share_user"
)

var msgTypes = []any{
	MsgTypeText, MsgTypePost, MsgTypeImage, MsgTypeFile, MsgTypeAudio,
	MsgTypeMedia, MsgTypeSticker, MsgTypeInteractive, MsgTypeShareChat, MsgTypeShareUser,
}

// TextContent returns the content string for a text message.
func TextContent(text string) string {
	data, _ := json.Marshal(map[string]string{"text": text})
	return string(data)
}

// ImageContent returns the content string for an image message.
func ImageContent(imageKey string) string {
	data, _ := json.Marshal(map[string]string{"image_key": imageKey})
	return string(data)
}

// FileContent returns the content string for a file message.
func FileContent(fileKey string) string {
	data, _ := json.Marshal(map[string]string{"file_key": fileKey})
	return string(data)
}

// MessageBody holds a message's serialized content.
type MessageBody struct {
	Content string `json:"content"`
}

// Sender identifies who sent a message.
type Sender struct {
	ID         string `json:"id"`
	IDType     string `json:"id_type"`
	SenderType string `json:"sender_type"`
	TenantKey  string `json:"tenant_key,omitempty"`
}

// Mention is an @-mention inside a message.
type Mention struct {
	Key       string `json:"key"`
	ID        string `json:"id"`
	IDType    string `json:"id_type"`
	Name      string `json:"name"`
	TenantKey string `json:"tenant_key,omitempty"`
}

// Message is an IM message.
type Message struct {
	MessageID      string       `json:"message_id"`
	RootID         string       `json:"root_id,omitempty"`
	ParentID       string       `json:"parent_id,omitempty"`
	ThreadID       string       `json:"thread_id,omitempty"`
	MsgType        string       `json:"msg_type"`
	CreateTime     string       `json:"create_time"`
	UpdateTime     string       `json:"update_time"`
	Deleted        bool         `json:"deleted"`
	Updated        bool         `json:"updated"`
	ChatID         string       `json:"chat_id"`
	Sender         *Sender      `json:"sender,omitempty"`
	Body           *MessageBody `json:"body,omitempty"`
	Mentions       []Mention    `json:"mentions,omitempty"`
	UpperMessageID string       `json:"upper_message_id,omitempty"`
}

// SendMessageRequest sends a message to a user or chat identified by
// ReceiveID interpreted per ReceiveIDType. Content is the JSON-encoded
// payload for MsgType. UUID is filled automatically when empty so a retried
// send is delivered once.
type SendMessageRequest struct {
	ReceiveIDType string `query:"receive_id_type" json:"-"`
	ReceiveID     string `json:"receive_id"`
	MsgType       string `json:"msg_type"`
	Content       string `json:"content"`
	UUID          string `json:"uuid,omitempty"`
}

func (r *SendMessageRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ReceiveIDType, validation.Required,
			validation.In(IDTypeOpenID, IDTypeUnionID, IDTypeUserID, IDTypeEmail, IDTypeChatID)),
		validation.Field(&r.ReceiveID, validation.Required),
		validation.Field(&r.MsgType, validation.Required, validation.In(msgTypes...)),
		validation.Field(&r.Content, validation.Required, validation.By(jsonString)),
	)
}

func (r *SendMessageRequest) fillUUID(newUUID func() string) {
	if r.UUID == "" {
		r.UUID = newUUID()
	}
}

// ReplyMessageRequest replies to MessageID in the same chat.
type ReplyMessageRequest struct {
	MessageID     string `path:"message_id" json:"-"`
	MsgType       string `json:"msg_type"`
	Content       string `json:"content"`
	ReplyInThread bool   `json:"reply_in_thread,omitempty"`
	UUID          string `json:"uuid,omitempty"`
}

func (r *ReplyMessageRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.MessageID, validation.Required),
		validation.Field(&r.MsgType, validation.Required, validation.In(msgTypes...)),
		validation.Field(&r.Content, validation.Required, validation.By(jsonString)),
	)
}

func (r *ReplyMessageRequest) fillUUID(newUUID func() string) {
	if r.UUID == "" {
		r.UUID = newUUID()
	}
}

func jsonString(value any) error {
	s, _ := value.(string)
	if s == "" || json.Valid([]byte(s)) {
		return nil
	}
	return validation.NewError("validation_not_json", "must be a JSON-encoded string")
}

// MessageIDRequest addresses one message.
type MessageIDRequest struct {
	MessageID string `path:"message_id" json:"-"`
}

func (r *MessageIDRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.MessageID, validation.Required),
	)
}

// GetMessageResponse holds the message and, for merged forwards, its parts.
type GetMessageResponse struct {
	Items []Message `json:"items"`
}

// ListMessagesRequest pages through a chat's history. StartTime and EndTime
// are epoch seconds.
type ListMessagesRequest struct {
	ContainerIDType string `query:"container_id_type" json:"-"`
	ContainerID     string `query:"container_id" json:"-"`
	StartTime       string `query:"start_time" json:"-"`
	EndTime         string `query:"end_time" json:"-"`
	SortType        string `query:"sort_type" json:"-"`
	PageSize        int    `query:"page_size" json:"-"`
	PageToken       string `query:"page_token" json:"-"`
}

func (r *ListMessagesRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ContainerIDType, validation.Required, validation.In("chat", "thread")),
		validation.Field(&r.ContainerID, validation.Required),
		validation.Field(&r.PageSize, validation.Max(50)),
	)
}

// ListMessagesResponse is one page of messages.
type ListMessagesResponse struct {
	HasMore   bool      `json:"has_more"`
	PageToken string    `json:"page_token"`
	Items     []Message `json:"items"`
}

// GetMessageResourceRequest downloads an image, file, audio or video
// attached to a message. Type is "image" or "file".
type GetMessageResourceRequest struct {
	MessageID string `path:"message_id" json:"-"`
	FileKey   string `path:"file_key" json:"-"`
	Type      string `query:"type" json:"-"`
}

func (r *GetMessageResourceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.MessageID, validation.Required),
		validation.Field(&r.FileKey, validation.Required),
		validation.Field(&r.Type, validation.Required, validation.In("image", "file")),
	)
}

// LegacySendMessageRequest is the older positional form: exactly one of
// OpenID, UserID, Email or ChatID names the recipient, and Content (or Card
// for interactive messages) is an object rather than a string.
type LegacySendMessageRequest struct {
	OpenID  string         `json:"open_id,omitempty"`
	UserID  string         `json:"user_id,omitempty"`
	Email   string         `json:"email,omitempty"`
	ChatID  string         `json:"chat_id,omitempty"`
	RootID  string         `json:"root_id,omitempty"`
	MsgType string         `json:"msg_type"`
	Content map[string]any `json:"content,omitempty"`
	Card    map[string]any `json:"card,omitempty"`
}

func (r *LegacySendMessageRequest) Validate() error {
	n := 0
	for _, v := range []string{r.OpenID, r.UserID, r.Email, r.ChatID} {
		if v != "" {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("exactly one of open_id, user_id, email or chat_id is required, got %d", n)
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.MsgType, validation.Required, validation.In(msgTypes...)),
		validation.Field(&r.Content, validation.When(r.MsgType != MsgTypeInteractive, validation.Required)),
		validation.Field(&r.Card, validation.When(r.MsgType == MsgTypeInteractive, validation.Required)),
	)
}

// LegacySendMessageResponse carries the sent message ID.
type LegacySendMessageResponse struct {
	MessageID string `json:"message_id"`
}

// LegacyBatchSendMessageRequest fans one message out to departments and
// users.
type LegacyBatchSendMessageRequest struct {
	DepartmentIDs []string       `json:"department_ids,omitempty"`
	OpenIDs       []string       `json:"open_ids,omitempty"`
	UserIDs       []string       `json:"user_ids,omitempty"`
	MsgType       string         `json:"msg_type"`
	Content       map[string]any `json:"content,omitempty"`
	Card          map[string]any `json:"card,omitempty"`
}

func (r *LegacyBatchSendMessageRequest) Validate() error {
	if len(r.DepartmentIDs)+len(r.OpenIDs)+len(r.UserIDs) == 0 {
		return validation.NewError("validation_recipient_required", "at least one department, open_id or user_id is required")
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.MsgType, validation.Required, validation.In(msgTypes...)),
		validation.Field(&r.Content, validation.When(r.MsgType != MsgTypeInteractive, validation.Required)),
		validation.Field(&r.Card, validation.When(r.MsgType == MsgTypeInteractive, validation.Required)),
	)
}

// LegacyBatchSendMessageResponse reports the batch message ID and recipients
// that were rejected.
type LegacyBatchSendMessageResponse struct {
	MessageID            string   `json:"message_id"`
	InvalidDepartmentIDs []string `json:"invalid_department_ids,omitempty"`
	InvalidOpenIDs       []string `json:"invalid_open_ids,omitempty"`
	InvalidUserIDs       []string `json:"invalid_user_ids,omitempty"`
}

// UploadImageRequest uploads an image for use in messages. ImageType is
// "message" or "avatar".
type UploadImageRequest struct {
	ImageType string    `form:"image_type" json:"-"`
	Image     *FormFile `form:"image" json:"-"`
}

func (r *UploadImageRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ImageType, validation.Required, validation.In("message", "avatar")),
		validation.Field(&r.Image, validation.Required),
	)
}

// UploadImageResponse carries the image key.
type UploadImageResponse struct {
	ImageKey string `json:"image_key"`
}

// ImageKeyRequest addresses an uploaded image.
type ImageKeyRequest struct {
	ImageKey string `path:"image_key" json:"-"`
}

func (r *ImageKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ImageKey, validation.Required),
	)
}

// UploadFileRequest uploads a file for use in messages. FileType is one of
// opus, mp4, pdf, doc, xls, ppt or stream. Duration is in milliseconds for
// audio and video.
type UploadFileRequest struct {
	FileType string    `form:"file_type" json:"-"`
	FileName string    `form:"file_name" json:"-"`
	Duration int       `form:"duration" json:"-"`
	File     *FormFile `form:"file" json:"-"`
}

func (r *UploadFileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FileType, validation.Required,
			validation.In("opus", "mp4", "pdf", "doc", "xls", "ppt", "stream")),
		validation.Field(&r.FileName, validation.Required),
		validation.Field(&r.File, validation.Required),
	)
}

// UploadFileResponse carries the file key.
type UploadFileResponse struct {
	FileKey string `json:"file_key"`
}
