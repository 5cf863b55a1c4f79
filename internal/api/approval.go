package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Approval instance states.
const (
	ApprovalStatusPending  = "PENDING"
	ApprovalStatusApproved = "APPROVED"
	ApprovalStatusRejected = "REJECTED"
	ApprovalStatusCanceled = "CANCELED"
	ApprovalStatusDeleted  = "DELETED"
)

// GetApprovalDefinitionRequest fetches an approval definition by code.
type GetApprovalDefinitionRequest struct {
	ApprovalCode string `path:"approval_code" json:"-"`
	Locale       string `query:"locale" json:"-"`
	UserIDType   string `query:"user_id_type" json:"-"`
}

func (r *GetApprovalDefinitionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ApprovalCode, validation.Required),
	)
}

// ApprovalNode is one step of an approval definition.
type ApprovalNode struct {
	Name         string `json:"name"`
	NeedApprover bool   `json:"need_approver"`
	NodeID       string `json:"node_id"`
	CustomNodeID string `json:"custom_node_id,omitempty"`
	NodeType     string `json:"node_type"`
}

// ApprovalDefinition describes an approval form and its flow.
type ApprovalDefinition struct {
	ApprovalName string         `json:"approval_name"`
	Status       string         `json:"status"`
	Form         string         `json:"form"`
	NodeList     []ApprovalNode `json:"node_list"`
}

// CreateApprovalInstanceRequest starts a workflow execution. Form is the
// JSON-encoded list of widget values.
type CreateApprovalInstanceRequest struct {
	ApprovalCode           string   `json:"approval_code"`
	UserID                 string   `json:"user_id,omitempty"`
	OpenID                 string   `json:"open_id,omitempty"`
	DepartmentID           string   `json:"department_id,omitempty"`
	Form                   string   `json:"form"`
	NodeApproverUserIDList []string `json:"node_approver_user_id_list,omitempty"`
	NodeCCUserIDList       []string `json:"node_cc_user_id_list,omitempty"`
	UUID                   string   `json:"uuid,omitempty"`
}

func (r *CreateApprovalInstanceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ApprovalCode, validation.Required),
		validation.Field(&r.Form, validation.Required),
		validation.Field(&r.OpenID, validation.When(r.UserID == "", validation.Required.Error("open_id or user_id is required"))),
	)
}

// CreateApprovalInstanceResponse carries the new instance code.
type CreateApprovalInstanceResponse struct {
	InstanceCode string `json:"instance_code"`
}

// GetApprovalInstanceRequest fetches one instance.
type GetApprovalInstanceRequest struct {
	InstanceID string `path:"instance_id" json:"-"`
	Locale     string `query:"locale" json:"-"`
	UserID     string `query:"user_id" json:"-"`
	UserIDType string `query:"user_id_type" json:"-"`
}

func (r *GetApprovalInstanceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.InstanceID, validation.Required),
	)
}

// ApprovalTask is a pending or completed approval step.
type ApprovalTask struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	OpenID    string `json:"open_id"`
	Status    string `json:"status"`
	NodeID    string `json:"node_id"`
	NodeName  string `json:"node_name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ApprovalComment is a comment on an instance.
type ApprovalComment struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	OpenID     string `json:"open_id"`
	Comment    string `json:"comment"`
	CreateTime string `json:"create_time"`
}

// ApprovalTimelineEvent records one state change of an instance.
type ApprovalTimelineEvent struct {
	Type       string `json:"type"`
	CreateTime string `json:"create_time"`
	UserID     string `json:"user_id"`
	OpenID     string `json:"open_id"`
	TaskID     string `json:"task_id,omitempty"`
	Comment    string `json:"comment,omitempty"`
	Ext        string `json:"ext,omitempty"`
}

// ApprovalInstance is a single workflow execution. Its state lives on the
// platform; this is a snapshot.
type ApprovalInstance struct {
	ApprovalCode string                  `json:"approval_code"`
	ApprovalName string                  `json:"approval_name"`
	InstanceCode string                  `json:"instance_code"`
	SerialNumber string                  `json:"serial_number"`
	Status       string                  `json:"status"`
	UserID       string                  `json:"user_id"`
	OpenID       string                  `json:"open_id"`
	DepartmentID string                  `json:"department_id"`
	StartTime    string                  `json:"start_time"`
	EndTime      string                  `json:"end_time"`
	UUID         string                  `json:"uuid"`
	Form         string                  `json:"form"`
	TaskList     []ApprovalTask          `json:"task_list"`
	CommentList  []ApprovalComment       `json:"comment_list"`
	Timeline     []ApprovalTimelineEvent `json:"timeline"`
}

// ListApprovalInstancesRequest pages through instance codes of a definition
// started within [StartTime, EndTime] (epoch milliseconds).
type ListApprovalInstancesRequest struct {
	ApprovalCode string `query:"approval_code" json:"-"`
	StartTime    string `query:"start_time" json:"-"`
	EndTime      string `query:"end_time" json:"-"`
	PageSize     int    `query:"page_size" json:"-"`
	PageToken    string `query:"page_token" json:"-"`
}

func (r *ListApprovalInstancesRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ApprovalCode, validation.Required),
		validation.Field(&r.StartTime, validation.Required),
		validation.Field(&r.EndTime, validation.Required),
		validation.Field(&r.PageSize, validation.Max(100)),
	)
}

// ListApprovalInstancesResponse is one page of instance codes.
type ListApprovalInstancesResponse struct {
	InstanceCodeList []string `json:"instance_code_list"`
	PageToken        string   `json:"page_token"`
	HasMore          bool     `json:"has_more"`
}

// CancelApprovalInstanceRequest withdraws an instance on behalf of its
// initiator.
type CancelApprovalInstanceRequest struct {
	UserIDType   string `query:"user_id_type" json:"-"`
	ApprovalCode string `json:"approval_code"`
	InstanceCode string `json:"instance_code"`
	UserID       string `json:"user_id"`
}

func (r *CancelApprovalInstanceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ApprovalCode, validation.Required),
		validation.Field(&r.InstanceCode, validation.Required),
		validation.Field(&r.UserID, validation.Required),
	)
}

// ApprovalTaskActionRequest approves or rejects a task.
type ApprovalTaskActionRequest struct {
	UserIDType   string `query:"user_id_type" json:"-"`
	ApprovalCode string `json:"approval_code"`
	InstanceCode string `json:"instance_code"`
	UserID       string `json:"user_id"`
	TaskID       string `json:"task_id"`
	Comment      string `json:"comment,omitempty"`
	Form         string `json:"form,omitempty"`
}

func (r *ApprovalTaskActionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ApprovalCode, validation.Required),
		validation.Field(&r.InstanceCode, validation.Required),
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.TaskID, validation.Required),
	)
}

// TransferApprovalTaskRequest hands a task to another approver.
type TransferApprovalTaskRequest struct {
	UserIDType     string `query:"user_id_type" json:"-"`
	ApprovalCode   string `json:"approval_code"`
	InstanceCode   string `json:"instance_code"`
	UserID         string `json:"user_id"`
	TaskID         string `json:"task_id"`
	Comment        string `json:"comment,omitempty"`
	TransferUserID string `json:"transfer_user_id"`
}

func (r *TransferApprovalTaskRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ApprovalCode, validation.Required),
		validation.Field(&r.InstanceCode, validation.Required),
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.TaskID, validation.Required),
		validation.Field(&r.TransferUserID, validation.Required),
	)
}

// AddApprovalCommentRequest comments on an instance.
type AddApprovalCommentRequest struct {
	InstanceID      string `path:"instance_id" json:"-"`
	UserIDType      string `query:"user_id_type" json:"-"`
	UserID          string `query:"user_id" json:"-"`
	Content         string `json:"content"`
	ParentCommentID string `json:"parent_comment_id,omitempty"`
	DisableBot      bool   `json:"disable_bot,omitempty"`
}

func (r *AddApprovalCommentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.InstanceID, validation.Required),
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Content, validation.Required),
	)
}

// AddApprovalCommentResponse carries the new comment ID.
type AddApprovalCommentResponse struct {
	CommentID string `json:"comment_id"`
}
