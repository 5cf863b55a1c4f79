package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ID types accepted by user_id_type / member_id_type / receive_id_type.
const (
	IDTypeOpenID  = "open_id"
	IDTypeUnionID = "union_id"
	IDTypeUserID  = "user_id"
	IDTypeEmail   = "email"
	IDTypeChatID  = "chat_id"
)

// UserStatus is the account state of a user.
type UserStatus struct {
	IsFrozen    bool `json:"is_frozen"`
	IsResigned  bool `json:"is_resigned"`
	IsActivated bool `json:"is_activated"`
	IsExited    bool `json:"is_exited"`
	IsUnjoin    bool `json:"is_unjoin"`
}

// User is a member of the tenant's directory.
type User struct {
	UnionID       string      `json:"union_id"`
	UserID        string      `json:"user_id"`
	OpenID        string      `json:"open_id"`
	Name          string      `json:"name"`
	EnName        string      `json:"en_name,omitempty"`
	Nickname      string      `json:"nickname,omitempty"`
	Email         string      `json:"email,omitempty"`
	Mobile        string      `json:"mobile,omitempty"`
	Gender        int         `json:"gender,omitempty"`
	Status        *UserStatus `json:"status,omitempty"`
	DepartmentIDs []string    `json:"department_ids,omitempty"`
	LeaderUserID  string      `json:"leader_user_id,omitempty"`
	City          string      `json:"city,omitempty"`
	Country       string      `json:"country,omitempty"`
	JobTitle      string      `json:"job_title,omitempty"`
	EmployeeNo    string      `json:"employee_no,omitempty"`
	EmployeeType  int         `json:"employee_type,omitempty"`
	IsTenantMgr   bool        `json:"is_tenant_manager,omitempty"`
}

// GetUserRequest fetches one user.
type GetUserRequest struct {
	UserID           string `path:"user_id" json:"-"`
	UserIDType       string `query:"user_id_type" json:"-"`
	DepartmentIDType string `query:"department_id_type" json:"-"`
}

func (r *GetUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required),
	)
}

// GetUserResponse wraps a user.
type GetUserResponse struct {
	User User `json:"user"`
}

// ListUsersByDepartmentRequest pages through direct members of a department.
// DepartmentID "0" is the tenant root.
type ListUsersByDepartmentRequest struct {
	DepartmentID     string `query:"department_id" json:"-"`
	UserIDType       string `query:"user_id_type" json:"-"`
	DepartmentIDType string `query:"department_id_type" json:"-"`
	PageSize         int    `query:"page_size" json:"-"`
	PageToken        string `query:"page_token" json:"-"`
}

func (r *ListUsersByDepartmentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DepartmentID, validation.Required),
		validation.Field(&r.PageSize, validation.Max(50)),
	)
}

// ListUsersResponse is one page of users.
type ListUsersResponse struct {
	HasMore   bool   `json:"has_more"`
	PageToken string `json:"page_token"`
	Items     []User `json:"items"`
}

// BatchGetUserIDRequest resolves emails and mobiles to user IDs.
type BatchGetUserIDRequest struct {
	UserIDType      string   `query:"user_id_type" json:"-"`
	Emails          []string `json:"emails,omitempty"`
	Mobiles         []string `json:"mobiles,omitempty"`
	IncludeResigned bool     `json:"include_resigned,omitempty"`
}

func (r *BatchGetUserIDRequest) Validate() error {
	if len(r.Emails) == 0 && len(r.Mobiles) == 0 {
		return validation.NewError("validation_lookup_required", "at least one email or mobile is required")
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Emails, validation.Length(0, 50)),
		validation.Field(&r.Mobiles, validation.Length(0, 50)),
	)
}

// UserContactInfo maps a lookup key to a user ID. UserID is empty when no
// user matched.
type UserContactInfo struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
}

// BatchGetUserIDResponse lists the matches in request order.
type BatchGetUserIDResponse struct {
	UserList []UserContactInfo `json:"user_list"`
}

// Department is a node of the organization tree.
type Department struct {
	Name               string `json:"name"`
	I18nName           any    `json:"i18n_name,omitempty"`
	ParentDepartmentID string `json:"parent_department_id"`
	DepartmentID       string `json:"department_id"`
	OpenDepartmentID   string `json:"open_department_id"`
	LeaderUserID       string `json:"leader_user_id,omitempty"`
	ChatID             string `json:"chat_id,omitempty"`
	Order              string `json:"order,omitempty"`
	MemberCount        int    `json:"member_count,omitempty"`
}

// GetDepartmentRequest fetches one department.
type GetDepartmentRequest struct {
	DepartmentID     string `path:"department_id" json:"-"`
	UserIDType       string `query:"user_id_type" json:"-"`
	DepartmentIDType string `query:"department_id_type" json:"-"`
}

func (r *GetDepartmentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DepartmentID, validation.Required),
	)
}

// GetDepartmentResponse wraps a department.
type GetDepartmentResponse struct {
	Department Department `json:"department"`
}

// ListDepartmentChildrenRequest pages through sub-departments. FetchChild
// walks the whole subtree instead of one level.
type ListDepartmentChildrenRequest struct {
	DepartmentID     string `path:"department_id" json:"-"`
	UserIDType       string `query:"user_id_type" json:"-"`
	DepartmentIDType string `query:"department_id_type" json:"-"`
	FetchChild       *bool  `query:"fetch_child" json:"-"`
	PageSize         int    `query:"page_size" json:"-"`
	PageToken        string `query:"page_token" json:"-"`
}

func (r *ListDepartmentChildrenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DepartmentID, validation.Required),
	)
}

// ListDepartmentsResponse is one page of departments.
type ListDepartmentsResponse struct {
	HasMore   bool         `json:"has_more"`
	PageToken string       `json:"page_token"`
	Items     []Department `json:"items"`
}
