package api

import (
	"fmt"
	"hash/adler32"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxUploadAllSize is the largest file UploadAll accepts; larger files need
// the chunked upload flow.
const MaxUploadAllSize = 20 << 20

// RootFolderMeta identifies the caller's "My Space" root folder.
type RootFolderMeta struct {
	Token  string `json:"token"`
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// DriveFile is an entry in a folder listing.
type DriveFile struct {
	Token        string `json:"token"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	ParentToken  string `json:"parent_token"`
	URL          string `json:"url"`
	CreatedTime  string `json:"created_time,omitempty"`
	ModifiedTime string `json:"modified_time,omitempty"`
	OwnerID      string `json:"owner_id,omitempty"`
}

// ListDriveFilesRequest lists a folder; an empty FolderToken lists the root.
type ListDriveFilesRequest struct {
	FolderToken string `query:"folder_token" json:"-"`
	PageSize    int    `query:"page_size" json:"-"`
	PageToken   string `query:"page_token" json:"-"`
	OrderBy     string `query:"order_by" json:"-"`
	Direction   string `query:"direction" json:"-"`
	UserIDType  string `query:"user_id_type" json:"-"`
}

func (r *ListDriveFilesRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PageSize, validation.Max(200)),
		validation.Field(&r.Direction, validation.In("ASC", "DESC")),
	)
}

// ListDriveFilesResponse is one page of a folder listing.
type ListDriveFilesResponse struct {
	Files         []DriveFile `json:"files"`
	NextPageToken string      `json:"next_page_token"`
	HasMore       bool        `json:"has_more"`
}

// CreateFolderRequest creates Name under FolderToken.
type CreateFolderRequest struct {
	Name        string `json:"name"`
	FolderToken string `json:"folder_token"`
}

func (r *CreateFolderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 256)),
		validation.Field(&r.FolderToken, validation.Required),
	)
}

// CreateFolderResponse carries the new folder's token and URL.
type CreateFolderResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// UploadAllRequest uploads a whole file (up to MaxUploadAllSize) into a
// folder. Size and Checksum are derived from File by NewUploadAllRequest.
type UploadAllRequest struct {
	FileName   string    `form:"file_name" json:"-"`
	ParentType string    `form:"parent_type" json:"-"`
	ParentNode string    `form:"parent_node" json:"-"`
	Size       int       `form:"size" json:"-"`
	Checksum   string    `form:"checksum" json:"-"`
	File       *FormFile `form:"file" json:"-"`
}

// NewUploadAllRequest prepares an upload of file into folderToken.
func NewUploadAllRequest(folderToken string, file *FormFile) *UploadAllRequest {
	return &UploadAllRequest{
		FileName:   file.Name,
		ParentType: "explorer",
		ParentNode: folderToken,
		Size:       file.Size(),
		Checksum:   strconv.FormatUint(uint64(adler32.Checksum(file.Data)), 10),
		File:       file,
	}
}

func (r *UploadAllRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.FileName, validation.Required),
		validation.Field(&r.ParentType, validation.Required),
		validation.Field(&r.ParentNode, validation.Required),
		validation.Field(&r.File, validation.Required),
	); err != nil {
		return err
	}
	if r.File.Size() > MaxUploadAllSize {
		return fmt.Errorf("file is %d bytes, larger than the %d byte upload limit", r.File.Size(), MaxUploadAllSize)
	}
	if r.Size != r.File.Size() {
		return fmt.Errorf("size %d does not match file length %d", r.Size, r.File.Size())
	}
	return nil
}

// UploadAllResponse carries the uploaded file's token.
type UploadAllResponse struct {
	FileToken string `json:"file_token"`
}

// DriveFileTokenRequest addresses one drive file.
type DriveFileTokenRequest struct {
	FileToken string `path:"file_token" json:"-"`
}

func (r *DriveFileTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FileToken, validation.Required),
	)
}

// DeleteDriveFileRequest deletes a file or folder. Type is the object kind
// (file, docx, sheet, bitable, folder, ...).
type DeleteDriveFileRequest struct {
	FileToken string `path:"file_token" json:"-"`
	Type      string `query:"type" json:"-"`
}

func (r *DeleteDriveFileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FileToken, validation.Required),
		validation.Field(&r.Type, validation.Required),
	)
}

// DeleteDriveFileResponse carries the async task ID for folder deletes.
type DeleteDriveFileResponse struct {
	TaskID string `json:"task_id,omitempty"`
}
