package api

import (
	"net/url"
	"time"

	"github.com/joestump/cleo/internal/routes"
	"github.com/joestump/cleo/internal/store"
)

// --- Request types ---

// TokenOnlyRequest is the body of list endpoints that only authenticate.
type TokenOnlyRequest struct {
	APIToken string `json:"api_token"`
}

// ChangeRequest is the body of every /user/update/* and /instance/edit/* route.
type ChangeRequest struct {
	APIToken string `json:"api_token"`
	NewValue string `json:"new_value"`
}

// CredentialsRequest is the body of /user/delete and /token/create.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// DeleteTokenRequest is the body of /token/delete.
type DeleteTokenRequest struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateUserRequest is the body of /user/create.
type CreateUserRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	EmailAddr   string `json:"email_addr"`
	PfpURL      string `json:"pfp_url"`
	UserKey     string `json:"user_key"`
}

// CreatePostRequest is the body of /posts/create.
type CreatePostRequest struct {
	APIToken    string `json:"api_token"`
	ContentType string `json:"content_type"`
	ContentText string `json:"content_text"`
}

// UpdatePostRequest is the body of /posts/update.
type UpdatePostRequest struct {
	APIToken  string `json:"api_token"`
	ContentID string `json:"content_id"`
	Text      string `json:"text"`
}

// DeletePostRequest is the body of /posts/delete.
type DeletePostRequest struct {
	APIToken  string `json:"api_token"`
	ContentID string `json:"content_id"`
}

// CreateFieldRequest is the body of /ecf/create.
type CreateFieldRequest struct {
	APIToken   string `json:"api_token"`
	ContentID  string `json:"content_id"`
	FieldKey   string `json:"field_key"`
	FieldValue string `json:"field_value"`
}

// EditFieldRequest is the body of /ecf/edit/key and /ecf/edit/value.
type EditFieldRequest struct {
	APIToken  string `json:"api_token"`
	ContentID string `json:"content_id"`
	FieldID   string `json:"field_id"`
	NewValue  string `json:"new_value"`
}

// DeleteFieldRequest is the body of /ecf/delete.
type DeleteFieldRequest struct {
	APIToken  string `json:"api_token"`
	ContentID string `json:"content_id"`
	FieldID   string `json:"field_id"`
}

// FileMetadata is the "json" part of a /files/create upload.
type FileMetadata struct {
	Name     string `json:"name"`
	APIToken string `json:"api_token"`
}

// DeleteFileRequest is the body of /files/delete.
type DeleteFileRequest struct {
	APIToken string `json:"api_token"`
	FileID   string `json:"file_id"`
}

// CreateKeyRequest is the body of /keys/create.
type CreateKeyRequest struct {
	APIToken string `json:"api_token"`
	KeyType  string `json:"key_type"`
	Username string `json:"username"`
}

// DeleteKeyRequest is the body of /keys/delete.
type DeleteKeyRequest struct {
	APIToken string `json:"api_token"`
	KeyID    string `json:"key_id"`
}

// --- Response types ---

// UserResponse is the public view of a user. It never carries the password hash.
type UserResponse struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	EmailAddr   string    `json:"email_addr"`
	PfpURL      string    `json:"pfp_url"`
	IsAdmin     bool      `json:"is_admin"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserCreatedResponse is returned by /user/create.
type UserCreatedResponse struct {
	UserResponse
	KeyStatusUpdated bool `json:"key_status_updated"`
}

// UserListResponse is returned by /instance/admins and /instance/users.
type UserListResponse struct {
	Users []*UserResponse `json:"users"`
}

// TokenCreatedResponse carries the plaintext token. It is shown only once.
type TokenCreatedResponse struct {
	TokenID string `json:"token_id"`
	Token   string `json:"token"`
}

// PostResponse is the JSON form of a post. Fields is only set by /posts/all.
type PostResponse struct {
	ContentID   string           `json:"content_id"`
	ContentType string           `json:"content_type"`
	UserID      string           `json:"user_id"`
	ContentText string           `json:"content_text"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Fields      []*FieldResponse `json:"fields,omitempty"`
}

// PostListResponse is returned by /posts/all.
type PostListResponse struct {
	Posts []*PostResponse `json:"posts"`
}

// FieldResponse is the JSON form of an extra content field.
type FieldResponse struct {
	FieldID    string `json:"field_id"`
	ContentID  string `json:"content_id"`
	FieldKey   string `json:"field_key"`
	FieldValue string `json:"field_value"`
}

// FileResponse describes an uploaded file and where it is served.
type FileResponse struct {
	UserID      string    `json:"user_id"`
	FileID      string    `json:"file_id"`
	FileName    string    `json:"file_name"`
	FileURL     string    `json:"file_url"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// FileListResponse is returned by /files/all.
type FileListResponse struct {
	Files []*FileResponse `json:"files"`
}

// KeyResponse describes a signup key.
type KeyResponse struct {
	KeyID     string    `json:"key_id"`
	KeyType   string    `json:"key_type"`
	UserKey   string    `json:"user_key"`
	Username  string    `json:"username"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// KeyListResponse is returned by /keys/all.
type KeyListResponse struct {
	Keys []*KeyResponse `json:"keys"`
}

// InstanceResponse is the public view of the instance settings.
type InstanceResponse struct {
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
}

func toUserResponse(u *store.User) *UserResponse {
	return &UserResponse{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		EmailAddr:   u.Email,
		PfpURL:      u.PictureURL,
		IsAdmin:     u.IsAdmin,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt,
	}
}

func toPostResponse(p *store.Post) *PostResponse {
	return &PostResponse{
		ContentID:   p.ID,
		ContentType: p.ContentType,
		UserID:      p.UserID,
		ContentText: p.ContentText,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toFieldResponse(f *store.Field) *FieldResponse {
	return &FieldResponse{
		FieldID:    f.ID,
		ContentID:  f.PostID,
		FieldKey:   f.Key,
		FieldValue: f.Value,
	}
}

// toFileResponse builds the absolute serve URL from the instance hostname.
func toFileResponse(f *store.File, hostname string) *FileResponse {
	return &FileResponse{
		UserID:      f.UserID,
		FileID:      f.ID,
		FileName:    f.Name,
		FileURL:     FileURL(hostname, f.Name),
		ContentType: f.ContentType,
		SizeBytes:   f.SizeBytes,
		CreatedAt:   f.CreatedAt,
	}
}

func toKeyResponse(k *store.Key) *KeyResponse {
	return &KeyResponse{
		KeyID:     k.ID,
		KeyType:   k.Type,
		UserKey:   k.Value,
		Username:  k.Username,
		Used:      k.Used,
		CreatedAt: k.CreatedAt,
	}
}

// FileURL is the public URL a file named name is served at.
func FileURL(hostname, name string) string {
	return hostname + servePrefix + url.PathEscape(name)
}

// servePrefix is FilesServe without its {filename} placeholder.
var servePrefix = routes.FilesServe[:len(routes.FilesServe)-len("{filename}")]
