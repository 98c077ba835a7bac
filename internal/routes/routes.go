// Package routes is the public URL contract of the Cleo API: every path,
// the HTTP method it answers, and the category it is documented under.
package routes

import "net/http"

// Admin
const (
	InstanceAdmins           = "/instance/admins"
	InstanceUsers            = "/instance/users"
	InstanceEditName         = "/instance/edit/name"
	InstanceEditHostname     = "/instance/edit/hostname"
	InstanceEditSMTPServer   = "/instance/edit/smtp/server"
	InstanceEditSMTPUsername = "/instance/edit/smtp/username"
	InstanceEditSMTPPass     = "/instance/edit/smtp/pass"
)

// ECF
const (
	ECFCreate    = "/ecf/create"
	ECFDelete    = "/ecf/delete"
	ECFEditKey   = "/ecf/edit/key"
	ECFEditValue = "/ecf/edit/value"
)

// Email
const (
	EmailVerify = "/email/{token}"
)

// Files
const (
	FilesCreate = "/files/create"
	FilesDelete = "/files/delete"
	FilesServe  = "/files/serve/{filename}"
	FilesAll    = "/files/all"
)

// Keys
const (
	KeysCreate = "/keys/create"
	KeysDelete = "/keys/delete"
	KeysAll    = "/keys/all"
)

// Posts
const (
	PostsCreate = "/posts/create"
	PostsUpdate = "/posts/update"
	PostsDelete = "/posts/delete"
	PostsAll    = "/posts/all"
)

// API Tokens
const (
	TokenCreate = "/token/create"
	TokenDelete = "/token/delete"
)

// Users
const (
	UserCreate         = "/user/create"
	UserDelete         = "/user/delete"
	UserUpdatePassword = "/user/update/password"
	UserUpdatePicture  = "/user/update/picture"
	UserUpdateEmail    = "/user/update/email"
	UserUpdateName     = "/user/update/name"
	UserUpdateUsername = "/user/update/username"
)

// Operational endpoints outside the API categories.
const (
	InstanceInfo = "/instance/info"
	Healthz      = "/healthz"
	Metrics      = "/metrics"
	Swagger      = "/swagger/*"
)

// Category groups routes for documentation.
type Category string

const (
	CategoryAdmin     Category = "Admin"
	CategoryECF       Category = "ECF"
	CategoryEmail     Category = "Email"
	CategoryFiles     Category = "Files"
	CategoryGeneral   Category = "General"
	CategoryKeys      Category = "Keys"
	CategoryPosts     Category = "Posts"
	CategoryAPITokens Category = "API Tokens"
	CategoryUsers     Category = "Users"
	CategoryOps       Category = "Operations"
)

// Route is one entry of the routing contract.
type Route struct {
	Category Category
	Method   string
	Path     string
}

// Table lists every API route once. /posts/all and /files/all are listed
// under Posts and Files; General lists them again in Categories.
var Table = []Route{
	{CategoryAdmin, http.MethodPost, InstanceAdmins},
	{CategoryAdmin, http.MethodPost, InstanceUsers},
	{CategoryAdmin, http.MethodPost, InstanceEditName},
	{CategoryAdmin, http.MethodPost, InstanceEditHostname},
	{CategoryAdmin, http.MethodPost, InstanceEditSMTPServer},
	{CategoryAdmin, http.MethodPost, InstanceEditSMTPUsername},
	{CategoryAdmin, http.MethodPost, InstanceEditSMTPPass},

	{CategoryECF, http.MethodPost, ECFCreate},
	{CategoryECF, http.MethodPost, ECFDelete},
	{CategoryECF, http.MethodPost, ECFEditKey},
	{CategoryECF, http.MethodPost, ECFEditValue},

	{CategoryEmail, http.MethodGet, EmailVerify},

	{CategoryFiles, http.MethodPost, FilesCreate},
	{CategoryFiles, http.MethodPost, FilesDelete},
	{CategoryFiles, http.MethodGet, FilesServe},
	{CategoryFiles, http.MethodPost, FilesAll},

	{CategoryKeys, http.MethodPost, KeysCreate},
	{CategoryKeys, http.MethodPost, KeysDelete},
	{CategoryKeys, http.MethodPost, KeysAll},

	{CategoryPosts, http.MethodPost, PostsCreate},
	{CategoryPosts, http.MethodPost, PostsUpdate},
	{CategoryPosts, http.MethodPost, PostsDelete},
	{CategoryPosts, http.MethodPost, PostsAll},

	{CategoryAPITokens, http.MethodPost, TokenCreate},
	{CategoryAPITokens, http.MethodPost, TokenDelete},

	{CategoryUsers, http.MethodPost, UserCreate},
	{CategoryUsers, http.MethodPost, UserDelete},
	{CategoryUsers, http.MethodPost, UserUpdatePassword},
	{CategoryUsers, http.MethodPost, UserUpdatePicture},
	{CategoryUsers, http.MethodPost, UserUpdateEmail},
	{CategoryUsers, http.MethodPost, UserUpdateName},
	{CategoryUsers, http.MethodPost, UserUpdateUsername},
}

// Operational lists the endpoints served next to the API.
var Operational = []Route{
	{CategoryOps, http.MethodGet, InstanceInfo},
	{CategoryOps, http.MethodGet, Healthz},
	{CategoryOps, http.MethodGet, Metrics},
	{CategoryOps, http.MethodGet, Swagger},
}

// Categories maps each documentation category to its paths, including
// General, which shares /posts/all and /files/all with Posts and Files.
func Categories() map[Category][]string {
	out := make(map[Category][]string)
	for _, r := range Table {
		out[r.Category] = append(out[r.Category], r.Path)
	}
	out[CategoryGeneral] = []string{PostsAll, FilesAll}
	return out
}
