package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/joestump/cleo/internal/auth"
	"github.com/joestump/cleo/internal/metrics"
	"github.com/joestump/cleo/internal/routes"
	"github.com/joestump/cleo/internal/storage"
	"github.com/joestump/cleo/internal/store"
)

// usersAPIHandler serves account signup, deletion and profile updates.
type usersAPIHandler struct {
	db      *sqlx.DB
	users   *store.UserStore
	files   *store.FileStore
	storage storage.System
	authn   *auth.Authenticator
	verify  *verifier
	logger  *zap.Logger
}

// registerAccountRoutes registers the routes that authenticate with a
// signup key or username and password.
func registerAccountRoutes(r chi.Router, h *usersAPIHandler) {
	r.Post(routes.UserCreate, h.Create)
	r.Post(routes.UserDelete, h.Delete)
}

// registerProfileRoutes registers the api_token authenticated profile updates.
func registerProfileRoutes(r chi.Router, h *usersAPIHandler) {
	r.Post(routes.UserUpdatePassword, h.UpdatePassword)
	r.Post(routes.UserUpdatePicture, h.UpdatePicture)
	r.Post(routes.UserUpdateEmail, h.UpdateEmail)
	r.Post(routes.UserUpdateName, h.UpdateName)
	r.Post(routes.UserUpdateUsername, h.UpdateUsername)
}

// Create signs a user up with a key an admin issued for their username and
// mails a verification link. Nothing is stored unless the email is sent.
//
// @Summary      Create an account
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body  body      CreateUserRequest  true  "New account"
// @Success      200   {object}  UserCreatedResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /user/create [post]
func (h *usersAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.EmailAddr = strings.TrimSpace(req.EmailAddr)
	if err := require("username", req.Username, "password", req.Password,
		"email_addr", req.EmailAddr, "user_key", req.UserKey); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := store.ValidateUsername(req.Username); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := store.ValidateEmail(req.EmailAddr); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = req.Username
	}

	var created *store.User
	err = store.WithTx(r.Context(), h.db, func(tx *sqlx.Tx) error {
		key, err := store.NewKeyStore(tx).Consume(r.Context(), req.UserKey, req.Username)
		if err != nil {
			return err
		}
		u, err := store.NewUserStore(tx).Create(r.Context(), store.NewUser{
			Username:     req.Username,
			DisplayName:  displayName,
			Email:        req.EmailAddr,
			PasswordHash: hash,
			PictureURL:   req.PfpURL,
			IsAdmin:      key.IsAdmin(),
		})
		if err != nil {
			return err
		}
		if err := h.verify.issue(r.Context(), tx, u.ID, u.Email); err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	metrics.UsersCreatedTotal.Inc()
	h.logger.Info("user created", zap.String("user_id", created.ID), zap.Bool("admin", created.IsAdmin))
	writeJSON(w, http.StatusOK, &UserCreatedResponse{
		UserResponse:     *toUserResponse(created),
		KeyStatusUpdated: true,
	})
}

// Delete removes the account identified by username and password along
// with everything it owns, including uploaded file bytes.
//
// @Summary      Delete an account
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body  body      CredentialsRequest  true  "Account credentials"
// @Success      200   {object}  StatusResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /user/delete [post]
func (h *usersAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := require("username", req.Username, "password", req.Password); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	user, err := h.authn.Credentials(r.Context(), req.Username, req.Password)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	owned, err := h.files.ListByUser(r.Context(), user.ID)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	err = store.WithTx(r.Context(), h.db, func(tx *sqlx.Tx) error {
		return store.NewUserStore(tx).Delete(r.Context(), user.ID)
	})
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	for _, f := range owned {
		if err := h.storage.Delete(r.Context(), f.StorageKey); err != nil {
			h.logger.Warn("orphaned file blob", zap.String("key", f.StorageKey), zap.Error(err))
		}
	}
	h.logger.Info("user deleted", zap.String("user_id", user.ID), zap.Int("files", len(owned)))
	writeOK(w)
}

// UpdatePassword replaces the caller's password.
//
// @Summary      Change password
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body  body      ChangeRequest  true  "api_token and new password"
// @Success      200   {object}  StatusResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /user/update/password [post]
func (h *usersAPIHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, req, ok := h.change(w, r)
	if !ok {
		return
	}
	hash, err := auth.HashPassword(req.NewValue)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := h.users.UpdatePasswordHash(r.Context(), user.ID, hash); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	writeOK(w)
}

// UpdatePicture sets the caller's profile picture URL.
//
// @Summary      Change profile picture
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body  body      ChangeRequest  true  "api_token and picture URL"
// @Success      200   {object}  StatusResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /user/update/picture [post]
func (h *usersAPIHandler) UpdatePicture(w http.ResponseWriter, r *http.Request) {
	user, req, ok := h.change(w, r)
	if !ok {
		return
	}
	if err := h.users.UpdatePicture(r.Context(), user.ID, strings.TrimSpace(req.NewValue)); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	writeOK(w)
}

// UpdateEmail changes the caller's address. The account becomes unverified
// and a link is mailed to the new address; if it cannot be sent the old
// address is kept.
//
// @Summary      Change email address
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body  body      ChangeRequest  true  "api_token and new address"
// @Success      200   {object}  StatusResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /user/update/email [post]
func (h *usersAPIHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	user, req, ok := h.change(w, r)
	if !ok {
		return
	}
	addr := strings.TrimSpace(req.NewValue)
	if err := store.ValidateEmail(addr); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	err := store.WithTx(r.Context(), h.db, func(tx *sqlx.Tx) error {
		if err := store.NewUserStore(tx).UpdateEmail(r.Context(), user.ID, addr); err != nil {
			return err
		}
		return h.verify.issue(r.Context(), tx, user.ID, addr)
	})
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	writeOK(w)
}

// UpdateName sets the caller's display name.
//
// @Summary      Change display name
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body  body      ChangeRequest  true  "api_token and display name"
// @Success      200   {object}  StatusResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /user/update/name [post]
func (h *usersAPIHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	user, req, ok := h.change(w, r)
	if !ok {
		return
	}
	if err := h.users.UpdateDisplayName(r.Context(), user.ID, strings.TrimSpace(req.NewValue)); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	writeOK(w)
}

// UpdateUsername renames the caller.
//
// @Summary      Change username
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body  body      ChangeRequest  true  "api_token and username"
// @Success      200   {object}  StatusResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /user/update/username [post]
func (h *usersAPIHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	user, req, ok := h.change(w, r)
	if !ok {
		return
	}
	username := strings.TrimSpace(req.NewValue)
	if err := store.ValidateUsername(username); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := h.users.UpdateUsername(r.Context(), user.ID, username); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	writeOK(w)
}

// change decodes a ChangeRequest with a non-empty new_value for the
// authenticated caller. It writes the error response itself.
func (h *usersAPIHandler) change(w http.ResponseWriter, r *http.Request) (*store.User, *ChangeRequest, bool) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		fail(w, r, h.logger, auth.ErrUnauthorized)
		return nil, nil, false
	}
	var req ChangeRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, h.logger, err)
		return nil, nil, false
	}
	if err := require("new_value", req.NewValue); err != nil {
		fail(w, r, h.logger, err)
		return nil, nil, false
	}
	return user, &req, true
}
