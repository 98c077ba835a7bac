package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/cleo/internal/auth"
	"github.com/joestump/cleo/internal/routes"
	"github.com/joestump/cleo/internal/store"
)

// requireAdmin answers 403 unless the authenticated caller is an admin.
// It must run after auth.Authenticate.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
			return
		}
		if !user.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required", "FORBIDDEN")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// adminAPIHandler serves the user listings and instance settings. Admin-only.
type adminAPIHandler struct {
	users    *store.UserStore
	instance *store.InstanceStore
	logger   *zap.Logger
}

func registerAdminRoutes(r chi.Router, h *adminAPIHandler) {
	r.Post(routes.InstanceAdmins, h.Admins)
	r.Post(routes.InstanceUsers, h.Users)
	r.Post(routes.InstanceEditName, h.edit(store.InstanceName))
	r.Post(routes.InstanceEditHostname, h.edit(store.InstanceHostname))
	r.Post(routes.InstanceEditSMTPServer, h.edit(store.InstanceSMTPServer))
	r.Post(routes.InstanceEditSMTPUsername, h.edit(store.InstanceSMTPUsername))
	r.Post(routes.InstanceEditSMTPPass, h.edit(store.InstanceSMTPPass))
}

// Admins lists every admin account.
//
// @Summary      List admins
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        body  body      TokenOnlyRequest  true  "api_token"
// @Success      200   {object}  UserListResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /instance/admins [post]
func (h *adminAPIHandler) Admins(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// Users lists every non-admin account.
//
// @Summary      List users
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        body  body      TokenOnlyRequest  true  "api_token"
// @Success      200   {object}  UserListResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /instance/users [post]
func (h *adminAPIHandler) Users(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *adminAPIHandler) list(w http.ResponseWriter, r *http.Request, admins bool) {
	users, err := h.users.ListByAdmin(r.Context(), admins)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	resp := &UserListResponse{Users: make([]*UserResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

// edit returns the handler for one /instance/edit/* route.
//
// @Summary      Edit an instance setting
// @Description  hostname must be an absolute http or https URL. smtp/pass is stored untrimmed.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        body  body      ChangeRequest  true  "api_token and new value"
// @Success      200   {object}  StatusResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /instance/edit/name [post]
// @Router       /instance/edit/hostname [post]
// @Router       /instance/edit/smtp/server [post]
// @Router       /instance/edit/smtp/username [post]
// @Router       /instance/edit/smtp/pass [post]
func (h *adminAPIHandler) edit(field store.InstanceField) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChangeRequest
		if err := decode(r, &req); err != nil {
			fail(w, r, h.logger, err)
			return
		}
		value := req.NewValue
		if field != store.InstanceSMTPPass {
			value = strings.TrimSpace(value)
		}
		if err := require("new_value", value); err != nil {
			fail(w, r, h.logger, err)
			return
		}
		if field == store.InstanceHostname {
			value = strings.TrimRight(value, "/")
			u, err := url.Parse(value)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				fail(w, r, h.logger, badRequest("hostname must be an absolute http or https URL"))
				return
			}
		}

		if err := h.instance.Update(r.Context(), field, value); err != nil {
			fail(w, r, h.logger, err)
			return
		}
		h.logger.Info("instance setting changed",
			zap.String("field", string(field)),
			zap.String("by", auth.UserFromContext(r.Context()).ID),
		)
		writeOK(w)
	}
}
