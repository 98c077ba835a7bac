package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/cleo/internal/auth"
	"github.com/joestump/cleo/internal/routes"
	"github.com/joestump/cleo/internal/store"
)

// keysAPIHandler lets admins issue signup keys. Admin-only; see requireAdmin.
type keysAPIHandler struct {
	keys   *store.KeyStore
	logger *zap.Logger
}

func registerKeyRoutes(r chi.Router, h *keysAPIHandler) {
	r.Post(routes.KeysCreate, h.Create)
	r.Post(routes.KeysDelete, h.Delete)
	r.Post(routes.KeysAll, h.List)
}

// Create issues a key that lets username sign up once. Admin keys create
// admin accounts.
//
// @Summary      Issue a signup key
// @Tags         Keys
// @Accept       json
// @Produce      json
// @Param        body  body      CreateKeyRequest  true  "key_type is admin or normal"
// @Success      200   {object}  KeyResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /keys/create [post]
func (h *keysAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	var req CreateKeyRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	kt, err := store.NormalizeKeyType(req.KeyType)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	username := strings.TrimSpace(req.Username)
	if err := store.ValidateUsername(username); err != nil {
		fail(w, r, h.logger, err)
		return
	}

	value, err := auth.GenerateUserKey(kt)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	k, err := h.keys.Create(r.Context(), user.ID, value, kt, username)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	h.logger.Info("user key issued", zap.String("issuer_id", user.ID), zap.String("key_type", kt), zap.String("username", username))
	writeJSON(w, http.StatusOK, toKeyResponse(k))
}

// Delete withdraws a key. Any admin may delete any key.
//
// @Summary      Delete a signup key
// @Tags         Keys
// @Accept       json
// @Produce      json
// @Param        body  body      DeleteKeyRequest  true  "Key id"
// @Success      200   {object}  StatusResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /keys/delete [post]
func (h *keysAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	var req DeleteKeyRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := require("key_id", req.KeyID); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := h.keys.Delete(r.Context(), req.KeyID); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	h.logger.Info("user key deleted", zap.String("key_id", req.KeyID), zap.String("deleted_by", user.ID))
	writeOK(w)
}

// List returns the keys the caller issued, newest first.
//
// @Summary      List signup keys
// @Tags         Keys
// @Accept       json
// @Produce      json
// @Param        body  body      TokenOnlyRequest  true  "api_token"
// @Success      200   {object}  KeyListResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /keys/all [post]
func (h *keysAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	keys, err := h.keys.ListByIssuer(r.Context(), user.ID)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	resp := &KeyListResponse{Keys: make([]*KeyResponse, 0, len(keys))}
	for _, k := range keys {
		resp.Keys = append(resp.Keys, toKeyResponse(k))
	}
	writeJSON(w, http.StatusOK, resp)
}
