package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/cleo/internal/auth"
	"github.com/joestump/cleo/internal/routes"
	"github.com/joestump/cleo/internal/store"
)

// tokensAPIHandler issues and revokes API tokens. Both routes authenticate
// with username and password, since the caller may not hold a token yet.
type tokensAPIHandler struct {
	authn  *auth.Authenticator
	tokens auth.TokenStore
	logger *zap.Logger
}

func registerTokenRoutes(r chi.Router, h *tokensAPIHandler) {
	r.Post(routes.TokenCreate, h.Create)
	r.Post(routes.TokenDelete, h.Delete)
}

// Create generates a new token and returns the plaintext once. Only its
// hash is stored.
//
// @Summary      Create an API token
// @Tags         API Tokens
// @Accept       json
// @Produce      json
// @Param        body  body      CredentialsRequest  true  "Account credentials"
// @Success      200   {object}  TokenCreatedResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /token/create [post]
func (h *tokensAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	plaintext, hash, err := auth.GenerateToken()
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	rec, err := h.tokens.Create(r.Context(), user.ID, hash)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, &TokenCreatedResponse{TokenID: rec.ID, Token: plaintext})
}

// Delete revokes one of the caller's tokens. Tokens owned by someone else
// answer 404, the same as unknown ones.
//
// @Summary      Delete an API token
// @Tags         API Tokens
// @Accept       json
// @Produce      json
// @Param        body  body      DeleteTokenRequest  true  "Token plaintext and account credentials"
// @Success      200   {object}  StatusResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /token/delete [post]
func (h *tokensAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteTokenRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := require("token", req.Token, "username", req.Username, "password", req.Password); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	user, err := h.authn.Credentials(r.Context(), req.Username, req.Password)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	rec, err := h.tokens.GetByHash(r.Context(), auth.HashToken(req.Token))
	if err == nil {
		err = h.tokens.Delete(r.Context(), rec.ID, user.ID)
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
		return
	}
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	writeOK(w)
}
