package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/cleo/internal/auth"
	"github.com/joestump/cleo/internal/routes"
	"github.com/joestump/cleo/internal/store"
)

// fieldsAPIHandler serves extra content fields, the key/value pairs attached
// to a post. Every route checks the caller owns the post.
type fieldsAPIHandler struct {
	posts  *store.PostStore
	fields *store.FieldStore
	logger *zap.Logger
}

func registerFieldRoutes(r chi.Router, h *fieldsAPIHandler) {
	r.Post(routes.ECFCreate, h.Create)
	r.Post(routes.ECFDelete, h.Delete)
	r.Post(routes.ECFEditKey, h.EditKey)
	r.Post(routes.ECFEditValue, h.EditValue)
}

// Create attaches a field to one of the caller's posts.
//
// @Summary      Create a content field
// @Tags         ECF
// @Accept       json
// @Produce      json
// @Param        body  body      CreateFieldRequest  true  "Post id, key and value"
// @Success      200   {object}  FieldResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /ecf/create [post]
func (h *fieldsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	var req CreateFieldRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := require("content_id", req.ContentID, "field_key", req.FieldKey); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	p, err := ownedPost(r.Context(), h.posts, user, req.ContentID)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	f, err := h.fields.Create(r.Context(), p.ID, req.FieldKey, req.FieldValue)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toFieldResponse(f))
}

// EditKey renames a field.
//
// @Summary      Rename a content field
// @Tags         ECF
// @Accept       json
// @Produce      json
// @Param        body  body      EditFieldRequest  true  "Post id, field id and new key"
// @Success      200   {object}  StatusResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /ecf/edit/key [post]
func (h *fieldsAPIHandler) EditKey(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, true)
}

// EditValue replaces a field's value. An empty value is allowed.
//
// @Summary      Change a content field value
// @Tags         ECF
// @Accept       json
// @Produce      json
// @Param        body  body      EditFieldRequest  true  "Post id, field id and new value"
// @Success      200   {object}  StatusResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /ecf/edit/value [post]
func (h *fieldsAPIHandler) EditValue(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, false)
}

func (h *fieldsAPIHandler) edit(w http.ResponseWriter, r *http.Request, key bool) {
	user := auth.UserFromContext(r.Context())
	var req EditFieldRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := require("content_id", req.ContentID, "field_id", req.FieldID); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if key && req.NewValue == "" {
		fail(w, r, h.logger, badRequest("new_value is required"))
		return
	}
	p, err := ownedPost(r.Context(), h.posts, user, req.ContentID)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if _, err := h.fields.Get(r.Context(), p.ID, req.FieldID); err != nil {
		fail(w, r, h.logger, err)
		return
	}

	if key {
		err = h.fields.UpdateKey(r.Context(), p.ID, req.FieldID, req.NewValue)
	} else {
		err = h.fields.UpdateValue(r.Context(), p.ID, req.FieldID, req.NewValue)
	}
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	writeOK(w)
}

// Delete removes a field from one of the caller's posts.
//
// @Summary      Delete a content field
// @Tags         ECF
// @Accept       json
// @Produce      json
// @Param        body  body      DeleteFieldRequest  true  "Post id and field id"
// @Success      200   {object}  StatusResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /ecf/delete [post]
func (h *fieldsAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	var req DeleteFieldRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := require("content_id", req.ContentID, "field_id", req.FieldID); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	p, err := ownedPost(r.Context(), h.posts, user, req.ContentID)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := h.fields.Delete(r.Context(), p.ID, req.FieldID); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	writeOK(w)
}
