package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/cleo/internal/auth"
	"github.com/joestump/cleo/internal/metrics"
	"github.com/joestump/cleo/internal/routes"
	"github.com/joestump/cleo/internal/store"
)

// postsAPIHandler serves the caller's pages and posts.
type postsAPIHandler struct {
	posts  *store.PostStore
	fields *store.FieldStore
	logger *zap.Logger
}

func registerPostRoutes(r chi.Router, h *postsAPIHandler) {
	r.Post(routes.PostsCreate, h.Create)
	r.Post(routes.PostsUpdate, h.Update)
	r.Post(routes.PostsDelete, h.Delete)
	r.Post(routes.PostsAll, h.List)
}

// ownedPost loads a post and checks the caller authored it.
func ownedPost(ctx context.Context, posts *store.PostStore, user *store.User, id string) (*store.Post, error) {
	p, err := posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != user.ID {
		return nil, errForbidden
	}
	return p, nil
}

// Create stores a page or post for the caller.
//
// @Summary      Create a post
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Param        body  body      CreatePostRequest  true  "content_type is page or post"
// @Success      200   {object}  PostResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /posts/create [post]
func (h *postsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	var req CreatePostRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	ct, err := store.NormalizeContentType(req.ContentType)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	p, err := h.posts.Create(r.Context(), user.ID, ct, req.ContentText)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	metrics.PostsCreatedTotal.WithLabelValues(ct).Inc()
	writeJSON(w, http.StatusOK, toPostResponse(p))
}

// Update replaces the text of one of the caller's posts.
//
// @Summary      Update a post
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Param        body  body      UpdatePostRequest  true  "Post id and new text"
// @Success      200   {object}  StatusResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /posts/update [post]
func (h *postsAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	var req UpdatePostRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := require("content_id", req.ContentID); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	p, err := ownedPost(r.Context(), h.posts, user, req.ContentID)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := h.posts.UpdateText(r.Context(), p.ID, req.Text); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	writeOK(w)
}

// Delete removes one of the caller's posts and its content fields.
//
// @Summary      Delete a post
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Param        body  body      DeletePostRequest  true  "Post id"
// @Success      200   {object}  StatusResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /posts/delete [post]
func (h *postsAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	var req DeletePostRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := require("content_id", req.ContentID); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	p, err := ownedPost(r.Context(), h.posts, user, req.ContentID)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := h.posts.Delete(r.Context(), p.ID); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	writeOK(w)
}

// List returns the caller's posts with their content fields.
//
// @Summary      List posts
// @Tags         Posts,General
// @Accept       json
// @Produce      json
// @Param        body  body      TokenOnlyRequest  true  "api_token"
// @Success      200   {object}  PostListResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /posts/all [post]
func (h *postsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	posts, err := h.posts.ListByUser(r.Context(), user.ID)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	fields, err := h.fields.ListByPosts(r.Context(), ids)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	resp := &PostListResponse{Posts: make([]*PostResponse, 0, len(posts))}
	for _, p := range posts {
		pr := toPostResponse(p)
		for _, f := range fields[p.ID] {
			pr.Fields = append(pr.Fields, toFieldResponse(f))
		}
		resp.Posts = append(resp.Posts, pr)
	}
	writeJSON(w, http.StatusOK, resp)
}
