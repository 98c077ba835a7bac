package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/docker/go-units"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joestump/cleo/internal/auth"
	"github.com/joestump/cleo/internal/metrics"
	"github.com/joestump/cleo/internal/routes"
	"github.com/joestump/cleo/internal/storage"
	"github.com/joestump/cleo/internal/store"
)

// multipartOverhead is the allowance for the "json" part and multipart
// framing on top of the file size limit.
const multipartOverhead = 1 << 20

// multipartMemory is how much of an upload ParseMultipartForm keeps in
// memory before spilling to a temp file.
const multipartMemory = 8 << 20

// filesAPIHandler serves file uploads. Metadata lives in the files table;
// the bytes live in storage under a random key.
type filesAPIHandler struct {
	files     *store.FileStore
	instance  *store.InstanceStore
	storage   storage.System
	authn     *auth.Authenticator
	maxUpload int64
	logger    *zap.Logger
}

// registerFileRoutes registers the api_token authenticated JSON routes.
// /files/create and /files/serve/{filename} are mounted by NewRouter.
func registerFileRoutes(r chi.Router, h *filesAPIHandler) {
	r.Post(routes.FilesDelete, h.Delete)
	r.Post(routes.FilesAll, h.List)
}

// Create accepts a multipart upload with a "file" part and a "json" part
// carrying {"name", "api_token"}. The name defaults to the uploaded file name
// and must be unique across the instance, since it is the public URL.
//
// @Summary      Upload a file
// @Tags         Files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file    true  "File contents"
// @Param        json  formData  string  true  "{\"name\": \"...\", \"api_token\": \"...\"}"
// @Success      200   {object}  FileResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      413   {object}  ErrorResponse
// @Router       /files/create [post]
func (h *filesAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.tooLarge(w)
			return
		}
		fail(w, r, h.logger, badRequest("invalid multipart form"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var meta FileMetadata
	if err := json.Unmarshal([]byte(r.FormValue("json")), &meta); err != nil {
		fail(w, r, h.logger, badRequest("json part is required"))
		return
	}
	user, err := h.authn.User(r.Context(), meta.APIToken)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, r, h.logger, badRequest("file part is required"))
		return
	}
	defer file.Close()
	if header.Size > h.maxUpload {
		h.tooLarge(w)
		return
	}

	name := strings.TrimSpace(meta.Name)
	if name == "" {
		name = header.Filename
	}
	if err := store.ValidateFileName(name); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if _, err := h.files.GetByName(r.Context(), name); err == nil {
		fail(w, r, h.logger, store.ErrConflict)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		fail(w, r, h.logger, err)
		return
	}

	in, err := h.instance.Get(r.Context())
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	key := uuid.New().String()
	n, err := h.storage.Store(r.Context(), key, file)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	rec, err := h.files.Create(r.Context(), user.ID, name, key, contentType(name, header.Header.Get("Content-Type")), n)
	if err != nil {
		if derr := h.storage.Delete(r.Context(), key); derr != nil {
			h.logger.Warn("orphaned file blob", zap.String("key", key), zap.Error(derr))
		}
		fail(w, r, h.logger, err)
		return
	}

	metrics.FilesUploadedBytesTotal.Add(float64(n))
	h.logger.Info("file uploaded",
		zap.String("user_id", user.ID),
		zap.String("file_name", rec.Name),
		zap.String("size", units.HumanSize(float64(n))),
	)
	writeJSON(w, http.StatusOK, toFileResponse(rec, in.Hostname))
}

func (h *filesAPIHandler) tooLarge(w http.ResponseWriter) {
	writeError(w, http.StatusRequestEntityTooLarge,
		"file exceeds the "+units.HumanSize(float64(h.maxUpload))+" upload limit", "TOO_LARGE")
}

// contentType prefers the type the client declared, falling back to the
// file extension.
func contentType(name, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Serve streams a file by name. Files are public; Range and
// If-Modified-Since requests are honoured.
//
// @Summary      Download a file
// @Tags         Files
// @Produce      octet-stream
// @Param        filename  path  string  true  "File name"
// @Success      200
// @Failure      404  {object}  ErrorResponse
// @Router       /files/serve/{filename} [get]
func (h *filesAPIHandler) Serve(w http.ResponseWriter, r *http.Request) {
	// chi matches against RawPath when it is set, so the parameter is still
	// escaped only in that case.
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath != "" {
		var err error
		if name, err = url.PathUnescape(name); err != nil {
			writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
			return
		}
	}
	rec, err := h.files.GetByName(r.Context(), name)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	f, err := h.storage.Open(r.Context(), rec.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		h.logger.Error("file blob missing", zap.String("file_id", rec.ID), zap.String("key", rec.StorageKey))
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
		return
	}
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", rec.ContentType)
	http.ServeContent(w, r, rec.Name, rec.CreatedAt, f)
}

// Delete removes one of the caller's files and its bytes.
//
// @Summary      Delete a file
// @Tags         Files
// @Accept       json
// @Produce      json
// @Param        body  body      DeleteFileRequest  true  "File id"
// @Success      200   {object}  StatusResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /files/delete [post]
func (h *filesAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	var req DeleteFileRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := require("file_id", req.FileID); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	rec, err := h.files.GetByID(r.Context(), req.FileID)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if rec.UserID != user.ID {
		fail(w, r, h.logger, errForbidden)
		return
	}
	if err := h.files.Delete(r.Context(), rec.ID); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if err := h.storage.Delete(r.Context(), rec.StorageKey); err != nil {
		h.logger.Warn("orphaned file blob", zap.String("key", rec.StorageKey), zap.Error(err))
	}
	writeOK(w)
}

// List returns the caller's files.
//
// @Summary      List files
// @Tags         Files,General
// @Accept       json
// @Produce      json
// @Param        body  body      TokenOnlyRequest  true  "api_token"
// @Success      200   {object}  FileListResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /files/all [post]
func (h *filesAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	in, err := h.instance.Get(r.Context())
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	files, err := h.files.ListByUser(r.Context(), user.ID)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	resp := &FileListResponse{Files: make([]*FileResponse, 0, len(files))}
	for _, f := range files {
		resp.Files = append(resp.Files, toFileResponse(f, in.Hostname))
	}
	writeJSON(w, http.StatusOK, resp)
}
