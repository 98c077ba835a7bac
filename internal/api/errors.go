package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/joestump/cleo/internal/auth"
	"github.com/joestump/cleo/internal/mail"
	"github.com/joestump/cleo/internal/store"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatusResponse is the body of mutations that return no entity.
type StatusResponse struct {
	IsOK bool `json:"is_ok"`
}

// errForbidden is returned when the caller is authenticated but may not act
// on the target (not an admin, or not the owner).
var errForbidden = errors.New("forbidden")

// badRequestError carries a client-facing validation message.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

// validationErrors are store and auth errors whose message is safe to return as-is.
var validationErrors = []error{
	store.ErrUsernameInvalid,
	store.ErrContentTypeInvalid,
	store.ErrKeyTypeInvalid,
	store.ErrFileNameInvalid,
	store.ErrEmailInvalid,
	auth.ErrPasswordInvalid,
}

// writeError writes a JSON error response with the given HTTP status code.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, StatusResponse{IsOK: true})
}

// fail maps err to a status and code. Unclassified errors are logged and
// answered with a generic 500 so internals never leak to clients.
func fail(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var bre *badRequestError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &bre):
		writeError(w, http.StatusBadRequest, bre.msg, "BAD_REQUEST")
	case errors.As(err, &mbe):
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "TOO_LARGE")
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
	case errors.Is(err, errForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "FORBIDDEN")
	case errors.Is(err, store.ErrKeyInvalid):
		writeError(w, http.StatusForbidden, store.ErrKeyInvalid.Error(), "FORBIDDEN")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "already exists", "CONFLICT")
	case errors.Is(err, mail.ErrSendFailed):
		logger.Warn("email delivery failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusBadGateway, "could not send email", "MAIL_FAILED")
	default:
		for _, v := range validationErrors {
			if errors.Is(err, v) {
				writeError(w, http.StatusBadRequest, v.Error(), "BAD_REQUEST")
				return
			}
		}
		logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
	}
}

// decode reads a JSON body into v, rejecting unknown shapes with a 400.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return badRequest("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return badRequest("invalid request body")
	}
	return nil
}

// require returns a 400 naming the first empty field. Arguments alternate
// field name and value.
func require(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return badRequest("%s is required", pairs[i])
		}
	}
	return nil
}
