package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joestump/cleo/internal/store"
)

// ErrUnauthorized is returned for unknown tokens and bad credentials.
var ErrUnauthorized = errors.New("unauthorized")

// MaxTokenBody bounds how much of a JSON body Authenticate will buffer.
const MaxTokenBody = 1 << 20

// lastUsedResolution limits api_tokens writes to one per token per interval.
const lastUsedResolution = time.Minute

type contextKey string

// UserContextKey is the request context key holding the authenticated *store.User.
const UserContextKey contextKey = "user"

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *store.User {
	u, _ := ctx.Value(UserContextKey).(*store.User)
	return u
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *store.User) context.Context {
	return context.WithValue(ctx, UserContextKey, u)
}

// Authenticator resolves API tokens and username/password pairs to users.
type Authenticator struct {
	tokens TokenStore
	users  *store.UserStore
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(ts TokenStore, us *store.UserStore) *Authenticator {
	return &Authenticator{tokens: ts, users: us}
}

// User returns the owner of the plaintext API token, or ErrUnauthorized.
func (a *Authenticator) User(ctx context.Context, plaintext string) (*store.User, error) {
	if plaintext == "" {
		return nil, ErrUnauthorized
	}
	rec, err := a.tokens.GetByHash(ctx, HashToken(plaintext))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByID(ctx, rec.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if !rec.LastUsedAt.Valid || time.Since(rec.LastUsedAt.Time) > lastUsedResolution {
		// Best effort; a failed timestamp write must not fail the request.
		_ = a.tokens.UpdateLastUsed(ctx, rec.ID)
	}
	return user, nil
}

// Credentials returns the user identified by username and password, or
// ErrUnauthorized.
func (a *Authenticator) Credentials(ctx context.Context, username, password string) (*store.User, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		burnPasswordCheck(password)
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// tokenBody is the part of every authenticated request body Authenticate reads.
type tokenBody struct {
	APIToken string `json:"api_token"`
}

// Authenticate is middleware for JSON routes that carry the caller's token
// in the body's "api_token" field. An "Authorization: Bearer" header is
// accepted as well. The body is restored for the handler to decode.
// WHEN valid: injects the token owner's *store.User into context.
// WHEN invalid or missing: returns 401 with {"error": "unauthorized"}.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		plaintext := bearerToken(r)
		if r.Body != nil {
			raw, err := io.ReadAll(io.LimitReader(r.Body, MaxTokenBody+1))
			if err != nil {
				writeAuthError(w, http.StatusBadRequest, "could not read request body", "BAD_REQUEST")
				return
			}
			if len(raw) > MaxTokenBody {
				writeAuthError(w, http.StatusRequestEntityTooLarge, "request body too large", "TOO_LARGE")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))
			if len(bytes.TrimSpace(raw)) > 0 {
				var body tokenBody
				if err := json.Unmarshal(raw, &body); err != nil {
					writeAuthError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
					return
				}
				if body.APIToken != "" {
					plaintext = body.APIToken
				}
			}
		}

		user, err := a.User(r.Context(), plaintext)
		if errors.Is(err, ErrUnauthorized) {
			writeAuthError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
			return
		}
		if err != nil {
			writeAuthError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// writeAuthError writes the same {"error","code"} body as the api package.
func writeAuthError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
