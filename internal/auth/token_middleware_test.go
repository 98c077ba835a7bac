package auth_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joestump/cleo/internal/auth"
	"github.com/joestump/cleo/internal/store"
	"github.com/joestump/cleo/internal/testutil"
)

type authEnv struct {
	authn  *auth.Authenticator
	tokens *auth.SQLTokenStore
	user   *store.User
	token  string
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	us := store.NewUserStore(db)
	ts := auth.NewSQLTokenStore(db)
	ctx := context.Background()

	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u, err := us.Create(ctx, store.NewUser{Username: "alice", Email: "alice@example.com", PasswordHash: hash})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	plaintext, tokenHash, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ts.Create(ctx, u.ID, tokenHash); err != nil {
		t.Fatalf("create token: %v", err)
	}
	return &authEnv{authn: auth.NewAuthenticator(ts, us), tokens: ts, user: u, token: plaintext}
}

// echoHandler reports the authenticated username and echoes the body it received.
func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := auth.UserFromContext(r.Context())
		if u == nil {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-User", u.Username)
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	})
}

func TestAuthenticator_User(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	u, err := env.authn.User(ctx, env.token)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if u.ID != env.user.ID {
		t.Errorf("user id = %s, want %s", u.ID, env.user.ID)
	}

	rec, err := env.tokens.GetByHash(ctx, auth.HashToken(env.token))
	if err != nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if !rec.LastUsedAt.Valid {
		t.Error("expected last_used_at to be recorded")
	}

	for _, bad := range []string{"", "cleo_nope"} {
		if _, err := env.authn.User(ctx, bad); !errors.Is(err, auth.ErrUnauthorized) {
			t.Errorf("User(%q) err = %v, want ErrUnauthorized", bad, err)
		}
	}
}

func TestAuthenticator_Credentials(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	u, err := env.authn.Credentials(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if u.ID != env.user.ID {
		t.Errorf("id = %s, want %s", u.ID, env.user.ID)
	}
	if _, err := env.authn.Credentials(ctx, "alice", "wrong"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := env.authn.Credentials(ctx, "nobody", "s3cret"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("unknown user err = %v", err)
	}
}

func TestAuthenticate_BodyToken(t *testing.T) {
	env := newAuthEnv(t)
	h := env.authn.Authenticate(echoHandler())

	body := `{"api_token":"` + env.token + `","content_id":"abc"}`
	req := httptest.NewRequest("POST", "/posts/delete", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := rec.Header().Get("X-User"); got != "alice" {
		t.Errorf("X-User = %q, want alice", got)
	}
	if rec.Body.String() != body {
		t.Errorf("handler saw body %q, want original %q", rec.Body.String(), body)
	}
}

func TestAuthenticate_BearerHeader(t *testing.T) {
	env := newAuthEnv(t)
	h := env.authn.Authenticate(echoHandler())

	req := httptest.NewRequest("POST", "/posts/all", nil)
	req.Header.Set("Authorization", "Bearer "+env.token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	env := newAuthEnv(t)
	h := env.authn.Authenticate(echoHandler())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing token", `{}`, http.StatusUnauthorized},
		{"empty body", ``, http.StatusUnauthorized},
		{"unknown token", `{"api_token":"cleo_unknown"}`, http.StatusUnauthorized},
		{"malformed json", `{"api_token":`, http.StatusBadRequest},
		{"too large", `{"api_token":"` + strings.Repeat("x", auth.MaxTokenBody) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/posts/all", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d; body: %s", rec.Code, tt.want, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}
