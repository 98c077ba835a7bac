package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/joestump/cleo/internal/api"
	"github.com/joestump/cleo/internal/store"
)

func TestEmail_Verify_SingleUse(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "root", true)
	key := issueKey(t, env, admin, store.KeyTypeNormal, "bob")
	expectStatus(t, postJSON(t, env, "/user/create", signupBody("bob", key)), http.StatusOK)

	token := mailedToken(t, env)
	expectOK(t, get(t, env, "/email/"+token))

	u, err := env.Users.GetByUsername(context.Background(), "bob")
	if err != nil {
		t.Fatalf("get bob: %v", err)
	}
	if !u.IsVerified {
		t.Error("is_verified = false after redeeming token")
	}

	expectCode(t, get(t, env, "/email/"+token), http.StatusNotFound, "NOT_FOUND")
}

func TestEmail_Verify_Unknown(t *testing.T) {
	env := newTestEnv(t)
	expectCode(t, get(t, env, "/email/cev_doesnotexist"), http.StatusNotFound, "NOT_FOUND")
}

func TestEmail_Verify_SupersededToken(t *testing.T) {
	env := newTestEnv(t)
	alice := seedUser(t, env, "alice", false)
	token := seedToken(t, env, alice.ID)

	expectOK(t, postJSON(t, env, "/user/update/email", api.ChangeRequest{APIToken: token, NewValue: "first@example.com"}))
	first := mailedToken(t, env)
	expectOK(t, postJSON(t, env, "/user/update/email", api.ChangeRequest{APIToken: token, NewValue: "second@example.com"}))
	second := mailedToken(t, env)

	expectCode(t, get(t, env, "/email/"+first), http.StatusNotFound, "NOT_FOUND")
	expectOK(t, get(t, env, "/email/"+second))

	u, err := env.Users.GetByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("get alice: %v", err)
	}
	if u.Email != "second@example.com" || !u.IsVerified {
		t.Errorf("email = %q verified = %v", u.Email, u.IsVerified)
	}
}
