package api_test

import (
	"net/http"
	"testing"

	"github.com/joestump/cleo/internal/api"
	"github.com/joestump/cleo/internal/auth"
)

func TestKeys_Create(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "root", true)
	token := seedToken(t, env, admin.ID)

	tests := []struct {
		keyType string
		wantLen int
	}{
		{"admin", auth.AdminKeyLength},
		{"NORMAL", auth.NormalKeyLength},
	}
	for _, tt := range tests {
		rec := postJSON(t, env, "/keys/create", api.CreateKeyRequest{APIToken: token, KeyType: tt.keyType, Username: "bob"})
		expectStatus(t, rec, http.StatusOK)

		var resp api.KeyResponse
		decodeInto(t, rec, &resp)
		if len(resp.UserKey) != tt.wantLen {
			t.Errorf("%s: len(user_key) = %d, want %d", tt.keyType, len(resp.UserKey), tt.wantLen)
		}
		if resp.Username != "bob" || resp.Used || resp.KeyID == "" {
			t.Errorf("%s: unexpected key %+v", tt.keyType, resp)
		}
	}
}

func TestKeys_Create_Invalid(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "root", true)
	token := seedToken(t, env, admin.ID)

	expectCode(t, postJSON(t, env, "/keys/create", api.CreateKeyRequest{APIToken: token, KeyType: "super", Username: "bob"}),
		http.StatusBadRequest, "BAD_REQUEST")
	expectCode(t, postJSON(t, env, "/keys/create", api.CreateKeyRequest{APIToken: token, KeyType: "normal"}),
		http.StatusBadRequest, "BAD_REQUEST")
}

func TestKeys_NonAdminForbidden(t *testing.T) {
	env := newTestEnv(t)
	alice := seedUser(t, env, "alice", false)
	token := seedToken(t, env, alice.ID)

	expectCode(t, postJSON(t, env, "/keys/create", api.CreateKeyRequest{APIToken: token, KeyType: "normal", Username: "bob"}),
		http.StatusForbidden, "FORBIDDEN")
	expectCode(t, postJSON(t, env, "/keys/all", api.TokenOnlyRequest{APIToken: token}), http.StatusForbidden, "FORBIDDEN")
	expectCode(t, postJSON(t, env, "/keys/delete", api.DeleteKeyRequest{APIToken: token, KeyID: "x"}), http.StatusForbidden, "FORBIDDEN")
}

func TestKeys_ListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	root := seedUser(t, env, "root", true)
	other := seedUser(t, env, "other", true)
	rootToken := seedToken(t, env, root.ID)
	otherToken := seedToken(t, env, other.ID)

	issueKey(t, env, root, "normal", "bob")
	issueKey(t, env, root, "admin", "carol")
	issueKey(t, env, other, "normal", "dave")

	rec := postJSON(t, env, "/keys/all", api.TokenOnlyRequest{APIToken: rootToken})
	expectStatus(t, rec, http.StatusOK)
	var list api.KeyListResponse
	decodeInto(t, rec, &list)
	if len(list.Keys) != 2 {
		t.Fatalf("len(keys) = %d, want 2", len(list.Keys))
	}

	// Any admin may withdraw a key, not only its issuer.
	target := list.Keys[0].KeyID
	expectOK(t, postJSON(t, env, "/keys/delete", api.DeleteKeyRequest{APIToken: otherToken, KeyID: target}))
	expectCode(t, postJSON(t, env, "/keys/delete", api.DeleteKeyRequest{APIToken: rootToken, KeyID: target}),
		http.StatusNotFound, "NOT_FOUND")

	rec = postJSON(t, env, "/keys/all", api.TokenOnlyRequest{APIToken: rootToken})
	expectStatus(t, rec, http.StatusOK)
	list = api.KeyListResponse{}
	decodeInto(t, rec, &list)
	if len(list.Keys) != 1 {
		t.Errorf("len(keys) after delete = %d, want 1", len(list.Keys))
	}
}
