package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/joestump/cleo/internal/api"
	"github.com/joestump/cleo/internal/store"
)

func TestFields_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	alice := seedUser(t, env, "alice", false)
	token := seedToken(t, env, alice.ID)
	ctx := context.Background()
	p, err := env.Posts.Create(ctx, alice.ID, store.ContentTypePost, "body")
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}

	rec := postJSON(t, env, "/ecf/create", api.CreateFieldRequest{APIToken: token, ContentID: p.ID, FieldKey: "author", FieldValue: "alice"})
	expectStatus(t, rec, http.StatusOK)
	var created api.FieldResponse
	decodeInto(t, rec, &created)
	if created.ContentID != p.ID || created.FieldKey != "author" || created.FieldValue != "alice" {
		t.Fatalf("unexpected field: %+v", created)
	}

	expectOK(t, postJSON(t, env, "/ecf/edit/key", api.EditFieldRequest{APIToken: token, ContentID: p.ID, FieldID: created.FieldID, NewValue: "byline"}))
	expectOK(t, postJSON(t, env, "/ecf/edit/value", api.EditFieldRequest{APIToken: token, ContentID: p.ID, FieldID: created.FieldID, NewValue: "Alice L."}))

	f, err := env.Fields.Get(ctx, p.ID, created.FieldID)
	if err != nil {
		t.Fatalf("get field: %v", err)
	}
	if f.Key != "byline" || f.Value != "Alice L." {
		t.Errorf("field = %s=%s, want byline=Alice L.", f.Key, f.Value)
	}

	expectOK(t, postJSON(t, env, "/ecf/delete", api.DeleteFieldRequest{APIToken: token, ContentID: p.ID, FieldID: created.FieldID}))
	if _, err := env.Fields.Get(ctx, p.ID, created.FieldID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("field still present: %v", err)
	}
}

func TestFields_OtherUsersPost(t *testing.T) {
	env := newTestEnv(t)
	alice := seedUser(t, env, "alice", false)
	bob := seedUser(t, env, "bob", false)
	bobToken := seedToken(t, env, bob.ID)
	ctx := context.Background()
	p, _ := env.Posts.Create(ctx, alice.ID, store.ContentTypePost, "body")
	f, err := env.Fields.Create(ctx, p.ID, "k", "v")
	if err != nil {
		t.Fatalf("seed field: %v", err)
	}

	expectCode(t, postJSON(t, env, "/ecf/create", api.CreateFieldRequest{APIToken: bobToken, ContentID: p.ID, FieldKey: "k2"}),
		http.StatusForbidden, "FORBIDDEN")
	expectCode(t, postJSON(t, env, "/ecf/edit/value", api.EditFieldRequest{APIToken: bobToken, ContentID: p.ID, FieldID: f.ID, NewValue: "x"}),
		http.StatusForbidden, "FORBIDDEN")
	expectCode(t, postJSON(t, env, "/ecf/delete", api.DeleteFieldRequest{APIToken: bobToken, ContentID: p.ID, FieldID: f.ID}),
		http.StatusForbidden, "FORBIDDEN")
}

func TestFields_FieldMustBelongToPost(t *testing.T) {
	env := newTestEnv(t)
	alice := seedUser(t, env, "alice", false)
	token := seedToken(t, env, alice.ID)
	ctx := context.Background()
	p1, _ := env.Posts.Create(ctx, alice.ID, store.ContentTypePost, "one")
	p2, _ := env.Posts.Create(ctx, alice.ID, store.ContentTypePost, "two")
	f, err := env.Fields.Create(ctx, p1.ID, "k", "v")
	if err != nil {
		t.Fatalf("seed field: %v", err)
	}

	expectCode(t, postJSON(t, env, "/ecf/edit/key", api.EditFieldRequest{APIToken: token, ContentID: p2.ID, FieldID: f.ID, NewValue: "x"}),
		http.StatusNotFound, "NOT_FOUND")
	expectCode(t, postJSON(t, env, "/ecf/delete", api.DeleteFieldRequest{APIToken: token, ContentID: p2.ID, FieldID: f.ID}),
		http.StatusNotFound, "NOT_FOUND")
}

func TestFields_Validation(t *testing.T) {
	env := newTestEnv(t)
	alice := seedUser(t, env, "alice", false)
	token := seedToken(t, env, alice.ID)
	p, _ := env.Posts.Create(context.Background(), alice.ID, store.ContentTypePost, "body")

	expectCode(t, postJSON(t, env, "/ecf/create", api.CreateFieldRequest{APIToken: token, ContentID: p.ID}),
		http.StatusBadRequest, "BAD_REQUEST")
	expectCode(t, postJSON(t, env, "/ecf/edit/key", api.EditFieldRequest{APIToken: token, ContentID: p.ID, FieldID: "f"}),
		http.StatusBadRequest, "BAD_REQUEST")
}
