package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joestump/cleo/internal/auth"
	"github.com/joestump/cleo/internal/store"
	"github.com/joestump/cleo/internal/testutil"
)

func newTokenTestEnv(t *testing.T) (*auth.SQLTokenStore, *store.UserStore, string) {
	t.Helper()
	db := testutil.NewTestDB(t)
	ts := auth.NewSQLTokenStore(db)
	us := store.NewUserStore(db)
	ctx := context.Background()

	u, err := us.Create(ctx, store.NewUser{Username: "test", Email: "test@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return ts, us, u.ID
}

func TestGenerateToken(t *testing.T) {
	plaintext, hash, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if len(plaintext) < 20 {
		t.Errorf("plaintext too short: %q", plaintext)
	}
	if !strings.HasPrefix(plaintext, "cleo_") {
		t.Errorf("plaintext = %q, want cleo_ prefix", plaintext)
	}
	if hash == "" || len(hash) != 64 {
		t.Errorf("hash = %q, want 64 hex chars", hash)
	}

	// HashToken should produce the same hash.
	if got := auth.HashToken(plaintext); got != hash {
		t.Errorf("HashToken = %q, want %q", got, hash)
	}

	other, _, _ := auth.GenerateToken()
	if other == plaintext {
		t.Error("two generated tokens are equal")
	}
}

func TestGenerateEmailToken(t *testing.T) {
	plaintext, hash, err := auth.GenerateEmailToken()
	if err != nil {
		t.Fatalf("GenerateEmailToken: %v", err)
	}
	if !strings.HasPrefix(plaintext, "cev_") {
		t.Errorf("plaintext = %q, want cev_ prefix", plaintext)
	}
	if auth.HashToken(plaintext) != hash {
		t.Error("hash mismatch")
	}
}

func TestTokenStore_CreateAndGetByHash(t *testing.T) {
	ts, _, userID := newTokenTestEnv(t)
	ctx := context.Background()

	_, hash, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	rec, err := ts.Create(ctx, userID, hash)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.UserID != userID || rec.TokenHash != hash {
		t.Errorf("record = %+v", rec)
	}

	got, err := ts.GetByHash(ctx, hash)
	if err != nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if got.ID != rec.ID {
		t.Errorf("GetByHash id = %s, want %s", got.ID, rec.ID)
	}
	if got.LastUsedAt.Valid {
		t.Error("new token must not have last_used_at")
	}

	if err := ts.UpdateLastUsed(ctx, rec.ID); err != nil {
		t.Fatalf("UpdateLastUsed: %v", err)
	}
	got, _ = ts.GetByHash(ctx, hash)
	if !got.LastUsedAt.Valid {
		t.Error("last_used_at not set")
	}
}

func TestTokenStore_GetByHash_NotFound(t *testing.T) {
	ts, _, _ := newTokenTestEnv(t)
	_, err := ts.GetByHash(context.Background(), "nonexistent")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want store.ErrNotFound", err)
	}
}

func TestTokenStore_Delete(t *testing.T) {
	ts, us, userID := newTokenTestEnv(t)
	ctx := context.Background()

	other, err := us.Create(ctx, store.NewUser{Username: "other", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("seed other: %v", err)
	}

	_, hash, _ := auth.GenerateToken()
	rec, err := ts.Create(ctx, userID, hash)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := ts.Delete(ctx, rec.ID, other.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete by non-owner err = %v, want ErrNotFound", err)
	}
	if err := ts.Delete(ctx, rec.ID, userID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := ts.GetByHash(ctx, hash); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByHash after delete err = %v", err)
	}
}
