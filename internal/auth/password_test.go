package auth_test

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/joestump/cleo/internal/auth"
)

func init() {
	auth.PasswordCost = bcrypt.MinCost
}

func TestHashPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash equals plaintext")
	}
	if !auth.CheckPassword(hash, "correct horse") {
		t.Error("CheckPassword rejected the right password")
	}
	if auth.CheckPassword(hash, "battery staple") {
		t.Error("CheckPassword accepted the wrong password")
	}
}

func TestHashPassword_Invalid(t *testing.T) {
	for _, pw := range []string{"", strings.Repeat("x", 73)} {
		if _, err := auth.HashPassword(pw); !errors.Is(err, auth.ErrPasswordInvalid) {
			t.Errorf("HashPassword(len %d) err = %v, want ErrPasswordInvalid", len(pw), err)
		}
	}
}

func TestGenerateUserKey(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z0-9]+$`)
	tests := []struct {
		keyType string
		wantLen int
	}{
		{"admin", auth.AdminKeyLength},
		{"normal", auth.NormalKeyLength},
	}
	for _, tt := range tests {
		t.Run(tt.keyType, func(t *testing.T) {
			seen := map[string]bool{}
			for i := 0; i < 50; i++ {
				k, err := auth.GenerateUserKey(tt.keyType)
				if err != nil {
					t.Fatalf("GenerateUserKey: %v", err)
				}
				if len(k) != tt.wantLen {
					t.Errorf("len(%q) = %d, want %d", k, len(k), tt.wantLen)
				}
				if !re.MatchString(k) {
					t.Errorf("key %q has characters outside A-Z0-9", k)
				}
				seen[k] = true
			}
			if len(seen) < 50 {
				t.Errorf("only %d distinct keys out of 50", len(seen))
			}
		})
	}
}
