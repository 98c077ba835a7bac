package store

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  error
	}{
		{name: "simple", username: "alice", wantErr: nil},
		{name: "mixed case and digits", username: "Alice42", wantErr: nil},
		{name: "dots dashes underscores", username: "a.b-c_d", wantErr: nil},
		{name: "max length", username: strings.Repeat("a", 64), wantErr: nil},

		{name: "empty", username: "", wantErr: ErrUsernameInvalid},
		{name: "too long", username: strings.Repeat("a", 65), wantErr: ErrUsernameInvalid},
		{name: "leading dot", username: ".alice", wantErr: ErrUsernameInvalid},
		{name: "space", username: "al ice", wantErr: ErrUsernameInvalid},
		{name: "slash", username: "al/ice", wantErr: ErrUsernameInvalid},
		{name: "at sign", username: "alice@example", wantErr: ErrUsernameInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateUsername(%q) = %v, want %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeContentType(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  error
	}{
		{"page", "page", nil},
		{"post", "post", nil},
		{"Page", "page", nil},
		{" POST ", "post", nil},
		{"article", "", ErrContentTypeInvalid},
		{"", "", ErrContentTypeInvalid},
	}
	for _, tt := range tests {
		got, err := NormalizeContentType(tt.in)
		if got != tt.want || !errors.Is(err, tt.wantErr) {
			t.Errorf("NormalizeContentType(%q) = (%q, %v), want (%q, %v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestNormalizeKeyType(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  error
	}{
		{"admin", "admin", nil},
		{"Normal", "normal", nil},
		{"root", "", ErrKeyTypeInvalid},
	}
	for _, tt := range tests {
		got, err := NormalizeKeyType(tt.in)
		if got != tt.want || !errors.Is(err, tt.wantErr) {
			t.Errorf("NormalizeKeyType(%q) = (%q, %v), want (%q, %v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{"plain", "cat.png", false},
		{"no extension", "README", false},
		{"spaces", "my file.txt", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"slash", "a/b.png", true},
		{"backslash", `a\b.png`, true},
		{"nul", "a\x00b", true},
		{"too long", strings.Repeat("x", 256), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileName(tt.file)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFileName(%q) = %v, wantErr %v", tt.file, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"alice@example.com", "a.b+c@sub.example.org"}
	invalid := []string{"", "alice", "Alice <alice@example.com>", "alice@"}
	for _, e := range valid {
		if err := ValidateEmail(e); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", e, err)
		}
	}
	for _, e := range invalid {
		if err := ValidateEmail(e); !errors.Is(err, ErrEmailInvalid) {
			t.Errorf("ValidateEmail(%q) = %v, want ErrEmailInvalid", e, err)
		}
	}
}

func TestIsUniqueConstraintError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"UNIQUE constraint failed: users.username", true},
		{`pq: duplicate key value violates unique constraint "users_username_key"`, true},
		{"Error 1062: Duplicate entry 'alice' for key 'username'", true},
		{"no such table: users", false},
	}
	for _, tt := range tests {
		if got := isUniqueConstraintError(errors.New(tt.msg)); got != tt.want {
			t.Errorf("isUniqueConstraintError(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
	if isUniqueConstraintError(nil) {
		t.Error("isUniqueConstraintError(nil) = true")
	}
}
