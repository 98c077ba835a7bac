package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost for new hashes. Tests lower it.
var PasswordCost = bcrypt.DefaultCost

// ErrPasswordInvalid is returned for empty passwords and passwords bcrypt
// cannot hash (longer than 72 bytes).
var ErrPasswordInvalid = errors.New("password must be between 1 and 72 bytes")

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordInvalid
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordInvalid
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// burnPasswordCheck spends the same time as a real comparison so unknown
// usernames are not distinguishable by latency.
func burnPasswordCheck(password string) {
	dummyOnce.Do(func() {
		h, _ := bcrypt.GenerateFromPassword([]byte("cleo-dummy-password"), PasswordCost)
		dummyHash = string(h)
	})
	_ = CheckPassword(dummyHash, password)
}

const userKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Signup key lengths by key type.
const (
	AdminKeyLength  = 16
	NormalKeyLength = 10
)

// GenerateUserKey returns a random A-Z0-9 signup key of the length for
// keyType ("admin" or anything else for normal).
func GenerateUserKey(keyType string) (string, error) {
	n := NormalKeyLength
	if keyType == "admin" {
		n = AdminKeyLength
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate user key: %w", err)
	}
	var b strings.Builder
	b.Grow(n)
	for _, c := range buf {
		// 256 % 36 != 0, so reject the top of the byte range to stay uniform.
		for c >= 252 {
			var one [1]byte
			if _, err := rand.Read(one[:]); err != nil {
				return "", fmt.Errorf("generate user key: %w", err)
			}
			c = one[0]
		}
		b.WriteByte(userKeyAlphabet[int(c)%len(userKeyAlphabet)])
	}
	return b.String(), nil
}
