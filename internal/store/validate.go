package store

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
)

var (
	// ErrUsernameInvalid is returned when a username does not match the required pattern.
	ErrUsernameInvalid = errors.New("username must be 1-64 characters of letters, digits, '.', '_' or '-'")

	// ErrContentTypeInvalid is returned for content types other than page and post.
	ErrContentTypeInvalid = errors.New("content_type must be one of: page, post")

	// ErrKeyTypeInvalid is returned for key types other than admin and normal.
	ErrKeyTypeInvalid = errors.New("key_type must be one of: admin, normal")

	// ErrFileNameInvalid is returned when a file name is empty or contains a path.
	ErrFileNameInvalid = errors.New("file name must be a plain name without path separators")

	// ErrEmailInvalid is returned when an email address cannot be parsed.
	ErrEmailInvalid = errors.New("email address is invalid")

	usernameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)
)

const (
	ContentTypePage = "page"
	ContentTypePost = "post"

	KeyTypeAdmin  = "admin"
	KeyTypeNormal = "normal"
)

// ValidateUsername checks the username format. Uniqueness is enforced by the
// unique index on users.username.
func ValidateUsername(username string) error {
	if !usernameRe.MatchString(username) {
		return ErrUsernameInvalid
	}
	return nil
}

// NormalizeContentType lowercases ct and checks it is page or post.
func NormalizeContentType(ct string) (string, error) {
	ct = strings.ToLower(strings.TrimSpace(ct))
	switch ct {
	case ContentTypePage, ContentTypePost:
		return ct, nil
	}
	return "", ErrContentTypeInvalid
}

// NormalizeKeyType lowercases kt and checks it is admin or normal.
func NormalizeKeyType(kt string) (string, error) {
	kt = strings.ToLower(strings.TrimSpace(kt))
	switch kt {
	case KeyTypeAdmin, KeyTypeNormal:
		return kt, nil
	}
	return "", ErrKeyTypeInvalid
}

// ValidateFileName rejects names that could escape the file directory or
// not round-trip through /files/serve/{filename}.
func ValidateFileName(name string) error {
	if name == "" || name == "." || name == ".." || len(name) > 255 {
		return ErrFileNameInvalid
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return ErrFileNameInvalid
	}
	return nil
}

// ValidateEmail checks addr is a bare RFC 5322 address.
func ValidateEmail(addr string) error {
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return ErrEmailInvalid
	}
	return nil
}
