package store

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// FilesPath is the route prefix that serves stored objects.
const FilesPath = "/files/"

var ErrInvalidFileLink = errors.New("invalid file link")

// FileLinks builds permanent portal links to stored objects. A link carries a
// signed token naming its object and is exchanged for a short-lived presigned
// URL when opened, so saved links keep working after any presign expiry.
type FileLinks struct {
	base   string
	secret []byte
}

func NewFileLinks(base, secret string) FileLinks {
	return FileLinks{base: strings.TrimRight(base, "/"), secret: []byte(secret)}
}

// URL is the permanent link for object.
func (l FileLinks) URL(object string) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  object,
		Audience: jwt.ClaimStrings{"files"},
	}).SignedString(l.secret)
	if err != nil {
		return "", fmt.Errorf("sign file link: %w", err)
	}
	return l.base + FilesPath + object + "?token=" + url.QueryEscape(token), nil
}

// Object checks that token was issued for object and returns it.
func (l FileLinks) Object(object, token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return l.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidFileLink
	}
	if !claims.VerifyAudience("files", true) || claims.Subject == "" || claims.Subject != object {
		return "", ErrInvalidFileLink
	}
	return claims.Subject, nil
}
