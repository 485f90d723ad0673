package lms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("lms: no access token")
	ErrTokenExpired = errors.New("lms: access token expired")
)

// Claims is the subset of the access token the gateway relies on. Verified is
// set only when the signature was checked against the LMS signing key.
type Claims struct {
	LearnerID string
	ExpiresAt time.Time
	Verified  bool
}

// Expired reports whether the token is past its exp claim. Tokens without exp
// never expire locally.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseClaims decodes the token payload without checking the signature. The
// result must not be used to pick whose state a caller can read.
func ParseClaims(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrNoToken
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("parse access token: %w", err)
	}
	return claimsFrom(mc), nil
}

var hmacMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// VerifyClaims checks the HMAC signature with key and the exp claim at now
// before reading the claims.
func VerifyClaims(token string, key []byte, now func() time.Time) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrNoToken
	}
	if len(key) == 0 {
		return Claims{}, errors.New("verify access token: no signing key")
	}
	if now == nil {
		now = time.Now
	}
	mc := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, mc, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods(hmacMethods), jwt.WithTimeFunc(now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("verify access token: %w", err)
	}
	out := claimsFrom(mc)
	out.Verified = true
	return out, nil
}

func claimsFrom(mc jwt.MapClaims) Claims {
	out := Claims{}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	switch v := mc["user_id"].(type) {
	case string:
		out.LearnerID = strings.TrimSpace(v)
	case float64:
		out.LearnerID = fmt.Sprintf("%d", int64(v))
	}
	if out.LearnerID == "" {
		if sub, err := mc.GetSubject(); err == nil {
			out.LearnerID = strings.TrimSpace(sub)
		}
	}
	return out
}

// StaticToken is a TokenSource backed by a fixed string.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}
