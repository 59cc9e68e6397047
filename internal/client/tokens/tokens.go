// Package tokens inspects access tokens without verifying them. The client
// never holds the signing key; these helpers are only for display, such as
// showing when the current session's token runs out.
package tokens

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/mobapp/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Expiry returns the "exp" claim of a JWT access token. Opaque tokens and
// JWTs without "exp" report ok=false.
func Expiry(token string) (exp time.Time, ok bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Subject returns the "sub" claim.
func Subject(token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claims.Subject, nil
}

// Describe renders a one-line summary of the token lifetime relative to now.
func Describe(token string, now time.Time) string {
	exp, ok := Expiry(token)
	if !ok {
		return "opaque token"
	}
	if !exp.After(now) {
		return fmt.Sprintf("expired %s ago", now.Sub(exp).Truncate(time.Second))
	}
	return fmt.Sprintf("expires in %s", exp.Sub(now).Truncate(time.Second))
}
