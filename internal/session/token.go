package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expired reports whether a persisted JWT is already past its expiry.
// The signature is not verified here; that is the backend's job. An
// unparseable token is treated as live and left to the validation call,
// which logs the user out on rejection.
func expired(token string) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
