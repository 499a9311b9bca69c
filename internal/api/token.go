package api

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenSubject extracts the user id from a bearer token for log context.
// The signature is not verified; the API is the authority on validity.
func TokenSubject(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	if id, ok := claims["userId"].(string); ok && id != "" {
		return id
	}
	sub, _ := claims.GetSubject()
	return sub
}
