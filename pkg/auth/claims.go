package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the signed payload carried by the browser session token.
// The subject is the opaque cart session id.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}
