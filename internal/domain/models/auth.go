package models

import "github.com/golang-jwt/jwt/v5"

// IDTokenClaims represents the claims carried by the mobile auth SDK's
// ID tokens (Firebase Auth). The subject is the stable user id.
type IDTokenClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	EmailVerified        bool   `json:"email_verified"`
	Name                 string `json:"name"`
	Picture              string `json:"picture"`
	AuthTime             int64  `json:"auth_time"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *IDTokenClaims) GetUserID() string {
	return c.Subject
}
