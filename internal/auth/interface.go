package auth

import "inkwell/internal/domain/models"

// JWTVerifier defines the interface for ID token verification.
// This abstraction keeps the middleware agnostic to the verification
// details and lets tests substitute a static verifier.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.IDTokenClaims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	Close() error
}
