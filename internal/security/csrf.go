package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// CSRFGenerator generates and validates CSRF tokens using HMAC-SHA256.
// Tokens are derived from the session token and a secret key, so no server
// state is kept.
type CSRFGenerator struct {
	secret []byte
}

// NewCSRFGenerator creates a new stateless HMAC-based CSRF generator.
func NewCSRFGenerator(secret string) *CSRFGenerator {
	return &CSRFGenerator{secret: []byte("csrf:" + secret)}
}

// GenerateToken returns the CSRF token for the given session token.
func (g *CSRFGenerator) GenerateToken(sessionToken string) (string, error) {
	if sessionToken == "" {
		return "", fmt.Errorf("session token is required")
	}
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(sessionToken))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// ValidateToken reports whether token is the valid CSRF token for sessionToken.
func (g *CSRFGenerator) ValidateToken(sessionToken, token string) bool {
	if sessionToken == "" || token == "" {
		return false
	}
	expected, err := g.GenerateToken(sessionToken)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(token))
}
