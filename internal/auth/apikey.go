package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// RoleOperator can start and advance sagas (read-write).
const RoleOperator = "operator"

// RoleAuditor can only query the graph projection and saga status (read-only).
const RoleAuditor = "auditor"

// APIKeyAuthenticator validates bearer API keys against a single
// configured secret. Unlike a multi-tenant system, this domain has one
// operator identity per deployment; the secret is provisioned out of
// band (CIMKEYS_API_KEY_SECRET) rather than looked up per caller.
type APIKeyAuthenticator struct {
	Secret string
}

// Authenticate compares rawKey against the configured secret using a
// constant-time comparison and returns the operator identity on success.
func (a *APIKeyAuthenticator) Authenticate(rawKey string) (*Identity, error) {
	if rawKey == "" {
		return nil, fmt.Errorf("empty API key")
	}
	if a.Secret == "" {
		return nil, fmt.Errorf("no API key secret configured")
	}
	if !hmac.Equal(hashKey(rawKey), hashKey(a.Secret)) {
		return nil, fmt.Errorf("invalid API key")
	}
	return &Identity{Subject: "operator", Role: RoleOperator, Method: MethodAPIKey}, nil
}

func hashKey(key string) []byte {
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}

// HashAPIKey returns the hex-encoded SHA-256 digest of key, for logging
// key fingerprints without exposing the raw secret.
func HashAPIKey(key string) string {
	return hex.EncodeToString(hashKey(key))
}
