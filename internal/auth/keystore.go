// Package auth implements the auth+rate-limit middleware (C2): Basic-auth
// key verification composed with the C1 rate limiter, adapted from the
// teacher's Authenticator (internal/auth/auth.go) which matched a single
// bearer token against a SHA-256 hash table. Here the credential is the
// publicKey:secretKey pair Langfuse SDKs send as HTTP Basic auth, verified
// against a per-org secret hash looked up from storage.OrgKeyStore.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/storage"
)

// HashSecretKey hashes a secret key for storage/comparison, the same
// SHA-256-then-hex pattern as the teacher's HashAPIKey.
func HashSecretKey(secretKey string) string {
	sum := sha256.Sum256([]byte(secretKey))
	return hex.EncodeToString(sum[:])
}

// ExtractBasicAuth extracts the publicKey:secretKey pair from a request's
// Authorization header, generalizing the teacher's ExtractAPIKey (bearer
// scheme only) to the Basic scheme Langfuse SDKs use.
func ExtractBasicAuth(r *http.Request) (publicKey, secretKey string, err error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "", fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "basic") {
		return "", "", fmt.Errorf("unsupported authorization scheme")
	}

	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", "", fmt.Errorf("invalid Authorization header encoding")
	}

	creds := strings.SplitN(string(decoded), ":", 2)
	if len(creds) != 2 || creds[0] == "" || creds[1] == "" {
		return "", "", fmt.Errorf("invalid Authorization header format")
	}
	return creds[0], creds[1], nil
}

// VerifyKey resolves publicKey via store and constant-time compares its
// hashed secretKey against the stored hash, mirroring the teacher's
// ValidateAPIKey lookup-then-constant-time-compare shape.
func VerifyKey(ctx context.Context, store storage.OrgKeyStore, publicKey, secretKey string) (*domain.OrgEnrichedApiKey, error) {
	key, err := store.Lookup(ctx, publicKey)
	if err != nil {
		return nil, domain.DBError(err.Error())
	}
	if key == nil {
		return nil, domain.AuthenticationError("invalid API key")
	}

	candidate := HashSecretKey(secretKey)
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(key.SecretHash)) != 1 {
		return nil, domain.AuthenticationError("invalid API key")
	}
	return key, nil
}
