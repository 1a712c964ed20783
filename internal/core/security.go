// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is the work factor for every newly stored hash.
	DefaultBcryptCost = 12

	legacyHashPrefix = "$2y$"
	modernHashPrefix = "$2a$"
)

var bcryptCost = DefaultBcryptCost

// SetBcryptCost overrides the work factor used by HashPassword. Values
// outside bcrypt's accepted range fall back to DefaultBcryptCost.
func SetBcryptCost(cost int) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	bcryptCost = cost
}

// MaxPasswordBytes is bcrypt's input limit. Longer passwords are rejected
// rather than silently truncated.
const MaxPasswordBytes = 72

func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ValidationError(fmt.Sprintf(
			"password must be at most %d bytes",
			MaxPasswordBytes,
		))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// NormalizeHash rewrites the legacy $2y$ tag to the $2a$ tag. Both name the
// same bcrypt construction.
func NormalizeHash(stored string) string {
	if strings.HasPrefix(stored, legacyHashPrefix) {
		return modernHashPrefix + strings.TrimPrefix(stored, legacyHashPrefix)
	}
	return stored
}

// VerifyPassword reports whether supplied matches stored. It never errors;
// malformed hashes are a non-match.
//
// Order of attempts:
//  1. supplied against the normalized hash
//  2. supplied with surrounding whitespace trimmed (accounts created by the
//     old signup form kept stray spaces out of the hash)
//  3. supplied against the stored hash exactly as persisted
func VerifyPassword(supplied, stored string) bool {
	if stored == "" {
		return false
	}

	normalized := NormalizeHash(stored)

	if compareHash(normalized, supplied) {
		return true
	}

	if trimmed := strings.TrimSpace(supplied); trimmed != supplied {
		if compareHash(normalized, trimmed) {
			return true
		}
	}

	if normalized != stored {
		return compareHash(stored, supplied)
	}

	return false
}

func compareHash(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyPasswordWithRehash verifies and, on success, returns a replacement
// hash when the stored one uses the legacy tag or a lower work factor.
func VerifyPasswordWithRehash(password, stored string) (bool, string) {
	if !VerifyPassword(password, stored) {
		return false, ""
	}

	if !needsRehash(stored) {
		return true, ""
	}

	newHash, err := HashPassword(password)
	if err != nil {
		return true, ""
	}

	return true, newHash
}

var dummyHash = sync.OnceValue(func() string {
	hash, err := bcrypt.GenerateFromPassword(
		[]byte("dummy_password_for_timing_attack_prevention"),
		bcryptCost,
	)
	if err != nil {
		panic(fmt.Sprintf("security: failed to generate dummy hash: %v", err))
	}
	return string(hash)
})

// VerifyPasswordTimingSafe burns a full comparison even when no account
// exists so login latency does not reveal which emails are registered.
func VerifyPasswordTimingSafe(
	password string,
	encodedHash *string,
) (bool, string) {
	if encodedHash == nil || *encodedHash == "" {
		_ = compareHash(dummyHash(), password)
		return false, ""
	}

	return VerifyPasswordWithRehash(password, *encodedHash)
}

func needsRehash(stored string) bool {
	if strings.HasPrefix(stored, legacyHashPrefix) {
		return true
	}

	cost, err := bcrypt.Cost([]byte(stored))
	if err != nil {
		return true
	}

	return cost < bcryptCost
}

func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func GenerateResetToken() (string, error) {
	return GenerateSecureToken(32)
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func CompareTokenHash(token, hash string) bool {
	tokenHash := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(tokenHash), []byte(hash)) == 1
}

// ConstantTimeEquals compares two shared secrets without leaking length of
// the common prefix.
func ConstantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
