package utils

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters for newly hashed passwords.
const (
	passwordIterations = 100000
	passwordKeyLen     = 64
	passwordSaltLen    = 16
	passwordScheme     = "pbkdf2-sha512"
)

var errMalformedHash = errors.New("malformed password hash")

// HashPassword derives a PBKDF2-SHA512 key with a fresh random salt and
// encodes it as pbkdf2-sha512$<iterations>$<salt hex>$<key hex>.
func HashPassword(plain string) (string, error) {
	salt := make([]byte, passwordSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	key := pbkdf2.Key([]byte(plain), []byte(saltHex), passwordIterations, passwordKeyLen, sha512.New)
	return fmt.Sprintf("%s$%d$%s$%s", passwordScheme, passwordIterations, saltHex, hex.EncodeToString(key)), nil
}

// VerifyPassword reports whether plain matches stored.  Both the current
// self-describing format and the legacy "<salt hex>:<key hex>" format are
// accepted.  Malformed hashes never match.
func VerifyPassword(stored, plain string) bool {
	salt, want, iterations, err := parseStoredHash(stored)
	if err != nil || len(want) == 0 {
		return false
	}
	got := pbkdf2.Key([]byte(plain), []byte(salt), iterations, len(want), sha512.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// parseStoredHash returns the salt text, expected key and iteration count.
// The salt is used as its hex text, not decoded, to stay compatible with
// hashes produced before the format carried its parameters.
func parseStoredHash(stored string) (string, []byte, int, error) {
	if strings.HasPrefix(stored, passwordScheme+"$") {
		parts := strings.Split(stored, "$")
		if len(parts) != 4 {
			return "", nil, 0, errMalformedHash
		}
		iterations, err := strconv.Atoi(parts[1])
		if err != nil || iterations < 1 {
			return "", nil, 0, errMalformedHash
		}
		key, err := hex.DecodeString(parts[3])
		if err != nil {
			return "", nil, 0, errMalformedHash
		}
		return parts[2], key, iterations, nil
	}
	salt, keyHex, ok := strings.Cut(stored, ":")
	if !ok || salt == "" {
		return "", nil, 0, errMalformedHash
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return "", nil, 0, errMalformedHash
	}
	return salt, key, passwordIterations, nil
}
