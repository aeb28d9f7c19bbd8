package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength    = 16
	argonTime     = 1
	argonMemory   = 64 * 1024
	argonThreads  = 4
	argonKeyLen   = 32
	storedFormSep = "."
)

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// HashPassword derives an argon2id hash of the password under a fresh random
// salt and encodes both as "hash.salt" hex.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := deriveKey(password, salt)
	return hex.EncodeToString(hash) + storedFormSep + hex.EncodeToString(salt), nil
}

// VerifyPassword recomputes the hash with the stored salt and compares in
// constant time. Malformed stored forms verify as false, never as an error.
func VerifyPassword(supplied, stored string) bool {
	hashHex, saltHex, ok := strings.Cut(stored, storedFormSep)
	if !ok {
		return false
	}
	hash, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	candidate := deriveKey(supplied, salt)
	return subtle.ConstantTimeCompare(hash, candidate) == 1
}
