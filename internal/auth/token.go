package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// tokenBytes of randomness give a 64 character hex token.
const tokenBytes = 32

// IssueToken generates an API token and the hash to configure as
// auth.token_hash. Only the hash is meant to be stored.
func IssueToken() (token, hash string, err error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("token entropy: %w", err)
	}
	token = hex.EncodeToString(b)
	if hash, err = HashToken(token); err != nil {
		return "", "", err
	}
	return token, hash, nil
}

// HashToken returns the bcrypt hash stored in auth.token_hash.
func HashToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if len(token) < 16 {
		return "", errors.New("token too short (min 16)")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
