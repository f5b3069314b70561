// Package ident generates the two identifier kinds used across the service:
// opaque record IDs and high-entropy bearer tokens for invitations and
// sessions. Tokens are 256-bit and hex encoded; they are used directly as
// lookup keys, so equality is the only operation ever performed on them.
package ident

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

const tokenBytes = 32

// NewID returns a fresh opaque record identifier.
func NewID() string {
	return uuid.NewString()
}

// NewToken returns a fresh 256-bit bearer token, hex encoded.
func NewToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; refusing to issue
		// a weak token is the only acceptable behavior if it somehow does.
		panic(err)
	}
	return hex.EncodeToString(buf)
}
