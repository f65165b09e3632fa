package auth

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// NewInviteToken returns a fresh invite token and the digest to persist.
// The token itself is handed to the inviter once and never stored.
func NewInviteToken() (token, digest string) {
	token = strings.ReplaceAll(uuid.NewString(), "-", "")
	return token, InviteDigest(token)
}

// InviteDigest returns the hex BLAKE2b-256 digest of an invite token.
func InviteDigest(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
