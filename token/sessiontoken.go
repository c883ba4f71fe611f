// Package token derives session tokens from a client's connection identity.
//
// A token binds (ip, userId, username): each input is hashed to a
// fixed-length hex digest and the three digests are interleaved character by
// character. The value is stateless; verification recomputes the derivation
// and compares it against the stored copy. It is an identity binding, not a
// credential store, and is kept separate from password hashing.
package token

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
)

// Derive computes the session token for the given connection identity.
// Deterministic: the same inputs always yield the same token.
func Derive(ip, userID, username string) string {
	a := digest(ip)
	b := digest(userID)
	c := digest(username)

	// All three digests have equal length, so indexing is safe.
	out := make([]byte, 0, 3*len(a))
	for i := 0; i < len(a); i++ {
		out = append(out, a[i], b[i], c[i])
	}
	return string(out)
}

// Verify compares a presented token against a stored one. Expiry is the
// storage layer's concern; this is structural equality only and never fails
// with an error.
func Verify(presented, stored string) bool {
	if len(presented) != len(stored) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1
}

func digest(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
