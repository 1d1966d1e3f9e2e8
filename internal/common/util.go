package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString generates size random bytes and returns them hex encoded,
// so the resulting string is 2*size characters long. Used for opaque refresh
// and password reset tokens.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites b with zeros. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
