package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// fixedSalt is required for interoperability with already-generated
// keys; it must never change.
var fixedSalt = []byte("NetCopySalt1234567890ABCDEFGHIJK")

const pbkdf2Iterations = 100000

// DeriveFromPassword turns a master password into a KeySize-byte secret
// using PBKDF2-HMAC-SHA-256. Used by the key-generation helper.
func DeriveFromPassword(password string) []byte {
	return pbkdf2.Key([]byte(password), fixedSalt, pbkdf2Iterations, KeySize, sha256.New)
}

// ExpandSessionKey stretches the raw pre-shared key through HKDF before
// either peer ever constructs an AEAD from it. Both peers hold the same
// pre-shared key and expand it with the same fixed label, so nothing is
// exchanged over the wire; this is a local, deterministic re-keying of
// material both sides already have, not a negotiation.
func ExpandSessionKey(presharedKey []byte) ([]byte, error) {
	out := make([]byte, KeySize)
	kdf := hkdf.New(sha256.New, presharedKey, nil, []byte("netcopy-session"))
	if _, err := kdf.Read(out); err != nil {
		return nil, err
	}
	return out, nil
}
