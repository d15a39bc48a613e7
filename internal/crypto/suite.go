// Package crypto implements four interchangeable AEAD-ish cipher
// suites behind one Cipher contract, plus pre-shared-key material
// helpers (hex key parsing, password KDF).
package crypto

import "fmt"

// Level names the four cipher suites, matching the single wire byte
// carried in HandshakeRequest.security_level and
// HandshakeResponse.accepted_security_level.
type Level uint8

const (
	LevelHigh      Level = 0 // ChaCha20-Poly1305, authenticated
	LevelAES       Level = 1 // AES-256-CTR, unauthenticated
	LevelAESGCM    Level = 2 // AES-256-GCM, authenticated
	LevelFast      Level = 3 // rolling XOR, unauthenticated, benchmark only
)

func (l Level) String() string {
	switch l {
	case LevelHigh:
		return "HIGH"
	case LevelAES:
		return "AES"
	case LevelAESGCM:
		return "AES_256_GCM"
	case LevelFast:
		return "FAST"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(l))
	}
}

// KeySize is the fixed pre-shared key length every cipher requires.
const KeySize = 32

// Cipher is the contract all four suites implement. Each embeds any
// randomness it needs (nonce/IV) directly in its output, so callers
// never need to know which variant is active to frame a message.
type Cipher interface {
	// Encrypt returns ciphertext with any nonce/IV/tag baked into the
	// envelope, per variant.
	Encrypt(plaintext []byte) ([]byte, error)
	// Decrypt reverses Encrypt. It never distinguishes "bad tag" from
	// "malformed envelope" in its error; a caller must not be able to
	// learn which failure occurred.
	Decrypt(envelope []byte) ([]byte, error)
	Level() Level
	Authenticated() bool
}

// New constructs the Cipher for the given level and pre-shared key.
// key must be exactly KeySize bytes.
func New(level Level, key []byte) (Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("crypto: key must be %d bytes, got %d", KeySize, len(key))
	}
	switch level {
	case LevelHigh:
		return newChaCha20Poly1305(key)
	case LevelAES:
		return newAESCTR(key)
	case LevelAESGCM:
		return newAESGCM(key)
	case LevelFast:
		return newXORCipher(key), nil
	default:
		return nil, fmt.Errorf("crypto: unknown security level %d", uint8(level))
	}
}
