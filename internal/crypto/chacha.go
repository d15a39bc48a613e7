package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// chacha20Poly1305Cipher implements LevelHigh: chacha20poly1305.New over
// a pre-shared 32-byte key, with a freshly random nonce per call.
type chacha20Poly1305Cipher struct {
	aead cipherAEAD
}

func newChaCha20Poly1305(key []byte) (Cipher, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: chacha20poly1305: %w", err)
	}
	return &chacha20Poly1305Cipher{aead: aead}, nil
}

func (c *chacha20Poly1305Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: generate nonce: %w", err)
	}
	ciphertext := c.aead.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ciphertext...), nil
}

func (c *chacha20Poly1305Cipher) Decrypt(envelope []byte) ([]byte, error) {
	nonceSize := c.aead.NonceSize()
	if len(envelope) < nonceSize {
		return nil, errCryptoEnvelopeTooShort
	}
	nonce, ciphertext := envelope[:nonceSize], envelope[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errCryptoAuthFailed
	}
	return plaintext, nil
}

func (c *chacha20Poly1305Cipher) Level() Level    { return LevelHigh }
func (c *chacha20Poly1305Cipher) Authenticated() bool { return true }

// cipherAEAD is the subset of cipher.AEAD this suite uses.
type cipherAEAD interface {
	NonceSize() int
	Overhead() int
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}
