package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

const aesCTRIVSize = 16

// aesCTRCipher implements LevelAES: AES-256-CTR, unauthenticated. The
// ciphertext is plaintext-malleable and must never be treated as
// authenticated by a caller; there is no MAC appended here.
type aesCTRCipher struct {
	key []byte
}

func newAESCTR(key []byte) (Cipher, error) {
	// Validate the key once up front so a bad key fails at New, not at
	// the first Encrypt call.
	if _, err := aes.NewCipher(key); err != nil {
		return nil, fmt.Errorf("crypto: aes-ctr: %w", err)
	}
	return &aesCTRCipher{key: key}, nil
}

func (c *aesCTRCipher) Encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("crypto: aes-ctr: %w", err)
	}
	iv := make([]byte, aesCTRIVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("crypto: generate iv: %w", err)
	}
	stream := cipher.NewCTR(block, iv)
	ciphertext := make([]byte, len(plaintext))
	stream.XORKeyStream(ciphertext, plaintext)
	return append(iv, ciphertext...), nil
}

func (c *aesCTRCipher) Decrypt(envelope []byte) ([]byte, error) {
	if len(envelope) < aesCTRIVSize {
		return nil, errCryptoEnvelopeTooShort
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("crypto: aes-ctr: %w", err)
	}
	iv, ciphertext := envelope[:aesCTRIVSize], envelope[aesCTRIVSize:]
	stream := cipher.NewCTR(block, iv)
	plaintext := make([]byte, len(ciphertext))
	stream.XORKeyStream(plaintext, ciphertext)
	return plaintext, nil
}

func (c *aesCTRCipher) Level() Level        { return LevelAES }
func (c *aesCTRCipher) Authenticated() bool { return false }
