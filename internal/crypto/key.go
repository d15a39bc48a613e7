package crypto

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseHexKey accepts a 64-character hex string, optionally "0x"-prefixed,
// as the only accepted pre-shared key material.
func ParseHexKey(s string) ([]byte, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "0x")
	trimmed = strings.TrimPrefix(trimmed, "0X")

	if len(trimmed) != KeySize*2 {
		return nil, fmt.Errorf("crypto: secret key must be %d hex characters, got %d", KeySize*2, len(trimmed))
	}
	key, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("crypto: secret key is not valid hex: %w", err)
	}
	return key, nil
}

// EncodeHexKey is the inverse of ParseHexKey, used by the key-generation
// helper.
func EncodeHexKey(key []byte) string {
	return hex.EncodeToString(key)
}
