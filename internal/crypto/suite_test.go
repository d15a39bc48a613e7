package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func TestAuthenticatedCiphersRoundTrip(t *testing.T) {
	for _, level := range []Level{LevelHigh, LevelAESGCM} {
		level := level
		t.Run(level.String(), func(t *testing.T) {
			key := testKey(t)
			c, err := New(level, key)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			plaintext := []byte("netcopy secure transfer engine test payload")

			envelope, err := c.Encrypt(plaintext)
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}
			got, err := c.Decrypt(envelope)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Fatalf("round trip mismatch: got %q, want %q", got, plaintext)
			}

			// Flipping any bit of the envelope must make decryption fail.
			tampered := append([]byte{}, envelope...)
			tampered[len(tampered)-1] ^= 0x01
			if _, err := c.Decrypt(tampered); err == nil {
				t.Fatal("expected CryptoError after bit flip, got nil")
			}
		})
	}
}

func TestAuthenticatedCiphersNonceUniqueness(t *testing.T) {
	for _, level := range []Level{LevelHigh, LevelAESGCM} {
		level := level
		t.Run(level.String(), func(t *testing.T) {
			key := testKey(t)
			c, err := New(level, key)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			const n = 2000 // kept small to keep unit tests fast
			seen := make(map[string]bool, n)
			plaintext := []byte("x")
			for i := 0; i < n; i++ {
				envelope, err := c.Encrypt(plaintext)
				if err != nil {
					t.Fatalf("Encrypt: %v", err)
				}
				nonce := string(envelope[:12])
				if seen[nonce] {
					t.Fatalf("nonce repeated after %d encryptions", i)
				}
				seen[nonce] = true
			}
		})
	}
}

func TestUnauthenticatedCiphersRoundTrip(t *testing.T) {
	for _, level := range []Level{LevelAES, LevelFast} {
		level := level
		t.Run(level.String(), func(t *testing.T) {
			key := testKey(t)
			c, err := New(level, key)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if c.Authenticated() {
				t.Fatalf("%s must report Authenticated() == false", level)
			}
			plaintext := []byte("unauthenticated round trip payload")
			envelope, err := c.Encrypt(plaintext)
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}
			got, err := c.Decrypt(envelope)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Fatalf("round trip mismatch: got %q, want %q", got, plaintext)
			}
		})
	}
}

func TestFastCipherDeterministicPerFrame(t *testing.T) {
	key := testKey(t)
	c1, _ := New(LevelFast, key)
	c2, _ := New(LevelFast, key)
	plaintext := []byte("same plaintext, two independent frames")

	e1, err := c1.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	e2, err := c2.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if !bytes.Equal(e1, e2) {
		t.Fatal("FAST cipher must be deterministic per frame given the same key and plaintext")
	}
}

func TestWrongKeySizeRejected(t *testing.T) {
	for _, level := range []Level{LevelHigh, LevelAES, LevelAESGCM} {
		if _, err := New(level, make([]byte, 16)); err == nil {
			t.Fatalf("%s: expected error for short key", level)
		}
	}
}

func TestParseHexKeyAcceptsOptionalPrefix(t *testing.T) {
	raw := make([]byte, KeySize)
	for i := range raw {
		raw[i] = byte(i)
	}
	hexKey := EncodeHexKey(raw)

	got, err := ParseHexKey(hexKey)
	if err != nil {
		t.Fatalf("ParseHexKey: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("round trip mismatch")
	}

	gotPrefixed, err := ParseHexKey("0x" + hexKey)
	if err != nil {
		t.Fatalf("ParseHexKey with 0x prefix: %v", err)
	}
	if !bytes.Equal(gotPrefixed, raw) {
		t.Fatalf("prefixed round trip mismatch")
	}
}

func TestParseHexKeyRejectsWrongLength(t *testing.T) {
	if _, err := ParseHexKey("abcd"); err == nil {
		t.Fatal("expected error for short hex key")
	}
}

func TestExpandSessionKeyDeterministic(t *testing.T) {
	key := testKey(t)
	a, err := ExpandSessionKey(key)
	if err != nil {
		t.Fatalf("ExpandSessionKey: %v", err)
	}
	b, err := ExpandSessionKey(key)
	if err != nil {
		t.Fatalf("ExpandSessionKey: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("ExpandSessionKey must be deterministic for the same input")
	}
	if len(a) != KeySize {
		t.Fatalf("expanded key has wrong length: %d", len(a))
	}
}
