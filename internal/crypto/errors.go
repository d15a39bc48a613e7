package crypto

import "errors"

// Error is a fatal decryption failure: tag mismatch, or a ciphertext
// too short to contain its envelope. The two failure modes deliberately
// share one message so a caller cannot distinguish "authentication
// failed" from "envelope malformed".
var Error = errors.New("crypto: decryption failed")

var (
	errCryptoEnvelopeTooShort = Error
	errCryptoAuthFailed       = Error
)
