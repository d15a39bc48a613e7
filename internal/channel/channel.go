// Package channel drives the netcopy handshake and wraps every
// post-handshake message in the negotiated AEAD cipher, enforcing a
// strictly-increasing sequence number per direction.
package channel

import (
	"fmt"
	"io"
	"sync"

	"github.com/Sean-Khorasani/net-copy/internal/crypto"
	"github.com/Sean-Khorasani/net-copy/internal/protocol"
)

// Version is advertised in HandshakeRequest/HandshakeResponse.
const Version = "netcopy/1.0"

// Channel is one connection's secure message stream: handshake done,
// cipher negotiated, sequence counters tracked per direction.
type Channel struct {
	rw     io.ReadWriter
	cipher crypto.Cipher

	mu       sync.Mutex
	writeSeq uint32
	readSeq  uint32
}

// Result carries the negotiated parameters both sides end up agreeing
// on after a completed handshake.
type Result struct {
	AcceptedLevel crypto.Level
	AuthRequired  bool
	PeerVersion   string
}

// SendMessage assigns the next strictly-increasing sequence number,
// encrypts the serialized message, and writes one transport frame.
func (c *Channel) SendMessage(m protocol.Message) error {
	c.mu.Lock()
	c.writeSeq++
	m.SetSequenceNumber(c.writeSeq)
	c.mu.Unlock()

	plaintext, err := protocol.Encode(m)
	if err != nil {
		return err
	}
	envelope, err := c.cipher.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("channel: encrypt: %w", err)
	}
	return protocol.WriteFrame(c.rw, envelope)
}

// ReceiveMessage reads one transport frame, decrypts it, decodes the
// message, and enforces that its sequence number is strictly greater
// than the previous one seen from this peer.
func (c *Channel) ReceiveMessage() (protocol.Message, error) {
	envelope, err := protocol.ReadFrame(c.rw)
	if err != nil {
		return nil, err
	}
	plaintext, err := c.cipher.Decrypt(envelope)
	if err != nil {
		return nil, fmt.Errorf("channel: decrypt: %w", err)
	}
	m, err := protocol.Decode(plaintext)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m.SequenceNumber() <= c.readSeq {
		return nil, &ProtocolError{Op: "receive", Err: fmt.Errorf(
			"non-monotonic sequence number: got %d, last was %d", m.SequenceNumber(), c.readSeq)}
	}
	c.readSeq = m.SequenceNumber()
	return m, nil
}
