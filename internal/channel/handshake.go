package channel

import (
	"crypto/rand"
	"fmt"
	"io"

	netcopycrypto "github.com/Sean-Khorasani/net-copy/internal/crypto"
	"github.com/Sean-Khorasani/net-copy/internal/protocol"
)

const nonceSize = 16

// Both handshake messages are sent in cleartext: a key is needed
// before any AEAD frame can be produced, so the first exchange has to
// happen outside the AEAD layer.
func writeCleartext(w io.Writer, m protocol.Message) error {
	m.SetSequenceNumber(1)
	data, err := protocol.Encode(m)
	if err != nil {
		return err
	}
	return protocol.WriteFrame(w, data)
}

func readCleartext(r io.Reader) (protocol.Message, error) {
	data, err := protocol.ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return protocol.Decode(data)
}

func randomNonce() ([]byte, error) {
	n := make([]byte, nonceSize)
	if _, err := rand.Read(n); err != nil {
		return nil, fmt.Errorf("channel: generate nonce: %w", err)
	}
	return n, nil
}

// ClientHandshake sends HandshakeRequest, awaits HandshakeResponse, and
// returns a Channel ready to exchange AEAD-wrapped messages.
//
// client_nonce/server_nonce are generated and exchanged but not mixed
// into any key or MAC; they are carried for wire compatibility only.
func ClientHandshake(rw io.ReadWriter, presharedKey []byte, clientVersion string, level netcopycrypto.Level) (*Channel, *Result, error) {
	nonce, err := randomNonce()
	if err != nil {
		return nil, nil, err
	}
	req := &protocol.HandshakeRequest{
		ClientVersion: clientVersion,
		ClientNonce:   nonce,
		SecurityLevel: uint8(level),
	}
	if err := writeCleartext(rw, req); err != nil {
		return nil, nil, fmt.Errorf("channel: send handshake request: %w", err)
	}

	respMsg, err := readCleartext(rw)
	if err != nil {
		return nil, nil, fmt.Errorf("channel: receive handshake response: %w", err)
	}
	resp, ok := respMsg.(*protocol.HandshakeResponse)
	if !ok {
		return nil, nil, &ProtocolError{Op: "client-handshake", Err: fmt.Errorf("expected HANDSHAKE_RESPONSE, got %s", respMsg.Type())}
	}

	acceptedLevel := netcopycrypto.Level(resp.AcceptedSecurityLevel)
	ch, err := newChannel(rw, presharedKey, acceptedLevel)
	if err != nil {
		return nil, nil, err
	}
	return ch, &Result{
		AcceptedLevel: acceptedLevel,
		AuthRequired:  resp.AuthRequired,
		PeerVersion:   resp.ServerVersion,
	}, nil
}

// ServerHandshake awaits HandshakeRequest, replies with
// HandshakeResponse, and returns a Channel ready to exchange
// AEAD-wrapped messages.
//
// The server accepts the requested security level as-is; there is no
// downgrade negotiation, it simply reflects back what it received.
func ServerHandshake(rw io.ReadWriter, presharedKey []byte, serverVersion string, requireAuth bool) (*Channel, *Result, error) {
	reqMsg, err := readCleartext(rw)
	if err != nil {
		return nil, nil, fmt.Errorf("channel: receive handshake request: %w", err)
	}
	req, ok := reqMsg.(*protocol.HandshakeRequest)
	if !ok {
		return nil, nil, &ProtocolError{Op: "server-handshake", Err: fmt.Errorf("expected HANDSHAKE_REQUEST, got %s", reqMsg.Type())}
	}

	level := netcopycrypto.Level(req.SecurityLevel)
	nonce, err := randomNonce()
	if err != nil {
		return nil, nil, err
	}
	resp := &protocol.HandshakeResponse{
		ServerVersion:         serverVersion,
		ServerNonce:           nonce,
		AuthRequired:          requireAuth,
		AcceptedSecurityLevel: req.SecurityLevel,
	}
	if err := writeCleartext(rw, resp); err != nil {
		return nil, nil, fmt.Errorf("channel: send handshake response: %w", err)
	}

	ch, err := newChannel(rw, presharedKey, level)
	if err != nil {
		return nil, nil, err
	}
	return ch, &Result{
		AcceptedLevel: level,
		AuthRequired:  requireAuth,
		PeerVersion:   req.ClientVersion,
	}, nil
}

func newChannel(rw io.ReadWriter, presharedKey []byte, level netcopycrypto.Level) (*Channel, error) {
	sessionKey, err := netcopycrypto.ExpandSessionKey(presharedKey)
	if err != nil {
		return nil, fmt.Errorf("channel: expand session key: %w", err)
	}
	cipher, err := netcopycrypto.New(level, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("channel: construct cipher: %w", err)
	}
	// Both handshake messages already consumed sequence number 1 in
	// their own direction, so the counters start at 1 and the first
	// post-handshake frame carries sequence number 2.
	return &Channel{rw: rw, cipher: cipher, writeSeq: 1, readSeq: 1}, nil
}
