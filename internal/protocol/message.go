// Package protocol implements the netcopy wire messages: fixed 16-byte
// headers followed by typed, length-prefixed payloads.
package protocol

import "fmt"

// Type identifies a message kind. Values match the wire encoding exactly.
type Type uint32

const (
	TypeHandshakeRequest  Type = 1
	TypeHandshakeResponse Type = 2
	TypeFileRequest       Type = 3
	TypeFileResponse      Type = 4
	TypeFileData          Type = 5
	TypeFileAck           Type = 6
	TypeErrorMessage      Type = 9
)

func (t Type) String() string {
	switch t {
	case TypeHandshakeRequest:
		return "HANDSHAKE_REQUEST"
	case TypeHandshakeResponse:
		return "HANDSHAKE_RESPONSE"
	case TypeFileRequest:
		return "FILE_REQUEST"
	case TypeFileResponse:
		return "FILE_RESPONSE"
	case TypeFileData:
		return "FILE_DATA"
	case TypeFileAck:
		return "FILE_ACK"
	case TypeErrorMessage:
		return "ERROR_MESSAGE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint32(t))
	}
}

// HeaderSize is the fixed size of the message header in bytes.
const HeaderSize = 16

// Header precedes every message body on the wire. Reserved must be zero
// on send and is ignored on receive.
type Header struct {
	Type            Type
	PayloadLength   uint32
	SequenceNumber  uint32
	Reserved        uint32
}

// Message is the interface every typed wire message implements.
//
// SequenceNumber is informational: peers may reject a non-monotonic
// one, but it carries no cryptographic weight unless the channel layer
// chooses to feed it into AEAD associated data.
type Message interface {
	Type() Type
	SequenceNumber() uint32
	SetSequenceNumber(uint32)
}

type base struct {
	seq uint32
}

func (b *base) SequenceNumber() uint32      { return b.seq }
func (b *base) SetSequenceNumber(s uint32)  { b.seq = s }

// HandshakeRequest is sent first, in cleartext, by the client.
type HandshakeRequest struct {
	base
	ClientVersion string
	ClientNonce   []byte // 16 bytes, unused in key derivation
	SecurityLevel uint8
}

func (*HandshakeRequest) Type() Type { return TypeHandshakeRequest }

// HandshakeResponse is the server's cleartext reply to HandshakeRequest.
type HandshakeResponse struct {
	base
	ServerVersion          string
	ServerNonce            []byte // 16 bytes, unused in key derivation
	AuthRequired           bool
	AcceptedSecurityLevel  uint8
}

func (*HandshakeResponse) Type() Type { return TypeHandshakeResponse }

// FileRequest opens (or resumes) a transfer for a single file.
//
// ResumeOffset here is a flag, not an offset: zero means "fresh transfer,
// truncate", non-zero means "resume". The server reports the real offset
// to resume from in FileResponse.ResumeOffset.
type FileRequest struct {
	base
	SourcePath      string
	DestinationPath string
	Recursive       bool
	ResumeOffset    uint64
}

func (*FileRequest) Type() Type { return TypeFileRequest }

// FileResponse answers a FileRequest.
type FileResponse struct {
	base
	Success      bool
	Error        string
	FileSize     uint64
	ResumeOffset uint64
}

func (*FileResponse) Type() Type { return TypeFileResponse }

// FileData carries one chunk of plaintext file content at Offset.
//
// Offset is always the plaintext file offset, regardless of Compressed.
// When Compressed is true, the first four bytes of Data are a little-
// endian uint32 giving the uncompressed length of the remaining LZ4
// block.
type FileData struct {
	base
	Offset      uint64
	Data        []byte
	IsLastChunk bool
	Compressed  bool
}

func (*FileData) Type() Type { return TypeFileData }

// FileAck answers a FileData chunk.
type FileAck struct {
	base
	BytesReceived uint64
	Success       bool
	Error         string
}

func (*FileAck) Type() Type { return TypeFileAck }

// ErrorMessage reports a fatal protocol-level condition.
type ErrorMessage struct {
	base
	Code        uint32
	Description string
}

func (*ErrorMessage) Type() Type { return TypeErrorMessage }
