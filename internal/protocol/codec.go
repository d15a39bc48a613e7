package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MaxFrameLength caps a single frame's payload to keep a hostile peer
// from forcing an unbounded allocation while we read the length prefix.
const MaxFrameLength = 64 * 1024 * 1024

// Encode serializes a message to its full wire form: 16-byte header
// followed by the type-specific body. Encoding never truncates; a
// length that would not fit in a uint32 is an invariant violation.
func Encode(m Message) ([]byte, error) {
	body, err := encodeBody(m)
	if err != nil {
		return nil, newProtocolError("encode", err)
	}
	if len(body) > math.MaxUint32-HeaderSize {
		return nil, newProtocolError("encode", fmt.Errorf("payload too large: %d bytes", len(body)))
	}

	out := make([]byte, HeaderSize+len(body))
	binary.LittleEndian.PutUint32(out[0:4], uint32(m.Type()))
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(body)))
	binary.LittleEndian.PutUint32(out[8:12], m.SequenceNumber())
	binary.LittleEndian.PutUint32(out[12:16], 0) // reserved, always zero on send
	copy(out[HeaderSize:], body)
	return out, nil
}

// Decode parses the full wire form of a single message. Decoding is
// strict: underflow, an unknown type code, or trailing bytes after a
// fixed-size body all fail with a protocol Error.
func Decode(data []byte) (Message, error) {
	if len(data) < HeaderSize {
		return nil, newProtocolError("decode", fmt.Errorf("short header: %d bytes", len(data)))
	}
	h := Header{
		Type:           Type(binary.LittleEndian.Uint32(data[0:4])),
		PayloadLength:  binary.LittleEndian.Uint32(data[4:8]),
		SequenceNumber: binary.LittleEndian.Uint32(data[8:12]),
		Reserved:       binary.LittleEndian.Uint32(data[12:16]),
	}
	body := data[HeaderSize:]
	if uint32(len(body)) != h.PayloadLength {
		return nil, newProtocolError("decode", fmt.Errorf("payload length mismatch: header says %d, got %d", h.PayloadLength, len(body)))
	}

	m, err := decodeBody(h.Type, body)
	if err != nil {
		return nil, newProtocolError("decode", err)
	}
	setSeq(m, h.SequenceNumber)
	return m, nil
}

func setSeq(m Message, seq uint32) {
	m.SetSequenceNumber(seq)
}

var errUnderflow = errors.New("unexpected end of payload")

type reader struct {
	b []byte
}

func (r *reader) u8() (uint8, error) {
	if len(r.b) < 1 {
		return 0, errUnderflow
	}
	v := r.b[0]
	r.b = r.b[1:]
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if len(r.b) < 4 {
		return 0, errUnderflow
	}
	v := binary.LittleEndian.Uint32(r.b[:4])
	r.b = r.b[4:]
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if len(r.b) < 8 {
		return 0, errUnderflow
	}
	v := binary.LittleEndian.Uint64(r.b[:8])
	r.b = r.b[8:]
	return v, nil
}

func (r *reader) bool() (bool, error) {
	v, err := r.u8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (r *reader) bytes() ([]byte, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if uint64(len(r.b)) < uint64(n) {
		return nil, errUnderflow
	}
	out := make([]byte, n)
	copy(out, r.b[:n])
	r.b = r.b[n:]
	return out, nil
}

func (r *reader) string() (string, error) {
	b, err := r.bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) done() error {
	if len(r.b) != 0 {
		return fmt.Errorf("trailing bytes: %d", len(r.b))
	}
	return nil
}

type writer struct {
	b []byte
}

func (w *writer) u8(v uint8) { w.b = append(w.b, v) }

func (w *writer) u32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.b = append(w.b, tmp[:]...)
}

func (w *writer) u64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.b = append(w.b, tmp[:]...)
}

func (w *writer) boolean(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *writer) bytes(v []byte) {
	w.u32(uint32(len(v)))
	w.b = append(w.b, v...)
}

func (w *writer) string(v string) {
	w.bytes([]byte(v))
}

func encodeBody(m Message) ([]byte, error) {
	w := &writer{}
	switch msg := m.(type) {
	case *HandshakeRequest:
		w.string(msg.ClientVersion)
		w.bytes(msg.ClientNonce)
		w.u8(msg.SecurityLevel)
	case *HandshakeResponse:
		w.string(msg.ServerVersion)
		w.bytes(msg.ServerNonce)
		w.boolean(msg.AuthRequired)
		w.u8(msg.AcceptedSecurityLevel)
	case *FileRequest:
		w.string(msg.SourcePath)
		w.string(msg.DestinationPath)
		w.boolean(msg.Recursive)
		w.u64(msg.ResumeOffset)
	case *FileResponse:
		w.boolean(msg.Success)
		w.string(msg.Error)
		w.u64(msg.FileSize)
		w.u64(msg.ResumeOffset)
	case *FileData:
		w.u64(msg.Offset)
		w.bytes(msg.Data)
		w.boolean(msg.IsLastChunk)
		w.boolean(msg.Compressed)
	case *FileAck:
		w.u64(msg.BytesReceived)
		w.boolean(msg.Success)
		w.string(msg.Error)
	case *ErrorMessage:
		w.u32(msg.Code)
		w.string(msg.Description)
	default:
		return nil, fmt.Errorf("unknown message type %T", m)
	}
	return w.b, nil
}

func decodeBody(t Type, body []byte) (Message, error) {
	r := &reader{b: body}
	var m Message

	switch t {
	case TypeHandshakeRequest:
		msg := &HandshakeRequest{}
		var err error
		if msg.ClientVersion, err = r.string(); err != nil {
			return nil, err
		}
		if msg.ClientNonce, err = r.bytes(); err != nil {
			return nil, err
		}
		if msg.SecurityLevel, err = r.u8(); err != nil {
			return nil, err
		}
		m = msg
	case TypeHandshakeResponse:
		msg := &HandshakeResponse{}
		var err error
		if msg.ServerVersion, err = r.string(); err != nil {
			return nil, err
		}
		if msg.ServerNonce, err = r.bytes(); err != nil {
			return nil, err
		}
		if msg.AuthRequired, err = r.bool(); err != nil {
			return nil, err
		}
		if msg.AcceptedSecurityLevel, err = r.u8(); err != nil {
			return nil, err
		}
		m = msg
	case TypeFileRequest:
		msg := &FileRequest{}
		var err error
		if msg.SourcePath, err = r.string(); err != nil {
			return nil, err
		}
		if msg.DestinationPath, err = r.string(); err != nil {
			return nil, err
		}
		if msg.Recursive, err = r.bool(); err != nil {
			return nil, err
		}
		if msg.ResumeOffset, err = r.u64(); err != nil {
			return nil, err
		}
		m = msg
	case TypeFileResponse:
		msg := &FileResponse{}
		var err error
		if msg.Success, err = r.bool(); err != nil {
			return nil, err
		}
		if msg.Error, err = r.string(); err != nil {
			return nil, err
		}
		if msg.FileSize, err = r.u64(); err != nil {
			return nil, err
		}
		if msg.ResumeOffset, err = r.u64(); err != nil {
			return nil, err
		}
		m = msg
	case TypeFileData:
		msg := &FileData{}
		var err error
		if msg.Offset, err = r.u64(); err != nil {
			return nil, err
		}
		if msg.Data, err = r.bytes(); err != nil {
			return nil, err
		}
		if msg.IsLastChunk, err = r.bool(); err != nil {
			return nil, err
		}
		if msg.Compressed, err = r.bool(); err != nil {
			return nil, err
		}
		m = msg
	case TypeFileAck:
		msg := &FileAck{}
		var err error
		if msg.BytesReceived, err = r.u64(); err != nil {
			return nil, err
		}
		if msg.Success, err = r.bool(); err != nil {
			return nil, err
		}
		if msg.Error, err = r.string(); err != nil {
			return nil, err
		}
		m = msg
	case TypeErrorMessage:
		msg := &ErrorMessage{}
		var err error
		if msg.Code, err = r.u32(); err != nil {
			return nil, err
		}
		if msg.Description, err = r.string(); err != nil {
			return nil, err
		}
		m = msg
	default:
		return nil, fmt.Errorf("unknown message type code %d", uint32(t))
	}

	if err := r.done(); err != nil {
		return nil, err
	}
	return m, nil
}

// WriteFrame writes one transport frame: a little-endian uint32 length
// prefix followed by exactly that many payload bytes. This is the
// transport-level frame, distinct from the message Header.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameLength {
		return newProtocolError("write-frame", fmt.Errorf("frame too large: %d bytes", len(payload)))
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return nil
}

// ReadFrame reads one transport frame and returns its payload bytes.
// Trailing bytes beyond the declared length are never consumed.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > MaxFrameLength {
		return nil, newProtocolError("read-frame", fmt.Errorf("frame too large: %d bytes", n))
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
