// Package compress implements the per-chunk LZ4 block compression used
// by the transfer engine. Each compressed chunk is prefixed with its
// own uncompressed length (little-endian u32) so the server can
// decompress without needing a side channel.
package compress

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

const lengthPrefixSize = 4

// nonCompressibleExtensions mirrors the source engine's deny-list
// (already-compressed containers gain nothing from a second pass and
// sometimes grow slightly under LZ4).
var nonCompressibleExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".mp3": true, ".mp4": true, ".avi": true,
	".zip": true, ".gz": true, ".bz2": true, ".rar": true, ".7z": true, ".lz4": true,
	".pdf": true, ".mpg": true, ".mpeg": true, ".ogg": true, ".flac": true,
}

// IsCompressible decides whether a chunk from the named source file is
// worth running through LZ4, based solely on the lowercased extension.
func IsCompressible(ext string) bool {
	return !nonCompressibleExtensions[ext]
}

// CompressChunk LZ4-block-compresses data and prepends its
// uncompressed length so DecompressChunk never needs it supplied
// separately. When the prefixed block is not shorter than data (short
// chunks, high-entropy data, a file's final partial chunk),
// CompressChunk returns data itself with compressed=false and the
// caller sends it as-is instead of treating that as a failure.
func CompressChunk(data []byte) ([]byte, bool, error) {
	bound := lz4.CompressBlockBound(len(data))
	out := make([]byte, lengthPrefixSize+bound)
	binary.LittleEndian.PutUint32(out[:lengthPrefixSize], uint32(len(data)))

	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(data, out[lengthPrefixSize:])
	if err != nil {
		return nil, false, fmt.Errorf("compress: %w", err)
	}
	if len(data) > 0 && (n == 0 || lengthPrefixSize+n >= len(data)) {
		return data, false, nil
	}
	return out[:lengthPrefixSize+n], true, nil
}

// DecompressChunk reverses CompressChunk, reading the uncompressed
// length from the 4-byte prefix this package itself wrote.
func DecompressChunk(blob []byte) ([]byte, error) {
	if len(blob) < lengthPrefixSize {
		return nil, fmt.Errorf("compress: chunk too short for length prefix")
	}
	uncompressedLen := binary.LittleEndian.Uint32(blob[:lengthPrefixSize])
	out := make([]byte, uncompressedLen)
	if uncompressedLen == 0 {
		return out, nil
	}
	n, err := lz4.UncompressBlock(blob[lengthPrefixSize:], out)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out[:n], nil
}
