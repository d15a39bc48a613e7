// Package server implements the receiving side of the per-file
// sub-protocol: authorize and resolve destinations, create
// directories, open/extend target files, apply chunks at explicit
// offsets, and answer with progress.
package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sean-Khorasani/net-copy/internal/compress"
	"github.com/Sean-Khorasani/net-copy/internal/pathpolicy"
	"github.com/Sean-Khorasani/net-copy/internal/protocol"
)

// transferContext is the per-in-flight-file state: it exists from a
// successful FileResponse until the last FileAck of that file is sent.
// HandleFileRequest replaces it wholesale, since one connection only
// ever has one file open at a time; there is no pipelining of FileData
// ahead of its FileAck.
type transferContext struct {
	destinationNativePath string
	isMarker               bool
	expectedNextOffset     uint64
	completed              bool
}

// Engine applies one connection's worth of FileRequest/FileData
// messages against the local filesystem, inside the policy's allowed
// roots.
type Engine struct {
	policy  *pathpolicy.Policy
	current *transferContext
}

// New returns an Engine that authorizes destinations against policy.
func New(policy *pathpolicy.Policy) *Engine {
	return &Engine{policy: policy}
}

// HandleFileRequest authorizes and resolves a destination path,
// creates parent directories, and reports any resume offset, replying
// with a FileResponse that never terminates the session even on
// failure.
func (e *Engine) HandleFileRequest(req *protocol.FileRequest) *protocol.FileResponse {
	native := pathpolicy.ToNative(req.DestinationPath, os.PathSeparator)

	if !pathpolicy.IsAbsolute(native) {
		return failResponse("relative paths not allowed")
	}
	resolved := filepath.Clean(native)

	if !e.policy.IsAllowed(resolved) {
		return failResponse(fmt.Sprintf("destination %q is outside the allowed roots", resolved))
	}

	if info, err := os.Stat(resolved); err == nil && info.IsDir() {
		resolved = filepath.Join(resolved, filepath.Base(filepath.Clean(req.SourcePath)))
		if !e.policy.IsAllowed(resolved) {
			return failResponse(fmt.Sprintf("destination %q is outside the allowed roots", resolved))
		}
	}

	var resumeOffset uint64
	if req.ResumeOffset != 0 {
		resumeOffset = currentSize(resolved)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return failResponse(fmt.Sprintf("create parent directories: %v", err))
	}

	e.current = &transferContext{
		destinationNativePath: resolved,
		isMarker:               filepath.Base(resolved) == pathpolicy.MarkerName,
		expectedNextOffset:     resumeOffset,
	}

	return &protocol.FileResponse{Success: true, ResumeOffset: resumeOffset, FileSize: 0}
}

// HandleFileData decompresses (if needed) and writes one chunk at its
// given offset, or marks an empty-directory marker complete.
func (e *Engine) HandleFileData(data *protocol.FileData) *protocol.FileAck {
	if e.current == nil || e.current.completed {
		return failAck("no transfer in progress")
	}
	ctx := e.current

	raw := data.Data
	if data.Compressed {
		decompressed, err := compress.DecompressChunk(data.Data)
		if err != nil {
			return failAck(fmt.Sprintf("decompress chunk: %v", err))
		}
		raw = decompressed
	}
	rawLen := uint64(len(raw))

	if ctx.isMarker {
		if err := os.MkdirAll(filepath.Dir(ctx.destinationNativePath), 0o755); err != nil {
			return failAck(fmt.Sprintf("create marker directory: %v", err))
		}
		if data.IsLastChunk {
			ctx.completed = true
		}
		return &protocol.FileAck{Success: true, BytesReceived: data.Offset + rawLen}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if data.Offset == 0 {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(ctx.destinationNativePath, flags, 0o644)
	if err != nil {
		return failAck(fmt.Sprintf("open destination: %v", err))
	}
	_, werr := f.WriteAt(raw, int64(data.Offset))
	cerr := f.Close()
	if werr != nil {
		return failAck(fmt.Sprintf("write destination: %v", werr))
	}
	if cerr != nil {
		return failAck(fmt.Sprintf("close destination: %v", cerr))
	}

	ctx.expectedNextOffset = data.Offset + rawLen
	if data.IsLastChunk {
		ctx.completed = true
	}
	return &protocol.FileAck{Success: true, BytesReceived: data.Offset + rawLen}
}

func currentSize(path string) uint64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return uint64(info.Size())
}

func failResponse(msg string) *protocol.FileResponse {
	return &protocol.FileResponse{Success: false, Error: msg}
}

func failAck(msg string) *protocol.FileAck {
	return &protocol.FileAck{Success: false, Error: msg}
}
