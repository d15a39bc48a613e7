// Package client drives the sending side of the per-file sub-protocol:
// for every file under a local source tree, it runs
// FileRequest → FileResponse → FileData* → FileAck* to completion,
// honouring resume and optional per-chunk compression.
package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sean-Khorasani/net-copy/internal/channel"
	"github.com/Sean-Khorasani/net-copy/internal/compress"
	"github.com/Sean-Khorasani/net-copy/internal/pacer"
	"github.com/Sean-Khorasani/net-copy/internal/pathpolicy"
	"github.com/Sean-Khorasani/net-copy/internal/protocol"
)

// Options controls one transfer(source, destination) invocation.
type Options struct {
	Recursive              bool
	Resume                 bool
	Compress               bool
	CreateEmptyDirectories bool
	BufferSize             int
	Pacer                  *pacer.Pacer
	// OnProgress, when set, is called after each acknowledged chunk.
	OnProgress func(file string, bytesSent, fileSize uint64)
}

const defaultBufferSize = 65536

// Engine drives transfers for a single connection's worth of files.
type Engine struct {
	ch   *channel.Channel
	opts Options
}

// New returns an Engine bound to an already-handshaken channel.
func New(ch *channel.Channel, opts Options) *Engine {
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}
	return &Engine{ch: ch, opts: opts}
}

// Transfer walks source and sends every regular file found under it
// (or source itself, if it is a single file) to destinationRoot.
func (e *Engine) Transfer(ctx context.Context, source, destinationRoot string) error {
	p, err := buildPlan(source, destinationRoot, e.opts.Recursive)
	if err != nil {
		return err
	}

	for _, f := range p.files {
		if err := e.transferFile(ctx, f); err != nil {
			return err
		}
	}
	if e.opts.CreateEmptyDirectories {
		for _, d := range p.emptyDirs {
			if err := e.transferEmptyDirMarker(d); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) transferEmptyDirMarker(d emptyDirEntry) error {
	dest := d.destinationPath + "/" + pathpolicy.MarkerName
	resp, err := e.openRemote(dest, dest, false)
	if err != nil {
		return err
	}
	if !resp.Success {
		return &Error{Op: "create empty directory", Path: dest, Err: fmt.Errorf("%s", resp.Error)}
	}
	ack, err := e.sendChunk(protocol.FileData{Offset: 0, Data: nil, IsLastChunk: true, Compressed: false})
	if err != nil {
		return err
	}
	if !ack.Success {
		return &Error{Op: "create empty directory", Path: dest, Err: fmt.Errorf("%s", ack.Error)}
	}
	return nil
}

func (e *Engine) transferFile(ctx context.Context, f entry) error {
	fh, err := os.Open(f.sourcePath)
	if err != nil {
		return &Error{Op: "open source", Path: f.sourcePath, Err: err}
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return &Error{Op: "stat source", Path: f.sourcePath, Err: err}
	}
	fileSize := uint64(info.Size())

	resp, err := e.openRemote(f.sourcePath, f.destinationPath, e.opts.Resume)
	if err != nil {
		return err
	}
	if !resp.Success {
		return &Error{Op: "open remote destination", Path: f.destinationPath, Err: fmt.Errorf("%s", resp.Error)}
	}

	offset := resp.ResumeOffset
	if fileSize == 0 {
		ack, err := e.sendChunk(protocol.FileData{Offset: 0, Data: nil, IsLastChunk: true, Compressed: false})
		if err != nil {
			return err
		}
		if !ack.Success {
			return &Error{Op: "transfer", Path: f.destinationPath, Err: fmt.Errorf("%s", ack.Error)}
		}
		return nil
	}

	compressible := e.opts.Compress && compress.IsCompressible(strings.ToLower(filepath.Ext(f.sourcePath)))
	buf := make([]byte, e.opts.BufferSize)

	for offset < fileSize {
		n, err := fh.ReadAt(buf, int64(offset))
		if err != nil && err != io.EOF {
			return &Error{Op: "read source", Path: f.sourcePath, Err: err}
		}
		raw := buf[:n]
		rawLen := uint64(n)

		data := raw
		useCompression := false
		if compressible {
			compressed, ok, cerr := compress.CompressChunk(raw)
			if cerr != nil {
				return &Error{Op: "compress chunk", Path: f.sourcePath, Err: cerr}
			}
			if ok {
				data = compressed
				useCompression = true
			}
		}

		if e.opts.Pacer != nil {
			if err := e.opts.Pacer.Wait(ctx, len(data)); err != nil {
				return &Error{Op: "pace", Path: f.sourcePath, Err: err}
			}
		}

		isLast := offset+rawLen >= fileSize
		ack, err := e.sendChunk(protocol.FileData{
			Offset:      offset,
			Data:        data,
			IsLastChunk: isLast,
			Compressed:  useCompression,
		})
		if err != nil {
			return err
		}
		if !ack.Success {
			return &Error{Op: "transfer", Path: f.destinationPath, Err: fmt.Errorf("%s", ack.Error)}
		}
		offset += rawLen
		if e.opts.OnProgress != nil {
			e.opts.OnProgress(f.destinationPath, offset, fileSize)
		}
	}
	return nil
}

// openRemote sends a FileRequest and returns the server's FileResponse.
// resumeFlag is translated to the wire's 0/non-zero convention; the
// actual resume point always comes back from the server.
func (e *Engine) openRemote(sourcePath, destinationPath string, resumeFlag bool) (*protocol.FileResponse, error) {
	req := &protocol.FileRequest{
		SourcePath:      sourcePath,
		DestinationPath: destinationPath,
		Recursive:       e.opts.Recursive,
	}
	if resumeFlag {
		req.ResumeOffset = 1
	}
	if err := e.ch.SendMessage(req); err != nil {
		return nil, &Error{Op: "send file request", Path: destinationPath, Err: err}
	}
	msg, err := e.ch.ReceiveMessage()
	if err != nil {
		return nil, &Error{Op: "receive file response", Path: destinationPath, Err: err}
	}
	resp, ok := msg.(*protocol.FileResponse)
	if !ok {
		return nil, &Error{Op: "receive file response", Path: destinationPath, Err: fmt.Errorf("unexpected message type %s", msg.Type())}
	}
	return resp, nil
}

func (e *Engine) sendChunk(chunk protocol.FileData) (*protocol.FileAck, error) {
	c := chunk
	if err := e.ch.SendMessage(&c); err != nil {
		return nil, &Error{Op: "send file data", Err: err}
	}
	msg, err := e.ch.ReceiveMessage()
	if err != nil {
		return nil, &Error{Op: "receive file ack", Err: err}
	}
	ack, ok := msg.(*protocol.FileAck)
	if !ok {
		return nil, &Error{Op: "receive file ack", Err: fmt.Errorf("unexpected message type %s", msg.Type())}
	}
	return ack, nil
}
