package client

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sean-Khorasani/net-copy/internal/channel"
	"github.com/Sean-Khorasani/net-copy/internal/crypto"
	"github.com/Sean-Khorasani/net-copy/internal/pathpolicy"
	"github.com/Sean-Khorasani/net-copy/internal/protocol"
	"github.com/Sean-Khorasani/net-copy/internal/transfer/server"
)

// serverLoop answers every FileRequest/FileData it receives using a
// real transfer/server Engine, exactly as the session controller
// would, until the connection closes.
func serverLoop(t *testing.T, ch *channel.Channel, policy *pathpolicy.Policy) {
	t.Helper()
	eng := server.New(policy)
	for {
		msg, err := ch.ReceiveMessage()
		if err != nil {
			return
		}
		switch m := msg.(type) {
		case *protocol.FileRequest:
			if err := ch.SendMessage(eng.HandleFileRequest(m)); err != nil {
				return
			}
		case *protocol.FileData:
			if err := ch.SendMessage(eng.HandleFileData(m)); err != nil {
				return
			}
		}
	}
}

func connectedChannels(t *testing.T, key []byte) (*channel.Channel, *channel.Channel) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close(); serverConn.Close() })

	type result struct {
		ch  *channel.Channel
		err error
	}
	clientResult := make(chan result, 1)
	go func() {
		ch, _, err := channel.ClientHandshake(clientConn, key, "netcopy-test-client", crypto.LevelHigh)
		clientResult <- result{ch, err}
	}()
	serverCh, _, err := channel.ServerHandshake(serverConn, key, "netcopy-test-server", false)
	if err != nil {
		t.Fatalf("server handshake: %v", err)
	}
	select {
	case r := <-clientResult:
		if r.err != nil {
			t.Fatalf("client handshake: %v", r.err)
		}
		return r.ch, serverCh
	case <-time.After(2 * time.Second):
		t.Fatal("handshake timed out")
		return nil, nil
	}
}

func TestTransferEmptyFile(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	src := filepath.Join(srcDir, "a.bin")
	require.NoError(t, os.WriteFile(src, nil, 0o644))

	policy, err := pathpolicy.New([]string{dstDir})
	require.NoError(t, err)
	key := make([]byte, crypto.KeySize)
	clientCh, serverCh := connectedChannels(t, key)
	go serverLoop(t, serverCh, policy)

	eng := New(clientCh, Options{})
	require.NoError(t, eng.Transfer(context.Background(), src, filepath.ToSlash(dstDir)))

	got, err := os.ReadFile(filepath.Join(dstDir, "a.bin"))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestTransferMultiChunk(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	src := filepath.Join(srcDir, "big.bin")
	content := bytes.Repeat([]byte("0123456789"), 20000) // 200,000 bytes
	require.NoError(t, os.WriteFile(src, content, 0o644))

	policy, err := pathpolicy.New([]string{dstDir})
	require.NoError(t, err)
	key := make([]byte, crypto.KeySize)
	clientCh, serverCh := connectedChannels(t, key)
	go serverLoop(t, serverCh, policy)

	eng := New(clientCh, Options{BufferSize: 65536})
	require.NoError(t, eng.Transfer(context.Background(), src, filepath.ToSlash(dstDir)))

	got, err := os.ReadFile(filepath.Join(dstDir, "big.bin"))
	require.NoError(t, err)
	require.Equal(t, content, got, "destination content mismatch after multi-chunk transfer")
}

func TestTransferResumeAfterPartialWrite(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	src := filepath.Join(srcDir, "r.bin")
	content := bytes.Repeat([]byte("A"), 100000)
	require.NoError(t, os.WriteFile(src, content, 0o644))
	// Simulate a prior aborted run that wrote exactly the first chunk.
	require.NoError(t, os.WriteFile(filepath.Join(dstDir, "r.bin"), content[:65536], 0o644))

	policy, err := pathpolicy.New([]string{dstDir})
	require.NoError(t, err)
	key := make([]byte, crypto.KeySize)
	clientCh, serverCh := connectedChannels(t, key)
	go serverLoop(t, serverCh, policy)

	eng := New(clientCh, Options{BufferSize: 65536, Resume: true})
	require.NoError(t, eng.Transfer(context.Background(), src, filepath.ToSlash(dstDir)))

	got, err := os.ReadFile(filepath.Join(dstDir, "r.bin"))
	require.NoError(t, err)
	require.Equal(t, content, got, "destination content mismatch after resume")
}

func TestTransferRejectsDisallowedDestination(t *testing.T) {
	srcDir := t.TempDir()
	allowedDir := t.TempDir()
	disallowedDir := t.TempDir()
	src := filepath.Join(srcDir, "a.bin")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	policy, err := pathpolicy.New([]string{allowedDir})
	require.NoError(t, err)
	key := make([]byte, crypto.KeySize)
	clientCh, serverCh := connectedChannels(t, key)
	go serverLoop(t, serverCh, policy)

	eng := New(clientCh, Options{})
	err = eng.Transfer(context.Background(), src, filepath.ToSlash(disallowedDir))
	require.Error(t, err, "expected transfer to a disallowed destination to fail")
}
