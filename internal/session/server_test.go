package session

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sean-Khorasani/net-copy/internal/crypto"
	"github.com/Sean-Khorasani/net-copy/internal/pathpolicy"
	"github.com/Sean-Khorasani/net-copy/internal/transfer/client"
)

func TestServeAcceptsAndCompletesATransfer(t *testing.T) {
	dstDir := t.TempDir()
	policy, err := pathpolicy.New([]string{dstDir})
	require.NoError(t, err)
	key := make([]byte, crypto.KeySize)

	srv := NewServer(ServerConfig{
		ListenAddress: "127.0.0.1:0",
		PresharedKey:  key,
		Policy:        policy,
		Version:       "netcopy-test-server",
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "failed to prepare listener")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ServeOn(ctx, ln) }()

	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "a.bin")
	content := []byte("hello netcopy")
	require.NoError(t, os.WriteFile(src, content, 0o644))

	sess, err := Connect(ctx, ln.Addr().String(), key, crypto.LevelHigh, "netcopy-test-client", DefaultDialOptions())
	require.NoError(t, err)
	defer sess.Conn.Close()

	eng := client.New(sess.Channel, client.Options{})
	require.NoError(t, eng.Transfer(ctx, src, dstDir))

	got, err := os.ReadFile(filepath.Join(dstDir, "a.bin"))
	require.NoError(t, err)
	require.Equal(t, content, got)

	cancel()
	select {
	case <-serveErr:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}
