// Command netcopy-client pushes a local file or directory tree to a
// netcopy server: positional <source> <destination>, where destination
// is "host", "host:path", or "host:port/path".
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Sean-Khorasani/net-copy/internal/crypto"
	"github.com/Sean-Khorasani/net-copy/internal/logging"
	"github.com/Sean-Khorasani/net-copy/internal/pacer"
	"github.com/Sean-Khorasani/net-copy/internal/session"
	"github.com/Sean-Khorasani/net-copy/internal/transfer/client"
)

// assumedLinkBytesPerSecond is the nominal link speed -bandwidth-percent
// is a fraction of (1000 Mbit/s). netcopy never measures the actual
// link rate, so this is a fixed baseline rather than a discovered one.
const assumedLinkBytesPerSecond = 125_000_000

func main() {
	var (
		recursive        = flag.Bool("recursive", false, "transfer a directory tree")
		resume           = flag.Bool("resume", false, "resume an interrupted transfer")
		compress         = flag.Bool("compress", true, "compress compressible chunks before sending")
		emptyDirs        = flag.Bool("empty-dirs", true, "create empty source directories on the server")
		bufferSize       = flag.Int("buffer-size", 65536, "chunk size in bytes")
		bandwidthPercent = flag.Int("bandwidth-percent", 0, "cap transfer rate to this percent of link bandwidth, 0 means unlimited")
		keyHex           = flag.String("key", "", "64-char hex pre-shared key, optional 0x prefix")
		securityStr      = flag.String("security", "HIGH", "cipher suite: HIGH, AES, AES_256_GCM, or FAST")
		verbose          = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <source> <destination>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	source := flag.Arg(0)
	dest, err := parseDestination(flag.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, "netcopy-client:", err)
		os.Exit(1)
	}

	level, err := parseSecurityLevel(*securityStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "netcopy-client:", err)
		os.Exit(1)
	}

	key, err := crypto.ParseHexKey(*keyHex)
	if err != nil {
		fmt.Fprintln(os.Stderr, "netcopy-client: key:", err)
		os.Exit(1)
	}
	logging.Configure("", *verbose)

	ctx := context.Background()
	sess, err := session.Connect(ctx, dest.addr(), key, level, "netcopy/1.0", session.DefaultDialOptions())
	if err != nil {
		fmt.Fprintln(os.Stderr, "netcopy-client: connect:", err)
		os.Exit(1)
	}
	defer sess.Conn.Close()

	eng := client.New(sess.Channel, client.Options{
		Recursive:              *recursive,
		Resume:                 *resume,
		Compress:               *compress,
		CreateEmptyDirectories: *emptyDirs,
		BufferSize:             *bufferSize,
		Pacer:                  pacer.FromPercent(*bandwidthPercent, assumedLinkBytesPerSecond),
	})
	if err := eng.Transfer(ctx, source, dest.path); err != nil {
		fmt.Fprintln(os.Stderr, "netcopy-client: transfer:", err)
		os.Exit(1)
	}
}

func parseSecurityLevel(s string) (crypto.Level, error) {
	switch s {
	case "HIGH":
		return crypto.LevelHigh, nil
	case "AES":
		return crypto.LevelAES, nil
	case "AES_256_GCM":
		return crypto.LevelAESGCM, nil
	case "FAST":
		return crypto.LevelFast, nil
	default:
		return 0, fmt.Errorf("unknown security level %q", s)
	}
}
