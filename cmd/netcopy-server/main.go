// Command netcopy-server runs the netcopy receiving endpoint: bind an
// address, accept connections, and write files into a configured set
// of allowed roots.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Sean-Khorasani/net-copy/internal/config"
	"github.com/Sean-Khorasani/net-copy/internal/crypto"
	"github.com/Sean-Khorasani/net-copy/internal/daemon"
	"github.com/Sean-Khorasani/net-copy/internal/logging"
	"github.com/Sean-Khorasani/net-copy/internal/pathpolicy"
	"github.com/Sean-Khorasani/net-copy/internal/session"
)

func main() {
	var (
		listenAddr  = flag.String("listen", "", "listen address, overrides [network] listen_address/listen_port")
		allowedPath = flag.String("allowed-path", "", "allowed destination root, overrides [paths] allowed_paths (comma-separated)")
		configPath  = flag.String("config", "", "path to an INI configuration file")
		runAsDaemon = flag.Bool("daemon", false, "run as a daemon, honouring [daemon] pid_file")
		verbose     = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	if err := run(*listenAddr, *allowedPath, *configPath, *runAsDaemon, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "netcopy-server:", err)
		os.Exit(1)
	}
}

func run(listenAddr, allowedPath, configPath string, runAsDaemon, verbose bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if listenAddr == "" {
		listenAddr = fmt.Sprintf("%s:%d", cfg.Network.ListenAddress, cfg.Network.ListenPort)
	}

	roots := cfg.Paths.AllowedPaths
	if allowedPath != "" {
		roots = strings.Split(allowedPath, ",")
	}
	policy, err := pathpolicy.New(roots)
	if err != nil {
		return err
	}

	if cfg.Security.SecretKeyHex == "" {
		return fmt.Errorf("no secret key configured; set [security] secret_key")
	}
	key, err := crypto.ParseHexKey(cfg.Security.SecretKeyHex)
	if err != nil {
		return fmt.Errorf("parse secret_key: %w", err)
	}

	if runAsDaemon || cfg.Daemon.RunAsDaemon {
		pidFile := cfg.Daemon.PidFile
		if pidFile == "" {
			pidFile = "/var/run/netcopy-server.pid"
		}
		if err := daemon.WritePIDFile(pidFile); err != nil {
			return err
		}
		defer daemon.RemovePIDFile(pidFile)
	}
	logging.Configure(cfg.Logging.Level, verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := session.NewServer(session.ServerConfig{
		ListenAddress: listenAddr,
		PresharedKey:  key,
		RequireAuth:   cfg.Security.RequireAuth,
		Policy:        policy,
		Version:       "netcopy/1.0",
	})
	return srv.Serve(ctx)
}
