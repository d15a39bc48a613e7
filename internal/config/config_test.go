package config

import (
	"strings"
	"testing"
)

const sampleConfig = `
# comment
[network]
listen_address = 0.0.0.0
listen_port = 1245
max_connections = 50
timeout = 15

[security]
secret_key = 0xdeadbeef
require_auth = true
max_file_size = 1073741824

[performance]
buffer_size = 131072
retry_attempts = 5

[paths]
allowed_paths = /srv/netcopy, /data/uploads

[transfer]
create_empty_directories = false
`

func TestParseSampleConfig(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Network.ListenPort != 1245 {
		t.Errorf("ListenPort = %d", cfg.Network.ListenPort)
	}
	if cfg.Network.MaxConnections != 50 {
		t.Errorf("MaxConnections = %d", cfg.Network.MaxConnections)
	}
	if !cfg.Security.RequireAuth {
		t.Error("RequireAuth = false, want true")
	}
	if cfg.Security.MaxFileSize != 1073741824 {
		t.Errorf("MaxFileSize = %d", cfg.Security.MaxFileSize)
	}
	if cfg.Performance.BufferSize != 131072 {
		t.Errorf("BufferSize = %d", cfg.Performance.BufferSize)
	}
	if len(cfg.Paths.AllowedPaths) != 2 || cfg.Paths.AllowedPaths[0] != "/srv/netcopy" {
		t.Errorf("AllowedPaths = %v", cfg.Paths.AllowedPaths)
	}
	if cfg.Transfer.CreateEmptyDirectories {
		t.Error("CreateEmptyDirectories = true, want false")
	}
	// Untouched defaults survive the overlay.
	if cfg.Connection.TimeoutSeconds != 30 {
		t.Errorf("Connection.TimeoutSeconds = %d, want default 30", cfg.Connection.TimeoutSeconds)
	}
}

func TestParseRejectsUnknownSection(t *testing.T) {
	_, err := Parse(strings.NewReader("[bogus]\nkey = value\n"))
	if err == nil {
		t.Fatal("expected error for unknown section")
	}
}

func TestParseRejectsMalformedLine(t *testing.T) {
	_, err := Parse(strings.NewReader("[network]\nnotakeyvalue\n"))
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
}

func TestDefaultIsUsable(t *testing.T) {
	cfg := Default()
	if cfg.Network.ListenPort == 0 {
		t.Error("expected a non-zero default listen port")
	}
}
