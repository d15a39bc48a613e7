// Package config loads netcopy's INI-style configuration file into
// typed sections, via a small hand-written scanner (see DESIGN.md for
// why this stays on the standard library rather than a third-party INI
// parser).
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Network holds [network] settings.
type Network struct {
	ListenAddress  string
	ListenPort     int
	MaxConnections int
	TimeoutSeconds int
}

// Security holds [security] settings.
type Security struct {
	SecretKeyHex  string
	RequireAuth   bool
	MaxFileSize   uint64
}

// Performance holds [performance] settings.
type Performance struct {
	BufferSize          int
	MaxBandwidthPercent int
	ThreadPoolSize      int
	RetryAttempts       int
	RetryDelaySeconds   int
}

// Logging holds [logging] settings.
type Logging struct {
	Level         string
	File          string
	ConsoleOutput bool
}

// Daemon holds [daemon] settings.
type Daemon struct {
	RunAsDaemon bool
	PidFile     string
}

// Paths holds [paths] settings.
type Paths struct {
	AllowedPaths []string
}

// Connection holds [connection] settings.
type Connection struct {
	TimeoutSeconds int
	KeepAlive      bool
}

// Transfer holds [transfer] settings.
type Transfer struct {
	CreateEmptyDirectories bool
}

// Config is the fully parsed netcopy configuration file.
type Config struct {
	Network     Network
	Security    Security
	Performance Performance
	Logging     Logging
	Daemon      Daemon
	Paths       Paths
	Connection  Connection
	Transfer    Transfer
}

// Default returns the configuration used when no config file is
// supplied, matching the source's built-in defaults.
func Default() *Config {
	return &Config{
		Network: Network{
			ListenAddress:  "0.0.0.0",
			ListenPort:     1245,
			MaxConnections: 100,
			TimeoutSeconds: 30,
		},
		Security: Security{
			RequireAuth: false,
			MaxFileSize: 0,
		},
		Performance: Performance{
			BufferSize:          65536,
			MaxBandwidthPercent: 0,
			ThreadPoolSize:      4,
			RetryAttempts:       3,
			RetryDelaySeconds:   1,
		},
		Logging: Logging{
			Level:         "info",
			ConsoleOutput: true,
		},
		Connection: Connection{
			TimeoutSeconds: 30,
			KeepAlive:      true,
		},
		Transfer: Transfer{
			CreateEmptyDirectories: true,
		},
	}
}

// Load reads and parses an INI file at path, overlaying it onto
// Default().
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads INI-formatted configuration from r, overlaying it onto
// Default().
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	section := ""
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("config: line %d: expected key=value, got %q", lineNo, line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if err := cfg.apply(section, key, value); err != nil {
			return nil, fmt.Errorf("config: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: scan: %w", err)
	}
	return cfg, nil
}

func (c *Config) apply(section, key, value string) error {
	switch section {
	case "network":
		return c.applyNetwork(key, value)
	case "security":
		return c.applySecurity(key, value)
	case "performance":
		return c.applyPerformance(key, value)
	case "logging":
		return c.applyLogging(key, value)
	case "daemon":
		return c.applyDaemon(key, value)
	case "paths":
		return c.applyPaths(key, value)
	case "connection":
		return c.applyConnection(key, value)
	case "transfer":
		return c.applyTransfer(key, value)
	default:
		return fmt.Errorf("unknown section %q", section)
	}
}

func (c *Config) applyNetwork(key, value string) error {
	switch key {
	case "listen_address":
		c.Network.ListenAddress = value
	case "listen_port":
		return assignInt(&c.Network.ListenPort, value)
	case "max_connections":
		return assignInt(&c.Network.MaxConnections, value)
	case "timeout":
		return assignInt(&c.Network.TimeoutSeconds, value)
	default:
		return fmt.Errorf("unknown [network] key %q", key)
	}
	return nil
}

func (c *Config) applySecurity(key, value string) error {
	switch key {
	case "secret_key":
		c.Security.SecretKeyHex = value
	case "require_auth":
		return assignBool(&c.Security.RequireAuth, value)
	case "max_file_size":
		return assignUint64(&c.Security.MaxFileSize, value)
	default:
		return fmt.Errorf("unknown [security] key %q", key)
	}
	return nil
}

func (c *Config) applyPerformance(key, value string) error {
	switch key {
	case "buffer_size":
		return assignInt(&c.Performance.BufferSize, value)
	case "max_bandwidth_percent":
		return assignInt(&c.Performance.MaxBandwidthPercent, value)
	case "thread_pool_size":
		return assignInt(&c.Performance.ThreadPoolSize, value)
	case "retry_attempts":
		return assignInt(&c.Performance.RetryAttempts, value)
	case "retry_delay":
		return assignInt(&c.Performance.RetryDelaySeconds, value)
	default:
		return fmt.Errorf("unknown [performance] key %q", key)
	}
}

func (c *Config) applyLogging(key, value string) error {
	switch key {
	case "log_level":
		c.Logging.Level = value
	case "log_file":
		c.Logging.File = value
	case "console_output":
		return assignBool(&c.Logging.ConsoleOutput, value)
	default:
		return fmt.Errorf("unknown [logging] key %q", key)
	}
	return nil
}

func (c *Config) applyDaemon(key, value string) error {
	switch key {
	case "run_as_daemon":
		return assignBool(&c.Daemon.RunAsDaemon, value)
	case "pid_file":
		c.Daemon.PidFile = value
	default:
		return fmt.Errorf("unknown [daemon] key %q", key)
	}
	return nil
}

func (c *Config) applyPaths(key, value string) error {
	switch key {
	case "allowed_paths":
		var roots []string
		for _, p := range strings.Split(value, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				roots = append(roots, p)
			}
		}
		c.Paths.AllowedPaths = roots
	default:
		return fmt.Errorf("unknown [paths] key %q", key)
	}
	return nil
}

func (c *Config) applyConnection(key, value string) error {
	switch key {
	case "timeout":
		return assignInt(&c.Connection.TimeoutSeconds, value)
	case "keep_alive":
		return assignBool(&c.Connection.KeepAlive, value)
	default:
		return fmt.Errorf("unknown [connection] key %q", key)
	}
}

func (c *Config) applyTransfer(key, value string) error {
	switch key {
	case "create_empty_directories":
		return assignBool(&c.Transfer.CreateEmptyDirectories, value)
	default:
		return fmt.Errorf("unknown [transfer] key %q", key)
	}
}

func assignInt(dst *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("expected integer, got %q", value)
	}
	*dst = n
	return nil
}

func assignUint64(dst *uint64, value string) error {
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fmt.Errorf("expected unsigned integer, got %q", value)
	}
	*dst = n
	return nil
}

func assignBool(dst *bool, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("expected boolean, got %q", value)
	}
	*dst = b
	return nil
}
