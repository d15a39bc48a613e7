// Package session wires the channel handshake and the per-file
// engines into the two endpoints: a server that accepts connections
// and spawns one worker per connection, and a client that makes a
// single outbound connection per invocation.
package session

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff"
)

// DialOptions controls outbound connection retry behaviour.
type DialOptions struct {
	MaxAttempts int
	InitialWait time.Duration
}

// DefaultDialOptions matches the [performance] retry_attempts /
// retry_delay defaults.
func DefaultDialOptions() DialOptions {
	return DialOptions{MaxAttempts: 3, InitialWait: time.Second}
}

// Dial connects to addr, retrying with exponential backoff up to
// opts.MaxAttempts times. A context cancellation aborts retries early.
func Dial(ctx context.Context, addr string, opts DialOptions) (net.Conn, error) {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	backoffPolicy := backoff.NewExponentialBackOff()
	if opts.InitialWait > 0 {
		backoffPolicy.InitialInterval = opts.InitialWait
	}
	limited := backoff.WithMaxRetries(backoffPolicy, uint64(opts.MaxAttempts-1))

	var conn net.Conn
	operation := func() error {
		c, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithContext(limited, ctx)); err != nil {
		return nil, fmt.Errorf("session: dial %s: %w", addr, err)
	}
	return conn, nil
}
