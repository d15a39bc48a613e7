// Package pacer throttles chunk transmission to a configured fraction
// of link bandwidth. It has no protocol-visible effect: a paced
// transfer and an unpaced one produce byte-identical frames.
//
// Built on golang.org/x/time/rate as a bytes-per-second limiter sized
// off a percentage of a link rate (the client's -bandwidth-percent
// flag).
package pacer

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer wraps a rate.Limiter configured in bytes/second.
type Pacer struct {
	limiter *rate.Limiter
}

// Unlimited returns a Pacer that never delays the caller.
func Unlimited() *Pacer {
	return &Pacer{}
}

// minBurst comfortably covers any single [performance] buffer_size
// chunk so WaitN never rejects a call for exceeding the burst size,
// even when the configured rate itself is very low.
const minBurst = 8 << 20

// New builds a Pacer capped at bytesPerSecond, with a burst large
// enough to admit one chunk at a time. A non-positive rate is
// unlimited.
func New(bytesPerSecond int) *Pacer {
	if bytesPerSecond <= 0 {
		return Unlimited()
	}
	burst := bytesPerSecond
	if burst < minBurst {
		burst = minBurst
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), burst)}
}

// FromPercent builds a Pacer capped at percent of linkBytesPerSecond.
// A zero or negative percent means unlimited.
func FromPercent(percent int, linkBytesPerSecond int) *Pacer {
	if percent <= 0 {
		return Unlimited()
	}
	return New(linkBytesPerSecond * percent / 100)
}

// Wait blocks until n more bytes may be sent without exceeding the
// configured rate. A nil or unlimited Pacer returns immediately.
func (p *Pacer) Wait(ctx context.Context, n int) error {
	if p == nil || p.limiter == nil {
		return nil
	}
	return p.limiter.WaitN(ctx, n)
}
