package social

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/entrhq/threadline/pkg/config"
)

// Pacer inserts randomized pauses between UI steps so the page has time to
// settle.
type Pacer struct {
	mu     sync.Mutex
	rng    *rand.Rand
	pacing config.PacingConfig
}

// NewPacer creates a pacer using the configured delay ranges.
func NewPacer(pacing config.PacingConfig) *Pacer {
	return &Pacer{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		pacing: pacing,
	}
}

// NoPacer returns a pacer that never waits.
func NoPacer() *Pacer {
	return NewPacer(config.PacingConfig{})
}

// Short pauses between keystroke-level steps.
func (p *Pacer) Short(ctx context.Context) error { return p.Pause(ctx, p.pacing.Short) }

// Medium pauses after navigation.
func (p *Pacer) Medium(ctx context.Context) error { return p.Pause(ctx, p.pacing.Medium) }

// Long pauses after submissions.
func (p *Pacer) Long(ctx context.Context) error { return p.Pause(ctx, p.pacing.Long) }

// Pause sleeps for a random duration in [d.Min, d.Max] or until ctx is done.
func (p *Pacer) Pause(ctx context.Context, d config.Delay) error {
	wait := p.duration(d)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *Pacer) duration(d config.Delay) time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return d.Min + time.Duration(p.rng.Int63n(int64(d.Max-d.Min)+1))
}
