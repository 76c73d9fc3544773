package pipeline

import (
	"context"
	"math/rand"
	"time"

	"github.com/nycterent/thefilter/internal/config"
)

// backoff produces the delay schedule between transient-failure retries:
// exponential from the initial delay, jittered to avoid thundering herds,
// capped per delay, and bounded by a total wait budget across the stage.
type backoff struct {
	max    time.Duration
	budget time.Duration
	jitter float64

	next   time.Duration
	waited time.Duration
}

func newBackoff(cfg config.Retry) *backoff {
	initial := time.Duration(cfg.InitialDelayMS) * time.Millisecond
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}
	maxDelay := time.Duration(cfg.MaxDelayMS) * time.Millisecond
	if maxDelay < initial {
		maxDelay = initial
	}
	jitter := cfg.JitterFraction
	if jitter < 0 {
		jitter = 0
	}
	if jitter > 1 {
		jitter = 1
	}
	return &backoff{
		max:    maxDelay,
		budget: time.Duration(cfg.MaxTotalWaitMS) * time.Millisecond,
		jitter: jitter,
		next:   initial,
	}
}

// Next returns the delay to sleep before the following retry. ok is false
// once the total wait budget is spent; the caller must stop retrying. A
// budget of zero or less means no budget bound.
func (b *backoff) Next() (delay time.Duration, ok bool) {
	delay = b.next
	b.next *= 2
	if b.next > b.max {
		b.next = b.max
	}
	if b.jitter > 0 {
		if span := int64(float64(delay) * b.jitter); span > 0 {
			delay += time.Duration(rand.Int63n(2*span+1) - span)
		}
	}
	if delay > b.max {
		delay = b.max
	}
	if delay < 0 {
		delay = 0
	}
	if b.budget > 0 && b.waited+delay > b.budget {
		return 0, false
	}
	b.waited += delay
	return delay, true
}

// sleep waits for the delay or for cancellation, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
