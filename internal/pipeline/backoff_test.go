package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/nycterent/thefilter/internal/config"
)

func TestBackoffDoublesUntilCap(t *testing.T) {
	b := newBackoff(config.Retry{InitialDelayMS: 100, MaxDelayMS: 400})
	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		400 * time.Millisecond,
	}
	for i, expected := range want {
		delay, ok := b.Next()
		if !ok {
			t.Fatalf("delay %d: schedule stopped early", i+1)
		}
		if delay != expected {
			t.Fatalf("delay %d: got %s, want %s", i+1, delay, expected)
		}
	}
}

func TestBackoffBudgetStopsSchedule(t *testing.T) {
	b := newBackoff(config.Retry{InitialDelayMS: 100, MaxDelayMS: 100, MaxTotalWaitMS: 250})
	for i := 0; i < 2; i++ {
		if _, ok := b.Next(); !ok {
			t.Fatalf("delay %d should fit inside the 250ms budget", i+1)
		}
	}
	if delay, ok := b.Next(); ok {
		t.Fatalf("third delay %s should have exceeded the budget", delay)
	}
	if _, ok := b.Next(); ok {
		t.Fatal("an exhausted schedule must stay exhausted")
	}
}

func TestBackoffZeroBudgetNeverStops(t *testing.T) {
	b := newBackoff(config.Retry{InitialDelayMS: 50, MaxDelayMS: 200})
	for i := 0; i < 64; i++ {
		delay, ok := b.Next()
		if !ok {
			t.Fatalf("delay %d: schedule without a budget stopped", i+1)
		}
		if delay > 200*time.Millisecond {
			t.Fatalf("delay %d: %s exceeds the cap", i+1, delay)
		}
	}
}

func TestBackoffJitterStaysWithinSpan(t *testing.T) {
	const (
		base = time.Second
		span = 250 * time.Millisecond
	)
	for i := 0; i < 100; i++ {
		b := newBackoff(config.Retry{InitialDelayMS: 1000, MaxDelayMS: 8000, JitterFraction: 0.25})
		delay, ok := b.Next()
		if !ok {
			t.Fatalf("iteration %d: schedule stopped early", i)
		}
		if delay < base-span || delay > base+span {
			t.Fatalf("iteration %d: delay %s outside [%s, %s]", i, delay, base-span, base+span)
		}
	}
}

func TestBackoffDefaultsWhenUnconfigured(t *testing.T) {
	b := newBackoff(config.Retry{})
	delay, ok := b.Next()
	if !ok {
		t.Fatal("default schedule stopped on the first delay")
	}
	if delay != 500*time.Millisecond {
		t.Fatalf("default initial delay: got %s, want 500ms", delay)
	}
}

func TestSleepReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	if err := sleep(ctx, 5*time.Second); err == nil {
		t.Fatal("expected a context error from an interrupted sleep")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("sleep held for %s after cancellation", elapsed)
	}
}
