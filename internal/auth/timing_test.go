package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimingDelay_WaitFrom_OnFailure(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelay: 50 * time.Millisecond, RandomDelay: 20 * time.Millisecond})

	start := time.Now()
	td.WaitFrom(context.Background(), start, false)

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestTimingDelay_WaitFrom_OnSuccess(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelay: 200 * time.Millisecond})

	start := time.Now()
	td.WaitFrom(context.Background(), start, true)
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	td = NewTimingDelay(TimingConfig{BaseDelay: 50 * time.Millisecond, DelayOnSuccess: true})
	start = time.Now()
	td.WaitFrom(context.Background(), start, true)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestTimingDelay_WaitFrom_CountsElapsedWork(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelay: 50 * time.Millisecond})

	start := time.Now().Add(-time.Second)
	before := time.Now()
	td.WaitFrom(context.Background(), start, false)
	assert.Less(t, time.Since(before), 20*time.Millisecond)
}

func TestTimingDelay_WaitFrom_StopsOnCancel(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelay: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	td.WaitFrom(ctx, start, false)
	assert.Less(t, time.Since(start), time.Second)
}
