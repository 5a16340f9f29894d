package fanout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_EmptyInput(t *testing.T) {
	assert.Empty(t, Run[int](context.Background(), nil, time.Second))
}

func TestRun_OneOutcomePerUnit(t *testing.T) {
	units := []Unit[string]{
		{ID: "a", Run: func(context.Context) (string, error) { return "A", nil }},
		{ID: "b", Run: func(context.Context) (string, error) { return "", errors.New("boom") }},
		{ID: "c", Run: func(context.Context) (string, error) { return "C", nil }},
	}

	outcomes := Run(context.Background(), units, time.Second)
	require.Len(t, outcomes, 3)

	byID := Collect(outcomes)
	assert.Equal(t, "A", byID["a"].Value)
	assert.NoError(t, byID["a"].Err)
	assert.EqualError(t, byID["b"].Err, "boom")
	assert.Equal(t, "C", byID["c"].Value)
}

func TestRun_UnitsRunConcurrently(t *testing.T) {
	var running, peak atomic.Int32
	release := make(chan struct{})

	units := make([]Unit[int], 4)
	for i := range units {
		units[i] = Unit[int]{ID: string(rune('a' + i)), Run: func(context.Context) (int, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			running.Add(-1)
			return 0, nil
		}}
	}

	done := make(chan []Outcome[int])
	go func() { done <- Run(context.Background(), units, 0) }()

	require.Eventually(t, func() bool { return peak.Load() == 4 }, 2*time.Second, 5*time.Millisecond)
	close(release)
	assert.Len(t, <-done, 4)
}

func TestRun_TimeoutIsolatesSlowUnit(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	units := []Unit[int]{
		{ID: "slow", Run: func(context.Context) (int, error) {
			<-block
			return 1, nil
		}},
		{ID: "fast", Run: func(context.Context) (int, error) { return 2, nil }},
	}

	start := time.Now()
	byID := Collect(Run(context.Background(), units, 50*time.Millisecond))

	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, byID["slow"].Err, ErrTimeout)
	assert.Equal(t, "Timeout after 50ms", byID["slow"].Err.Error())
	assert.NoError(t, byID["fast"].Err)
	assert.Equal(t, 2, byID["fast"].Value)
}

func TestRun_ContextAwareUnitTimesOut(t *testing.T) {
	units := []Unit[int]{{ID: "ctx", Run: func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}}}

	outcomes := Run(context.Background(), units, 20*time.Millisecond)
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, ErrTimeout)
}

func TestRun_PanicIsRecovered(t *testing.T) {
	units := []Unit[int]{
		{ID: "panics", Run: func(context.Context) (int, error) { panic("kaboom") }},
		{ID: "fine", Run: func(context.Context) (int, error) { return 7, nil }},
	}

	byID := Collect(Run(context.Background(), units, time.Second))
	assert.ErrorIs(t, byID["panics"].Err, ErrPanic)
	assert.Contains(t, byID["panics"].Err.Error(), "kaboom")
	assert.Equal(t, 7, byID["fine"].Value)
}

func TestRun_ParentCancellationIsNotATimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	units := []Unit[int]{{ID: "x", Run: func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}}}

	outcomes := Run(ctx, units, time.Second)
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, context.Canceled)
	assert.NotErrorIs(t, outcomes[0].Err, ErrTimeout)
}
