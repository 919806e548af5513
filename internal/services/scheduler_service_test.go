package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsTaskOnInterval(t *testing.T) {
	var runs atomic.Int64
	scheduler := NewSchedulerService([]Task{{
		Name:     "counter",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}}, testLog())

	scheduler.Start()
	require.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)
	scheduler.Stop()
}

func TestSchedulerSurvivesPanicAndError(t *testing.T) {
	var runs atomic.Int64
	scheduler := NewSchedulerService([]Task{{
		Name:     "flaky",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			switch runs.Add(1) {
			case 1:
				panic("poisoned cycle")
			case 2:
				return errors.New("transient failure")
			}
			return nil
		},
	}}, testLog())

	scheduler.Start()
	require.Eventually(t, func() bool {
		return runs.Load() >= 4
	}, time.Second, 5*time.Millisecond)
	scheduler.Stop()
}

func TestSchedulerStopHaltsLoops(t *testing.T) {
	var runs atomic.Int64
	scheduler := NewSchedulerService([]Task{{
		Name:     "counter",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}}, testLog())

	scheduler.Start()
	require.Eventually(t, func() bool {
		return runs.Load() >= 1
	}, time.Second, time.Millisecond)
	scheduler.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, after, runs.Load())
}
