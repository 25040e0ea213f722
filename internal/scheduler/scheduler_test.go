package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTask struct {
	runs     atomic.Int32
	interval time.Duration
	err      error
}

func (c *countingTask) Run(ctx context.Context) error {
	c.runs.Add(1)
	return c.err
}

func (c *countingTask) Interval() time.Duration { return c.interval }
func (c *countingTask) Name() string            { return "counting" }

func TestScheduler_RunsTaskImmediatelyAndOnInterval(t *testing.T) {
	task := &countingTask{interval: 20 * time.Millisecond}
	s := New(context.Background())
	s.AddTask(task)
	s.Start()

	assert.Eventually(t, func() bool { return task.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	st, ok := s.Status("counting")
	require.True(t, ok)
	assert.GreaterOrEqual(t, st.Runs, 3)
	assert.NoError(t, st.LastErr)
	assert.False(t, st.LastRun.IsZero())

	_, ok = s.Status("missing")
	assert.False(t, ok)
}

func TestScheduler_RecordsTaskError(t *testing.T) {
	task := &countingTask{interval: time.Hour, err: assert.AnError}
	s := New(context.Background())
	s.AddTask(task)
	s.Start()

	assert.Eventually(t, func() bool {
		st, _ := s.Status("counting")
		return st.Runs == 1
	}, time.Second, 5*time.Millisecond)
	s.Stop()

	st, _ := s.Status("counting")
	assert.ErrorIs(t, st.LastErr, assert.AnError)
}

func TestScheduler_StopWaitsForWorkers(t *testing.T) {
	var exited atomic.Bool
	s := New(context.Background())
	s.AddWorker("loop", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		exited.Store(true)
		return ctx.Err()
	})
	s.Start()
	s.Stop()

	assert.True(t, exited.Load())
}
