package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEveryRunsUntilCancelled(t *testing.T) {
	s := NewScheduler(context.Background())
	var runs atomic.Int32

	h := s.Every("count", 5*time.Millisecond, func(context.Context) { runs.Add(1) })
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)

	h.Cancel()
	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Cancel returns")

	h.Cancel() // idempotent
}

func TestParentContextStopsJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(ctx)

	h1 := s.Every("a", time.Hour, func(context.Context) {})
	h2 := s.Every("b", time.Hour, func(context.Context) {})
	cancel()

	for _, h := range []*Handle{h1, h2} {
		select {
		case <-h.Done():
		case <-time.After(time.Second):
			t.Fatal("job did not stop with its parent context")
		}
	}
	s.Wait()
}

func TestJobReceivesCancellableContext(t *testing.T) {
	s := NewScheduler(context.Background())
	started := make(chan struct{})
	var once atomic.Bool

	h := s.Every("blocking", time.Millisecond, func(ctx context.Context) {
		if once.CompareAndSwap(false, true) {
			close(started)
		}
		<-ctx.Done()
	})
	<-started
	h.Cancel()
}
