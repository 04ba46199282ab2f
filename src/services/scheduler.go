package services

import (
	"context"
	"sync"
	"time"

	"github.com/username/finboard/src/logger"
)

// Scheduler runs named jobs on fixed intervals until they are cancelled or
// its parent context ends.
type Scheduler struct {
	ctx context.Context
	wg  sync.WaitGroup
}

func NewScheduler(ctx context.Context) *Scheduler {
	return &Scheduler{ctx: ctx}
}

// Handle stops one scheduled job.
type Handle struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel stops the job and waits for a run in progress to return.
// It is safe to call more than once.
func (h *Handle) Cancel() {
	h.cancel()
	<-h.done
}

// Done is closed once the job has stopped.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Every runs fn every interval, first after one interval has passed. Runs
// never overlap; a slow run delays the next tick instead.
func (s *Scheduler) Every(name string, interval time.Duration, fn func(ctx context.Context)) *Handle {
	ctx, cancel := context.WithCancel(s.ctx)
	h := &Handle{name: name, cancel: cancel, done: make(chan struct{})}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(h.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		logger.L.Debug("Scheduled job started", "job", name, "interval", interval.String())
		for {
			select {
			case <-ctx.Done():
				logger.L.Debug("Scheduled job stopped", "job", name)
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
	return h
}

// Wait blocks until every job has stopped.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
