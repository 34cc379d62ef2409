package service

import (
	"context"
	"fmt"
)

// Locker serializes schedule changes across processes.
type Locker interface {
	Acquire(ctx context.Context) (func(), error)
}

// ScheduleGuard is the critical section around every schedule change: the
// conflict check and the write that follows it run while the guard is held.
// It combines an in-process semaphore with an optional distributed Locker.
type ScheduleGuard struct {
	sem    chan struct{}
	remote Locker
}

// NewScheduleGuard creates a guard. remote may be nil for a single instance.
func NewScheduleGuard(remote Locker) *ScheduleGuard {
	return &ScheduleGuard{sem: make(chan struct{}, 1), remote: remote}
}

// Enter blocks until the guard is held or ctx ends.
func (g *ScheduleGuard) Enter(ctx context.Context) (func(), error) {
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrScheduleBusy, ctx.Err())
	}

	if g.remote == nil {
		return func() { <-g.sem }, nil
	}

	release, err := g.remote.Acquire(ctx)
	if err != nil {
		<-g.sem
		return nil, fmt.Errorf("%w: %v", ErrScheduleBusy, err)
	}
	return func() {
		release()
		<-g.sem
	}, nil
}
