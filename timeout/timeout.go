// Package timeout composes a job's cancellation with a deadline: arming a
// job so it cancels itself after a duration elapses, with the deadline
// itself kept by context.WithTimeout.
package timeout

import (
	"context"
	"time"

	"github.com/ordr-dev/ordr"
)

// Arm starts a goroutine that cancels job's handle when d elapses or when
// the returned context.CancelFunc is called, whichever comes first. Call
// the returned function once job's run is over to release the timer
// promptly instead of waiting for d to elapse.
//
//	job := ordr.Target[Report](ordr.NewJob())
//	stop := timeout.Arm(ctx, job, 30*time.Second)
//	defer stop()
//	outputs, status, err := graph.Execute(ctx, job)
func Arm(ctx context.Context, job *ordr.Job, d time.Duration) context.CancelFunc {
	deadlineCtx, cancel := context.WithTimeout(ctx, d)
	handle := job.CancelHandle()

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-deadlineCtx.Done():
			if deadlineCtx.Err() == context.DeadlineExceeded {
				handle.Cancel()
			}
		case <-handle.Done():
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
