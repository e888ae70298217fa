// Package workers runs the client's background jobs: currently the periodic
// sync trigger. Jobs are idle until started and stop cleanly on shutdown.
package workers

import (
	"context"
	"time"
)

// Job is a startable, stoppable background task.
type Job interface {
	// Start launches the job. A second Start restarts it.
	Start(ctx context.Context, interval time.Duration)
	// Stop cancels the job and blocks until it exits. Safe to call when the
	// job is not running.
	Stop()
}
