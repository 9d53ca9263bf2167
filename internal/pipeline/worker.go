package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"storycast/internal/types"
)

// ErrJobAlreadyRunning is returned when a second pipeline run is started
// while one is still in flight.
var ErrJobAlreadyRunning = errors.New("a pipeline job is already running")

// Completion carries a finished run's outcome.
type Completion struct {
	Result *Result
	Err    error
}

// RunFunc executes one pipeline run.
type RunFunc func(ctx context.Context, job *types.Job) (*Result, error)

// Runner executes at most one pipeline run at a time and delivers the
// outcome on a completion channel, so the triggering surface never blocks
// and never polls. A file lock on the output root keeps a second process
// from running against the same directory tree.
type Runner struct {
	run  RunFunc
	lock *flock.Flock

	mu      sync.Mutex
	running bool
}

// NewRunner creates a runner around run, locking lockPath for the duration
// of each run. An empty lockPath disables cross-process locking. The lock
// file's directory is created here; flock only opens the file.
func NewRunner(run RunFunc, lockPath string) *Runner {
	r := &Runner{run: run}
	if lockPath != "" {
		if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
			log.Printf("[pipeline] could not create lock directory for %s: %v", lockPath, err)
		}
		r.lock = flock.New(lockPath)
	}
	return r
}

// Start launches a run in the background. It fails fast when a run is
// already in flight here or in another process.
func (r *Runner) Start(ctx context.Context, job *types.Job) (<-chan Completion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil, ErrJobAlreadyRunning
	}
	if r.lock != nil {
		ok, err := r.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire output lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("another storycast process holds %s", r.lock.Path())
		}
	}
	r.running = true

	token := uuid.NewString()[:8]
	done := make(chan Completion, 1)
	go func() {
		log.Printf("[pipeline] run %s started", token)
		result, err := r.run(ctx, job)

		r.mu.Lock()
		r.running = false
		if r.lock != nil {
			if uerr := r.lock.Unlock(); uerr != nil {
				log.Printf("[pipeline] run %s: release output lock: %v", token, uerr)
			}
		}
		r.mu.Unlock()

		log.Printf("[pipeline] run %s finished", token)
		done <- Completion{Result: result, Err: err}
	}()
	return done, nil
}

// Running reports whether a run is in flight.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
