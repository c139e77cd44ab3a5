package booking

import (
	"context"
	"sync"
	"time"
)

// Task is the handle of one in-flight confirmation.
type Task struct {
	id      uint64
	started time.Time
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once

	conf Confirmation
	err  error
}

func newTask(id uint64, cancel context.CancelFunc) *Task {
	return &Task{
		id:      id,
		started: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Done is closed once the outcome has been applied to the workflow.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result returns the outcome. It is only meaningful after Done is closed.
func (t *Task) Result() (Confirmation, error) {
	select {
	case <-t.done:
		return t.conf, t.err
	default:
		return Confirmation{}, ErrSubmissionInFlight
	}
}

// Wait blocks until the task resolves or ctx is done.
func (t *Task) Wait(ctx context.Context) (Confirmation, error) {
	select {
	case <-t.done:
		return t.conf, t.err
	case <-ctx.Done():
		return Confirmation{}, ctx.Err()
	}
}

func (t *Task) finish(conf Confirmation, err error) {
	t.once.Do(func() {
		t.conf, t.err = conf, err
		t.cancel()
		close(t.done)
	})
}
