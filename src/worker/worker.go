package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"copypolish/src/job"
	"copypolish/src/logutil"
	"copypolish/src/notification"
)

const DefaultTimeout = 30 * time.Second

const TitleStarting = "İşlem Başlatılıyor..."

// State is the worker's position in its loop.
type State int32

const (
	Idle State = iota
	Dispatching
	WritingResult
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dispatching:
		return "dispatching"
	case WritingResult:
		return "writing-result"
	default:
		return "unknown"
	}
}

// Router produces the transformed text for a job.
type Router interface {
	Route(ctx context.Context, kind job.Kind, payload string) (string, error)
}

// ResultWriter delivers the outcome.
type ResultWriter interface {
	Success(text string) error
	Failure(original string)
}

// Worker is the single consumer of the job queue. Exactly one job is in
// flight at any time; there is no retry.
type Worker struct {
	queue    *job.Queue
	router   Router
	writer   ResultWriter
	notifier notification.Notifier
	timeout  time.Duration
	state    atomic.Int32
	// OnState, if set, is told every state transition.
	OnState func(State)
}

func New(q *job.Queue, r Router, w ResultWriter, n notification.Notifier, timeout time.Duration) *Worker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Worker{queue: q, router: r, writer: w, notifier: n, timeout: timeout}
}

// State reports the current loop state.
func (w *Worker) State() State { return State(w.state.Load()) }

// Run processes jobs until ctx is done or the queue is closed. Job failures
// never end the loop.
func (w *Worker) Run(ctx context.Context) error {
	log.Printf("Worker: started (timeout %v)", w.timeout)
	for {
		w.setState(Idle)
		j, err := w.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, job.ErrQueueClosed) {
				return nil
			}
			return err
		}
		w.process(ctx, j)
	}
}

func (w *Worker) process(ctx context.Context, j job.Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in worker while processing job %s: %v", j.ShortID(), r)
			w.restoreAfterPanic(j)
		}
	}()

	log.Printf("Worker: job %s (%s) dequeued after %v, payload %d chars: %q",
		j.ShortID(), j.Kind, time.Since(j.EnqueuedAt).Round(time.Millisecond), len(j.Payload), logutil.Sanitize(j.Payload))

	w.setState(Dispatching)
	w.notifier.Notify(TitleStarting, "")
	text, err := w.route(ctx, j)

	w.setState(WritingResult)
	if err != nil {
		log.Printf("Worker: job %s failed: %v", j.ShortID(), err)
		w.writer.Failure(j.OriginalClipboard)
		return
	}
	if err := w.writer.Success(text); err != nil {
		log.Printf("Worker: job %s delivery failed: %v", j.ShortID(), err)
		w.writer.Failure(j.OriginalClipboard)
		return
	}
	log.Printf("Worker: job %s completed, %d chars pasted", j.ShortID(), len(text))
}

// restoreAfterPanic runs the failure path, which may itself panic.
func (w *Worker) restoreAfterPanic(j job.Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in worker while restoring job %s: %v", j.ShortID(), r)
		}
	}()
	w.writer.Failure(j.OriginalClipboard)
}

func (w *Worker) route(ctx context.Context, j job.Job) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	text, err := w.router.Route(callCtx, j.Kind, j.Payload)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("empty result for %s", j.Kind)
	}
	return text, nil
}

func (w *Worker) setState(s State) {
	if State(w.state.Swap(int32(s))) == s {
		return
	}
	if w.OnState != nil {
		w.OnState(s)
	}
}
