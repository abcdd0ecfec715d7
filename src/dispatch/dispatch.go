package dispatch

import (
	"context"
	"log"
	"sync"

	"copypolish/src/job"
	"copypolish/src/logutil"
	"copypolish/src/selection"
)

// Extractor performs the clipboard round-trip.
type Extractor interface {
	Extract(ctx context.Context) (selection.Selection, bool, error)
}

// PathPaster handles PastePath triggers.
type PathPaster interface {
	Paste(ctx context.Context) error
}

// Dispatcher turns hotkey triggers into jobs. Rewrite and Translate triggers
// run synchronously on the calling hook goroutine. Clipboard round-trips are
// serialised across every hook goroutine so each job's original clipboard is
// read before any other trigger touches the clipboard.
type Dispatcher struct {
	ctx       context.Context
	extractor Extractor
	queue     *job.Queue
	paths     PathPaster
	wg        sync.WaitGroup
	// clipMu is held across extract+push and around PastePath handling.
	clipMu sync.Mutex
}

func New(ctx context.Context, ex Extractor, q *job.Queue, paths PathPaster) *Dispatcher {
	return &Dispatcher{ctx: ctx, extractor: ex, queue: q, paths: paths}
}

// Handler returns the callback registered for kind.
func (d *Dispatcher) Handler(kind job.Kind) func() {
	return func() { d.Trigger(kind) }
}

// Trigger handles one hotkey press. Panics are recovered and logged.
func (d *Dispatcher) Trigger(kind job.Kind) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in %s trigger: %v", kind, r)
		}
	}()

	switch kind {
	case job.Rewrite, job.Translate:
		d.enqueue(kind)
	case job.PastePath:
		if d.paths == nil {
			log.Printf("Dispatcher: paste-path trigger ignored, no handler")
			return
		}
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("PANIC in paste-path handler: %v", r)
				}
			}()
			d.clipMu.Lock()
			defer d.clipMu.Unlock()
			if err := d.paths.Paste(d.ctx); err != nil {
				log.Printf("Dispatcher: paste-path failed: %v", err)
			}
		}()
	default:
		log.Printf("Dispatcher: unknown trigger %s", kind)
	}
}

func (d *Dispatcher) enqueue(kind job.Kind) {
	d.clipMu.Lock()
	defer d.clipMu.Unlock()

	sel, ok, err := d.extractor.Extract(d.ctx)
	if err != nil {
		log.Printf("Dispatcher: %s extraction failed: %v", kind, err)
		return
	}
	if !ok {
		log.Printf("Dispatcher: %s trigger with empty selection, nothing queued", kind)
		return
	}
	j := job.New(kind, sel.Text, sel.Original)
	if !d.queue.Push(j) {
		log.Printf("Dispatcher: queue closed, %s job dropped", kind)
		return
	}
	log.Printf("Dispatcher: queued %s job %s (%q), %d waiting", kind, j.ShortID(), logutil.Sanitize(j.Payload), d.queue.Len())
}

// Wait blocks until running PastePath handlers have returned.
func (d *Dispatcher) Wait() { d.wg.Wait() }
