package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"copypolish/src/clipboard"
	"copypolish/src/job"
	"copypolish/src/keys"
	"copypolish/src/selection"
)

type roundTrip struct {
	cb  *clipboard.Memory
	kb  *keys.Recorder
	ext *selection.Extractor
}

// newRoundTrip wires a real extractor to an in-memory clipboard whose copy
// command puts selected on the clipboard.
func newRoundTrip(initial, selected string) *roundTrip {
	cb := clipboard.NewMemory(initial)
	kb := &keys.Recorder{OnCopy: func() {
		if selected != "" {
			cb.Write(selected)
		}
	}}
	ext := selection.New(cb, kb)
	ext.SettleDelay = 0
	return &roundTrip{cb: cb, kb: kb, ext: ext}
}

func TestTriggerQueuesJob(t *testing.T) {
	rt := newRoundTrip("draft", "Selam nasilsin")
	q := job.NewQueue()
	d := New(context.Background(), rt.ext, q, nil)

	d.Handler(job.Rewrite)()

	if q.Len() != 1 {
		t.Fatalf("Expected one queued job, got %d", q.Len())
	}
	j, _ := q.Pop(context.Background())
	if j.Kind != job.Rewrite || j.Payload != "Selam nasilsin" || j.OriginalClipboard != "draft" {
		t.Errorf("Unexpected job %+v", j)
	}
	if j.ID == "" || j.EnqueuedAt.IsZero() {
		t.Errorf("Expected id and timestamp, got %+v", j)
	}
}

func TestEmptySelectionQueuesNothing(t *testing.T) {
	rt := newRoundTrip("foo", "")
	q := job.NewQueue()
	d := New(context.Background(), rt.ext, q, nil)

	d.Trigger(job.Translate)

	if q.Len() != 0 {
		t.Errorf("Expected empty queue, got %d", q.Len())
	}
	if got := rt.cb.Text(); got != "foo" {
		t.Errorf("Expected clipboard 'foo', got %q", got)
	}
}

type failingExtractor struct{}

func (failingExtractor) Extract(context.Context) (selection.Selection, bool, error) {
	return selection.Selection{}, false, errors.New("clipboard busy")
}

type panickingExtractor struct{}

func (panickingExtractor) Extract(context.Context) (selection.Selection, bool, error) {
	panic("boom")
}

func TestTriggerSurvivesErrorsAndPanics(t *testing.T) {
	q := job.NewQueue()
	for _, ex := range []Extractor{failingExtractor{}, panickingExtractor{}} {
		d := New(context.Background(), ex, q, nil)
		d.Trigger(job.Rewrite)
	}
	if q.Len() != 0 {
		t.Errorf("Expected no jobs, got %d", q.Len())
	}
}

type pathFunc func(ctx context.Context) error

func (f pathFunc) Paste(ctx context.Context) error { return f(ctx) }

func TestPastePathRunsAsideFromQueue(t *testing.T) {
	rt := newRoundTrip("", "should not be copied")
	q := job.NewQueue()
	ran := make(chan struct{})
	release := make(chan struct{})
	d := New(context.Background(), rt.ext, q, pathFunc(func(context.Context) error {
		close(ran)
		<-release
		return nil
	}))

	// Trigger returns while the handler is still blocked.
	d.Trigger(job.PastePath)
	<-ran
	close(release)
	d.Wait()

	if q.Len() != 0 {
		t.Errorf("PastePath must not produce a job, got %d", q.Len())
	}
	if rt.kb.Copies() != 0 {
		t.Errorf("PastePath must not run extraction, got %d copies", rt.kb.Copies())
	}
}

func TestClosedQueueDropsJob(t *testing.T) {
	rt := newRoundTrip("x", "text")
	q := job.NewQueue()
	q.Close()
	d := New(context.Background(), rt.ext, q, nil)
	d.Trigger(job.Rewrite)
	if q.Len() != 0 {
		t.Errorf("Expected nothing queued after close, got %d", q.Len())
	}
}

func TestConcurrentTriggersKeepOriginalClipboard(t *testing.T) {
	rt := newRoundTrip("draft", "Selam nasilsin")
	rt.ext.SettleDelay = 100 * time.Millisecond
	q := job.NewQueue()
	d := New(context.Background(), rt.ext, q, nil)

	var wg sync.WaitGroup
	for i, kind := range []job.Kind{job.Rewrite, job.Translate} {
		i, kind := i, kind
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(time.Duration(i) * 20 * time.Millisecond)
			d.Trigger(kind)
		}()
	}
	wg.Wait()

	if q.Len() != 2 {
		t.Fatalf("Expected two queued jobs, got %d", q.Len())
	}
	kinds := map[job.Kind]bool{}
	for i := 0; i < 2; i++ {
		j, _ := q.Pop(context.Background())
		kinds[j.Kind] = true
		if j.OriginalClipboard != "draft" {
			t.Errorf("Expected %s job original 'draft', got %q", j.Kind, j.OriginalClipboard)
		}
		if j.Payload != "Selam nasilsin" {
			t.Errorf("Expected %s payload 'Selam nasilsin', got %q", j.Kind, j.Payload)
		}
	}
	if !kinds[job.Rewrite] || !kinds[job.Translate] {
		t.Errorf("Expected one job per kind, got %v", kinds)
	}
	if got := rt.cb.Text(); got != "draft" {
		t.Errorf("Expected clipboard 'draft' after both extractions, got %q", got)
	}
}
