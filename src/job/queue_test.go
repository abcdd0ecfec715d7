package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	for i, p := range []string{"a", "b", "c", "d"} {
		if !q.Push(New(Kind(i%2), p, "")) {
			t.Fatalf("Push(%q) rejected", p)
		}
	}
	if q.Len() != 4 {
		t.Fatalf("Expected Len=4, got %d", q.Len())
	}

	ctx := context.Background()
	for _, want := range []string{"a", "b", "c", "d"} {
		j, err := q.Pop(ctx)
		if err != nil {
			t.Fatalf("Pop failed: %v", err)
		}
		if j.Payload != want {
			t.Errorf("Expected payload %q, got %q", want, j.Payload)
		}
	}
}

func TestQueuePopBlocksUntilPush(t *testing.T) {
	q := NewQueue()
	got := make(chan Job, 1)
	go func() {
		j, err := q.Pop(context.Background())
		if err == nil {
			got <- j
		}
	}()

	select {
	case <-got:
		t.Fatal("Pop returned before anything was pushed")
	case <-time.After(50 * time.Millisecond):
	}

	q.Push(New(Translate, "merhaba", "orig"))
	select {
	case j := <-got:
		if j.Kind != Translate || j.Payload != "merhaba" || j.OriginalClipboard != "orig" {
			t.Errorf("Unexpected job: %+v", j)
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up after Push")
	}
}

func TestQueuePopHonorsContext(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if _, err := q.Pop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded, got %v", err)
	}
}

func TestQueueClose(t *testing.T) {
	q := NewQueue()
	q.Push(New(Rewrite, "left over", ""))
	q.Close()

	if q.Push(New(Rewrite, "late", "")) {
		t.Error("Expected Push after Close to be rejected")
	}
	j, err := q.Pop(context.Background())
	if err != nil || j.Payload != "left over" {
		t.Fatalf("Expected queued job before close error, got %+v, %v", j, err)
	}
	if _, err := q.Pop(context.Background()); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("Expected ErrQueueClosed, got %v", err)
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue()
	const producers, perProducer = 8, 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(New(Rewrite, "x", ""))
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	seen := make(map[string]bool)
	for i := 0; i < producers*perProducer; i++ {
		j, err := q.Pop(ctx)
		if err != nil {
			t.Fatalf("Pop %d failed: %v", i, err)
		}
		if seen[j.ID] {
			t.Fatalf("Job %s popped twice", j.ID)
		}
		seen[j.ID] = true
	}
	wg.Wait()
	if q.Len() != 0 {
		t.Errorf("Expected empty queue, got %d", q.Len())
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("summarize"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}
