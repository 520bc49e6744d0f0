package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func change(id string) Event {
	return Event{Collection: "results", DocID: id, Kind: "updated"}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, change("r1")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	event := <-q.Dequeue(ctx)
	if event.DocID != "r1" {
		t.Errorf("expected r1, got %v", event.DocID)
	}
	if event.At.IsZero() {
		t.Error("expected enqueue to stamp the event time")
	}
}

func TestInMemoryQueue_DropsWhenFull(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, change("r1")) || !q.Enqueue(ctx, change("r2")) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, change("r3")) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context may still enqueue while there is room; once full it must not block.
	q.Enqueue(ctx, change("r1"))
	if q.Enqueue(ctx, change("r2")) {
		t.Error("expected enqueue to fail on a full queue")
	}

	out := q.Dequeue(ctx)
	select {
	case _, ok := <-out:
		if ok {
			// The first read may race the cancelled context; the channel must close next.
			if _, ok := <-out; ok {
				t.Error("expected dequeue channel to close for a cancelled context")
			}
		}
	case <-time.After(time.Second):
		t.Error("dequeue did not observe the cancelled context")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	producers, perProducer := 10, 100

	var produced sync.WaitGroup
	for i := 0; i < producers; i++ {
		produced.Add(1)
		go func(id int) {
			defer produced.Done()
			for j := 0; j < perProducer; j++ {
				for !q.Enqueue(ctx, change(fmt.Sprintf("r%d_%d", id, j))) {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	consumed := make(chan string, producers*perProducer)
	var consumers sync.WaitGroup
	for i := 0; i < 3; i++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for event := range q.Dequeue(ctx) {
				consumed <- event.DocID
			}
		}()
	}

	produced.Wait()
	_ = q.Close()
	consumers.Wait()

	if got := len(consumed); got != producers*perProducer {
		t.Errorf("expected %d events consumed, got %d", producers*perProducer, got)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, change("r1")) {
		t.Error("expected enqueue to succeed")
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if q.Enqueue(ctx, change("r2")) {
		t.Error("expected enqueue to fail after closing")
	}

	// Buffered events drain before the channel closes.
	out := q.Dequeue(ctx)
	var got []string
	timeout := time.After(time.Second)
	for done := false; !done; {
		select {
		case e, ok := <-out:
			if !ok {
				done = true
				continue
			}
			got = append(got, e.DocID)
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
	if len(got) != 1 || got[0] != "r1" {
		t.Errorf("expected [r1] drained, got %v", got)
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
