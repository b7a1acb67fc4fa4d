package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/paddock/internal/domain/model"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	req := model.RaceRequest{RaceID: "race-1", SubmittedAt: time.Now()}
	if !q.Enqueue(ctx, req) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	out := q.Dequeue(ctx)
	got := <-out
	if got.RaceID != "race-1" {
		t.Errorf("expected race-1, got %v", got.RaceID)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Backpressure(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if !q.Enqueue(ctx, model.RaceRequest{RaceID: fmt.Sprintf("race-%d", i)}) {
			t.Fatalf("enqueue %d should succeed", i)
		}
	}

	if q.Enqueue(ctx, model.RaceRequest{RaceID: "race-overflow"}) {
		t.Error("expected enqueue to fail on a full queue")
	}

	// Drain one slot and the queue accepts again.
	out := q.Dequeue(ctx)
	<-out
	if !q.Enqueue(ctx, model.RaceRequest{RaceID: "race-2"}) {
		t.Error("expected enqueue to succeed after drain")
	}
}

func TestInMemoryQueue_FIFOOrder(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		q.Enqueue(ctx, model.RaceRequest{RaceID: fmt.Sprintf("race-%d", i)})
	}

	out := q.Dequeue(ctx)
	for i := 0; i < 5; i++ {
		got := <-out
		want := fmt.Sprintf("race-%d", i)
		if got.RaceID != want {
			t.Errorf("expected %s, got %s", want, got.RaceID)
		}
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	q.Enqueue(ctx, model.RaceRequest{RaceID: "race-1"})

	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, model.RaceRequest{RaceID: "race-late"}) {
		t.Error("expected enqueue to fail after close")
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}

	// Pending requests drain, then the channel closes.
	out := q.Dequeue(ctx)
	got, ok := <-out
	if !ok || got.RaceID != "race-1" {
		t.Errorf("expected race-1 before close, got %v (ok=%v)", got.RaceID, ok)
	}
	select {
	case _, ok := <-out:
		if ok {
			t.Error("expected dequeue channel to be closed")
		}
	case <-time.After(time.Second):
		t.Error("timed out waiting for dequeue channel to close")
	}
}
