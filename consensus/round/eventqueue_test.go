package round

import (
	"context"
	"testing"
	"time"
)

func TestEventQueuePublishThenDrainPreservesOrder(t *testing.T) {
	q := NewEventQueue()
	ctx := context.Background()

	q.Publish(ctx, BroadcastDataEvent{Data: Data{Number: 1}})
	q.Publish(ctx, BroadcastDataEvent{Data: Data{Number: 2}})
	q.Publish(ctx, BroadcastDataEvent{Data: Data{Number: 3}})

	drained := q.Drain()
	if len(drained) != 3 {
		t.Fatalf("drained %d events, want 3", len(drained))
	}
	for i, want := range []uint64{1, 2, 3} {
		got := drained[i].(BroadcastDataEvent).Data.Number
		if got != want {
			t.Fatalf("event %d = %d, want %d", i, got, want)
		}
	}
	if len(q.Drain()) != 0 {
		t.Fatalf("second Drain should be empty")
	}
}

func TestEventQueueNotifyWakesOnPublish(t *testing.T) {
	q := NewEventQueue()
	ctx := context.Background()

	select {
	case <-q.Notify():
		t.Fatalf("Notify fired before any Publish")
	default:
	}

	q.Publish(ctx, BroadcastVoteEvent{Vote: Vote{Kind: VoteAffirmative}})

	select {
	case <-q.Notify():
	case <-time.After(time.Second):
		t.Fatalf("Notify did not fire after Publish")
	}

	drained := q.Drain()
	if len(drained) != 1 {
		t.Fatalf("drained %d events, want 1", len(drained))
	}
}

func TestEventQueueNotifyCoalescesBurstsIntoOneWakeup(t *testing.T) {
	q := NewEventQueue()
	ctx := context.Background()

	q.Publish(ctx, BroadcastVoteEvent{})
	q.Publish(ctx, BroadcastVoteEvent{})
	q.Publish(ctx, BroadcastVoteEvent{})

	select {
	case <-q.Notify():
	default:
		t.Fatalf("expected a pending wakeup after three Publish calls")
	}
	select {
	case <-q.Notify():
		t.Fatalf("Notify should only buffer one pending wakeup, not one per Publish")
	default:
	}

	if len(q.Drain()) != 3 {
		t.Fatalf("all three published events should still be queued")
	}
}
