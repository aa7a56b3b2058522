package notify

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestPublishAndDrain(t *testing.T) {
	n := New(nil, zap.NewNop())
	ctx := context.Background()

	n.Publish(ctx, Notification{UserID: "u1", Kind: "prescription_write_failed", Message: "m1"})
	n.Publish(ctx, Notification{UserID: "u1", Kind: "chat_write_failed", Message: "m2"})
	n.Publish(ctx, Notification{UserID: "u2", Kind: "prescription_write_failed", Message: "m3"})

	got := n.Drain("u1")
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].Kind != "prescription_write_failed" || got[1].Kind != "chat_write_failed" {
		t.Fatalf("order lost: %+v", got)
	}
	if got[0].At.IsZero() {
		t.Fatal("timestamp not assigned")
	}

	// Drain clears the queue.
	if again := n.Drain("u1"); len(again) != 0 {
		t.Fatalf("expected empty queue after drain, got %d", len(again))
	}

	// Other users are unaffected.
	if other := n.Drain("u2"); len(other) != 1 {
		t.Fatalf("expected 1 notification for u2, got %d", len(other))
	}
}

func TestDrainEmptyReturnsNonNil(t *testing.T) {
	n := New(nil, zap.NewNop())
	if got := n.Drain("nobody"); got == nil {
		t.Fatal("Drain must return an empty slice, not nil")
	}
}
