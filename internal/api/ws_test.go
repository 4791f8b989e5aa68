package api

import (
	"testing"
	"time"
)

func TestForwardGestureDropsOnlyMoves(t *testing.T) {
	events := make(chan wsGesture, 1)
	done := make(chan struct{})

	events <- wsGesture{Type: "move"}

	// A second move is dropped while the session lags.
	if !forwardGesture(events, wsGesture{Type: "move", X: 1}, done) {
		t.Fatal("move forward must not report a dead session")
	}
	if len(events) != 1 {
		t.Fatalf("lagging move must be dropped, queue depth %d", len(events))
	}

	// A control event waits for the session to drain instead of being lost.
	delivered := make(chan bool, 1)
	go func() {
		delivered <- forwardGesture(events, wsGesture{Type: "end"}, done)
	}()

	if g := <-events; g.Type != "move" {
		t.Fatalf("expected the queued move first, got %q", g.Type)
	}
	select {
	case ok := <-delivered:
		if !ok {
			t.Fatal("end forward must succeed once the queue drains")
		}
	case <-time.After(time.Second):
		t.Fatal("end forward never completed after the queue drained")
	}
	if g := <-events; g.Type != "end" {
		t.Fatalf("expected the end event, got %q", g.Type)
	}
}

func TestForwardGestureAbortsWhenSessionEnds(t *testing.T) {
	events := make(chan wsGesture, 1)
	events <- wsGesture{Type: "move"} // queue full, nobody draining

	done := make(chan struct{})
	close(done)

	if forwardGesture(events, wsGesture{Type: "stop"}, done) {
		t.Fatal("control forward must abort once the session is gone")
	}
}
