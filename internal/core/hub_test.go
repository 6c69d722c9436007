package core

import (
	"context"
	"testing"
	"time"
)

func TestHubRegisterAndUnregister(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	a := &Listener{ID: "a"}
	b := &Listener{ID: "b"}
	hub.Register(a)
	hub.Register(b)

	if n := hub.Count(); n != 2 {
		t.Fatalf("expected 2 listeners, got %d", n)
	}

	hub.Unregister(a)
	if n := hub.Count(); n != 1 {
		t.Fatalf("expected 1 listener, got %d", n)
	}

	// Unknown listeners are ignored.
	hub.Unregister(&Listener{ID: "ghost"})
	if n := hub.Count(); n != 1 {
		t.Fatalf("expected 1 listener, got %d", n)
	}
}

func TestHubStoppedDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		hub.Register(&Listener{ID: "late"})
		hub.Unregister(&Listener{ID: "late"})
		_ = hub.Count()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub calls blocked after shutdown")
	}
}
