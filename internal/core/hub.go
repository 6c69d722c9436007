package core

import (
	"context"
	"time"
)

// Listener is a connected consumer of the notification channel.
type Listener struct {
	ID          string
	RemoteAddr  string
	ConnectedAt time.Time
}

// Hub tracks the set of connected listeners. All state is owned by the Run
// goroutine; other goroutines talk to it through channels.
type Hub interface {
	Run(ctx context.Context)
	Register(l *Listener)
	Unregister(l *Listener)
	Count() int
}

type hub struct {
	listeners  map[string]*Listener
	register   chan *Listener
	unregister chan *Listener
	count      chan chan int
	done       chan struct{}
}

// NewHub creates a listener registry. Run must be started before use.
func NewHub() Hub {
	return &hub{
		listeners:  make(map[string]*Listener),
		register:   make(chan *Listener),
		unregister: make(chan *Listener),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

func (h *hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case l := <-h.register:
			h.listeners[l.ID] = l
		case l := <-h.unregister:
			delete(h.listeners, l.ID)
		case reply := <-h.count:
			reply <- len(h.listeners)
		case <-ctx.Done():
			return
		}
	}
}

func (h *hub) Register(l *Listener) {
	select {
	case h.register <- l:
	case <-h.done:
	}
}

func (h *hub) Unregister(l *Listener) {
	select {
	case h.unregister <- l:
	case <-h.done:
	}
}

// Count returns the number of connected listeners, or 0 once the hub stopped.
func (h *hub) Count() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}
