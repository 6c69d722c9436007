package channel

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/core"
	"github.com/vovakirdan/wireboard/internal/proto"
)

func TestNotifierDeliversOneFrame(t *testing.T) {
	ts, _, relay := startTestChannel(t)

	n := NewNotifier(config.NotifyConfig{URL: wsURL(ts), Timeout: 2 * time.Second})
	msg := core.Message{Username: "alice", Message: "hello", Timestamp: "2024-05-01 10:00:00.000001"}

	if err := n.Notify(context.Background(), msg); err != nil {
		t.Fatalf("notify: %v", err)
	}

	got := relay.waitFor(t, 1)
	if got[0] != proto.FrameFromMessage(msg) {
		t.Fatalf("unexpected frame: %+v", got[0])
	}
}

func TestNotifierUnreachableChannel(t *testing.T) {
	// Grab a free port and release it so nothing listens there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	n := NewNotifier(config.NotifyConfig{URL: "ws://" + addr, Timeout: time.Second})
	if err := n.Notify(context.Background(), core.Message{Username: "a", Message: "b", Timestamp: "t"}); err == nil {
		t.Fatal("expected error for unreachable channel")
	}
}

func TestNotifierTimesOutOnWedgedChannel(t *testing.T) {
	// Accepts TCP connections but never answers the handshake.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		var conns []net.Conn
		defer func() {
			for _, c := range conns {
				c.Close()
			}
		}()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, conn)
		}
	}()

	n := NewNotifier(config.NotifyConfig{URL: "ws://" + ln.Addr().String(), Timeout: 200 * time.Millisecond})

	start := time.Now()
	err = n.Notify(context.Background(), core.Message{Username: "a", Message: "b", Timestamp: "t"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("notify not bounded by timeout: %v", elapsed)
	}
}

func TestNotifierCloseBoundedByTimeout(t *testing.T) {
	// Completes the handshake, then never reads, so the close handshake stalls.
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		<-release
		_ = conn.CloseNow()
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { close(release) })

	n := NewNotifier(config.NotifyConfig{URL: wsURL(ts), Timeout: 200 * time.Millisecond})

	start := time.Now()
	err := n.Notify(context.Background(), core.Message{Username: "a", Message: "b", Timestamp: "t"})
	if err != nil {
		t.Fatalf("frame was written, expected nil error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("notify not bounded by timeout: %v", elapsed)
	}
}
