package channel

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/core"
	"github.com/vovakirdan/wireboard/internal/proto"
)

// recordingRelay collects published frames.
type recordingRelay struct {
	mu     sync.Mutex
	frames []proto.Frame
	notify chan struct{}
}

func newRecordingRelay() *recordingRelay {
	return &recordingRelay{notify: make(chan struct{}, 16)}
}

func (r *recordingRelay) Publish(_ context.Context, frame proto.Frame) error {
	r.mu.Lock()
	r.frames = append(r.frames, frame)
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
	return nil
}

func (r *recordingRelay) waitFor(t *testing.T, n int) []proto.Frame {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		r.mu.Lock()
		if len(r.frames) >= n {
			out := append([]proto.Frame(nil), r.frames...)
			r.mu.Unlock()
			return out
		}
		r.mu.Unlock()
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("expected %d frames", n)
			return nil
		}
	}
}

func startTestChannel(t *testing.T) (*httptest.Server, core.Hub, *recordingRelay) {
	t.Helper()

	hub := core.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	relay := newRecordingRelay()
	disabledLogger := zerolog.New(nil)
	server := NewServer(hub, relay, config.ChannelConfig{Addr: ":0"}, time.Second, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, hub, relay
}

func wsURL(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http", "ws", 1)
}

func waitForCount(t *testing.T, hub core.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Count() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d listeners, got %d", want, hub.Count())
}
