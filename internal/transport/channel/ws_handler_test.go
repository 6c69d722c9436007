package channel

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wireboard/internal/proto"
)

func TestHealthEndpoint(t *testing.T) {
	ts, _, _ := startTestChannel(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok listeners=0" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestFramesAreReceivedAndConnectionTracked(t *testing.T) {
	ts, hub, relay := startTestChannel(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitForCount(t, hub, 1)

	frames := []proto.Frame{
		{Username: "alice", Message: "hello", Timestamp: "2024-05-01 10:00:00.000001"},
		{Username: "bob", Message: "héllo 👋", Timestamp: "2024-05-01 10:00:00.000002"},
	}
	for _, f := range frames {
		if err := wsjson.Write(ctx, conn, f); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	got := relay.waitFor(t, 2)
	for i := range frames {
		if got[i] != frames[i] {
			t.Fatalf("frame %d: got %+v, want %+v", i, got[i], frames[i])
		}
	}

	conn.Close(websocket.StatusNormalClosure, "done")
	waitForCount(t, hub, 0)
}

func TestMalformedFrameDropsOnlyThatConnection(t *testing.T) {
	ts, hub, relay := startTestChannel(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bad, _, err := websocket.Dial(ctx, wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial bad: %v", err)
	}
	defer bad.Close(websocket.StatusNormalClosure, "done")

	good, _, err := websocket.Dial(ctx, wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial good: %v", err)
	}
	defer good.Close(websocket.StatusNormalClosure, "done")
	waitForCount(t, hub, 2)

	if err := bad.Write(ctx, websocket.MessageText, []byte("not json")); err != nil {
		t.Fatalf("write malformed: %v", err)
	}

	// The server closes the offending connection.
	_, _, err = bad.Read(ctx)
	if status := websocket.CloseStatus(err); status != websocket.StatusInvalidFramePayloadData {
		t.Fatalf("expected invalid payload close, got %v (%v)", status, err)
	}
	waitForCount(t, hub, 1)

	frame := proto.Frame{Username: "carol", Message: "still here", Timestamp: "2024-05-01 10:00:00.000003"}
	if err := wsjson.Write(ctx, good, frame); err != nil {
		t.Fatalf("write good: %v", err)
	}
	got := relay.waitFor(t, 1)
	if got[0] != frame {
		t.Fatalf("unexpected frame: %+v", got[0])
	}
}
