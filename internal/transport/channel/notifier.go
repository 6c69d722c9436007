package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/core"
	"github.com/vovakirdan/wireboard/internal/proto"
)

// Notifier delivers single records to the notification channel. Each call
// opens its own connection, writes one frame and closes it.
type Notifier struct {
	url     string
	timeout time.Duration
}

// NewNotifier builds a notifier from configuration. A zero timeout leaves the
// attempt bounded only by the caller's context.
func NewNotifier(cfg config.NotifyConfig) *Notifier {
	return &Notifier{url: cfg.URL, timeout: cfg.Timeout}
}

// Notify sends msg. The whole dial-write-close cycle shares one deadline.
func (n *Notifier) Notify(ctx context.Context, msg core.Message) error {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	conn, _, err := websocket.Dial(ctx, n.url, nil)
	if err != nil {
		return fmt.Errorf("dial channel: %w", err)
	}

	if err := wsjson.Write(ctx, conn, proto.FrameFromMessage(msg)); err != nil {
		_ = conn.CloseNow()
		return fmt.Errorf("send frame: %w", err)
	}

	// The frame is out; a failed close handshake does not undo delivery.
	closeGracefully(ctx, conn)
	return nil
}

// closeGracefully starts a normal-closure handshake and waits for it only
// until ctx ends. A peer that stops reading keeps the handshake alive for the
// library's own close timeout, which is longer than a delivery budget, so the
// handshake finishes in the background.
func closeGracefully(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = conn.Close(websocket.StatusNormalClosure, "sent")
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}
