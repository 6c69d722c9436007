package channel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/core"
	"github.com/vovakirdan/wireboard/internal/proto"
)

// WSHandler accepts listener connections and logs every frame they send.
// Frames are never echoed or fanned out to other listeners.
type WSHandler struct {
	hub   core.Hub
	relay Relay
	log   *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler. relay may be nil.
func NewWSHandler(hub core.Hub, relay Relay, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, relay: relay, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	listener := &core.Listener{
		ID:          uuid.NewString(),
		RemoteAddr:  r.RemoteAddr,
		ConnectedAt: time.Now(),
	}
	h.hub.Register(listener)
	defer h.hub.Unregister(listener)

	h.log.Debug().Str("conn_id", listener.ID).Str("remote", listener.RemoteAddr).Msg("listener connected")

	err = h.readLoop(r.Context(), conn, listener)

	status := websocket.StatusNormalClosure
	reason := "closing"
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
	case isNormalClose(err):
		h.log.Debug().Str("conn_id", listener.ID).Msg("listener disconnected")
	case isDecodeError(err):
		// wsjson already closed the connection with StatusInvalidFramePayloadData.
		h.log.Warn().Err(err).Str("conn_id", listener.ID).Msg("malformed frame, dropping connection")
		return
	default:
		status = websocket.StatusInternalError
		reason = "read error"
		h.log.Warn().Err(err).Str("conn_id", listener.ID).Msg("ws connection closed with error")
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, listener *core.Listener) error {
	for {
		var frame proto.Frame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			return err
		}
		h.handleFrame(ctx, listener, frame)
	}
}

func (h *WSHandler) handleFrame(ctx context.Context, listener *core.Listener, frame proto.Frame) {
	h.log.Info().
		Str("conn_id", listener.ID).
		Str("username", frame.Username).
		Str("message", frame.Message).
		Str("timestamp", frame.Timestamp).
		Msg("received message")

	if !frame.Valid() {
		h.log.Warn().Str("conn_id", listener.ID).Msg("frame is missing fields")
	}

	if h.relay == nil {
		return
	}
	if err := h.relay.Publish(ctx, frame); err != nil {
		h.log.Warn().Err(err).Str("conn_id", listener.ID).Msg("relay frame")
	}
}

func isNormalClose(err error) bool {
	s := websocket.CloseStatus(err)
	return s == websocket.StatusNormalClosure || s == websocket.StatusGoingAway
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
