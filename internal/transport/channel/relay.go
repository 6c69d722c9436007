package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/proto"
)

// Relay forwards received frames to another system.
type Relay interface {
	Publish(ctx context.Context, frame proto.Frame) error
}

// NATSRelay publishes frames as JSON on a NATS subject.
type NATSRelay struct {
	nc      *nats.Conn
	subject string
}

// NewNATSRelay connects to the NATS server at url.
func NewNATSRelay(url, subject string, logger *zerolog.Logger) (*NATSRelay, error) {
	nc, err := nats.Connect(url,
		nats.Name("wireboard-channel"),
		nats.Timeout(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSRelay{nc: nc, subject: subject}, nil
}

// Publish sends frame on the configured subject.
func (r *NATSRelay) Publish(_ context.Context, frame proto.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}
	if err := r.nc.Publish(r.subject, data); err != nil {
		return fmt.Errorf("failed to publish to subject '%s': %w", r.subject, err)
	}
	return nil
}

// Close drains pending publishes and closes the connection.
func (r *NATSRelay) Close() error {
	if r.nc == nil {
		return nil
	}
	return r.nc.Drain()
}
