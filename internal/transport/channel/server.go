package channel

import (
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/core"
)

// NewServer builds the notification channel server. Listeners connect with a
// WebSocket upgrade on any path except /health.
func NewServer(hub core.Hub, relay Relay, cfg config.ChannelConfig, readHeaderTimeout time.Duration, logger *zerolog.Logger) *stdhttp.Server {
	mux := stdhttp.NewServeMux()
	mux.HandleFunc("/health", healthHandler(hub))
	mux.Handle("/", NewWSHandler(hub, relay, logger))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func healthHandler(hub core.Hub) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		_, _ = fmt.Fprintf(w, "ok listeners=%d", hub.Count())
	}
}
