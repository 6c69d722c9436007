package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/core"
	wlog "github.com/vovakirdan/wireboard/internal/log"
	"github.com/vovakirdan/wireboard/internal/service/board"
	"github.com/vovakirdan/wireboard/internal/store"
	"github.com/vovakirdan/wireboard/internal/store/jsonfile"
	"github.com/vovakirdan/wireboard/internal/store/sqlite"
	"github.com/vovakirdan/wireboard/internal/transport/channel"
	transporthttp "github.com/vovakirdan/wireboard/internal/transport/http"
)

// Components selects which servers an App runs.
type Components struct {
	HTTP    bool
	Channel bool
}

// All runs both servers.
var All = Components{HTTP: true, Channel: true}

type namedServer struct {
	name   string
	server *stdhttp.Server
}

// App wires together store, services and both servers. The servers share
// nothing but the process; either can run alone.
type App struct {
	servers         []namedServer
	shutdownTimeout time.Duration
	hub             core.Hub
	store           store.Store
	relay           *channel.NATSRelay
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, components Components, logger *zerolog.Logger) (*App, error) {
	if !components.HTTP && !components.Channel {
		return nil, errors.New("no components selected")
	}

	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}

	if components.HTTP {
		st, err := openStore(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		a.store = st
		storePath := cfg.Store.Path
		if cfg.Store.Driver == store.DriverSQLite {
			storePath = sqlitePath(storePath)
		}
		logger.Info().Str("driver", cfg.Store.Driver).Str("path", storePath).Msg("store initialized")

		httpLog := wlog.Component(logger, "http")
		svc := board.New(st, channel.NewNotifier(cfg.Notify), core.NewClock(nil), httpLog)
		a.servers = append(a.servers, namedServer{
			name:   "http",
			server: transporthttp.NewServer(svc, cfg.HTTP, httpLog),
		})
	}

	if components.Channel {
		chLog := wlog.Component(logger, "channel")

		var relay channel.Relay
		if cfg.Channel.NATSURL != "" {
			natsRelay, err := channel.NewNATSRelay(cfg.Channel.NATSURL, cfg.Channel.NATSSubject, chLog)
			if err != nil {
				a.cleanup()
				return nil, fmt.Errorf("init relay: %w", err)
			}
			a.relay = natsRelay
			relay = natsRelay
			chLog.Info().Str("url", cfg.Channel.NATSURL).Str("subject", cfg.Channel.NATSSubject).Msg("relaying frames to nats")
		}

		a.hub = core.NewHub()
		a.servers = append(a.servers, namedServer{
			name:   "channel",
			server: channel.NewServer(a.hub, relay, cfg.Channel, cfg.HTTP.ReadHeaderTimeout, chLog),
		})
	}

	return a, nil
}

func openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case store.DriverJSON, "":
		return jsonfile.New(cfg.Path)
	case store.DriverSQLite:
		return sqlite.New(sqlitePath(cfg.Path))
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// sqlitePath keeps the sqlite driver off the JSON default file name.
func sqlitePath(path string) string {
	if path == "" || path == config.Default().Store.Path {
		return store.DefaultSQLitePath
	}
	return path
}

// Run binds every server, then serves until context cancellation or a fatal
// error in any server. A bind failure aborts before anything is served.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	listeners := make([]net.Listener, 0, len(a.servers))
	for _, s := range a.servers {
		ln, err := net.Listen("tcp", s.server.Addr)
		if err != nil {
			for _, l := range listeners {
				_ = l.Close()
			}
			return fmt.Errorf("listen %s on %s: %w", s.name, s.server.Addr, err)
		}
		listeners = append(listeners, ln)
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.hub != nil {
		g.Go(func() error {
			a.hub.Run(gctx)
			return nil
		})
	}

	for i, s := range a.servers {
		s := s
		ln := listeners[i]
		a.log.Info().Str("server", s.name).Str("addr", ln.Addr().String()).Msg("server started")

		g.Go(func() error {
			if err := s.server.Serve(ln); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", s.name, err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
			defer cancel()

			a.log.Info().Str("server", s.name).Msg("shutting down server")
			return s.server.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// cleanup closes the store and relay.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
	if a.relay != nil {
		if err := a.relay.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close relay")
		}
	}
}
