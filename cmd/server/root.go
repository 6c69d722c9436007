package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wireboard/internal/app"
	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/core"
	wlog "github.com/vovakirdan/wireboard/internal/log"
	"github.com/vovakirdan/wireboard/internal/transport/channel"
)

type rootOptions struct {
	configPath string
	logLevel   string
	overrides  config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "wireboard",
		Short:        "Message board with a real-time notification channel",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.overrides.HTTP.Addr, "http-addr", "", "request server listen address")
	cmd.PersistentFlags().StringVar(&opts.overrides.Channel.Addr, "channel-addr", "", "notification channel listen address")
	cmd.PersistentFlags().DurationVar(&opts.overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")

	cmd.AddCommand(
		newServeCmd(opts, "serve", "Run the request server and the notification channel", app.All),
		newServeCmd(opts, "http", "Run only the request server", app.Components{HTTP: true}),
		newServeCmd(opts, "channel", "Run only the notification channel", app.Components{Channel: true}),
		newNotifyCmd(opts),
	)
	return cmd
}

// load resolves configuration and the logger for a command.
func (o *rootOptions) load() (config.Config, *zerolog.Logger, error) {
	bootLog := wlog.New(o.logLevel)

	cfg, path, err := config.Load(bootLog, o.configPath)
	if err != nil {
		return cfg, bootLog, err
	}

	o.overrides.LogLevel = o.logLevel
	cfg.UpdateFrom(o.overrides)

	logger := wlog.New(cfg.LogLevel)
	logger.Debug().Str("config", path).Msg("configuration loaded")
	return cfg, logger, nil
}

func newServeCmd(opts *rootOptions, use, short string, components app.Components) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			gin.SetMode(gin.ReleaseMode)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, components, logger)
			if err != nil {
				logger.Error().Err(err).Msg("failed to initialize")
				return err
			}

			logger.Info().Str("command", use).Msg("starting wireboard")
			if err := application.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}
}

func newNotifyCmd(opts *rootOptions) *cobra.Command {
	var (
		user    string
		text    string
		target  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send one message frame to the notification channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if target != "" {
				cfg.Notify.URL = target
			}
			if timeout > 0 {
				cfg.Notify.Timeout = timeout
			}

			msg, err := core.NewMessage(user, text, time.Now())
			if err != nil {
				return fmt.Errorf("build message: %w", err)
			}

			if err := channel.NewNotifier(cfg.Notify).Notify(cmd.Context(), msg); err != nil {
				return err
			}
			logger.Info().Str("url", cfg.Notify.URL).Str("timestamp", msg.Timestamp).Msg("frame sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "tester", "username to send")
	cmd.Flags().StringVar(&text, "text", "hello from notify", "message text to send")
	cmd.Flags().StringVar(&target, "url", "", "channel URL (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "delivery timeout (default from config)")
	return cmd
}
