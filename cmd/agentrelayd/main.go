package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"agentrelay/internal/config"
	"agentrelay/internal/event"
	"agentrelay/internal/httpapi"
	"agentrelay/internal/relay"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type serveOptions struct {
	addr       string
	baseURL    string
	directory  string
	configPath string
	bufferCap  int
	logLevel   string
	noNotify   bool
}

func newRootCmd() *cobra.Command {
	var opts serveOptions

	root := &cobra.Command{
		Use:           "agentrelayd",
		Short:         "Relay a local agent's SSE event feed to desktop consumers",
		Long:          "agentrelayd connects to a local agent process, follows its event stream across disconnects, and republishes normalized events over HTTP with replay catch-up and turn-completion notifications.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	f := root.Flags()
	f.StringVar(&opts.addr, "addr", envOr("AGENTRELAY_ADDR", "127.0.0.1:4180"), "HTTP listen address")
	f.StringVar(&opts.baseURL, "base-url", envOr("AGENTRELAY_BASE_URL", "http://127.0.0.1:4096"), "Base URL of the agent process")
	f.StringVar(&opts.directory, "directory", envOr("AGENTRELAY_DIRECTORY", ""), "Initial target directory for the event stream")
	f.StringVar(&opts.configPath, "config", envOr("AGENTRELAY_CONFIG", ""), "Path to a .yaml/.json/.toml config file")
	f.IntVar(&opts.bufferCap, "buffer-capacity", envOrInt("AGENTRELAY_BUFFER_CAPACITY", 0), "Replay buffer capacity (0 = default 256)")
	f.StringVar(&opts.logLevel, "log-level", envOr("AGENTRELAY_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	f.BoolVar(&opts.noNotify, "no-notify", false, "Disable desktop notifications")

	return root
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	// Config file values fill in anything the flags left at defaults.
	if opts.configPath != "" {
		fileCfg, err := config.Load(opts.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		flags := cmd.Flags()
		if !flags.Changed("addr") && fileCfg.Addr != "" {
			opts.addr = fileCfg.Addr
		}
		if !flags.Changed("base-url") && fileCfg.BaseURL != "" {
			opts.baseURL = fileCfg.BaseURL
		}
		if !flags.Changed("directory") && fileCfg.Directory != "" {
			opts.directory = fileCfg.Directory
		}
		if !flags.Changed("buffer-capacity") && fileCfg.BufferCapacity > 0 {
			opts.bufferCap = fileCfg.BufferCapacity
		}
		if !flags.Changed("log-level") && fileCfg.LogLevel != "" {
			opts.logLevel = fileCfg.LogLevel
		}
		if !flags.Changed("no-notify") && fileCfg.Notifications != nil {
			opts.noNotify = !*fileCfg.Notifications
		}
	}

	level, err := zerolog.ParseLevel(opts.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q", opts.logLevel)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	var notifier event.Notifier = event.NewDesktopNotifier(log)
	if opts.noNotify {
		notifier = event.NopNotifier{}
	}

	mgr := relay.NewWithConfig(relay.Config{
		BaseURL:        opts.baseURL,
		Directory:      opts.directory,
		BufferCapacity: opts.bufferCap,
		Notifier:       notifier,
		Logger:         log,
	})

	httpapi.SetLogger(log)
	srv := &http.Server{Addr: opts.addr, Handler: httpapi.NewMux(mgr)}

	mgr.Start()
	go func() {
		log.Info().Str("addr", opts.addr).Str("base_url", opts.baseURL).Msg("agentrelayd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	mgr.Stop()
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
