package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vango-dev/dragdrop/internal/config"
	"github.com/vango-dev/dragdrop/internal/errors"
	"github.com/vango-dev/dragdrop/pkg/server"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌┬┐┬─┐┌─┐┌─┐┌┬┐
   ││├┬┘├─┤│ ┬ ││
  ─┴┘┴└─┴ ┴└─┘─┴┘
`

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	noColor    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "dragd",
		Short: "Server-side drag and drop for HTML pages",
		Long: `dragd serves an HTML page and runs drag and drop for it on the server.

The browser forwards pointer events over a WebSocket; dragd hit-tests
them against its own copy of the page, moves elements, and sends the
resulting DOM patches back. Finished drags can be journaled to S3.

  • Dead zone so clicks never start a drag
  • Drop targets resolved by CSS selector
  • Prometheus metrics and OpenTelemetry spans per drag`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to "+config.ConfigFileName+" (default: ./"+config.ConfigFileName+" if present)")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		serveCmd(opts),
		checkCmd(opts),
		replayCmd(opts),
		initCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads the configuration named by --config. Without the flag,
// ./dragd.json is used when it exists and the defaults otherwise.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	case config.Exists("."):
		cfg, err = config.Load(".")
	default:
		cfg = config.New()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readPage reads the page file named by the configuration.
func readPage(cfg *config.Config) ([]byte, error) {
	page, err := os.ReadFile(cfg.PagePath())
	if err != nil {
		return nil, errors.New("E104").Wrap(err).WithDetail("Page: " + cfg.PagePath())
	}
	return page, nil
}

// newLogger builds the process logger from the log section. Console
// output goes to w in the configured format. With log.file set, records
// are also written as JSON to a size-rotated file; close the returned
// closer to release it.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}
	hopts := &slog.HandlerOptions{Level: level}

	var console slog.Handler
	if cfg.Log.Format == "json" {
		console = slog.NewJSONHandler(w, hopts)
	} else {
		console = slog.NewTextHandler(w, hopts)
	}
	if cfg.Log.File == "" {
		return slog.New(console), io.NopCloser(nil), nil
	}

	file := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}
	return slog.New(teeHandler{console, slog.NewJSONHandler(file, hopts)}), file, nil
}

// teeHandler sends every record to each of its handlers.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return stderrors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

// serverConfig maps the file configuration onto the server's.
func serverConfig(cfg *config.Config) (*server.ServerConfig, error) {
	readTimeout, err := cfg.ReadTimeout()
	if err != nil {
		return nil, err
	}
	sc := server.DefaultServerConfig()
	sc.Address = cfg.Server.Address
	sc.ReadBufferSize = cfg.Server.ReadBufferSize
	sc.WriteBufferSize = cfg.Server.WriteBufferSize
	sc.ReadTimeout = readTimeout
	sc.MaxMessageSize = cfg.Server.MaxMessageSize
	sc.MoveRate = cfg.Server.MoveRate
	sc.MoveBurst = cfg.Server.MoveBurst
	sc.Drag = dragConfig(cfg)
	return sc, nil
}

func dragConfig(cfg *config.Config) server.DragConfig {
	return server.DragConfig{
		Draggable: cfg.Drag.Draggable,
		Container: cfg.Drag.Container,
		Droppable: cfg.Drag.Droppable,
		DeadZone:  server.DeadZone(cfg.DeadZone()),
		TopZIndex: cfg.Drag.TopZIndex,
	}
}

// printBanner prints the dragd banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
