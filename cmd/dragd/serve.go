package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/dragdrop/internal/config"
	"github.com/vango-dev/dragdrop/pkg/journal"
	"github.com/vango-dev/dragdrop/pkg/server"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the page and run drag sessions",
		Long: `Serve the configured page and accept drag sessions over WebSocket.

Routes:
  /                  the page, with the client script injected
  /ws                WebSocket endpoint for drag sessions
  /metrics           Prometheus metrics
  /healthz           liveness probe

When journal.bucket is set, finished drags are written to S3 as JSON
lines every journal.flushInterval. Credentials and, when journal.region
is unset, the region come from the standard AWS configuration chain
(environment, ~/.aws files, SSO, container or instance roles).

Examples:
  dragd serve
  dragd serve --address=127.0.0.1:9000
  dragd serve --config=deploy/dragd.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, address)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (default from "+config.ConfigFileName+")")

	return cmd
}

func runServe(ctx context.Context, opts *globalOptions, address string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if address != "" {
		cfg.Server.Address = address
	}

	logger, logFile, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer logFile.Close()
	page, err := readPage(cfg)
	if err != nil {
		return err
	}
	sc, err := serverConfig(cfg)
	if err != nil {
		return err
	}

	srvOpts := []server.Option{server.WithLogger(logger)}
	var j *journal.Journal
	if cfg.JournalEnabled() {
		if j, err = newJournal(ctx, cfg, logger); err != nil {
			return err
		}
		srvOpts = append(srvOpts, server.WithJournal(j))
	}

	srv, err := server.New(page, sc, srvOpts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if j != nil {
		interval, err := cfg.FlushInterval()
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.Run(ctx, interval)
		}()
	}

	printBanner(os.Stdout)
	info(os.Stdout, "Page:    %s", cfg.PagePath())
	info(os.Stdout, "Address: %s", sc.Address)
	if j != nil {
		info(os.Stdout, "Journal: s3://%s/%s", cfg.Journal.Bucket, cfg.Journal.Prefix)
	}
	fmt.Println()

	err = srv.Run(ctx)
	// A listener failure must also stop the journal for its final flush.
	cancel()
	wg.Wait()
	return err
}
