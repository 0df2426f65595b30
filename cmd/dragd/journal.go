package main

import (
	"context"
	"log/slog"

	"github.com/vango-dev/dragdrop/internal/config"
	"github.com/vango-dev/dragdrop/pkg/journal"
)

// newJournal builds the S3-backed journal described by the journal section.
func newJournal(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*journal.Journal, error) {
	client, err := journal.NewS3Client(ctx, journal.S3Options{
		Region:    cfg.Journal.Region,
		Endpoint:  cfg.Journal.Endpoint,
		PathStyle: cfg.Journal.PathStyle,
	})
	if err != nil {
		return nil, err
	}
	sink := journal.NewS3Sink(client, cfg.Journal.Bucket, cfg.Journal.Prefix)
	return journal.New(sink, journal.WithLogger(logger)), nil
}
