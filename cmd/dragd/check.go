package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/dragdrop/internal/config"
	"github.com/vango-dev/dragdrop/internal/errors"
	"github.com/vango-dev/dragdrop/pkg/server"
)

func checkCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and page",
		Long: `Validate dragd.json, parse the page and report how many elements the
drag selectors match.

Examples:
  dragd check
  dragd check --config=deploy/dragd.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Path() != "" {
				success(out, "Config %s is valid", cfg.Path())
			} else {
				info(out, "No %s found, using defaults", config.ConfigFileName)
			}

			page, err := readPage(cfg)
			if err != nil {
				return err
			}
			if page, err = server.CanonicalPage(page); err != nil {
				return err
			}
			h, err := server.NewHost(page, dragConfig(cfg))
			if err != nil {
				return err
			}
			defer h.Close()
			success(out, "Page %s parsed", cfg.PagePath())

			doc := h.Document()
			for _, sel := range []struct{ role, selector string }{
				{"draggable", cfg.Drag.Draggable},
				{"droppable", cfg.Drag.Droppable},
			} {
				els, err := doc.QuerySelectorAll(sel.selector)
				if err != nil {
					return errors.New("E402").Wrap(err).WithDetail("Setting: drag." + sel.role)
				}
				if len(els) == 0 {
					warn(out, "%s: %s %q", errors.New("E403").Message, sel.role, sel.selector)
					continue
				}
				success(out, "%d %s element(s) match %q", len(els), sel.role, sel.selector)
			}

			if cfg.JournalEnabled() {
				if _, err := newJournal(cmd.Context(), cfg, nil); err != nil {
					return err
				}
				success(out, "Journal bucket %s configured", cfg.Journal.Bucket)
			}
			return nil
		},
	}
	return cmd
}
