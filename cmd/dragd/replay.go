package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/dragdrop/internal/errors"
	"github.com/vango-dev/dragdrop/pkg/journal"
	"github.com/vango-dev/dragdrop/pkg/protocol"
	"github.com/vango-dev/dragdrop/pkg/server"
)

func replayCmd(opts *globalOptions) *cobra.Command {
	var records bool

	cmd := &cobra.Command{
		Use:   "replay <events.jsonl>",
		Short: "Run recorded pointer events against the page",
		Long: `Run a recorded event log against the configured page without a browser
and print the patches each event produces.

Each line of the log is a JSON object:
  {"type": "down",   "target": "card", "x": 20, "y": 20}
  {"type": "move",   "x": 200, "y": 100}
  {"type": "up",     "x": 350, "y": 100}
  {"type": "scroll", "x": 0, "y": 120}
  {"type": "resize", "width": 1280, "height": 800}

x and y are viewport coordinates. Blank lines and lines starting with #
are skipped. Use - to read from stdin.

Examples:
  dragd replay session.jsonl
  dragd replay --records session.jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			page, err := readPage(cfg)
			if err != nil {
				return err
			}
			if page, err = server.CanonicalPage(page); err != nil {
				return err
			}

			name := args[0]
			var in io.Reader = cmd.InOrStdin()
			if name != "-" {
				f, err := os.Open(name)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			sink := &journal.MemorySink{}
			j := journal.New(sink)
			h, err := server.NewHost(page, dragConfig(cfg), server.WithHostID("replay"), server.WithHostJournal(j))
			if err != nil {
				return err
			}
			defer h.Close()

			out := cmd.OutOrStdout()
			if err := replay(out, h, in, name); err != nil {
				return err
			}
			if records {
				if err := j.Flush(context.Background()); err != nil {
					return err
				}
				for _, b := range sink.Batches() {
					out.Write(b)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&records, "records", "r", false, "Print the journal records of finished drags")

	return cmd
}

// replayEvent is one line of an event log.
type replayEvent struct {
	Type   string  `json:"type"`
	Target string  `json:"target,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button uint8   `json:"button,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

var replayTypes = map[string]protocol.EventType{
	"down":   protocol.EventPointerDown,
	"move":   protocol.EventPointerMove,
	"up":     protocol.EventPointerUp,
	"scroll": protocol.EventScroll,
	"resize": protocol.EventResize,
}

// replay applies every event read from r to h and writes the resulting
// patches to w. name is used in error locations.
func replay(w io.Writer, h *server.Host, r io.Reader, name string) error {
	sc := bufio.NewScanner(r)
	var seq uint64
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var re replayEvent
		if err := json.Unmarshal([]byte(text), &re); err != nil {
			return errors.New("E202").Wrap(err).WithLocation(name, line, 1)
		}
		t, ok := replayTypes[re.Type]
		if !ok {
			return errors.New("E202").
				WithLocation(name, line, 1).
				WithDetail(fmt.Sprintf("Unknown event type %q", re.Type)).
				WithSuggestion("Use one of down, move, up, scroll, resize")
		}

		seq++
		ev := &protocol.Event{Type: t, Seq: seq, Target: re.Target}
		switch t {
		case protocol.EventScroll:
			ev.Payload = &protocol.ScrollEventData{X: re.X, Y: re.Y}
		case protocol.EventResize:
			ev.Payload = &protocol.ResizeEventData{Width: re.Width, Height: re.Height}
		default:
			scroll := h.Document().Scroll()
			ev.Payload = &protocol.PointerEventData{
				ClientX: re.X,
				ClientY: re.Y,
				PageX:   re.X + scroll.X,
				PageY:   re.Y + scroll.Y,
				Button:  re.Button,
			}
		}

		if _, err := h.Apply(ev); err != nil {
			return errors.New("E202").Wrap(err).WithLocation(name, line, 1)
		}
		patches := h.TakePatches()
		if len(patches) == 0 {
			continue
		}
		fmt.Fprintf(w, "%d %s\n", line, re.Type)
		for _, p := range patches {
			fmt.Fprintf(w, "  %s\n", formatPatch(p))
		}
	}
	return sc.Err()
}

func formatPatch(p protocol.Patch) string {
	switch p.Op {
	case protocol.PatchSetStyle:
		return fmt.Sprintf("%s #%s %s=%s", p.Op, p.Target, p.Key, p.Value)
	case protocol.PatchRemoveStyle:
		return fmt.Sprintf("%s #%s %s", p.Op, p.Target, p.Key)
	case protocol.PatchMoveNode:
		if p.Before == "" {
			return fmt.Sprintf("%s #%s into #%s", p.Op, p.Target, p.Parent)
		}
		return fmt.Sprintf("%s #%s into #%s before #%s", p.Op, p.Target, p.Parent, p.Before)
	case protocol.PatchSetHidden:
		return fmt.Sprintf("%s #%s %t", p.Op, p.Target, p.Hidden)
	default:
		return fmt.Sprintf("%s #%s", p.Op, p.Target)
	}
}
