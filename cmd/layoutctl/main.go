// Command layoutctl is the CLI frontend that owns everything spec.md
// declares out of scope for the core: reading a JSON document from disk or
// stdin, decoding it into graph.Node/graph.Edge values (including
// promoting a legacy `waypoints` array into a manual Routing), running the
// layout.Pipeline, and writing the resulting drawable list back out as
// JSON. It never reaches into a pipeline stage directly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/sloghuman"
	"github.com/spf13/pflag"

	"github.com/ndlayout/engine/graph"
	"github.com/ndlayout/engine/internal/assemble"
	"github.com/ndlayout/engine/internal/debugstream"
	"github.com/ndlayout/engine/internal/snapshoturl"
	"github.com/ndlayout/engine/layout"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("layoutctl", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	in := fs.StringP("in", "i", "-", "input JSON document path, or - for stdin")
	out := fs.StringP("out", "o", "-", "output JSON path, or - for stdout")
	share := fs.Bool("share", false, "also print a URL-safe encoded snapshot of the resulting layout")
	debugAddr := fs.String("debug-addr", "", "if set, serve live per-stage diagnostics over websocket on this address (e.g. :9494)")
	verbose := fs.BoolP("verbose", "v", false, "log at every level instead of warn-only")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	log := slog.Make(sloghuman.Sink(stderr))
	if !*verbose {
		log = log.Leveled(slog.LevelWarn)
	}

	raw, err := readInput(*in, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "layoutctl: %v\n", err)
		return 1
	}

	doc, err := decodeDocument(raw)
	if err != nil {
		fmt.Fprintf(stderr, "layoutctl: decode: %v\n", err)
		return 1
	}

	p := layout.New()
	p.Logger = log
	if doc.Canvas != nil {
		p.Config.DefaultCanvasWidth = doc.Canvas.Width
		p.Config.DefaultCanvasHeight = doc.Canvas.Height
	}

	if *debugAddr != "" {
		hub := debugstream.NewHub(log)
		p.Debug.Stream = hub
		srv := &http.Server{Addr: *debugAddr, Handler: hub}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn(context.Background(), "layoutctl: debug server stopped", slog.Error(err))
			}
		}()
	}

	nodes, edges := doc.toGraph()
	res, err := p.Run(context.Background(), nodes, edges, doc.Icons)
	if err != nil {
		fmt.Fprintf(stderr, "layoutctl: %v\n", err)
		return 1
	}

	payload, err := json.Marshal(renderResult{
		Canvas:    res.Layout.Canvas,
		Drawables: res.Drawables,
		Filter:    res.Filter,
		Warnings:  res.Diagnostics.Len(),
	})
	if err != nil {
		fmt.Fprintf(stderr, "layoutctl: encode: %v\n", err)
		return 1
	}

	if err := writeOutput(*out, payload, stdout); err != nil {
		fmt.Fprintf(stderr, "layoutctl: %v\n", err)
		return 1
	}

	if *share {
		layoutJSON, err := graph.SerializeLayout(res.Layout)
		if err != nil {
			fmt.Fprintf(stderr, "layoutctl: share: %v\n", err)
			return 1
		}
		snap, err := snapshoturl.Encode(layoutJSON)
		if err != nil {
			fmt.Fprintf(stderr, "layoutctl: share: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "\n%s\n", snap)
	}

	return 0
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, payload []byte, stdout io.Writer) error {
	if path == "-" {
		_, err := stdout.Write(payload)
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

type renderResult struct {
	Canvas    graph.Canvas        `json:"canvas"`
	Drawables []assemble.Drawable `json:"drawables"`
	Filter    assemble.Filter     `json:"filter"`
	Warnings  int                 `json:"warnings"`
}
