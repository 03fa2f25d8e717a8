// Package layout wires the ten stages (Structure Analyser through
// Assembler) into a single ordered Pipeline over one graph.Layout value,
// and is the package external callers (cmd/layoutctl, tests) use directly.
package layout

import (
	"context"

	"cdr.dev/slog"

	"github.com/ndlayout/engine/config"
	"github.com/ndlayout/engine/errs"
	"github.com/ndlayout/engine/graph"
	"github.com/ndlayout/engine/internal/abstractplace"
	"github.com/ndlayout/engine/internal/assemble"
	"github.com/ndlayout/engine/internal/debugstream"
	"github.com/ndlayout/engine/internal/diagplot"
	"github.com/ndlayout/engine/internal/inflate"
	"github.com/ndlayout/engine/internal/route"
	"github.com/ndlayout/engine/internal/structure"
	"github.com/ndlayout/engine/internal/textmeasure"
)

// Debug gates the pipeline's optional, layout-inert diagnostic surfaces
// (spec §4.2's "diagnostic debug surfaces", §4.4's crossing convergence).
// Nothing here may influence a single coordinate.
type Debug struct {
	Enabled bool
	// Charts, when non-nil after Run, receives level-distribution,
	// top-k-score, and crossing-convergence PNGs.
	Charts *Charts
	// Stream, when set, receives per-stage timing and every errs.Diagnostic
	// as Run produces them, fanned out live to whatever debugstream.Hub
	// subscribers are attached (spec §6).
	Stream *debugstream.Hub
}

// Charts holds the rendered debug PNGs (gonum.org/v1/plot), present only
// when Debug.Enabled was set.
type Charts struct {
	LevelDistribution   []byte
	TopKScores          []byte
	CrossingConvergence []byte
}

// Pipeline runs the full stage sequence over a single Layout.
type Pipeline struct {
	Config config.Config
	Logger slog.Logger
	Ruler  *textmeasure.Ruler
	Debug  Debug
}

// New returns a Pipeline configured with the specification's default
// constants and a no-op logger; callers typically override Logger.
func New() *Pipeline {
	return &Pipeline{
		Config: config.Default(),
		Logger: slog.Make(),
		Ruler:  textmeasure.New(config.Default().LabelCharWidth, config.Default().LabelLineHeight),
	}
}

// Result is everything a caller needs to hand off to its own renderer.
type Result struct {
	Layout      *graph.Layout
	Drawables   []assemble.Drawable
	Filter      assemble.Filter
	Diagnostics errs.Diagnostics
}

// Run executes S → T → C → A → P → X → I → R → E → G in sequence. A
// StructuralError aborts and is returned as err; every other diagnostic is
// accumulated into Result.Diagnostics and logged at slog.LevelWarn, never
// aborting the run.
func (p *Pipeline) Run(ctx context.Context, nodes []*graph.Node, edges []*graph.Edge, icons map[string]string) (*Result, error) {
	stage := p.stageTimer("graph")
	l, err := graph.New(nodes, edges, icons, graph.Canvas{Width: p.Config.DefaultCanvasWidth, Height: p.Config.DefaultCanvasHeight})
	stage()
	if err != nil {
		p.Logger.Error(ctx, "structural_error building layout", slog.Error(err))
		return nil, errs.Wrap("graph", err)
	}

	stage = p.stageTimer("structure")
	err = structure.Analyse(l, p.Config)
	stage()
	if err != nil {
		p.Logger.Error(ctx, "structure analyser failed", slog.Error(err))
		return nil, errs.Wrap("structure", err)
	}

	stage = p.stageTimer("place")
	placerDiag := abstractplace.Place(l, p.Config)
	stage()

	stage = p.stageTimer("optimise")
	converged := abstractplace.Optimise(l, p.Config)
	stage()
	if !converged {
		l.Diagnostics = append(l.Diagnostics, graph.Diagnostic{
			Kind: "budget_exceeded", Stage: "optimise",
			Message: "position optimiser did not converge within the configured pass budget; best-so-far kept",
		})
	}

	stage = p.stageTimer("expand")
	abstractplace.Expand(l, p.Config)
	stage()

	stage = p.stageTimer("inflate")
	inflate.Inflate(l, p.Config, p.Ruler)
	inflate.Redistribute(l, p.Config)
	stage()

	stage = p.stageTimer("route")
	route.Route(l, p.Config)
	stage()

	stage = p.stageTimer("assemble")
	drawables, filter := assemble.Assemble(l, p.Config, p.Ruler)
	stage()

	var diags errs.Diagnostics
	for _, d := range l.Diagnostics {
		diags.Add(errs.Kind(d.Kind), d.Stage, d.IDs, "%s", d.Message)
		p.Logger.Warn(ctx, d.Message, slog.F("kind", d.Kind), slog.F("stage", d.Stage), slog.F("ids", d.IDs))
		if p.Debug.Stream != nil {
			p.Debug.Stream.Diagnostic(d.Stage, errs.Diagnostic{Kind: errs.Kind(d.Kind), Stage: d.Stage, IDs: d.IDs, Message: d.Message})
		}
	}

	if p.Debug.Enabled {
		p.Debug.Charts = renderCharts(l, placerDiag)
	}

	return &Result{Layout: l, Drawables: drawables, Filter: filter, Diagnostics: diags}, nil
}

// stageTimer returns a no-op when no Hub is attached, so Run pays nothing
// for debugstream when Debug.Stream is nil.
func (p *Pipeline) stageTimer(stage string) func() {
	if p.Debug.Stream == nil {
		return func() {}
	}
	return p.Debug.Stream.StageTimer(stage)
}

func renderCharts(l *graph.Layout, diag abstractplace.Diagnostics) *Charts {
	levelPNG, _ := diagplot.LevelDistribution(structure.LevelDistribution(l))

	ids, scores := structure.TopKScores(l, 10)
	topKPNG, _ := diagplot.TopKScores(ids, scores)

	convergencePNG, _ := diagplot.CrossingConvergence(diag.CrossingSeries)

	return &Charts{LevelDistribution: levelPNG, TopKScores: topKPNG, CrossingConvergence: convergencePNG}
}
