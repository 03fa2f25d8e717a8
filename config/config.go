// Package config holds every tunable constant the layout pipeline uses.
//
// Per the "mutable singletons" design note, nothing in the pipeline reads a
// package-level var for a spacing constant, a padding value, or a score
// weight: every stage receives a Config by value and only ever reads it.
package config

// Config is the immutable set of knobs the ten-stage pipeline consults.
// Zero value is not valid; use Default().
type Config struct {
	// IconWidth, IconHeight are the base unscaled icon footprint in pixels.
	IconWidth  float64
	IconHeight float64

	// Accessibility score weights (Structure Analyser, spec §4.1).
	ScorePrecedence float64 // α
	ScoreChildren   float64 // β
	ScoreFanin      float64 // γ

	// SCORE_CENTER_INFLUENCE bounds how far centrality can pull a node
	// toward its layer's centre, as a fraction of the offset distance.
	ScoreCenterInfluence float64

	// BarycenterIterations is K in the Abstract Placer's bidirectional
	// sweep (spec §4.4).
	BarycenterIterations int

	// SameLevelEdgeWeight / CrossLevelEdgeWeight are the barycenter
	// contribution weights for same-level vs cross-level edges.
	SameLevelEdgeWeight  float64
	CrossLevelEdgeWeight float64

	// PositionOptimiserMaxPasses bounds the bisection sweep count (spec §4.5).
	PositionOptimiserMaxPasses int
	// PositionOptimiserTolerance is the convergence threshold on max |δ|.
	PositionOptimiserTolerance float64

	// ExpanderSiblingSpacing / ExpanderSubLevelSpacing are the VC
	// expansion offsets in abstract units (spec §4.6).
	ExpanderSiblingSpacing  float64
	ExpanderSubLevelSpacing float64

	// MinHorizontalGap is the minimum pixel gap enforced between two
	// nodes on the same level by the Vertical Redistributor (spec §4.8).
	MinHorizontalGap float64
	// VerticalGap is the pixel gap inserted between consecutive levels.
	VerticalGap float64

	// ContainerPaddingDivisor derives container padding as
	// IconWidth / ContainerPaddingDivisor (spec §4.7 step 3).
	ContainerPaddingDivisor float64

	// LabelCharWidth / LabelLineHeight are the crude label-measurement
	// heuristics used when no font metrics are available.
	LabelCharWidth  float64
	LabelLineHeight float64

	// CanvasMargin is the fixed margin enforced around all drawables
	// (spec §4.10, invariant I7).
	CanvasMargin float64
	// CanvasSafetyMargin is how far outside the canvas a routed edge point
	// may lie before the Edge Router records a CanvasOverflow diagnostic;
	// points inside the canvas near its edge are not flagged (Q4).
	CanvasSafetyMargin float64

	// DefaultCanvasWidth / DefaultCanvasHeight seed the canvas before any
	// content is measured.
	DefaultCanvasWidth  float64
	DefaultCanvasHeight float64

	// MinCondensationGroupSize is the minimum shared-pivot cluster size that
	// triggers condensation into a Virtual Container (spec §4.1).
	MinCondensationGroupSize int

	// InheritLeafLevel resolves the Open Question "do leaf nodes inherit
	// their parent's level, or always increment": the spec recommends
	// "do inherit" for tighter diagrams, and that is the fixed default.
	InheritLeafLevel bool

	// DefaultNodeColour is used when a node omits colour or its colour
	// fails to parse.
	DefaultNodeColour string

	// EnableParallelStages is carried on the Config but no stage reads it:
	// the per-layer barycenter sweep and the per-container grow pass always
	// run sequentially.
	EnableParallelStages bool
}

// Default returns the specification's recommended constant set.
func Default() Config {
	return Config{
		IconWidth:  80,
		IconHeight: 50,

		ScorePrecedence: 0.025,
		ScoreChildren:   0.015,
		ScoreFanin:      0.010,

		ScoreCenterInfluence: 0.3,

		BarycenterIterations: 4,
		SameLevelEdgeWeight:  0.30,
		CrossLevelEdgeWeight: 0.70,

		PositionOptimiserMaxPasses: 10,
		PositionOptimiserTolerance: 0.001,

		ExpanderSiblingSpacing:  0.4,
		ExpanderSubLevelSpacing: 1.0,

		MinHorizontalGap: 20,
		VerticalGap:      40,

		ContainerPaddingDivisor: 8,

		LabelCharWidth:  8,
		LabelLineHeight: 18,

		CanvasMargin:       250,
		CanvasSafetyMargin: 50,

		DefaultCanvasWidth:  1400,
		DefaultCanvasHeight: 900,

		MinCondensationGroupSize: 3,
		InheritLeafLevel:         true,

		DefaultNodeColour: "#8c8c8c",

		EnableParallelStages: false,
	}
}
