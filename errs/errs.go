// Package errs defines the layout engine's error taxonomy (spec §7) and the
// Diagnostics accumulator every stage appends non-fatal findings to.
package errs

import (
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/xerrors"
)

// Kind classifies a diagnostic or a fatal error.
type Kind string

const (
	// InputMalformed is a parser-level violation. The core never
	// constructs one itself; it is reserved for cmd/layoutctl's frontend.
	InputMalformed Kind = "input_malformed"
	// ReferenceError is an edge endpoint, containment child, or VC member
	// id that does not resolve. Fatal for the offending edge/child only.
	ReferenceError Kind = "reference_error"
	// StructuralError is a containment cycle or duplicate id. Fatal for
	// the whole pipeline run.
	StructuralError Kind = "structural_error"
	// NumericDegenerate is a zero-length chord, zero radius, or
	// coincident sibling layer. Recovered locally.
	NumericDegenerate Kind = "numeric_degenerate"
	// BudgetExceeded means an iterative stage hit its cap without
	// converging. Non-fatal; best-so-far result is kept.
	BudgetExceeded Kind = "budget_exceeded"
	// CanvasOverflow means a routed edge or label exceeded the canvas;
	// the assembler expands the canvas to compensate.
	CanvasOverflow Kind = "canvas_overflow"
)

// Diagnostic is one non-fatal finding produced by a stage.
type Diagnostic struct {
	Kind    Kind
	Stage   string
	IDs     []string
	Message string
}

func (d Diagnostic) Error() string {
	if len(d.IDs) == 0 {
		return fmt.Sprintf("%s[%s]: %s", d.Stage, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s[%s] %v: %s", d.Stage, d.Kind, d.IDs, d.Message)
}

// Diagnostics is an ordered, append-only collection of non-fatal findings,
// attached to the pipeline's output so a caller can decide whether to
// surface them (spec §7 propagation policy).
type Diagnostics struct {
	items []Diagnostic
}

// Add appends a diagnostic, preserving insertion order.
func (d *Diagnostics) Add(kind Kind, stage string, ids []string, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Kind:    kind,
		Stage:   stage,
		IDs:     append([]string(nil), ids...),
		Message: fmt.Sprintf(format, args...),
	})
}

// Items returns the accumulated diagnostics in insertion order.
func (d *Diagnostics) Items() []Diagnostic {
	return d.items
}

// Len reports how many diagnostics have been recorded.
func (d *Diagnostics) Len() int {
	return len(d.items)
}

// Err combines every accumulated diagnostic into a single multierr-wrapped
// error, or nil if none were recorded. It never discards an entry.
func (d *Diagnostics) Err() error {
	if len(d.items) == 0 {
		return nil
	}
	var errs []error
	for _, it := range d.items {
		errs = append(errs, it)
	}
	return multierr.Combine(errs...)
}

// Fatal wraps a fatal StructuralError/ReferenceError for pipeline abort,
// carrying the offending stage name and frame via xerrors.
func Fatal(kind Kind, stage string, format string, args ...interface{}) error {
	return xerrors.Errorf("%s[%s]: %s", stage, kind, fmt.Sprintf(format, args...))
}

// Wrap attaches stage context to an underlying error without discarding it.
func Wrap(stage string, err error) error {
	if err == nil {
		return nil
	}
	return xerrors.Errorf("%s: %w", stage, err)
}
