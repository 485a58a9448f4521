package hypertext

import (
	"log/slog"

	"layout-hypertext/internal/design"
	"layout-hypertext/internal/netlist"
)

const (
	// MaxCallDepth bounds hierarchy recursion and the length of the instance
	// chains a token may describe.
	MaxCallDepth = 40

	// DefaultTolerance is the half-size of the search box used when
	// re-resolving a reference and locating proxy instances.
	DefaultTolerance = 10

	// DefaultDrift is the largest coordinate change ignored on
	// re-resolution, so repeated updates do not creep.
	DefaultDrift = 1
)

// Recorder receives reference changes for the undo log. RecordChange is
// called with isUndo set before an entity is mutated, and with isUndo clear
// when the entity is destroyed so stale records can be purged.
type Recorder interface {
	RecordChange(e *Entity, isUndo bool)
}

// NodeNamer resolves a node number in a cell to its canonical name and
// reports whether the name is global.
type NodeNamer interface {
	CanonicalNodeName(cell *design.Cell, node int) (string, bool)
}

// Engine holds the per-cell reference registries and the collaborators
// every reference needs.
type Engine struct {
	lib        *design.Library
	registries map[*design.Cell]*Registry
	undo       Recorder
	namer      NodeNamer
	naming     NamingOptions
	tolerance  int
	drift      int
	tracker    *Tracker
	log        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder sets the undo collaborator.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.undo = r }
}

// WithNamer sets the canonical node naming collaborator.
func WithNamer(n NodeNamer) Option {
	return func(e *Engine) { e.namer = n }
}

// WithNaming sets the hierarchical naming convention.
func WithNaming(opts NamingOptions) Option {
	return func(e *Engine) { e.naming = opts }
}

// WithTolerance sets the search half-size used by re-resolution.
func WithTolerance(tol int) Option {
	return func(e *Engine) {
		if tol > 0 {
			e.tolerance = tol
		}
	}
}

// WithDrift sets the coordinate change ignored on re-resolution.
func WithDrift(d int) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.drift = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an engine over lib.
func NewEngine(lib *design.Library, opts ...Option) *Engine {
	e := &Engine{
		lib:        lib,
		registries: make(map[*design.Cell]*Registry),
		namer:      netlist.NewNamer(),
		naming:     DefaultNaming(),
		tolerance:  DefaultTolerance,
		drift:      DefaultDrift,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.tracker = newTracker(e.log)
	return e
}

// Library returns the design library.
func (e *Engine) Library() *design.Library { return e.lib }

// Naming returns the hierarchical naming convention.
func (e *Engine) Naming() NamingOptions { return e.naming }

// Tracker returns the long-text tracking table.
func (e *Engine) Tracker() *Tracker { return e.tracker }

// Registry returns the reference registry of cell, or nil if nothing was
// ever registered there.
func (e *Engine) Registry(cell *design.Cell) *Registry {
	return e.registries[cell]
}

func (e *Engine) registry(cell *design.Cell) *Registry {
	reg := e.registries[cell]
	if reg == nil {
		reg = &Registry{}
		e.registries[cell] = reg
	}
	return reg
}

func (e *Engine) record(ent *Entity) {
	if e.undo != nil {
		e.undo.RecordChange(ent, true)
	}
}
