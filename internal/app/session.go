// Package app provides the editing session: the loaded design, its
// reference engine and undo history, and change events.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"layout-hypertext/internal/design"
	"layout-hypertext/internal/hypertext"
	"layout-hypertext/internal/prefs"
	"layout-hypertext/internal/project"
	"layout-hypertext/internal/undo"
	"layout-hypertext/pkg/geometry"
)

// ErrNotInCell is returned when an edit names an object that is not placed
// in a cell.
var ErrNotInCell = errors.New("object is not in a cell")

// Session holds an open design and everything needed to edit it.
type Session struct {
	mu sync.RWMutex

	Path     string
	Modified bool

	Design *project.Design
	Engine *hypertext.Engine
	Undo   *undo.Log

	exportLong bool
	log        *slog.Logger

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies session events.
type EventType int

const (
	EventLoaded EventType = iota
	EventSaved
	EventModified
	EventRefsChanged
	EventUndo
	EventRedo
)

// EventListener is called when an event occurs.
type EventListener func(data any)

// Option overrides a setting of a new session.
type Option func(*overrides)

type overrides struct {
	naming    string
	separator string
}

// WithNaming sets the naming convention and hierarchy separator, taking
// precedence over the design file settings. Empty values are ignored.
func WithNaming(mode, sep string) Option {
	return func(o *overrides) {
		o.naming = mode
		o.separator = sep
	}
}

// NewSession opens an edit session on d. Preferences may be nil. Design file
// settings override the preferences and options override both.
func NewSession(d *project.Design, p *prefs.Prefs, log *slog.Logger, opts ...Option) *Session {
	var ov overrides
	for _, opt := range opts {
		opt(&ov)
	}
	if log == nil {
		log = slog.Default()
	}
	if p == nil {
		p = prefs.LoadFile("")
	}
	s := &Session{
		Design:    d,
		Undo:      undo.New(p.Int(prefs.KeyUndoLimit, undo.DefaultLimit), log),
		log:       log,
		listeners: make(map[EventType][]EventListener),
	}

	engOpts := append(p.EngineOptions(),
		hypertext.WithNamer(d.Namer),
		hypertext.WithRecorder(s.Undo),
		hypertext.WithLogger(log),
	)
	naming := p.Naming()
	for _, src := range []overrides{{d.File.Settings.Naming, d.File.Settings.Separator}, ov} {
		if mode, ok := hypertext.ParseNamingMode(src.naming); ok && src.naming != "" {
			naming.Mode = mode
		}
		if len(src.separator) == 1 {
			naming.Separator = src.separator[0]
		}
	}
	engOpts = append(engOpts, hypertext.WithNaming(naming))

	s.exportLong = p.Bool(prefs.KeyExportLongText, false)
	if d.File.Settings.ExportLongText != nil {
		s.exportLong = *d.File.Settings.ExportLongText
	}

	s.Engine = hypertext.NewEngine(d.Lib, engOpts...)
	d.Attach(s.Engine)
	d.Resolve()
	return s
}

// Open loads and builds the design at path.
func Open(path string, p *prefs.Prefs, log *slog.Logger, opts ...Option) (*Session, error) {
	f, err := project.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	d, err := f.Build()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", path, err)
	}
	s := NewSession(d, p, log, opts...)
	s.Path = path
	s.Emit(EventLoaded, path)
	return s, nil
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data any) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the design as modified and emits an event.
func (s *Session) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// ExportLongText reports whether long text is written out on save.
func (s *Session) ExportLongText() bool { return s.exportLong }

// Save writes the design to path, or to the path it was opened from.
func (s *Session) Save(path string) error {
	if path == "" {
		path = s.Path
	}
	if err := s.Design.Save(path, s.exportLong); err != nil {
		return err
	}
	s.Path = path
	s.SetModified(false)
	s.Emit(EventSaved, path)
	return nil
}

// commit closes the edit group and notifies listeners.
func (s *Session) commit() {
	s.Undo.Commit()
	s.SetModified(true)
	s.Emit(EventRefsChanged, nil)
}

// replace swaps old for repl in its cell, recording both steps. rebind runs
// while both objects are in the cell.
func (s *Session) replace(cell *design.Cell, old, repl design.Object, rebind func()) {
	cell.Add(repl)
	s.Undo.Push(undo.Added(cell, repl))
	s.moveList(old, repl)
	rebind()
	cell.Remove(old)
	s.Undo.Push(undo.Removed(cell, old))
}

// moveList hands the reference list of a replaced label to its successor.
func (s *Session) moveList(old, repl design.Object) {
	ol, ok := old.(*design.Label)
	if !ok {
		return
	}
	l := s.Design.List(ol)
	if l == nil {
		return
	}
	nl := repl.(*design.Label)
	s.Design.SetList(ol, nl, l)
	s.Undo.Push(&labelChange{d: s.Design, old: ol, repl: nl, list: l})
}

// Move applies t to obj and rebinds the references that pointed at it.
// Returns the moved object, which replaces obj in its cell.
func (s *Session) Move(obj design.Object, t geometry.AffineTransform) (design.Object, error) {
	cell := obj.Parent()
	if cell == nil || !cell.Contains(obj) {
		return nil, ErrNotInCell
	}
	moved, err := transformed(obj, t)
	if err != nil {
		return nil, err
	}

	s.Undo.Begin("move")
	s.replace(cell, obj, moved, func() {
		s.Engine.TransformMove(obj, moved, t, true)
	})
	s.commit()
	s.log.Debug("moved object", "cell", cell.Name, "kind", obj.ObjectKind(), "id", moved.ObjectID())
	return moved, nil
}

// Stretch drags the wire vertex at ref to np.
func (s *Session) Stretch(w *design.Wire, ref, np geometry.PointInt) (*design.Wire, error) {
	cell := w.Parent()
	if cell == nil || !cell.Contains(w) {
		return nil, ErrNotInCell
	}
	stretched := w.Clone()
	found := false
	for i, p := range stretched.Points {
		if p == ref {
			stretched.Points[i] = np
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("no vertex at %d,%d", ref.X, ref.Y)
	}

	s.Undo.Begin("stretch")
	s.replace(cell, w, stretched, func() {
		s.Engine.TransformStretch(w, stretched, ref, np, true)
	})
	s.commit()
	return stretched, nil
}

// Merge joins two wires of the same cell into one. The references of both
// are rebound to the result.
func (s *Session) Merge(a, b *design.Wire) (*design.Wire, error) {
	cell := a.Parent()
	if cell == nil || !cell.Contains(a) || !cell.Contains(b) || b.Parent() != cell {
		return nil, ErrNotInCell
	}
	merged := design.NewWire(a.Layer, max(a.Width, b.Width), a.Active || b.Active, a.Node, joinPaths(a.Points, b.Points)...)

	s.Undo.Begin("merge")
	cell.Add(merged)
	s.Undo.Push(undo.Added(cell, merged))
	s.Engine.MergeReference(a, merged, true)
	s.Engine.MergeReference(b, merged, true)
	cell.Remove(a)
	s.Undo.Push(undo.Removed(cell, a))
	cell.Remove(b)
	s.Undo.Push(undo.Removed(cell, b))
	s.commit()
	return merged, nil
}

// Delete removes obj from its cell and clears the references bound to it.
func (s *Session) Delete(obj design.Object) error {
	cell := obj.Parent()
	if cell == nil || !cell.Contains(obj) {
		return ErrNotInCell
	}

	s.Undo.Begin("delete")
	s.Engine.DeleteReference(obj, true)
	if lbl, ok := obj.(*design.Label); ok {
		if l := s.Design.List(lbl); l != nil {
			c := &detachChange{list: l}
			c.Redo()
			s.Undo.Push(c)
		}
	}
	cell.Remove(obj)
	s.Undo.Push(undo.Removed(cell, obj))
	s.commit()
	return nil
}

// UndoLast reverts the last edit.
func (s *Session) UndoLast() bool {
	if !s.Undo.Undo() {
		return false
	}
	s.SetModified(true)
	s.Emit(EventUndo, nil)
	return true
}

// RedoLast reapplies the last undone edit.
func (s *Session) RedoLast() bool {
	if !s.Undo.Redo() {
		return false
	}
	s.SetModified(true)
	s.Emit(EventRedo, nil)
	return true
}
