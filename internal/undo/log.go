// Package undo records edits as groups of reversible changes. Reference
// state is captured through the hypertext recorder hook.
package undo

import (
	"log/slog"

	"github.com/google/uuid"

	"layout-hypertext/internal/hypertext"
)

// DefaultLimit is the number of committed groups kept.
const DefaultLimit = 100

// Change is one reversible step of an edit.
type Change interface {
	Undo()
	Redo()
}

// sealer is implemented by changes that capture their final state when the
// group is committed.
type sealer interface {
	seal()
}

// Group is the set of changes made by one edit command. Changes are undone
// in reverse order.
type Group struct {
	Name    string
	changes []Change
	refs    map[uuid.UUID]*refChange
}

func newGroup(name string) *Group {
	return &Group{Name: name, refs: make(map[uuid.UUID]*refChange)}
}

// Len returns the number of changes in the group.
func (g *Group) Len() int { return len(g.changes) }

func (g *Group) undo() {
	for i := len(g.changes) - 1; i >= 0; i-- {
		g.changes[i].Undo()
	}
}

func (g *Group) redo() {
	for _, c := range g.changes {
		c.Redo()
	}
}

// refChange restores a reference to its state before or after an edit.
type refChange struct {
	ent    *hypertext.Entity
	before hypertext.Snapshot
	after  hypertext.Snapshot
}

func (c *refChange) Undo() { c.ent.Restore(c.before) }
func (c *refChange) Redo() { c.ent.Restore(c.after) }
func (c *refChange) seal() { c.after = c.ent.Snapshot() }

// Log is a linear undo history. It is not safe for concurrent use.
type Log struct {
	open   *Group
	done   []*Group
	undone []*Group
	limit  int
	log    *slog.Logger
}

// New creates an empty log keeping at most limit groups; zero or less uses
// DefaultLimit.
func New(limit int, log *slog.Logger) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if log == nil {
		log = slog.Default()
	}
	return &Log{limit: limit, log: log}
}

// Begin opens a group. An already open group is committed first.
func (l *Log) Begin(name string) {
	if l.open != nil {
		l.Commit()
	}
	l.open = newGroup(name)
}

// Push adds a change to the open group, opening an unnamed one if needed.
func (l *Log) Push(c Change) {
	if l.open == nil {
		l.open = newGroup("")
	}
	l.open.changes = append(l.open.changes, c)
}

// RecordChange implements hypertext.Recorder. With isUndo set the entity's
// current state is saved once per group; otherwise every record of the
// entity is purged.
func (l *Log) RecordChange(e *hypertext.Entity, isUndo bool) {
	if !isUndo {
		l.purge(e)
		return
	}
	if l.open == nil {
		l.open = newGroup("")
	}
	if _, ok := l.open.refs[e.ID()]; ok {
		return
	}
	rc := &refChange{ent: e, before: e.Snapshot()}
	l.open.refs[e.ID()] = rc
	l.open.changes = append(l.open.changes, rc)
}

func (l *Log) purge(e *hypertext.Entity) {
	groups := append(append([]*Group(nil), l.done...), l.undone...)
	if l.open != nil {
		groups = append(groups, l.open)
	}
	for _, g := range groups {
		rc, ok := g.refs[e.ID()]
		if !ok {
			continue
		}
		delete(g.refs, e.ID())
		for i, c := range g.changes {
			if c == Change(rc) {
				g.changes = append(g.changes[:i], g.changes[i+1:]...)
				break
			}
		}
		l.log.Debug("purged undo record", "group", g.Name, "ref", e.ID())
	}
}

// Commit closes the open group and makes it the next one to undo. Empty
// groups are dropped. Redo history is discarded.
func (l *Log) Commit() {
	g := l.open
	l.open = nil
	if g == nil || len(g.changes) == 0 {
		return
	}
	for _, c := range g.changes {
		if s, ok := c.(sealer); ok {
			s.seal()
		}
	}
	l.done = append(l.done, g)
	if len(l.done) > l.limit {
		l.done = l.done[len(l.done)-l.limit:]
	}
	l.undone = nil
}

// Abort reverts and discards the open group.
func (l *Log) Abort() {
	if l.open == nil {
		return
	}
	l.open.undo()
	l.open = nil
}

// Undo reverts the last committed group.
func (l *Log) Undo() bool {
	if l.open != nil {
		l.Commit()
	}
	if len(l.done) == 0 {
		return false
	}
	g := l.done[len(l.done)-1]
	l.done = l.done[:len(l.done)-1]
	g.undo()
	l.undone = append(l.undone, g)
	l.log.Debug("undo", "group", g.Name, "changes", len(g.changes))
	return true
}

// Redo reapplies the last undone group.
func (l *Log) Redo() bool {
	if len(l.undone) == 0 {
		return false
	}
	g := l.undone[len(l.undone)-1]
	l.undone = l.undone[:len(l.undone)-1]
	g.redo()
	l.done = append(l.done, g)
	l.log.Debug("redo", "group", g.Name, "changes", len(g.changes))
	return true
}

// CanUndo reports whether there is a group to undo.
func (l *Log) CanUndo() bool {
	return len(l.done) > 0 || (l.open != nil && len(l.open.changes) > 0)
}

// CanRedo reports whether there is a group to redo.
func (l *Log) CanRedo() bool { return len(l.undone) > 0 }

// Pending returns the open group, or nil.
func (l *Log) Pending() *Group { return l.open }

// Len returns the number of committed groups.
func (l *Log) Len() int { return len(l.done) }
