package app

import (
	"fmt"
	"slices"

	"layout-hypertext/internal/design"
	"layout-hypertext/internal/hypertext"
	"layout-hypertext/internal/project"
	"layout-hypertext/pkg/geometry"
)

// labelChange moves a reference list between a label and its replacement.
type labelChange struct {
	d    *project.Design
	old  *design.Label
	repl *design.Label
	list *hypertext.List
}

func (c *labelChange) Undo() { c.d.SetList(c.repl, c.old, c.list) }
func (c *labelChange) Redo() { c.d.SetList(c.old, c.repl, c.list) }

// detachChange unregisters the references of a deleted label.
type detachChange struct {
	list   *hypertext.List
	linked []*hypertext.Entity
}

func (c *detachChange) Redo() {
	c.linked = c.linked[:0]
	for _, ent := range c.list.Refs() {
		if ent.IsLinked() {
			c.linked = append(c.linked, ent)
			ent.Remove()
		}
	}
}

func (c *detachChange) Undo() {
	for _, ent := range c.linked {
		_ = ent.Add()
	}
}

// transformed returns an unplaced copy of obj moved by t.
func transformed(obj design.Object, t geometry.AffineTransform) (design.Object, error) {
	switch o := obj.(type) {
	case *design.Wire:
		w := o.Clone()
		for i, p := range w.Points {
			w.Points[i] = t.ApplyInt(p)
		}
		return w, nil
	case *design.Instance:
		inst := o.Clone()
		inst.Placement = t.Compose(o.Placement)
		for i := range inst.Contacts {
			inst.Contacts[i].At = t.ApplyInt(inst.Contacts[i].At)
		}
		if inst.Branch != nil {
			inst.Branch.At = t.ApplyInt(inst.Branch.At)
			inst.Branch.Rot = t.ApplyVector(inst.Branch.Rot.ToFloat()).Round()
		}
		if inst.Box.Width > 0 || inst.Box.Height > 0 {
			inst.Box = inst.Box.Transform(t)
		}
		return inst, nil
	case *design.Label:
		lbl := o.Clone()
		lbl.At = t.ApplyInt(lbl.At)
		return lbl, nil
	case *design.Outline:
		return &design.Outline{Box: o.Box.Transform(t)}, nil
	}
	return nil, fmt.Errorf("cannot move %s", obj.ObjectKind())
}

// joinPaths concatenates two polylines, reversing either so that a shared
// end point is not repeated.
func joinPaths(a, b []geometry.PointInt) []geometry.PointInt {
	if len(a) == 0 {
		return slices.Clone(b)
	}
	if len(b) == 0 {
		return slices.Clone(a)
	}
	a, b = slices.Clone(a), slices.Clone(b)
	switch {
	case a[len(a)-1] == b[0]:
	case a[len(a)-1] == b[len(b)-1]:
		slices.Reverse(b)
	case a[0] == b[0]:
		slices.Reverse(a)
	case a[0] == b[len(b)-1]:
		a, b = b, a
	default:
		return append(a, b...)
	}
	return append(a, b[1:]...)
}
