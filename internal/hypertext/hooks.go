package hypertext

import (
	"layout-hypertext/internal/design"
	"layout-hypertext/pkg/geometry"
)

// The hooks below are called by the editing layer while the old object is
// still in its cell and the new one has been built. They patch every
// reference registered in the edited cell or any cell above it, and do
// nothing outside electrical mode.

// eachRef calls fn for every registered reference in cell and the cells that
// contain it.
func (e *Engine) eachRef(cell *design.Cell, fn func(*Entity)) {
	if cell == nil || !cell.IsElectrical() {
		return
	}
	e.lib.Ascend(cell, func(c *design.Cell) bool {
		for _, ent := range e.registries[c].Entities() {
			fn(ent)
		}
		return true
	})
}

// TransformMove rebinds references from old to moved after old was moved
// by t. Bound points follow the transform and branch orientations are turned.
// Paths passing through old are redirected to moved; proxy link coordinates
// are transformed as well.
func (e *Engine) TransformMove(old, moved design.Object, t geometry.AffineTransform, undoable bool) {
	newInst, _ := moved.(*design.Instance)
	e.eachRef(old.Parent(), func(ent *Entity) {
		recorded := false
		touch := func() {
			if undoable && !recorded {
				e.record(ent)
				recorded = true
			}
		}

		if ent.target == old {
			touch()
			p := t.ApplyInt(ent.Point())
			ent.x, ent.y = p.X, p.Y
			ent.target = moved
			if ent.kind == KindBranch {
				ent.orient = ent.orient.transform(t)
			}
		}
		if newInst == nil {
			return
		}
		for l := ent.parent; l != nil; l = l.Next {
			if design.Object(l.Inst) == old {
				touch()
				l.Inst = newInst
			}
		}
		for l := ent.proxy.head; l != nil; l = l.Next {
			if design.Object(l.Inst) == old {
				touch()
				l.Inst = newInst
				p := t.ApplyInt(l.Point())
				l.X, l.Y = p.X, p.Y
			}
		}
	})
}

// TransformStretch rebinds references from oldW to newW after the vertex at
// ref was dragged to np. A reference on a segment ending at ref moves by the
// drag scaled by its distance from the fixed end of that segment.
func (e *Engine) TransformStretch(oldW, newW *design.Wire, ref, np geometry.PointInt, undoable bool) {
	tol := float64(oldW.Width)/2 + 1
	e.eachRef(oldW.Parent(), func(ent *Entity) {
		if ent.target != design.Object(oldW) {
			return
		}
		if undoable {
			e.record(ent)
		}
		p := ent.Point()
		if d, ok := stretchOffset(oldW.Points, p, ref, np, tol); ok {
			p = p.Add(d)
			ent.x, ent.y = p.X, p.Y
		}
		ent.target = newW
	})
}

// stretchOffset returns the displacement of p, lying on a segment of path
// that has ref as one end, when ref moves to np.
func stretchOffset(path []geometry.PointInt, p, ref, np geometry.PointInt, tol float64) (geometry.PointInt, bool) {
	pf := p.ToFloat()
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		if geometry.SegmentDistance(pf, a.ToFloat(), b.ToFloat()) > tol {
			continue
		}
		var fixed geometry.PointInt
		switch ref {
		case a:
			fixed = b
		case b:
			fixed = a
		default:
			continue
		}
		length := ref.ToFloat().Distance(fixed.ToFloat())
		if length == 0 {
			return np.Sub(ref), true
		}
		frac := pf.Distance(fixed.ToFloat()) / length
		if frac > 1 {
			frac = 1
		}
		d := np.Sub(ref)
		return geometry.NewPoint2D(float64(d.X)*frac, float64(d.Y)*frac).Round(), true
	}
	return geometry.PointInt{}, false
}

// MergeReference rebinds references from oldW to newW, which absorbed it.
// Points are unchanged.
func (e *Engine) MergeReference(oldW, newW *design.Wire, undoable bool) {
	e.eachRef(oldW.Parent(), func(ent *Entity) {
		if ent.target != design.Object(oldW) {
			return
		}
		if undoable {
			e.record(ent)
		}
		ent.target = newW
	})
}

// DeleteReference clears every reference bound to obj or reached through it.
// Cleared references stay registered with kind None.
func (e *Engine) DeleteReference(obj design.Object, undoable bool) {
	e.eachRef(obj.Parent(), func(ent *Entity) {
		if ent.target != obj && !ent.parent.Contains(obj) && !ent.proxy.head.Contains(obj) {
			return
		}
		if undoable {
			e.record(ent)
		}
		ent.clear()
	})
}
