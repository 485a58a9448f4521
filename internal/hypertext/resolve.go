package hypertext

import (
	"layout-hypertext/internal/design"
	"layout-hypertext/pkg/geometry"
)

// resolver searches a cell hierarchy for a reference at a box. The stack
// tracks the transforms of the instances descended through so the top box
// can be mapped into each subcell.
type resolver struct {
	eng   *Engine
	mask  Kind
	stack *geometry.Stack
	top   geometry.RectInt
}

// find returns an unlinked entity for the first reference of a kind in mask
// found at box in cell, or nil.
func (e *Engine) find(cell *design.Cell, box geometry.RectInt, mask Kind) *Entity {
	if cell == nil || mask == KindNone {
		return nil
	}
	r := &resolver{eng: e, mask: mask, stack: geometry.NewStack(), top: box}
	found := r.search(cell, box, 0)
	if found != nil {
		found.owner = cell
	}
	return found
}

// Pick resolves a click at p in the window cell into a registered reference
// of a kind in mask, owned by the window. Proxy instances, outer to inner,
// lead from the window down to the cell that is searched; p is mapped
// through them first. A terminal hit is owned by the searched cell and has
// no proxy.
func (e *Engine) Pick(window *design.Cell, p geometry.PointInt, mask Kind, proxy ...*design.Instance) (*Entity, error) {
	var head, tail *PathLink
	parent := window
	s := geometry.NewStack()
	for _, inst := range proxy {
		if inst == nil || inst.Parent() != parent || inst.Master == nil {
			return nil, ErrBadProxy
		}
		c := inst.Bounds().Center()
		l := &PathLink{Inst: inst, X: c.X, Y: c.Y}
		if tail == nil {
			head = l
		} else {
			tail.Next = l
		}
		tail = l
		parent = inst.Master
		s.Push(inst.Placement)
	}
	inv, ok := s.Inverse()
	if !ok {
		return nil, ErrBadProxy
	}

	found := e.find(parent, geometry.BoxAround(inv.ApplyInt(p), e.tolerance), mask)
	if found == nil {
		return nil, ErrNoReference
	}
	// Terminal references never carry paths, so a terminal of the searched
	// cell is owned by that cell.
	if !found.terminal {
		found.owner = window
		found.proxy = resolvedProxy(head)
	}
	if err := found.Add(); err != nil {
		return nil, err
	}
	return found, nil
}

func (r *resolver) search(cell *design.Cell, box geometry.RectInt, depth int) *Entity {
	if r.mask == KindCell || !cell.IsElectrical() {
		if found := r.outline(cell, box); found != nil || r.mask == KindCell {
			return found
		}
	} else if found := r.electrical(cell, box, depth); found != nil {
		return found
	}

	if r.mask&KindLabel != 0 {
		for _, o := range cell.Query(box, design.KindLabel) {
			ent := r.eng.newEntity(cell, KindLabel)
			ent.target = o
			c := o.Bounds().Center()
			ent.x, ent.y = c.X, c.Y
			return ent
		}
	}
	return nil
}

// outline returns a cell reference to the smallest outline shape overlapping
// box.
func (r *resolver) outline(cell *design.Cell, box geometry.RectInt) *Entity {
	if r.mask&KindCell == 0 {
		return nil
	}
	var best design.Object
	for _, o := range cell.Query(box, design.KindOutline) {
		if best == nil || o.Bounds().Area() < best.Bounds().Area() {
			best = o
		}
	}
	if best == nil {
		return nil
	}
	ent := r.eng.newEntity(cell, KindCell)
	ent.target = best
	c := best.Bounds().Center()
	ent.x, ent.y = c.X, c.Y
	return ent
}

func (r *resolver) electrical(cell *design.Cell, box geometry.RectInt, depth int) *Entity {
	center := box.Center()
	insts := cell.Query(box, design.KindInstance)

	if r.mask&KindNode != 0 {
		tol := float64(box.Width+box.Height) / 4
		for _, o := range cell.Query(box, design.KindWire) {
			w := o.(*design.Wire)
			if !w.Active || !w.HitTest(center, tol) {
				continue
			}
			ent := r.eng.newEntity(cell, KindNode)
			ent.target = w
			ent.x, ent.y = center.X, center.Y
			return ent
		}
		for _, o := range insts {
			inst := o.(*design.Instance)
			for _, c := range inst.Contacts {
				if box.Contains(c.At) {
					ent := r.eng.newEntity(cell, KindNode)
					ent.target = inst
					ent.x, ent.y = c.At.X, c.At.Y
					return ent
				}
			}
		}
	}

	if r.mask&KindBranch != 0 {
		for _, o := range insts {
			inst := o.(*design.Instance)
			if !inst.Device || inst.Branch == nil || !box.Contains(inst.Branch.At) {
				continue
			}
			ent := r.eng.newEntity(cell, KindBranch)
			ent.target = inst
			ent.x, ent.y = inst.Branch.At.X, inst.Branch.At.Y
			ent.orient = orientationOf(inst.Branch.Rot)
			return ent
		}
	}

	if r.mask&KindDevice != 0 {
		for _, o := range insts {
			if inst := o.(*design.Instance); inst.Device {
				ent := r.eng.newEntity(cell, KindDevice)
				ent.target = inst
				ent.x, ent.y = center.X, center.Y
				return ent
			}
		}
	}

	// Terminals are normally covered by the wires and contacts above; this
	// catches virtual terminals of symbolic views.
	if r.mask&KindNode != 0 && depth == 0 {
		for i, t := range cell.Terminals {
			if box.Contains(t.At) {
				ent := r.eng.newEntity(cell, KindNode)
				ent.terminal = true
				ent.termIndex = i
				ent.x, ent.y = t.At.X, t.At.Y
				return ent
			}
		}
	}

	if depth < MaxCallDepth {
		for _, o := range insts {
			inst := o.(*design.Instance)
			if inst.Device || inst.Master == nil {
				continue
			}
			if found := r.descend(inst, depth); found != nil {
				found.parent = &PathLink{Next: found.parent, Inst: inst}
				return found
			}
		}
	}

	if r.mask&KindDevice != 0 {
		for _, o := range insts {
			if inst := o.(*design.Instance); !inst.Device {
				ent := r.eng.newEntity(cell, KindDevice)
				ent.target = inst
				ent.x, ent.y = center.X, center.Y
				return ent
			}
		}
	}
	return nil
}

func (r *resolver) descend(inst *design.Instance, depth int) *Entity {
	r.stack.Push(inst.Placement)
	defer r.stack.Pop()
	inv, ok := r.stack.Inverse()
	if !ok {
		return nil
	}
	return r.search(inst.Master, r.top.Transform(inv), depth+1)
}
