package undo

import "layout-hypertext/internal/design"

// objectChange adds or removes a drawn object.
type objectChange struct {
	cell  *design.Cell
	obj   design.Object
	added bool
}

// Added records that obj was placed in cell.
func Added(cell *design.Cell, obj design.Object) Change {
	return &objectChange{cell: cell, obj: obj, added: true}
}

// Removed records that obj was taken out of cell.
func Removed(cell *design.Cell, obj design.Object) Change {
	return &objectChange{cell: cell, obj: obj}
}

func (c *objectChange) Undo() { c.apply(!c.added) }
func (c *objectChange) Redo() { c.apply(c.added) }

func (c *objectChange) apply(add bool) {
	if add {
		if !c.cell.Contains(c.obj) {
			c.cell.Add(c.obj)
		}
		return
	}
	c.cell.Remove(c.obj)
}
