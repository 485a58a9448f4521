package design

import (
	"layout-hypertext/pkg/geometry"
)

// Mode is the design mode of a cell.
type Mode int

const (
	Physical Mode = iota
	Electrical
)

func (m Mode) String() string {
	if m == Electrical {
		return "electrical"
	}
	return "physical"
}

// Cell is one view of a named cell. A library can hold both a physical and
// an electrical cell under the same name.
type Cell struct {
	Name      string
	Mode      Mode
	Terminals []*Terminal

	// NodeNames holds user-assigned node names keyed by node number.
	NodeNames map[int]string

	lib     *Library
	objects []Object
}

// Library returns the library owning the cell.
func (c *Cell) Library() *Library {
	return c.lib
}

// IsElectrical reports whether the cell is in electrical mode.
func (c *Cell) IsElectrical() bool {
	return c.Mode == Electrical
}

// Add places obj in the cell and assigns it an ID.
func (c *Cell) Add(obj Object) Object {
	type attacher interface{ attach(*Cell, uint64) }
	if a, ok := obj.(attacher); ok {
		a.attach(c, c.lib.allocID())
	}
	c.objects = append(c.objects, obj)
	return obj
}

// Remove removes obj from the cell. The object keeps its parent pointer so
// that late references can still be reported.
func (c *Cell) Remove(obj Object) bool {
	for i, o := range c.objects {
		if o == obj {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether obj is currently placed in the cell.
func (c *Cell) Contains(obj Object) bool {
	for _, o := range c.objects {
		if o == obj {
			return true
		}
	}
	return false
}

// Objects returns a copy of the cell's objects in insertion order.
func (c *Cell) Objects() []Object {
	return append([]Object(nil), c.objects...)
}

// Query returns the objects of the given kinds whose bounds overlap box.
// With no kinds, every kind matches.
func (c *Cell) Query(box geometry.RectInt, kinds ...ObjectKind) []Object {
	var out []Object
	for _, o := range c.objects {
		if len(kinds) > 0 && !hasKind(kinds, o.ObjectKind()) {
			continue
		}
		if o.Bounds().Overlaps(box) {
			out = append(out, o)
		}
	}
	return out
}

// Instances returns the instances placed in the cell.
func (c *Cell) Instances() []*Instance {
	var out []*Instance
	for _, o := range c.objects {
		if inst, ok := o.(*Instance); ok {
			out = append(out, inst)
		}
	}
	return out
}

// Bounds returns the union of the bounds of every object and terminal.
func (c *Cell) Bounds() geometry.RectInt {
	var r geometry.RectInt
	have := false
	for _, o := range c.objects {
		if !have {
			r, have = o.Bounds(), true
			continue
		}
		r = r.Union(o.Bounds())
	}
	for _, t := range c.Terminals {
		tb := geometry.RectInt{X: t.At.X, Y: t.At.Y}
		if !have {
			r, have = tb, true
			continue
		}
		r = r.Union(tb)
	}
	return r
}

// AddTerminal appends a cell terminal and returns its index.
func (c *Cell) AddTerminal(name string, at geometry.PointInt, node int) int {
	c.Terminals = append(c.Terminals, &Terminal{Name: name, At: at, Node: node})
	return len(c.Terminals) - 1
}

// Terminal returns the terminal at index, or nil.
func (c *Cell) Terminal(index int) *Terminal {
	if index < 0 || index >= len(c.Terminals) {
		return nil
	}
	return c.Terminals[index]
}

// Place creates an instance of master with the given placement. Contacts of
// subcircuit instances are derived from the master terminals.
func (c *Cell) Place(name string, master *Cell, placement geometry.AffineTransform) *Instance {
	inst := &Instance{
		Name:      name,
		Master:    master,
		Placement: placement,
	}
	if master != nil {
		for _, t := range master.Terminals {
			inst.Contacts = append(inst.Contacts, Contact{
				Name: t.Name,
				At:   placement.ApplyInt(t.At),
			})
		}
	}
	c.Add(inst)
	return inst
}

func hasKind(kinds []ObjectKind, k ObjectKind) bool {
	for _, kk := range kinds {
		if kk == k {
			return true
		}
	}
	return false
}
