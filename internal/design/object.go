// Package design provides the in-memory layout/schematic database: cells in
// physical and electrical mode, the drawn objects they hold, and hierarchy
// traversal.
package design

import (
	"layout-hypertext/pkg/geometry"
)

// ObjectKind discriminates the drawn object types.
type ObjectKind int

const (
	KindWire     ObjectKind = iota // Conductor path
	KindInstance                   // Placed subcell or device
	KindLabel                      // Text label
	KindOutline                    // Shape on the cell outline layer
)

func (k ObjectKind) String() string {
	switch k {
	case KindWire:
		return "wire"
	case KindInstance:
		return "instance"
	case KindLabel:
		return "label"
	case KindOutline:
		return "outline"
	default:
		return "unknown"
	}
}

// Object is the common interface for drawn objects.
type Object interface {
	// ObjectID returns the library-unique identifier for this object.
	ObjectID() uint64

	// ObjectKind returns the object type.
	ObjectKind() ObjectKind

	// Parent returns the cell holding this object, nil until added.
	Parent() *Cell

	// Bounds returns the bounding rectangle in parent coordinates.
	Bounds() geometry.RectInt
}

type object struct {
	id     uint64
	parent *Cell
}

func (o *object) ObjectID() uint64 { return o.id }
func (o *object) Parent() *Cell    { return o.parent }

// attach sets the parent. An object re-added after removal keeps its ID.
func (o *object) attach(c *Cell, id uint64) {
	o.parent = c
	if o.id == 0 {
		o.id = id
	}
}

// Wire is a conductor path with a width. Active wires carry an electrical
// node number.
type Wire struct {
	object
	Layer  string
	Points []geometry.PointInt
	Width  int
	Active bool
	Node   int
}

// NewWire creates a wire that is not yet placed in a cell.
func NewWire(layer string, width int, active bool, node int, points ...geometry.PointInt) *Wire {
	return &Wire{
		Layer:  layer,
		Points: append([]geometry.PointInt(nil), points...),
		Width:  width,
		Active: active,
		Node:   node,
	}
}

func (w *Wire) ObjectKind() ObjectKind { return KindWire }

func (w *Wire) Bounds() geometry.RectInt {
	r := geometry.PolylineBounds(w.Points)
	h := w.Width / 2
	return geometry.RectInt{X: r.X - h, Y: r.Y - h, Width: r.Width + 2*h, Height: r.Height + 2*h}
}

// HitTest returns true if p is within half the wire width plus tolerance of
// the wire centerline.
func (w *Wire) HitTest(p geometry.PointInt, tolerance float64) bool {
	return geometry.PolylineDistance(p, w.Points) <= float64(w.Width)/2+tolerance
}

// Clone returns an unplaced copy of the wire.
func (w *Wire) Clone() *Wire {
	return NewWire(w.Layer, w.Width, w.Active, w.Node, w.Points...)
}

// Contact is a connection point of an instance, in parent coordinates.
type Contact struct {
	Name string
	At   geometry.PointInt
	Node int
}

// BranchAnchor is the current-reporting point of a device. Rot is a unit
// vector giving the direction of positive current.
type BranchAnchor struct {
	At  geometry.PointInt
	Rot geometry.PointInt
}

// Instance is a placement of a master cell. Devices are leaf primitives;
// non-device instances are subcircuits whose contacts correspond, by index,
// to the master's terminals.
type Instance struct {
	object
	Name      string
	Master    *Cell
	Placement geometry.AffineTransform
	Device    bool
	Contacts  []Contact
	Branch    *BranchAnchor
	Value     string

	// BranchTemplate is the branch display template, used only when
	// HasBranchTemplate is set.
	BranchTemplate    string
	HasBranchTemplate bool

	// Box overrides the computed bounds when non-empty.
	Box geometry.RectInt
}

func (inst *Instance) ObjectKind() ObjectKind { return KindInstance }

func (inst *Instance) Bounds() geometry.RectInt {
	if inst.Box.Width > 0 || inst.Box.Height > 0 {
		return inst.Box
	}
	var r geometry.RectInt
	have := false
	add := func(b geometry.RectInt) {
		if !have {
			r, have = b, true
			return
		}
		r = r.Union(b)
	}
	if inst.Master != nil && len(inst.Master.objects) > 0 {
		add(inst.Master.Bounds().Transform(inst.Placement))
	}
	for _, c := range inst.Contacts {
		add(geometry.RectInt{X: c.At.X, Y: c.At.Y})
	}
	if inst.Branch != nil {
		add(geometry.RectInt{X: inst.Branch.At.X, Y: inst.Branch.At.Y})
	}
	return r
}

// Clone returns an unplaced copy of the instance.
func (inst *Instance) Clone() *Instance {
	c := *inst
	c.object = object{}
	c.Contacts = append([]Contact(nil), inst.Contacts...)
	if inst.Branch != nil {
		b := *inst.Branch
		c.Branch = &b
	}
	return &c
}

// ParentNode maps a node number of the master cell to the node it is tied to
// in the parent, through the master terminal carrying that node. Returns
// false if the node is not brought out to a terminal.
func (inst *Instance) ParentNode(node int) (int, bool) {
	if inst.Master == nil {
		return 0, false
	}
	for i, term := range inst.Master.Terminals {
		if term.Node == node && i < len(inst.Contacts) {
			return inst.Contacts[i].Node, true
		}
	}
	return 0, false
}

// Label is a text label.
type Label struct {
	object
	Text   string
	At     geometry.PointInt
	Width  int
	Height int
}

func (l *Label) ObjectKind() ObjectKind { return KindLabel }

func (l *Label) Bounds() geometry.RectInt {
	return geometry.RectInt{X: l.At.X, Y: l.At.Y, Width: l.Width, Height: l.Height}
}

// Clone returns an unplaced copy of the label.
func (l *Label) Clone() *Label {
	c := *l
	c.object = object{}
	return &c
}

// Outline is a box drawn on the structural cell outline layer.
type Outline struct {
	object
	Box geometry.RectInt
}

func (o *Outline) ObjectKind() ObjectKind { return KindOutline }

func (o *Outline) Bounds() geometry.RectInt { return o.Box }

// Terminal is a connection point of a cell itself, in cell coordinates.
type Terminal struct {
	Name string
	At   geometry.PointInt
	Node int
}
