package hypertext

import (
	"fmt"

	"github.com/google/uuid"

	"layout-hypertext/internal/design"
	"layout-hypertext/pkg/geometry"
)

// Entity is a live binding from text to an electrical or geometric target.
//
// X,Y is the reference point in the coordinate space of the cell that
// physically holds the target, reached from the owner through the Parent
// Path. Exactly one of a target or the terminal flag is set while the kind
// is not KindNone.
type Entity struct {
	id        uuid.UUID
	x, y      int
	owner     *design.Cell
	target    design.Object
	termIndex int
	parent    *PathLink
	proxy     ProxyPath
	kind      Kind
	orient    Orientation
	terminal  bool
	linked    bool

	eng *Engine
}

func (e *Engine) newEntity(owner *design.Cell, kind Kind) *Entity {
	return &Entity{
		id:        uuid.New(),
		owner:     owner,
		termIndex: -1,
		kind:      kind,
		eng:       e,
	}
}

// NewEntity creates an unlinked reference of the given kind in owner bound
// to target at p. Use Pick to resolve a reference from a click instead.
func (e *Engine) NewEntity(owner *design.Cell, kind Kind, target design.Object, p geometry.PointInt) *Entity {
	ent := e.newEntity(owner, kind)
	ent.target = target
	ent.x, ent.y = p.X, p.Y
	return ent
}

// NewTerminalEntity creates an unlinked node reference to the owner's own
// terminal.
func (e *Engine) NewTerminalEntity(owner *design.Cell, index int) *Entity {
	ent := e.newEntity(owner, KindNode)
	ent.terminal = true
	ent.termIndex = index
	if t := owner.Terminal(index); t != nil {
		ent.x, ent.y = t.At.X, t.At.Y
	}
	return ent
}

func (e *Entity) ID() uuid.UUID { return e.id }
func (e *Entity) Kind() Kind { return e.kind }
func (e *Entity) Orientation() Orientation { return e.orient }
func (e *Entity) Owner() *design.Cell { return e.owner }
func (e *Entity) Target() design.Object { return e.target }
func (e *Entity) IsTerminal() bool { return e.terminal }
func (e *Entity) TerminalIndex() int { return e.termIndex }
func (e *Entity) IsLinked() bool { return e.linked }
func (e *Entity) ParentPath() *PathLink { return e.parent }
func (e *Entity) ProxyPath() ProxyPath { return e.proxy }
func (e *Entity) Point() geometry.PointInt { return geometry.Pt(e.x, e.y) }
func (e *Entity) NeedsProxyFixup() bool { return e.proxy.Unresolved() }

func (e *Entity) String() string {
	return fmt.Sprintf("%s@(%d,%d)", e.kind, e.x, e.y)
}

// Add links the entity into its owner's registry. A physical owner is
// redirected to the electrical cell of the same name first.
func (e *Entity) Add() error {
	if e.linked {
		return nil
	}
	if e.owner == nil {
		return ErrNoOwner
	}
	owner := e.owner
	if !owner.IsElectrical() {
		owner = e.eng.lib.ElectricalCell(owner.Name)
		if owner == nil {
			return fmt.Errorf("%w: %s", ErrNoElectricalCell, e.owner.Name)
		}
	}
	e.owner = owner
	e.eng.registry(owner).add(e)
	e.linked = true
	return nil
}

// Remove unlinks the entity from its owner's registry.
func (e *Entity) Remove() {
	if !e.linked {
		return
	}
	if reg := e.eng.registries[e.owner]; reg != nil {
		reg.remove(e)
	}
	e.linked = false
}

// Duplicate returns an independent copy. The copy is linked if the original
// was.
func (e *Entity) Duplicate() *Entity {
	d := *e
	d.id = uuid.New()
	d.parent = e.parent.Copy()
	d.proxy = e.proxy.copy()
	d.linked = false
	if e.linked {
		if err := d.Add(); err != nil {
			e.eng.log.Debug("duplicate reference not registered", "id", d.id, "error", err)
		}
	}
	return &d
}

// Destroy unlinks the entity and purges it from the undo log.
func (e *Entity) Destroy() {
	e.Remove()
	if e.eng.undo != nil {
		e.eng.undo.RecordChange(e, false)
	}
}

// clear turns the entity into an inert reference. It stays registered.
func (e *Entity) clear() {
	e.kind = KindNone
	e.orient = OrientNone
	e.parent = nil
	e.proxy = ProxyPath{}
	e.target = nil
	e.terminal = false
	e.termIndex = -1
}

// searchCell returns the cell the reference is resolved in: the innermost
// proxy instance's master, or the owner.
func (e *Entity) searchCell() *design.Cell {
	if last := e.proxy.head.last(); last != nil && last.Inst != nil {
		return last.Inst.Master
	}
	return e.owner
}

// cell returns the cell physically holding the target.
func (e *Entity) cell() *design.Cell {
	if last := e.parent.last(); last != nil && last.Inst != nil {
		return last.Inst.Master
	}
	return e.searchCell()
}

// namePath is the chain used for hierarchical names: the proxy links
// followed by the parent links.
func (e *Entity) namePath() *PathLink {
	return joinPaths(e.proxy.head, e.parent)
}

// NodeNumber returns the node number of a node reference in the cell
// holding its target, or -1.
func (e *Entity) NodeNumber() int {
	if e.kind != KindNode {
		return -1
	}
	if e.terminal {
		if t := e.owner.Terminal(e.termIndex); t != nil {
			return t.Node
		}
		return -1
	}
	switch t := e.target.(type) {
	case *design.Wire:
		return t.Node
	case *design.Instance:
		p := e.Point()
		for _, c := range t.Contacts {
			if c.At == p {
				return c.Node
			}
		}
	}
	return -1
}

// TopLevelPoint maps the reference point through the Parent Path into the
// coordinates of the cell the reference is resolved in.
func (e *Entity) TopLevelPoint() geometry.PointInt {
	s := geometry.NewStack()
	for l := e.parent; l != nil; l = l.Next {
		if l.Inst != nil {
			s.Push(l.Inst.Placement)
		}
	}
	return s.Point(e.Point())
}

// StringUpdate re-resolves the reference against the current geometry and
// returns its display name, or "" if it cannot be named. ts, if not nil,
// maps owner coordinates into the coordinates searched.
func (e *Entity) StringUpdate(ts *geometry.Stack) string {
	return e.update(ts, false)
}

func (e *Entity) update(ts *geometry.Stack, addV bool) string {
	if e.terminal {
		e.parent = nil
		e.proxy = ProxyPath{}
		return e.subname(addV)
	}
	if e.kind == KindNone {
		return ""
	}
	if e.proxy.Unresolved() && !e.fixupProxy() {
		e.clear()
		return ""
	}

	pt := e.TopLevelPoint()
	if ts != nil {
		pt = ts.Point(pt)
	}
	found := e.eng.find(e.searchCell(), geometry.BoxAround(pt, e.eng.tolerance), e.kind)
	if found == nil {
		e.eng.log.Debug("reference is stale", "id", e.id, "kind", e.kind, "at", pt)
		return e.subname(addV)
	}
	if found.terminal {
		e.eng.log.Debug("terminal found for object reference", "id", e.id, "at", pt)
		return ""
	}

	moved := !samePath(e.parent, found.parent) ||
		!found.Point().Within(e.Point(), e.eng.drift)
	e.parent = found.parent
	e.target = found.target
	e.kind = found.kind
	e.orient = found.orient
	if moved {
		e.x, e.y = found.x, found.y
	}
	return e.subname(addV)
}

// fixupProxy converts raw proxy coordinates into instance links, walking
// outward from the owner. On success the entity is re-registered in the
// outermost container, which becomes its owner.
func (e *Entity) fixupProxy() bool {
	raw := e.proxy.raw
	if len(raw) == 0 {
		e.proxy = ProxyPath{}
		return true
	}
	ref := raw[len(raw)-1]
	coords := raw[:len(raw)-1]

	cell := e.owner
	var head *PathLink
	for i := len(coords) - 1; i >= 0; i-- {
		inst := e.eng.lib.FindInstance(cell, coords[i], e.eng.tolerance)
		if inst == nil || inst.Parent() == nil {
			e.eng.log.Debug("proxy path unresolved",
				"id", e.id, "cell", cell.Name, "at", coords[i])
			return false
		}
		head = &PathLink{Next: head, Inst: inst, X: coords[i].X, Y: coords[i].Y}
		cell = inst.Parent()
	}

	e.x, e.y = ref.X, ref.Y
	e.proxy = resolvedProxy(head)
	if cell != e.owner {
		wasLinked := e.linked
		e.Remove()
		e.owner = cell
		if wasLinked {
			if err := e.Add(); err != nil {
				e.eng.log.Debug("proxy owner not registered", "id", e.id, "error", err)
			}
		}
	}
	return true
}

func (e *Entity) terminalName() string {
	if t := e.owner.Terminal(e.termIndex); t != nil {
		return t.Name
	}
	return ""
}

// subname derives the display name from the current state without
// searching the geometry.
func (e *Entity) subname(addV bool) string {
	n := e.eng.naming
	switch e.kind {
	case KindNode:
		var name string
		if e.terminal {
			name = e.terminalName()
		} else {
			node := e.NodeNumber()
			if node < 0 {
				return ""
			}
			name = HierarchicalNodeName(e.namePath(), e.cell(), node, e.eng.namer, n)
		}
		if name == "" {
			return ""
		}
		if addV {
			return "v(" + name + ")"
		}
		return name
	case KindBranch:
		if inst, ok := e.target.(*design.Instance); ok && inst.Device {
			return ExpandBranchString(e.namePath(), inst, e.eng.namer, n)
		}
	case KindDevice:
		if inst, ok := e.target.(*design.Instance); ok {
			return HierarchicalDeviceName(e.namePath(), inst, n)
		}
	case KindCell, KindLabel:
		return "unknown"
	}
	return ""
}

// Snapshot is the restorable state of an entity.
type Snapshot struct {
	x, y      int
	owner     *design.Cell
	target    design.Object
	termIndex int
	parent    *PathLink
	proxy     ProxyPath
	kind      Kind
	orient    Orientation
	terminal  bool
}

// Snapshot captures the entity state, deep-copying both paths.
func (e *Entity) Snapshot() Snapshot {
	return Snapshot{
		x:         e.x,
		y:         e.y,
		owner:     e.owner,
		target:    e.target,
		termIndex: e.termIndex,
		parent:    e.parent.Copy(),
		proxy:     e.proxy.copy(),
		kind:      e.kind,
		orient:    e.orient,
		terminal:  e.terminal,
	}
}

// Kind returns the captured reference kind.
func (s Snapshot) Kind() Kind { return s.kind }

// Point returns the captured reference point.
func (s Snapshot) Point() geometry.PointInt { return geometry.Pt(s.x, s.y) }

// Restore resets the entity to s, moving its registration if the owner
// differs.
func (e *Entity) Restore(s Snapshot) {
	if s.owner != e.owner && e.linked {
		e.Remove()
		e.owner = s.owner
		if err := e.Add(); err != nil {
			e.eng.log.Debug("restored reference not registered", "id", e.id, "error", err)
		}
	}
	e.owner = s.owner
	e.x, e.y = s.x, s.y
	e.target = s.target
	e.termIndex = s.termIndex
	e.parent = s.parent.Copy()
	e.proxy = s.proxy.copy()
	e.kind = s.kind
	e.orient = s.orient
	e.terminal = s.terminal
}
