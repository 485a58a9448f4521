package hypertext

import (
	"layout-hypertext/internal/design"
	"layout-hypertext/pkg/geometry"
)

// PathLink is one element of an instance chain. Inst is a back-reference
// into the hierarchy, never owned. X and Y are used only in Proxy Paths,
// where they locate Inst within its parent cell.
type PathLink struct {
	Next *PathLink
	Inst *design.Instance
	X, Y int
}

// Copy returns a deep copy of the chain starting at p.
func (p *PathLink) Copy() *PathLink {
	var head, tail *PathLink
	for l := p; l != nil; l = l.Next {
		n := &PathLink{Inst: l.Inst, X: l.X, Y: l.Y}
		if tail == nil {
			head = n
		} else {
			tail.Next = n
		}
		tail = n
	}
	return head
}

// Len returns the number of links in the chain.
func (p *PathLink) Len() int {
	n := 0
	for l := p; l != nil; l = l.Next {
		n++
	}
	return n
}

// Instances returns the instances of the chain in link order.
func (p *PathLink) Instances() []*design.Instance {
	var out []*design.Instance
	for l := p; l != nil; l = l.Next {
		out = append(out, l.Inst)
	}
	return out
}

// Contains reports whether any link names obj.
func (p *PathLink) Contains(obj design.Object) bool {
	for l := p; l != nil; l = l.Next {
		if l.Inst != nil && design.Object(l.Inst) == obj {
			return true
		}
	}
	return false
}

// Point returns the link coordinate.
func (p *PathLink) Point() geometry.PointInt {
	return geometry.Pt(p.X, p.Y)
}

func (p *PathLink) last() *PathLink {
	var last *PathLink
	for l := p; l != nil; l = l.Next {
		last = l
	}
	return last
}

// joinPaths returns a copy of a followed by a copy of b.
func joinPaths(a, b *PathLink) *PathLink {
	if a == nil {
		return b
	}
	head := a.Copy()
	head.last().Next = b.Copy()
	return head
}

func samePath(a, b *PathLink) bool {
	for a != nil && b != nil {
		if a.Inst != b.Inst {
			return false
		}
		a, b = a.Next, b.Next
	}
	return a == nil && b == nil
}

type proxyState int

const (
	proxyEmpty proxyState = iota
	proxyUnresolved
	proxyResolved
)

// ProxyPath is the alternate instance chain from an outer display context
// down to the cell holding the reference text. After loading it exists only
// as raw coordinates; fixup converts it into instance links.
type ProxyPath struct {
	state proxyState

	// raw holds every token coordinate pair in file order while unresolved.
	raw []geometry.PointInt

	// head is the resolved chain, outer to inner.
	head *PathLink
}

func unresolvedProxy(coords []geometry.PointInt) ProxyPath {
	return ProxyPath{state: proxyUnresolved, raw: append([]geometry.PointInt(nil), coords...)}
}

func resolvedProxy(head *PathLink) ProxyPath {
	if head == nil {
		return ProxyPath{}
	}
	return ProxyPath{state: proxyResolved, head: head}
}

// Empty reports whether there is no proxy association.
func (p ProxyPath) Empty() bool { return p.state == proxyEmpty }

// Unresolved reports whether the path still holds raw coordinates.
func (p ProxyPath) Unresolved() bool { return p.state == proxyUnresolved }

// Links returns the resolved chain, outer to inner, or nil.
func (p ProxyPath) Links() *PathLink { return p.head }

// Len returns the number of resolved links.
func (p ProxyPath) Len() int { return p.head.Len() }

// RawCoords returns the unresolved coordinate pairs in file order.
func (p ProxyPath) RawCoords() []geometry.PointInt {
	return append([]geometry.PointInt(nil), p.raw...)
}

func (p ProxyPath) copy() ProxyPath {
	return ProxyPath{
		state: p.state,
		raw:   append([]geometry.PointInt(nil), p.raw...),
		head:  p.head.Copy(),
	}
}
