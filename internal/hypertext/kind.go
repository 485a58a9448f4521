package hypertext

import (
	"math"

	"layout-hypertext/pkg/geometry"
)

// Kind identifies what a reference binds to. The values double as search
// masks, and the Node, Branch and Device values are the persisted token
// codes; they must not be renumbered.
type Kind int

const (
	KindNone   Kind = 0
	KindNode   Kind = 1
	KindBranch Kind = 2
	KindDevice Kind = 4
	KindCell   Kind = 8
	KindLabel  Kind = 16

	// KindAny requests every kind of reference.
	KindAny = KindNode | KindBranch | KindDevice | KindCell | KindLabel
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNode:
		return "node"
	case KindBranch:
		return "branch"
	case KindDevice:
		return "device"
	case KindCell:
		return "cell"
	case KindLabel:
		return "label"
	default:
		return "mask"
	}
}

// Orientation is the direction of positive current for branch references.
type Orientation int

const (
	OrientNone Orientation = iota
	OrientDown
	OrientRight
	OrientUp
	OrientLeft
)

func (o Orientation) String() string {
	switch o {
	case OrientDown:
		return "down"
	case OrientRight:
		return "right"
	case OrientUp:
		return "up"
	case OrientLeft:
		return "left"
	default:
		return "none"
	}
}

// orientationOf maps a branch anchor rotation vector to an orientation.
func orientationOf(rot geometry.PointInt) Orientation {
	switch rot {
	case geometry.Pt(0, 1):
		return OrientUp
	case geometry.Pt(0, -1):
		return OrientDown
	case geometry.Pt(1, 0):
		return OrientRight
	default:
		return OrientLeft
	}
}

func (o Orientation) vector() geometry.Point2D {
	switch o {
	case OrientDown:
		return geometry.NewPoint2D(0, -1)
	case OrientRight:
		return geometry.NewPoint2D(1, 0)
	case OrientUp:
		return geometry.NewPoint2D(0, 1)
	case OrientLeft:
		return geometry.NewPoint2D(-1, 0)
	}
	return geometry.Point2D{}
}

// transform returns the cardinal direction nearest to the orientation's unit
// vector mapped through t.
func (o Orientation) transform(t geometry.AffineTransform) Orientation {
	if o == OrientNone {
		return o
	}
	v := t.ApplyVector(o.vector())
	if math.Abs(v.X) >= math.Abs(v.Y) {
		if v.X >= 0 {
			return OrientRight
		}
		return OrientLeft
	}
	if v.Y >= 0 {
		return OrientUp
	}
	return OrientDown
}
