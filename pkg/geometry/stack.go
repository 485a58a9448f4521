package geometry

import (
	"gonum.org/v1/gonum/mat"
)

// Stack is a push/pop transform stack. Each frame holds the homogeneous 3x3
// matrix mapping the coordinates of the innermost pushed context to the
// coordinates of the outermost one.
//
// Pushing a transform T that places a child in its parent yields
// current = current * T, so a point in the child is mapped through T first.
type Stack struct {
	frames []*mat.Dense
}

// NewStack returns a stack holding only the identity frame.
func NewStack() *Stack {
	return &Stack{frames: []*mat.Dense{toDense(Identity())}}
}

// Push composes t onto the current frame.
func (s *Stack) Push(t AffineTransform) {
	var m mat.Dense
	m.Mul(s.top(), toDense(t))
	s.frames = append(s.frames, &m)
}

// Pop discards the most recent frame. The identity frame is never removed.
func (s *Stack) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Depth returns the number of pushed frames.
func (s *Stack) Depth() int {
	return len(s.frames) - 1
}

// Current returns the composed transform of all pushed frames.
func (s *Stack) Current() AffineTransform {
	return fromDense(s.top())
}

// Inverse returns the inverse of the composed transform.
func (s *Stack) Inverse() (AffineTransform, bool) {
	var inv mat.Dense
	if err := inv.Inverse(s.top()); err != nil {
		return AffineTransform{}, false
	}
	return fromDense(&inv), true
}

// Point maps p through the composed transform.
func (s *Stack) Point(p PointInt) PointInt {
	return s.Current().ApplyInt(p)
}

func (s *Stack) top() *mat.Dense {
	return s.frames[len(s.frames)-1]
}

func toDense(t AffineTransform) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		t.A, t.B, t.TX,
		t.C, t.D, t.TY,
		0, 0, 1,
	})
}

func fromDense(m *mat.Dense) AffineTransform {
	return AffineTransform{
		A: m.At(0, 0), B: m.At(0, 1), TX: m.At(0, 2),
		C: m.At(1, 0), D: m.At(1, 1), TY: m.At(1, 2),
	}
}
