package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack_PushComposesInnerFirst(t *testing.T) {
	s := NewStack()
	s.Push(Translation(100, 0))
	s.Push(Quarter(1))

	// (10,0) rotated to (0,10), then shifted to (100,10)
	assert.Equal(t, Pt(100, 10), s.Point(Pt(10, 0)))
	assert.Equal(t, 2, s.Depth())

	s.Pop()
	assert.Equal(t, Pt(110, 0), s.Point(Pt(10, 0)))

	s.Pop()
	s.Pop()
	assert.Equal(t, 0, s.Depth())
	assert.True(t, s.Current().IsIdentity())
}

func TestStack_Inverse(t *testing.T) {
	s := NewStack()
	s.Push(Translation(5, -7))
	s.Push(Quarter(2))

	inv, ok := s.Inverse()
	require.True(t, ok)

	p := Pt(13, 4)
	assert.Equal(t, p, inv.ApplyInt(s.Point(p)))
}

func TestRectInt_OverlapsDegenerate(t *testing.T) {
	wire := PolylineBounds([]PointInt{{0, 0}, {100, 0}})
	assert.Equal(t, 0, wire.Height)
	assert.True(t, wire.Overlaps(BoxAround(Pt(50, 3), 5)))
	assert.False(t, wire.Overlaps(BoxAround(Pt(50, 30), 5)))
}

func TestRectInt_Transform(t *testing.T) {
	r := RectInt{X: 0, Y: 0, Width: 10, Height: 20}
	got := r.Transform(Translation(5, 5).Compose(Quarter(1)))
	assert.Equal(t, RectInt{X: -15, Y: 5, Width: 20, Height: 10}, got)
}

func TestPolylineDistance(t *testing.T) {
	path := []PointInt{{0, 0}, {100, 0}, {100, 100}}
	assert.InDelta(t, 0, PolylineDistance(Pt(50, 0), path), 1e-9)
	assert.InDelta(t, 4, PolylineDistance(Pt(104, 50), path), 1e-9)
	assert.InDelta(t, 5, PolylineDistance(Pt(-3, 4), path), 1e-9)
}
