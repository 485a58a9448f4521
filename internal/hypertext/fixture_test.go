package hypertext

import (
	"testing"

	"github.com/stretchr/testify/require"

	"layout-hypertext/internal/design"
	"layout-hypertext/pkg/geometry"
)

// fixture is a two-level inverter design:
//
//	top: x1 (inv) placed at (1000,0), wire "vin" into x1.in
//	inv: terminals in (node 1) and out (node 2), wire w1 on node 1,
//	     device m1 between ground and out with its branch at (50,10)
type fixture struct {
	lib  *design.Library
	top  *design.Cell
	inv  *design.Cell
	w1   *design.Wire
	m1   *design.Instance
	x1   *design.Instance
	vin  *design.Wire
	eng  *Engine
	undo *fakeRecorder
}

type recordedChange struct {
	ent    *Entity
	isUndo bool
}

type fakeRecorder struct {
	changes []recordedChange
}

func (f *fakeRecorder) RecordChange(e *Entity, isUndo bool) {
	f.changes = append(f.changes, recordedChange{e, isUndo})
}

func (f *fakeRecorder) count(isUndo bool) int {
	n := 0
	for _, c := range f.changes {
		if c.isUndo == isUndo {
			n++
		}
	}
	return n
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{lib: design.NewLibrary(), undo: &fakeRecorder{}}

	f.inv = f.lib.NewCell("inv", design.Electrical)
	f.inv.AddTerminal("in", geometry.Pt(0, 0), 1)
	f.inv.AddTerminal("out", geometry.Pt(100, 0), 2)
	f.w1 = design.NewWire("metal1", 4, true, 1, geometry.Pt(0, 0), geometry.Pt(40, 0))
	f.inv.Add(f.w1)
	f.m1 = &design.Instance{
		Name:   "m1",
		Device: true,
		Value:  "nmos",
		Contacts: []design.Contact{
			{Name: "s", At: geometry.Pt(50, -20), Node: 0},
			{Name: "d", At: geometry.Pt(60, 0), Node: 2},
		},
		Branch: &design.BranchAnchor{At: geometry.Pt(50, 10), Rot: geometry.Pt(0, 1)},
		Box:    geometry.RectInt{X: 40, Y: -20, Width: 20, Height: 40},
	}
	f.inv.Add(f.m1)

	f.top = f.lib.NewCell("top", design.Electrical)
	f.top.NodeNames[7] = "vin"
	f.x1 = f.top.Place("x1", f.inv, geometry.Translation(1000, 0))
	f.x1.Contacts[0].Node = 7
	f.x1.Contacts[1].Node = 8
	f.vin = design.NewWire("metal1", 4, true, 7, geometry.Pt(800, 0), geometry.Pt(1000, 0))
	f.top.Add(f.vin)

	opts = append([]Option{WithRecorder(f.undo)}, opts...)
	f.eng = NewEngine(f.lib, opts...)
	require.Equal(t, f.top, f.x1.Parent())
	return f
}

// nodeRef registers a node reference on w in its cell at p.
func (f *fixture) nodeRef(t *testing.T, w *design.Wire, p geometry.PointInt) *Entity {
	t.Helper()
	ent := f.eng.NewEntity(w.Parent(), KindNode, w, p)
	require.NoError(t, ent.Add())
	return ent
}
