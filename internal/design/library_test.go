package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layout-hypertext/pkg/geometry"
)

// threeLevels builds top > mid > leaf, with mid placed twice in top.
func threeLevels(t *testing.T) (*Library, *Cell, *Cell, *Cell) {
	t.Helper()
	lib := NewLibrary()
	leaf := lib.NewCell("leaf", Electrical)
	leaf.AddTerminal("a", geometry.Pt(0, 0), 1)
	leaf.Add(NewWire("metal1", 2, true, 1, geometry.Pt(0, 0), geometry.Pt(10, 0)))

	mid := lib.NewCell("mid", Electrical)
	mid.Place("xl", leaf, geometry.Translation(100, 0))

	top := lib.NewCell("top", Electrical)
	top.Place("xm1", mid, geometry.Translation(0, 0))
	top.Place("xm2", mid, geometry.Translation(0, 500))
	return lib, top, mid, leaf
}

func TestLibrary_NewCellReturnsExisting(t *testing.T) {
	lib := NewLibrary()
	a := lib.NewCell("inv", Electrical)
	assert.Same(t, a, lib.NewCell("inv", Electrical))
	assert.NotSame(t, a, lib.NewCell("inv", Physical))
	assert.Same(t, a, lib.ElectricalCell("inv"))
	assert.Nil(t, lib.Cell("nand", Electrical))
}

func TestLibrary_Ascend(t *testing.T) {
	lib, top, mid, leaf := threeLevels(t)

	var seen []*Cell
	lib.Ascend(leaf, func(c *Cell) bool {
		seen = append(seen, c)
		return true
	})
	assert.Equal(t, []*Cell{leaf, mid, top}, seen)

	seen = nil
	lib.Ascend(leaf, func(c *Cell) bool {
		seen = append(seen, c)
		return c != mid
	})
	assert.Equal(t, []*Cell{leaf, mid}, seen)
}

func TestLibrary_FindInstance(t *testing.T) {
	lib, top, mid, leaf := threeLevels(t)

	xl := lib.FindInstance(leaf, geometry.Pt(105, 0), 2)
	require.NotNil(t, xl)
	assert.Equal(t, "xl", xl.Name)
	assert.Equal(t, mid, xl.Parent())

	xm2 := lib.FindInstance(mid, geometry.Pt(105, 500), 2)
	require.NotNil(t, xm2)
	assert.Equal(t, "xm2", xm2.Name)
	assert.Equal(t, top, xm2.Parent())

	assert.Nil(t, lib.FindInstance(mid, geometry.Pt(-900, -900), 2))
}

func TestLibrary_TopsAndInstancesOf(t *testing.T) {
	lib, top, mid, _ := threeLevels(t)
	assert.Equal(t, []*Cell{top}, lib.Tops())
	assert.Len(t, lib.InstancesOf(mid), 2)
}

func TestCell_AddRemoveKeepsID(t *testing.T) {
	lib := NewLibrary()
	c := lib.NewCell("c", Electrical)
	w := NewWire("metal1", 2, false, 0, geometry.Pt(0, 0), geometry.Pt(5, 0))
	c.Add(w)
	id := w.ObjectID()
	require.NotZero(t, id)

	require.True(t, c.Remove(w))
	assert.False(t, c.Contains(w))
	assert.Equal(t, c, w.Parent())

	c.Add(w)
	assert.Equal(t, id, w.ObjectID())
	assert.False(t, c.Remove(NewWire("metal1", 2, false, 0)))
}

func TestCell_Query(t *testing.T) {
	_, top, _, _ := threeLevels(t)
	lbl := &Label{Text: "x", At: geometry.Pt(100, 0), Width: 10, Height: 10}
	top.Add(lbl)

	all := top.Query(geometry.BoxAround(geometry.Pt(105, 2), 3))
	assert.Len(t, all, 2)

	labels := top.Query(geometry.BoxAround(geometry.Pt(105, 2), 3), KindLabel)
	assert.Equal(t, []Object{lbl}, labels)
}

func TestPlace_DerivesContacts(t *testing.T) {
	lib, _, mid, leaf := threeLevels(t)
	xl := mid.Instances()[0]
	require.Len(t, xl.Contacts, 1)
	assert.Equal(t, geometry.Pt(100, 0), xl.Contacts[0].At)
	assert.Equal(t, "a", xl.Contacts[0].Name)

	xl.Contacts[0].Node = 9
	node, ok := xl.ParentNode(1)
	assert.True(t, ok)
	assert.Equal(t, 9, node)
	_, ok = xl.ParentNode(2)
	assert.False(t, ok)
	assert.Equal(t, leaf, xl.Master)
	assert.NotNil(t, lib)
}

func TestInstance_CloneIsIndependent(t *testing.T) {
	inst := &Instance{
		Name:     "m1",
		Device:   true,
		Contacts: []Contact{{Name: "d", At: geometry.Pt(1, 1)}},
		Branch:   &BranchAnchor{At: geometry.Pt(2, 2), Rot: geometry.Pt(0, 1)},
	}
	lib := NewLibrary()
	lib.NewCell("c", Electrical).Add(inst)

	c := inst.Clone()
	c.Contacts[0].At = geometry.Pt(9, 9)
	c.Branch.At = geometry.Pt(9, 9)
	assert.Zero(t, c.ObjectID())
	assert.Nil(t, c.Parent())
	assert.Equal(t, geometry.Pt(1, 1), inst.Contacts[0].At)
	assert.Equal(t, geometry.Pt(2, 2), inst.Branch.At)
}
