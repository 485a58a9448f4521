package hypertext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layout-hypertext/internal/design"
	"layout-hypertext/pkg/geometry"
)

func TestEntity_AddRemove(t *testing.T) {
	f := newFixture(t)
	ent := f.eng.NewEntity(f.inv, KindNode, f.w1, geometry.Pt(20, 0))

	require.NoError(t, ent.Add())
	assert.True(t, ent.IsLinked())
	assert.True(t, f.eng.Registry(f.inv).Contains(ent))

	require.NoError(t, ent.Add())
	assert.Equal(t, 1, f.eng.Registry(f.inv).Len())

	ent.Remove()
	assert.False(t, ent.IsLinked())
	assert.False(t, f.eng.Registry(f.inv).Contains(ent))

	ent.Remove()
	assert.Equal(t, 0, f.eng.Registry(f.inv).Len())
}

func TestEntity_DuplicateIsIndependent(t *testing.T) {
	f := newFixture(t)
	ent := f.nodeRef(t, f.w1, geometry.Pt(20, 0))
	ent.parent = &PathLink{Inst: f.x1}

	dup := ent.Duplicate()
	require.True(t, dup.IsLinked())
	assert.NotEqual(t, ent.ID(), dup.ID())
	reg := f.eng.Registry(f.inv)
	assert.True(t, reg.Contains(ent))
	assert.True(t, reg.Contains(dup))

	dup.parent.X = 99
	assert.Equal(t, 0, ent.parent.X)

	ent.Remove()
	assert.False(t, reg.Contains(ent))
	assert.True(t, reg.Contains(dup))
}

func TestEntity_AddRedirectsToElectricalCell(t *testing.T) {
	f := newFixture(t)
	phys := f.lib.NewCell("inv", design.Physical)

	ent := f.eng.NewEntity(phys, KindNode, f.w1, geometry.Pt(20, 0))
	require.NoError(t, ent.Add())
	assert.Equal(t, f.inv, ent.Owner())
	assert.True(t, f.eng.Registry(f.inv).Contains(ent))
	assert.Nil(t, f.eng.Registry(phys))

	orphan := f.lib.NewCell("pads", design.Physical)
	ent = f.eng.NewEntity(orphan, KindNode, nil, geometry.Pt(0, 0))
	err := ent.Add()
	require.ErrorIs(t, err, ErrNoElectricalCell)
	assert.False(t, ent.IsLinked())
	assert.Equal(t, orphan, ent.Owner())
}

func TestEntity_DestroyPurgesUndo(t *testing.T) {
	f := newFixture(t)
	ent := f.nodeRef(t, f.w1, geometry.Pt(20, 0))

	ent.Destroy()
	assert.False(t, f.eng.Registry(f.inv).Contains(ent))
	require.Len(t, f.undo.changes, 1)
	assert.Equal(t, recordedChange{ent, false}, f.undo.changes[0])
}

func TestEntity_NodeNumber(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, 1, f.nodeRef(t, f.w1, geometry.Pt(20, 0)).NodeNumber())

	contact := f.eng.NewEntity(f.inv, KindNode, f.m1, geometry.Pt(60, 0))
	assert.Equal(t, 2, contact.NodeNumber())

	miss := f.eng.NewEntity(f.inv, KindNode, f.m1, geometry.Pt(1, 1))
	assert.Equal(t, -1, miss.NodeNumber())

	term := f.eng.NewTerminalEntity(f.inv, 1)
	assert.Equal(t, 2, term.NodeNumber())

	dev := f.eng.NewEntity(f.inv, KindDevice, f.m1, geometry.Pt(50, 0))
	assert.Equal(t, -1, dev.NodeNumber())
}

func TestEntity_TopLevelPoint(t *testing.T) {
	f := newFixture(t)
	ent := f.eng.NewEntity(f.top, KindNode, f.w1, geometry.Pt(20, 0))
	ent.parent = &PathLink{Inst: f.x1}

	assert.Equal(t, geometry.Pt(1020, 0), ent.TopLevelPoint())
}

func TestEntity_StringUpdateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ent := f.nodeRef(t, f.w1, geometry.Pt(20, 1))

	first := ent.StringUpdate(nil)
	p := ent.Point()
	second := ent.StringUpdate(nil)

	assert.Equal(t, "in", first)
	assert.Equal(t, first, second)
	assert.True(t, ent.Point().Within(p, DefaultDrift))
	assert.Equal(t, geometry.Pt(20, 1), ent.Point())
}

func TestEntity_StringUpdateAdoptsHierarchy(t *testing.T) {
	f := newFixture(t)
	ent := f.eng.NewEntity(f.top, KindDevice, nil, geometry.Pt(1050, 0))
	ent.target = f.x1
	require.NoError(t, ent.Add())

	assert.Equal(t, "m1.x1", ent.StringUpdate(nil))
	require.NotNil(t, ent.ParentPath())
	assert.Equal(t, f.x1, ent.ParentPath().Inst)
	assert.Equal(t, f.m1, ent.Target())
	assert.Equal(t, geometry.Pt(50, 0), ent.Point())
	assert.Equal(t, geometry.Pt(1050, 0), ent.TopLevelPoint())
}

func TestEntity_StaleKeepsLastName(t *testing.T) {
	f := newFixture(t)
	ent := f.nodeRef(t, f.w1, geometry.Pt(20, 0))
	require.Equal(t, "in", ent.StringUpdate(nil))

	f.inv.Remove(f.w1)
	assert.Equal(t, "in", ent.StringUpdate(nil))
	assert.Equal(t, f.w1, ent.Target())
}

func TestEntity_TerminalDropsPaths(t *testing.T) {
	f := newFixture(t)
	ent := f.eng.NewTerminalEntity(f.inv, 1)
	ent.parent = &PathLink{Inst: f.x1}

	assert.Equal(t, "out", ent.StringUpdate(nil))
	assert.Nil(t, ent.ParentPath())
	assert.True(t, ent.ProxyPath().Empty())
	assert.Equal(t, geometry.Pt(100, 0), ent.Point())
}

func TestEntity_SnapshotRestore(t *testing.T) {
	f := newFixture(t)
	ent := f.nodeRef(t, f.w1, geometry.Pt(20, 0))
	snap := ent.Snapshot()

	ent.clear()
	require.Equal(t, KindNone, ent.Kind())

	ent.Restore(snap)
	assert.Equal(t, KindNode, ent.Kind())
	assert.Equal(t, f.w1, ent.Target())
	assert.Equal(t, geometry.Pt(20, 0), ent.Point())
	assert.Equal(t, KindNode, snap.Kind())
	assert.Equal(t, geometry.Pt(20, 0), snap.Point())
}
