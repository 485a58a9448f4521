package project

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layout-hypertext/internal/design"
	"layout-hypertext/internal/hypertext"
	"layout-hypertext/pkg/geometry"
)

const invDesign = `{
  "version": 1,
  "name": "inv",
  "globals": ["vdd"],
  "cells": [
    {
      "name": "top",
      "mode": "electrical",
      "node_names": {"7": "vin"},
      "wires": [{"layer": "metal1", "width": 4, "active": true, "node": 7, "points": [{"x": 800, "y": 0}, {"x": 1000, "y": 0}]}],
      "instances": [{"name": "x1", "master": "inv", "x": 1000, "y": 0, "nodes": [7, 8]}],
      "labels": [{"text": "probe (||1:900 0||)", "x": 900, "y": 20, "width": 80, "height": 10}]
    },
    {
      "name": "inv",
      "mode": "electrical",
      "terminals": [{"name": "in", "x": 0, "y": 0, "node": 1}, {"name": "out", "x": 100, "y": 0, "node": 2}],
      "wires": [{"layer": "metal1", "width": 4, "active": true, "node": 1, "points": [{"x": 0, "y": 0}, {"x": 40, "y": 0}]}],
      "instances": [{
        "name": "m1", "device": true, "value": "nmos", "x": 50, "y": 0,
        "contacts": [{"name": "s", "x": 50, "y": -20, "node": 0}, {"name": "d", "x": 60, "y": 0, "node": 2}],
        "branch": {"x": 50, "y": 10, "rot_x": 0, "rot_y": 1},
        "box": {"x": 40, "y": -20, "width": 20, "height": 40}
      }],
      "labels": [{"text": "V=(||1:20 0||) I=(||2:50 10||)", "x": 0, "y": 50, "width": 100, "height": 10}],
      "outlines": [{"x": -10, "y": -30, "width": 130, "height": 60}]
    }
  ]
}`

func build(t *testing.T) *Design {
	t.Helper()
	f, err := Parse([]byte(invDesign))
	require.NoError(t, err)
	d, err := f.Build()
	require.NoError(t, err)
	return d
}

func TestBuild_Hierarchy(t *testing.T) {
	d := build(t)

	top := d.Lib.ElectricalCell("top")
	inv := d.Lib.ElectricalCell("inv")
	require.NotNil(t, top)
	require.NotNil(t, inv)

	insts := top.Instances()
	require.Len(t, insts, 1)
	x1 := insts[0]
	assert.Equal(t, inv, x1.Master)
	require.Len(t, x1.Contacts, 2)
	assert.Equal(t, 7, x1.Contacts[0].Node)
	assert.Equal(t, 8, x1.Contacts[1].Node)
	assert.Equal(t, geometry.Pt(1000, 0), x1.Contacts[0].At)

	m1 := inv.Instances()[0]
	assert.True(t, m1.Device)
	require.NotNil(t, m1.Branch)
	assert.Equal(t, geometry.Pt(0, 1), m1.Branch.Rot)
	assert.Equal(t, geometry.RectInt{X: 40, Y: -20, Width: 20, Height: 40}, m1.Bounds())

	assert.Equal(t, "vin", top.NodeNames[7])
	assert.Equal(t, []string{"vdd"}, d.Namer.Globals())
	assert.Equal(t, []*design.Cell{top}, d.Lib.Tops())
}

func TestBuild_UnknownMaster(t *testing.T) {
	f := New("broken")
	f.Cells = []CellData{{
		Name:      "top",
		Mode:      "electrical",
		Instances: []InstanceData{{Name: "x1", Master: "missing"}},
	}}
	_, err := f.Build()
	assert.ErrorIs(t, err, design.ErrUnknownCell)
}

func TestBuild_BadMode(t *testing.T) {
	f := New("broken")
	f.Cells = []CellData{{Name: "top", Mode: "schematic"}}
	_, err := f.Build()
	assert.ErrorIs(t, err, ErrBadMode)
}

func TestDesign_AttachResolvesLabels(t *testing.T) {
	d := build(t)
	eng := hypertext.NewEngine(d.Lib, hypertext.WithNamer(d.Namer))
	d.Attach(eng)

	labels := d.Labels()
	require.Len(t, labels, 2)

	probe := d.List(labels[0])
	require.NotNil(t, probe)
	assert.Equal(t, "probe vin", probe.String(hypertext.ConvPlain, false))

	inner := d.List(labels[1])
	require.NotNil(t, inner)
	assert.Equal(t, "V=in I=m1#branch", inner.String(hypertext.ConvPlain, false))
	assert.Equal(t, 2, eng.Registry(d.Lib.ElectricalCell("inv")).Len())
}

func TestDesign_SaveReload(t *testing.T) {
	d := build(t)
	eng := hypertext.NewEngine(d.Lib, hypertext.WithNamer(d.Namer))
	d.Attach(eng)

	path := filepath.Join(t.TempDir(), "inv.hyref.json")
	require.NoError(t, d.Save(path, true))

	f, err := Load(path)
	require.NoError(t, err)
	require.Len(t, f.Cells, 2)

	reloaded, err := f.Build()
	require.NoError(t, err)
	eng2 := hypertext.NewEngine(reloaded.Lib, hypertext.WithNamer(reloaded.Namer))
	reloaded.Attach(eng2)

	want := make([]string, 0)
	for _, lbl := range d.Labels() {
		want = append(want, d.List(lbl).String(hypertext.ConvPlain, false))
	}
	got := make([]string, 0)
	for _, lbl := range reloaded.Labels() {
		got = append(got, reloaded.List(lbl).String(hypertext.ConvPlain, false))
	}
	assert.ElementsMatch(t, want, got)

	m1 := reloaded.Lib.ElectricalCell("inv").Instances()[0]
	assert.Equal(t, "nmos", m1.Value)
	assert.Len(t, m1.Contacts, 2)
}

func TestDesign_SyncOmitsLongText(t *testing.T) {
	f := New("notes")
	f.Cells = []CellData{{
		Name:   "top",
		Mode:   "electrical",
		Labels: []LabelData{{Text: "(||text||)secret(||sc||) notes"}},
	}}
	d, err := f.Build()
	require.NoError(t, err)
	d.Attach(hypertext.NewEngine(d.Lib))

	lbl := d.Labels()[0]
	d.Sync(false)
	assert.Equal(t, "(||text||)"+hypertext.LongTextOmitted, lbl.Text)
	d.Sync(true)
	assert.Equal(t, "(||text||)secret(||sc||) notes", lbl.Text)
}

func TestPlacement_Decompose(t *testing.T) {
	tests := []struct {
		name string
		data InstanceData
	}{
		{"identity", InstanceData{X: 0, Y: 0}},
		{"translated", InstanceData{X: 30, Y: -40}},
		{"quarter", InstanceData{X: 5, Y: 5, Rot: 1}},
		{"half", InstanceData{X: -5, Y: 7, Rot: 2}},
		{"three quarters", InstanceData{Rot: 3}},
		{"mirrored", InstanceData{X: 1, Y: 2, Mirror: true}},
		{"mirrored quarter", InstanceData{Rot: 1, Mirror: true}},
		{"mirrored three quarters", InstanceData{X: 9, Rot: 3, Mirror: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y, rot, mirror := decompose(tc.data.placement())
			assert.Equal(t, tc.data.X, x)
			assert.Equal(t, tc.data.Y, y)
			assert.Equal(t, tc.data.Rot, rot)
			assert.Equal(t, tc.data.Mirror, mirror)
		})
	}
}

func TestDesign_LongTextSharedByCopies(t *testing.T) {
	f := New("notes")
	f.Cells = []CellData{{
		Name:   "top",
		Mode:   "electrical",
		Labels: []LabelData{{Text: "(||text||)first draft", Width: 40, Height: 10}},
	}}
	d, err := f.Build()
	require.NoError(t, err)
	eng := hypertext.NewEngine(d.Lib)
	d.Attach(eng)

	orig := d.Labels()[0]
	cp := d.CopyLabel(orig, geometry.Pt(0, 100))
	require.Len(t, d.Labels(), 2)
	assert.Equal(t, orig.Parent(), cp.Parent())

	tok, ok := eng.Tracker().TokenOf(d.List(orig))
	require.True(t, ok)
	assert.Len(t, eng.Tracker().Members(tok), 2)

	assert.Equal(t, 2, d.EditLongText(cp, "final"))
	assert.Equal(t, "final", d.List(orig).LongText())
	assert.Equal(t, "final", d.List(cp).LongText())

	d.Sync(true)
	assert.Equal(t, "(||text||)final", orig.Text)
	assert.Equal(t, "(||text||)final", cp.Text)
}
