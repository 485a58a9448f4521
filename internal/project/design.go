package project

import (
	"fmt"
	"maps"
	"slices"

	"layout-hypertext/internal/design"
	"layout-hypertext/internal/hypertext"
	"layout-hypertext/internal/netlist"
	"layout-hypertext/pkg/geometry"
)

// Design is a loaded design: the cell library built from a file and the
// reference lists parsed from its label texts.
type Design struct {
	File   *File
	Lib    *design.Library
	Namer  *netlist.Namer
	labels []*design.Label
	lists  map[*design.Label]*hypertext.List
	eng    *hypertext.Engine
}

// Build creates the cell library described by the file.
func (p *File) Build() (*Design, error) {
	d := &Design{
		File:  p,
		Lib:   design.NewLibrary(),
		Namer: netlist.NewNamer(p.Globals...),
		lists: make(map[*design.Label]*hypertext.List),
	}

	cells := make([]*design.Cell, len(p.Cells))
	for i, cd := range p.Cells {
		mode, err := parseMode(cd.Mode)
		if err != nil {
			return nil, fmt.Errorf("cell %s: %w", cd.Name, err)
		}
		c := d.Lib.NewCell(cd.Name, mode)
		for _, t := range cd.Terminals {
			c.AddTerminal(t.Name, geometry.Pt(t.X, t.Y), t.Node)
		}
		maps.Copy(c.NodeNames, cd.NodeNames)
		cells[i] = c
	}

	for i, cd := range p.Cells {
		if err := d.fill(cells[i], &cd); err != nil {
			return nil, fmt.Errorf("cell %s: %w", cd.Name, err)
		}
	}
	return d, nil
}

func (d *Design) fill(c *design.Cell, cd *CellData) error {
	for _, w := range cd.Wires {
		c.Add(design.NewWire(w.Layer, w.Width, w.Active, w.Node, w.Points...))
	}

	for _, id := range cd.Instances {
		var master *design.Cell
		if id.Master != "" {
			master = d.Lib.Cell(id.Master, c.Mode)
			if master == nil {
				return fmt.Errorf("instance %s: %w: %s", id.Name, design.ErrUnknownCell, id.Master)
			}
		}

		var inst *design.Instance
		if id.Device {
			inst = &design.Instance{
				Name:      id.Name,
				Master:    master,
				Placement: id.placement(),
				Device:    true,
			}
			for _, ct := range id.Contacts {
				inst.Contacts = append(inst.Contacts, design.Contact{
					Name: ct.Name,
					At:   geometry.Pt(ct.X, ct.Y),
					Node: ct.Node,
				})
			}
			c.Add(inst)
		} else {
			if master == nil {
				return fmt.Errorf("instance %s: subcircuit without master", id.Name)
			}
			inst = c.Place(id.Name, master, id.placement())
			for j := range inst.Contacts {
				if j < len(id.Nodes) {
					inst.Contacts[j].Node = id.Nodes[j]
				}
			}
		}

		if id.Branch != nil {
			inst.Branch = &design.BranchAnchor{
				At:  geometry.Pt(id.Branch.X, id.Branch.Y),
				Rot: geometry.Pt(id.Branch.RotX, id.Branch.RotY),
			}
		}
		inst.Value = id.Value
		if id.BranchTemplate != nil {
			inst.BranchTemplate = *id.BranchTemplate
			inst.HasBranchTemplate = true
		}
		if id.Box != nil {
			inst.Box = *id.Box
		}
	}

	for _, ld := range cd.Labels {
		lbl := &design.Label{Text: ld.Text, At: geometry.Pt(ld.X, ld.Y), Width: ld.Width, Height: ld.Height}
		c.Add(lbl)
		d.labels = append(d.labels, lbl)
	}

	for _, box := range cd.Outlines {
		c.Add(&design.Outline{Box: box})
	}
	return nil
}

// Attach parses every label text into a reference list registered with eng.
// Long text lists are tracked so their duplicates share edits.
func (d *Design) Attach(eng *hypertext.Engine) {
	d.eng = eng
	for _, lbl := range d.labels {
		if old := d.lists[lbl]; old != nil {
			old.Destroy()
		}
		l := eng.Parse(lbl.Parent(), lbl.Text)
		if l.IsLongText() {
			eng.Tracker().Register(l, nil, lbl)
		}
		d.lists[lbl] = l
	}
}

// CopyLabel places a copy of lbl at p in the same cell. The copy's list is
// a duplicate of the original, so long text stays shared.
func (d *Design) CopyLabel(lbl *design.Label, p geometry.PointInt) *design.Label {
	cp := &design.Label{Text: lbl.Text, At: p, Width: lbl.Width, Height: lbl.Height}
	lbl.Parent().Add(cp)
	d.labels = append(d.labels, cp)
	if l := d.lists[lbl]; l != nil {
		d.lists[cp] = l.Duplicate()
	}
	return cp
}

// EditLongText replaces the long text of a label and of every list tracked
// with it. It returns the number of lists updated.
func (d *Design) EditLongText(lbl *design.Label, text string) int {
	l := d.lists[lbl]
	if l == nil || d.eng == nil {
		return 0
	}
	tok, ok := d.eng.Tracker().TokenOf(l)
	if !ok {
		l.SetLongText(text)
		return 1
	}
	return d.eng.Tracker().PropagateEdit(tok, text)
}

// Resolve re-resolves every reference against the current geometry,
// completing pending proxy fixups.
func (d *Design) Resolve() {
	for _, lbl := range d.labels {
		if l := d.lists[lbl]; l != nil {
			l.String(hypertext.ConvPlain, false)
		}
	}
}

// Labels returns the design labels in file order.
func (d *Design) Labels() []*design.Label {
	return slices.Clone(d.labels)
}

// List returns the reference list parsed from a label, or nil.
func (d *Design) List(lbl *design.Label) *hypertext.List {
	return d.lists[lbl]
}

// SetList replaces the reference list of a label, as after an edit that
// rebuilt the label object.
func (d *Design) SetList(old, lbl *design.Label, l *hypertext.List) {
	if i := slices.Index(d.labels, old); i >= 0 {
		d.labels[i] = lbl
	} else {
		d.labels = append(d.labels, lbl)
	}
	delete(d.lists, old)
	d.lists[lbl] = l
}

// Sync writes the token form of every reference list back into its label.
func (d *Design) Sync(exportLong bool) {
	for _, lbl := range d.labels {
		if l := d.lists[lbl]; l != nil {
			lbl.Text = l.Format(exportLong)
		}
	}
}

// Capture rebuilds the file cell data from the library.
func (d *Design) Capture() {
	cells := d.Lib.Cells()
	d.File.Cells = make([]CellData, 0, len(cells))
	for _, c := range cells {
		d.File.Cells = append(d.File.Cells, captureCell(c))
	}
	d.File.Globals = d.Namer.Globals()
}

// Save syncs label texts, captures the library and writes the file.
func (d *Design) Save(path string, exportLong bool) error {
	d.Sync(exportLong)
	d.Capture()
	return d.File.Save(path)
}

func captureCell(c *design.Cell) CellData {
	cd := CellData{Name: c.Name, Mode: c.Mode.String()}
	for _, t := range c.Terminals {
		cd.Terminals = append(cd.Terminals, TerminalData{Name: t.Name, X: t.At.X, Y: t.At.Y, Node: t.Node})
	}
	if len(c.NodeNames) > 0 {
		cd.NodeNames = maps.Clone(c.NodeNames)
	}

	for _, o := range c.Objects() {
		switch o := o.(type) {
		case *design.Wire:
			cd.Wires = append(cd.Wires, WireData{
				Layer:  o.Layer,
				Width:  o.Width,
				Active: o.Active,
				Node:   o.Node,
				Points: slices.Clone(o.Points),
			})
		case *design.Instance:
			cd.Instances = append(cd.Instances, captureInstance(o))
		case *design.Label:
			cd.Labels = append(cd.Labels, LabelData{
				Text:   o.Text,
				X:      o.At.X,
				Y:      o.At.Y,
				Width:  o.Width,
				Height: o.Height,
			})
		case *design.Outline:
			cd.Outlines = append(cd.Outlines, o.Box)
		}
	}
	return cd
}

func captureInstance(inst *design.Instance) InstanceData {
	id := InstanceData{Name: inst.Name, Device: inst.Device, Value: inst.Value}
	if inst.Master != nil {
		id.Master = inst.Master.Name
	}
	id.X, id.Y, id.Rot, id.Mirror = decompose(inst.Placement)
	if inst.Device {
		for _, ct := range inst.Contacts {
			id.Contacts = append(id.Contacts, ContactData{Name: ct.Name, X: ct.At.X, Y: ct.At.Y, Node: ct.Node})
		}
	} else {
		for _, ct := range inst.Contacts {
			id.Nodes = append(id.Nodes, ct.Node)
		}
	}
	if inst.Branch != nil {
		id.Branch = &BranchData{
			X:    inst.Branch.At.X,
			Y:    inst.Branch.At.Y,
			RotX: inst.Branch.Rot.X,
			RotY: inst.Branch.Rot.Y,
		}
	}
	if inst.HasBranchTemplate {
		tmpl := inst.BranchTemplate
		id.BranchTemplate = &tmpl
	}
	if inst.Box.Width > 0 || inst.Box.Height > 0 {
		box := inst.Box
		id.Box = &box
	}
	return id
}
