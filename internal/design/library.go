package design

import (
	"errors"
	"sort"

	"layout-hypertext/pkg/geometry"
)

// ErrUnknownCell indicates a cell name that is not in the library.
var ErrUnknownCell = errors.New("unknown cell")

type cellKey struct {
	name string
	mode Mode
}

// Library holds every cell of a design.
type Library struct {
	cells  map[cellKey]*Cell
	nextID uint64
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{cells: make(map[cellKey]*Cell)}
}

// NewCell returns the cell with the given name and mode, creating it if it
// does not exist.
func (l *Library) NewCell(name string, mode Mode) *Cell {
	key := cellKey{name, mode}
	if c, ok := l.cells[key]; ok {
		return c
	}
	c := &Cell{
		Name:      name,
		Mode:      mode,
		NodeNames: make(map[int]string),
		lib:       l,
	}
	l.cells[key] = c
	return c
}

// Cell returns the named cell in the given mode, or nil.
func (l *Library) Cell(name string, mode Mode) *Cell {
	return l.cells[cellKey{name, mode}]
}

// ElectricalCell returns the electrical counterpart of the named cell, or nil.
func (l *Library) ElectricalCell(name string) *Cell {
	return l.Cell(name, Electrical)
}

// Cells returns every cell sorted by name, then mode.
func (l *Library) Cells() []*Cell {
	out := make([]*Cell, 0, len(l.cells))
	for _, c := range l.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Mode < out[j].Mode
	})
	return out
}

// InstancesOf returns every placed instance of master, in cell order.
func (l *Library) InstancesOf(master *Cell) []*Instance {
	var out []*Instance
	for _, c := range l.Cells() {
		for _, inst := range c.Instances() {
			if inst.Master == master {
				out = append(out, inst)
			}
		}
	}
	return out
}

// Ascend calls fn for cell and then for every cell that transitively
// contains an instance of it, each exactly once, nearest first. Iteration
// stops when fn returns false.
func (l *Library) Ascend(cell *Cell, fn func(*Cell) bool) {
	visited := map[*Cell]bool{cell: true}
	queue := []*Cell{cell}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !fn(cur) {
			return
		}
		for _, inst := range l.InstancesOf(cur) {
			p := inst.Parent()
			if p != nil && !visited[p] {
				visited[p] = true
				queue = append(queue, p)
			}
		}
	}
}

// FindInstance returns the first instance of master whose bounds, in its
// parent, overlap the square of half-size tol around at.
func (l *Library) FindInstance(master *Cell, at geometry.PointInt, tol int) *Instance {
	box := geometry.BoxAround(at, tol)
	for _, inst := range l.InstancesOf(master) {
		if inst.Bounds().Overlaps(box) {
			return inst
		}
	}
	return nil
}

// Tops returns the cells that are not instantiated anywhere.
func (l *Library) Tops() []*Cell {
	used := make(map[*Cell]bool)
	for _, c := range l.cells {
		for _, inst := range c.Instances() {
			used[inst.Master] = true
		}
	}
	var out []*Cell
	for _, c := range l.Cells() {
		if !used[c] {
			out = append(out, c)
		}
	}
	return out
}

func (l *Library) allocID() uint64 {
	l.nextID++
	return l.nextID
}
