// Package project provides design file handling and persistence.
package project

import (
	"errors"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"layout-hypertext/internal/design"
	"layout-hypertext/pkg/geometry"
)

// FormatVersion is the current design file version.
const FormatVersion = 1

// ErrBadMode indicates a cell mode that is neither physical nor electrical.
var ErrBadMode = errors.New("unknown cell mode")

// File represents a design file (.hyref.json).
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Globals are node names that are never qualified by the hierarchy.
	Globals []string `json:"globals,omitempty"`

	Cells []CellData `json:"cells"`

	// User settings
	Settings Settings `json:"settings,omitempty"`
}

// Settings holds per-design naming and export options. Empty values defer
// to the preferences.
type Settings struct {
	Naming         string `json:"naming,omitempty"`
	Separator      string `json:"separator,omitempty"`
	ExportLongText *bool  `json:"export_long_text,omitempty"`
}

// CellData is one cell view.
type CellData struct {
	Name      string             `json:"name"`
	Mode      string             `json:"mode"`
	Terminals []TerminalData     `json:"terminals,omitempty"`
	NodeNames map[int]string     `json:"node_names,omitempty"`
	Wires     []WireData         `json:"wires,omitempty"`
	Instances []InstanceData     `json:"instances,omitempty"`
	Labels    []LabelData        `json:"labels,omitempty"`
	Outlines  []geometry.RectInt `json:"outlines,omitempty"`
}

// TerminalData is a cell terminal.
type TerminalData struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Node int    `json:"node"`
}

// WireData is a wire path.
type WireData struct {
	Layer  string              `json:"layer"`
	Width  int                 `json:"width"`
	Active bool                `json:"active,omitempty"`
	Node   int                 `json:"node,omitempty"`
	Points []geometry.PointInt `json:"points"`
}

// InstanceData is a device or subcircuit placement. Rot counts
// counter-clockwise quarter turns applied after the optional mirror.
type InstanceData struct {
	Name   string `json:"name"`
	Master string `json:"master,omitempty"`
	Device bool   `json:"device,omitempty"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Rot    int    `json:"rot,omitempty"`
	Mirror bool   `json:"mirror,omitempty"`

	// Contacts lists device connection points. Subcircuit contacts are
	// derived from the master terminals, with Nodes giving their parent
	// node numbers by terminal index.
	Contacts []ContactData `json:"contacts,omitempty"`
	Nodes    []int         `json:"nodes,omitempty"`

	Branch         *BranchData       `json:"branch,omitempty"`
	Value          string            `json:"value,omitempty"`
	BranchTemplate *string           `json:"branch_template,omitempty"`
	Box            *geometry.RectInt `json:"box,omitempty"`
}

// ContactData is a device connection point.
type ContactData struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Node int    `json:"node"`
}

// BranchData is a device branch anchor with its current direction.
type BranchData struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	RotX int `json:"rot_x"`
	RotY int `json:"rot_y"`
}

// LabelData is a label whose text may carry reference tokens.
type LabelData struct {
	Text   string `json:"text"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// New creates an empty design file.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  FormatVersion,
		Name:     name,
		Created:  now,
		Modified: now,
	}
}

// Load loads a design from a file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a design file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode design: %w", err)
	}
	return &f, nil
}

// Save writes the design file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func parseMode(s string) (design.Mode, error) {
	switch s {
	case "electrical", "":
		return design.Electrical, nil
	case "physical":
		return design.Physical, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadMode, s)
}

// placement builds the instance transform: mirror, then rotate, then
// translate.
func (d *InstanceData) placement() geometry.AffineTransform {
	t := geometry.Quarter(d.Rot)
	if d.Mirror {
		t = t.Compose(geometry.MirrorX())
	}
	return geometry.Translation(float64(d.X), float64(d.Y)).Compose(t)
}

// decompose splits a Manhattan transform into offset, quarter turns and
// mirror. Other rotations are snapped to the nearest quarter turn.
func decompose(t geometry.AffineTransform) (x, y, rot int, mirror bool) {
	p := geometry.NewPoint2D(t.TX, t.TY).Round()
	x, y = p.X, p.Y
	// The mirror only flips the second column, so the first column is the
	// rotation's.
	mirror = t.A*t.D-t.B*t.C < 0
	switch {
	case t.A > 0.5:
		rot = 0
	case t.C > 0.5:
		rot = 1
	case t.A < -0.5:
		rot = 2
	default:
		rot = 3
	}
	return x, y, rot, mirror
}
