// Package render formats designs and their references for the terminal.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ddddddO/gtree"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"layout-hypertext/internal/cli/display"
	"layout-hypertext/internal/design"
	"layout-hypertext/internal/hypertext"
	"layout-hypertext/internal/project"
)

func newTable(buf *strings.Builder) *tablewriter.Table {
	return tablewriter.NewTable(buf,
		tablewriter.WithRowAutoWrap(tw.WrapBreak),
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.On, ShowHeader: tw.On}},
		})))
}

// Labels renders every label of the design with its references resolved.
// Labels holding references that cannot be resolved are shown in red.
func Labels(d *project.Design, mode hypertext.ConvMode, allowLong bool) (string, error) {
	labels := d.Labels()
	if len(labels) == 0 {
		return display.Gold("No labels found.\n"), nil
	}

	var buf strings.Builder
	table := newTable(&buf)
	table.Header(display.LightBlue("Cell"), "At", "Text", "Refs")

	data := make([][]any, 0, len(labels))
	for _, lbl := range labels {
		l := d.List(lbl)
		if l == nil {
			continue
		}
		text := l.String(mode, allowLong)
		if strings.Contains(text, hypertext.UnknownRef) {
			text = display.Red(text)
		}
		data = append(data, []any{
			display.LightBlue(lbl.Parent().Name),
			fmt.Sprintf("%d,%d", lbl.At.X, lbl.At.Y),
			text,
			fmt.Sprintf("%d", len(l.Refs())),
		})
	}

	if err := table.Bulk(data); err != nil {
		return "", fmt.Errorf("error formatting labels: %v", err)
	}
	if err := table.Render(); err != nil {
		return "", fmt.Errorf("error rendering labels: %v", err)
	}
	return buf.String(), nil
}

// Registry renders the references registered in every cell of lib.
func Registry(eng *hypertext.Engine, lib *design.Library) (string, error) {
	var buf strings.Builder
	table := newTable(&buf)
	table.Header(display.LightBlue("Cell"), "ID", "Kind", "At", "Path", "Name")

	var data [][]any
	for _, c := range lib.Cells() {
		for _, ent := range eng.Registry(c).Entities() {
			name := ent.StringUpdate(nil)
			kind := ent.Kind().String()
			if name == "" {
				name = display.Red(hypertext.UnknownRef)
				kind = display.Red(kind)
			}
			data = append(data, []any{
				display.LightBlue(c.Name),
				display.Grey(ent.ID().String()[:8]),
				kind,
				fmt.Sprintf("%d,%d", ent.Point().X, ent.Point().Y),
				pathString(ent),
				name,
			})
		}
	}
	if len(data) == 0 {
		return display.Gold("No references registered.\n"), nil
	}

	if err := table.Bulk(data); err != nil {
		return "", fmt.Errorf("error formatting references: %v", err)
	}
	if err := table.Render(); err != nil {
		return "", fmt.Errorf("error rendering references: %v", err)
	}
	return buf.String(), nil
}

// pathString lists the proxy then parent instances of a reference, outer
// to inner.
func pathString(ent *hypertext.Entity) string {
	var names []string
	for _, inst := range ent.ProxyPath().Links().Instances() {
		names = append(names, inst.Name)
	}
	for _, inst := range ent.ParentPath().Instances() {
		names = append(names, inst.Name)
	}
	if len(names) == 0 {
		return display.Grey("-")
	}
	return strings.Join(names, "/")
}

// Hierarchy renders the electrical instance tree below each top cell, with
// the references registered in every cell.
func Hierarchy(eng *hypertext.Engine, lib *design.Library) (string, error) {
	root := gtree.NewRoot(display.Tool)
	for _, top := range lib.Tops() {
		if !top.IsElectrical() {
			continue
		}
		node := root.Add(display.LightBlue(top.Name))
		addCell(eng, node, top, 0)
	}

	var buf strings.Builder
	if err := gtree.OutputFromRoot(&buf, root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func addCell(eng *hypertext.Engine, node *gtree.Node, cell *design.Cell, depth int) {
	if n := eng.Registry(cell).Len(); n > 0 {
		node.Add(display.Greyf("%d references", n))
	}
	if depth >= hypertext.MaxCallDepth {
		node.Add(display.Red("hierarchy too deep"))
		return
	}

	insts := cell.Instances()
	sort.Slice(insts, func(i, j int) bool { return insts[i].Name < insts[j].Name })
	for _, inst := range insts {
		if inst.Device {
			label := inst.Name
			if inst.Value != "" {
				label += " " + display.Grey(inst.Value)
			}
			node.Add(label)
			continue
		}
		if inst.Master == nil {
			continue
		}
		child := node.Add(fmt.Sprintf("%s %s", inst.Name, display.Grey("("+inst.Master.Name+")")))
		addCell(eng, child, inst.Master, depth+1)
	}
}
