package hypertext

import (
	"strings"

	"layout-hypertext/internal/design"
)

// NamingMode selects how hierarchical names are assembled.
type NamingMode int

const (
	// NamingNative lists the leaf name first, then instance names inner to
	// outer.
	NamingNative NamingMode = iota

	// NamingWR lists instance names outer to inner, each carrying the x
	// subcircuit prefix, then the leaf name.
	NamingWR
)

func (m NamingMode) String() string {
	if m == NamingWR {
		return "wr"
	}
	return "native"
}

// ParseNamingMode maps "wr" or "native" to a mode.
func ParseNamingMode(s string) (NamingMode, bool) {
	switch strings.ToLower(s) {
	case "wr", "wrspice":
		return NamingWR, true
	case "native", "cdba", "":
		return NamingNative, true
	}
	return NamingNative, false
}

// NamingOptions is the hierarchical naming convention.
type NamingOptions struct {
	Mode      NamingMode
	Separator byte
}

// DefaultNaming returns native naming with "." as the separator.
func DefaultNaming() NamingOptions {
	return NamingOptions{Mode: NamingNative, Separator: '.'}
}

func (o NamingOptions) sep() string {
	if o.Separator == 0 {
		return "."
	}
	return string(o.Separator)
}

func (o NamingOptions) instanceName(inst *design.Instance) string {
	name := inst.Name
	if o.Mode == NamingWR && !strings.HasPrefix(name, "x") && !strings.HasPrefix(name, "X") {
		return "x" + name
	}
	return name
}

// qualify joins a leaf name with the names of the instances it is nested
// in, given outer to inner.
func (o NamingOptions) qualify(insts []*design.Instance, leaf string) string {
	if len(insts) == 0 {
		return leaf
	}
	names := make([]string, 0, len(insts)+1)
	if o.Mode == NamingWR {
		for _, inst := range insts {
			names = append(names, o.instanceName(inst))
		}
		names = append(names, leaf)
	} else {
		names = append(names, leaf)
		for i := len(insts) - 1; i >= 0; i-- {
			names = append(names, o.instanceName(insts[i]))
		}
	}
	return strings.Join(names, o.sep())
}

// HierarchicalDeviceName returns the fully qualified name of a device
// reached through path.
func HierarchicalDeviceName(path *PathLink, dev *design.Instance, opts NamingOptions) string {
	return opts.qualify(path.Instances(), dev.Name)
}

// HierarchicalNodeName returns the fully qualified name of node in cell,
// the cell reached through path. The node is first carried outward through
// every enclosing instance whose master brings it out to a terminal.
func HierarchicalNodeName(path *PathLink, cell *design.Cell, node int, namer NodeNamer, opts NamingOptions) string {
	if node == 0 {
		return "0"
	}
	insts := path.Instances()
	k := len(insts)
	for k > 0 {
		pn, ok := insts[k-1].ParentNode(node)
		if !ok {
			break
		}
		node = pn
		k--
		if node == 0 {
			return "0"
		}
	}

	at := cell
	if k < len(insts) {
		at = insts[k].Parent()
	}
	name, global := namer.CanonicalNodeName(at, node)
	if global {
		return name
	}
	return opts.qualify(insts[:k], name)
}

// ExpandBranchString expands the branch template of a device. <v> becomes
// the voltage across the first two contacts, <value> the device value and
// <name> the hierarchical device name. Other text is copied.
func ExpandBranchString(path *PathLink, dev *design.Instance, namer NodeNamer, opts NamingOptions) string {
	tmpl := "<name>#branch"
	if dev.HasBranchTemplate {
		tmpl = dev.BranchTemplate
	}

	var sb strings.Builder
	for i := 0; i < len(tmpl); {
		if tmpl[i] == '<' {
			rest := tmpl[i:]
			switch {
			case strings.HasPrefix(rest, "<v>"):
				sb.WriteString(voltageExpr(path, dev, namer, opts))
				i += len("<v>")
				continue
			case strings.HasPrefix(rest, "<value>"):
				sb.WriteString(dev.Value)
				i += len("<value>")
				continue
			case strings.HasPrefix(rest, "<name>"):
				sb.WriteString(HierarchicalDeviceName(path, dev, opts))
				i += len("<name>")
				continue
			}
		}
		sb.WriteByte(tmpl[i])
		i++
	}
	return sb.String()
}

func voltageExpr(path *PathLink, dev *design.Instance, namer NodeNamer, opts NamingOptions) string {
	nodeName := func(i int) string {
		if i >= len(dev.Contacts) {
			return "0"
		}
		return HierarchicalNodeName(path, dev.Parent(), dev.Contacts[i].Node, namer, opts)
	}
	n1, n2 := nodeName(0), nodeName(1)
	switch {
	case n1 == "0" && n2 == "0":
		return "0"
	case n1 == "0":
		return "-v(" + n2 + ")"
	case n2 == "0":
		return "v(" + n1 + ")"
	}
	return "(v(" + n1 + ")-v(" + n2 + "))"
}
