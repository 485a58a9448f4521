// Package netlist provides canonical electrical node naming.
package netlist

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"layout-hypertext/internal/design"
)

// GroundName is the name of the reference node, node 0.
const GroundName = "0"

// autoNetRe matches names that are bare node numbers like "12".
var autoNetRe = regexp.MustCompile(`^\d+$`)

// netNamePriority returns a priority score for a node name.
// Higher is better: 0=numeric, 1=terminal name, 2=user name.
func netNamePriority(name string, fromTerminal bool) int {
	if autoNetRe.MatchString(name) {
		return 0
	}
	if fromTerminal {
		return 1
	}
	return 2
}

// BetterNetName returns the higher-priority name between a and b, where the
// terminal flags tell whether each name came from a cell terminal.
// At equal priority, prefers the shorter name, then the lexically smaller.
func BetterNetName(a string, aTerm bool, b string, bTerm bool) string {
	pa := netNamePriority(a, aTerm)
	pb := netNamePriority(b, bTerm)
	if pa > pb {
		return a
	}
	if pb > pa {
		return b
	}
	if len(a) != len(b) {
		if len(a) < len(b) {
			return a
		}
		return b
	}
	if a <= b {
		return a
	}
	return b
}

// Namer resolves node numbers to canonical names. Names listed as global,
// and names ending in "!", are process-wide and are never qualified by the
// instance hierarchy.
type Namer struct {
	globals map[string]bool
}

// NewNamer creates a Namer with the given global node names.
func NewNamer(globals ...string) *Namer {
	n := &Namer{globals: make(map[string]bool)}
	for _, g := range globals {
		n.globals[strings.ToLower(g)] = true
	}
	return n
}

// Globals returns the configured global names, sorted.
func (n *Namer) Globals() []string {
	out := make([]string, 0, len(n.globals))
	for g := range n.globals {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// CanonicalNodeName returns the name of node in cell and whether it is a
// global name.
func (n *Namer) CanonicalNodeName(cell *design.Cell, node int) (string, bool) {
	if node == 0 {
		return GroundName, false
	}
	name := ""
	term := false
	if cell != nil {
		if user, ok := cell.NodeNames[node]; ok && user != "" {
			name = user
		}
		for _, t := range cell.Terminals {
			if t.Node != node || t.Name == "" {
				continue
			}
			if name == "" {
				name, term = t.Name, true
				continue
			}
			if better := BetterNetName(name, term, t.Name, true); better != name {
				name, term = better, true
			}
		}
	}
	if name == "" {
		return strconv.Itoa(node), false
	}
	if strings.HasSuffix(name, "!") {
		return strings.TrimSuffix(name, "!"), true
	}
	return name, n.globals[strings.ToLower(name)]
}
