// Package hypertext binds label text to live electrical entities in a cell
// hierarchy: nodes, branches, devices, cells and labels. References keep
// tracking their targets as geometry is edited and persist as ASCII tokens
// embedded in ordinary text.
package hypertext

import "errors"

var (
	// ErrNoElectricalCell indicates that an owner cell has no electrical
	// counterpart to register a reference in.
	ErrNoElectricalCell = errors.New("no electrical cell for reference owner")

	// ErrNoOwner indicates a reference without an owner cell.
	ErrNoOwner = errors.New("reference has no owner cell")

	// ErrNoReference indicates that nothing referenceable was found.
	ErrNoReference = errors.New("no reference found")

	// ErrBadProxy indicates a proxy instance chain that does not lead from
	// the window cell down through each instance's master.
	ErrBadProxy = errors.New("proxy instances do not form a chain")
)
