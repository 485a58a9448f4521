package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"layout-hypertext/internal/app"
	"layout-hypertext/internal/design"
	"layout-hypertext/pkg/geometry"
)

// ErrNothingAt is returned when no object lies at the given point.
var ErrNothingAt = errors.New("no object at point")

// editFlags select one object and where the edited design goes.
type editFlags struct {
	cell string
	at   string
	out  string
}

func (f *editFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.cell, "cell", "", "Cell holding the object")
	cmd.Flags().StringVar(&f.at, "at", "", "Point on the object, as x,y")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Write the edited design here instead of in place")
	_ = cmd.MarkFlagRequired("cell")
	_ = cmd.MarkFlagRequired("at")
}

// pick opens the design and finds the selected object.
func (f *editFlags) pick(opts *options, path string) (*app.Session, design.Object, geometry.PointInt, error) {
	at, err := parsePoint(f.at)
	if err != nil {
		return nil, nil, at, err
	}
	s, err := opts.open(path)
	if err != nil {
		return nil, nil, at, err
	}
	cell := s.Design.Lib.ElectricalCell(f.cell)
	if cell == nil {
		cell = s.Design.Lib.Cell(f.cell, design.Physical)
	}
	if cell == nil {
		return nil, nil, at, fmt.Errorf("%w: %s", design.ErrUnknownCell, f.cell)
	}
	obj := objectAt(cell, at, 2)
	if obj == nil {
		return nil, nil, at, fmt.Errorf("%w %d,%d in %s", ErrNothingAt, at.X, at.Y, cell.Name)
	}
	return s, obj, at, nil
}

func (f *editFlags) save(s *app.Session) error {
	return s.Save(f.out)
}

// objectAt returns the topmost object at p, preferring wires hit along
// their width.
func objectAt(cell *design.Cell, p geometry.PointInt, tol int) design.Object {
	objs := cell.Query(geometry.BoxAround(p, tol),
		design.KindWire, design.KindInstance, design.KindLabel)
	for i := len(objs) - 1; i >= 0; i-- {
		if w, ok := objs[i].(*design.Wire); ok && w.HitTest(p, float64(tol)) {
			return w
		}
	}
	for i := len(objs) - 1; i >= 0; i-- {
		if _, ok := objs[i].(*design.Wire); !ok {
			return objs[i]
		}
	}
	return nil
}

func parsePoint(s string) (geometry.PointInt, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.PointInt{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return geometry.PointInt{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return geometry.PointInt{}, fmt.Errorf("point %q: %w", s, err)
	}
	return geometry.Pt(x, y), nil
}

func moveCmd(opts *options) *cobra.Command {
	var f editFlags
	var by string
	var rot int
	command := &cobra.Command{
		Use:   "move <design>",
		Short: "Move an object and rebind the references to it",
		Long: `Move the object at --at by --by, after turning it --rot quarter turns
counter-clockwise about --at. References bound to the object, or reached
through it when it is an instance, follow the move.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parsePoint(by)
			if err != nil {
				return err
			}
			s, obj, at, err := f.pick(opts, args[0])
			if err != nil {
				return err
			}
			t := geometry.Translation(float64(at.X+d.X), float64(at.Y+d.Y)).
				Compose(geometry.Quarter(rot)).
				Compose(geometry.Translation(float64(-at.X), float64(-at.Y)))
			moved, err := s.Move(obj, t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %s %d\n", moved.ObjectKind(), moved.ObjectID())
			return f.save(s)
		},
	}
	f.register(command)
	command.Flags().StringVar(&by, "by", "0,0", "Offset, as dx,dy")
	command.Flags().IntVar(&rot, "rot", 0, "Quarter turns counter-clockwise about --at")
	return command
}

func deleteCmd(opts *options) *cobra.Command {
	var f editFlags
	command := &cobra.Command{
		Use:   "delete <design>",
		Short: "Delete an object and clear the references to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, obj, _, err := f.pick(opts, args[0])
			if err != nil {
				return err
			}
			if err := s.Delete(obj); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %d\n", obj.ObjectKind(), obj.ObjectID())
			return f.save(s)
		},
	}
	f.register(command)
	return command
}
