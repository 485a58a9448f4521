package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"layout-hypertext/internal/app"
	"layout-hypertext/internal/cli/render"
	"layout-hypertext/internal/hypertext"
	"layout-hypertext/internal/prefs"
)

func parseConvMode(s string) (hypertext.ConvMode, error) {
	switch strings.ToLower(s) {
	case "plain", "":
		return hypertext.ConvPlain, nil
	case "expr":
		return hypertext.ConvExpr, nil
	case "ascii":
		return hypertext.ConvASCII, nil
	}
	return 0, fmt.Errorf("unknown display mode %q (plain | expr | ascii)", s)
}

func showCmd(opts *options) *cobra.Command {
	var mode string
	var long bool
	var watch time.Duration
	command := &cobra.Command{
		Use:   "show <design>",
		Short: "Show every label with its references resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := parseConvMode(mode)
			if err != nil {
				return err
			}
			show := func() error {
				s, err := opts.open(args[0])
				if err != nil {
					return err
				}
				out, err := render.Labels(s.Design, conv, long)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}
			if err := show(); err != nil || watch <= 0 {
				return err
			}

			w, err := app.NewWatcher(args[0], watch)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			opts.log.Info("watching design", "path", w.Path(), "interval", watch)
			return w.Run(ctx, show)
		},
	}
	command.Flags().StringVar(&mode, "mode", "plain", "Reference display (plain | expr | ascii)")
	command.Flags().BoolVar(&long, "long", false, "Show long text in full")
	command.Flags().DurationVar(&watch, "watch", 0, "Re-render whenever the design file changes, polling at this interval")
	return command
}

func refsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "refs <design>",
		Short: "List the references registered in each cell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(args[0])
			if err != nil {
				return err
			}
			out, err := render.Registry(s.Engine, s.Design.Lib)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func treeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <design>",
		Short: "Show the instance hierarchy with reference counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(args[0])
			if err != nil {
				return err
			}
			out, err := render.Hierarchy(s.Engine, s.Design.Lib)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func formatCmd(opts *options) *cobra.Command {
	var out string
	var exportLong bool
	command := &cobra.Command{
		Use:   "format <design>",
		Short: "Resolve every reference and rewrite the label tokens",
		Long: `Resolve every reference against the current geometry and rewrite the
label tokens. Proxy coordinates are replaced by the resolved instance
chain. Without --out the label texts are printed instead of saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(args[0])
			if err != nil {
				return err
			}
			long := s.ExportLongText()
			if cmd.Flags().Changed("export-long") {
				long = exportLong
			}

			s.Design.Resolve()
			s.Design.Sync(long)

			if out == "" {
				for _, lbl := range s.Design.Labels() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", lbl.Parent().Name, lbl.Text)
				}
				return nil
			}
			if err := s.Design.Save(out, long); err != nil {
				return err
			}
			opts.log.Info("design written", "path", out)
			return nil
		},
	}
	command.Flags().StringVarP(&out, "out", "o", "", "Write the design to this file")
	command.Flags().BoolVar(&exportLong, "export-long", false, "Write long text in full (default from "+prefs.KeyExportLongText+")")
	return command
}
