// Package cli implements the hyref command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"layout-hypertext/internal/app"
	"layout-hypertext/internal/cli/display"
	"layout-hypertext/internal/hypertext"
	"layout-hypertext/internal/logging"
	"layout-hypertext/internal/prefs"
	"layout-hypertext/internal/version"
)

// options are the persistent flags shared by every command.
type options struct {
	prefsPath string
	naming    string
	separator string
	logLevel  string
	logFile   string
	noColor   bool

	prefs *prefs.Prefs
	log   *slog.Logger
}

// open loads a design into an edit session. Naming flags override both the
// preferences and the design file settings.
func (o *options) open(path string) (*app.Session, error) {
	return app.Open(path, o.prefs, o.log, app.WithNaming(o.naming, o.separator))
}

// setup configures logging, loads preferences and validates the naming
// flags.
func (o *options) setup(cmd *cobra.Command) error {
	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	o.log = logging.Setup(logging.Config{
		Level:    level,
		Console:  cmd.ErrOrStderr(),
		FilePath: o.logFile,
	})
	if o.noColor {
		display.Disable()
	}

	if o.prefsPath != "" {
		o.prefs = prefs.LoadFile(o.prefsPath)
	} else {
		o.prefs = prefs.Load()
	}
	if o.naming != "" {
		if _, ok := hypertext.ParseNamingMode(o.naming); !ok {
			return fmt.Errorf("unknown naming mode %q (native | wr)", o.naming)
		}
	}
	if o.separator != "" {
		if len(o.separator) != 1 {
			return fmt.Errorf("separator must be one character, got %q", o.separator)
		}
	}
	o.log.Debug("preferences loaded", "path", o.prefs.Path())
	return nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:     display.Tool,
		Short:   display.Tool + " inspects and edits hypertext references in layout designs",
		Long:    display.Tool + ": " + display.Green("resolve, rename and rebind the node, branch and device references carried by layout labels"),
		Version: version.String(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	addPersistentFlags(rootCmd.PersistentFlags(), opts)

	rootCmd.AddCommand(
		showCmd(opts),
		refsCmd(opts),
		treeCmd(opts),
		formatCmd(opts),
		moveCmd(opts),
		deleteCmd(opts),
	)
	return rootCmd
}

func addPersistentFlags(fs *pflag.FlagSet, opts *options) {
	fs.StringVar(&opts.prefsPath, "prefs", "", "Preferences file (default "+prefs.DefaultPath()+")")
	fs.StringVar(&opts.naming, "naming", "", "Hierarchical naming convention (native | wr)")
	fs.StringVar(&opts.separator, "sep", "", "Hierarchy separator character")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Console log level (debug | info | warn | error)")
	fs.StringVar(&opts.logFile, "log-file", "", "Also write debug logs to this file")
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
}

// Execute runs the command line and exits on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, display.Red("Error: "+err.Error()))
		os.Exit(1)
	}
}
