// Package cli implements the imglayout command-line interface.
//
// The commands plan image layouts for a hardware generation and inspect
// the results:
//   - plan: compute layouts from flags or a TOML request file
//   - zs: build the depth/stencil buffer records of a depth texture
//   - caps: print the capability table
//   - render: draw the level and slice placement of a layout as a PNG
//
// All commands take --gen to select the generation and --verbose (-v) for
// debug logging of the planner decisions.
package cli

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gogpu/imglayout"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// defaultGen is the generation used when --gen is not given.
const defaultGen = "gen7"

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	gen string
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		gen:    defaultGen,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "imglayout",
		Short: "imglayout plans GPU image memory layouts",
		Long: `imglayout computes the tiling, alignment, mip level placement and aux
surfaces of images on Gen6 to Gen8 class GPUs, and packs depth/stencil
buffer records from the result.`,
		Version:      imglayout.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			// route the library's slog output through the CLI logger
			imglayout.SetLogger(slog.New(c.Logger))
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.PersistentFlags().StringVar(&c.gen, "gen", defaultGen, "hardware generation (gen6, gen7, gen7.5, gen8)")

	root.AddCommand(c.planCommand())
	root.AddCommand(c.zsCommand())
	root.AddCommand(c.capsCommand())
	root.AddCommand(c.renderCommand())

	return root
}

// caps returns the capability table selected by --gen.
func (c *CLI) caps() (imglayout.Caps, error) {
	gen, err := imglayout.ParseGen(c.gen)
	if err != nil {
		return imglayout.Caps{}, err
	}
	return imglayout.CapsFor(gen)
}
