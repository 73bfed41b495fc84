package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/blokdust/pkg/errors"
	"github.com/matzehuels/blokdust/pkg/render/dot"
	"github.com/matzehuels/blokdust/pkg/savefile"
)

// Export formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
)

var exportFormats = []string{formatDOT, formatSVG}

type exportOpts struct {
	format   string
	output   string
	detailed bool
}

// exportCommand creates the export command for Graphviz output.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "export <file.json>",
		Short: "Render a save file as a Graphviz diagram",
		Long: `Render the patch graph of a save file as Graphviz DOT source or SVG.
Sources are drawn as ellipses and effects as boxes; edges follow connections.`,
		Example: `  blokdust export patch.json -o patch.svg
  blokdust export patch.json --format dot --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.export(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: "+strings.Join(exportFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include positions and parameters in labels")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(exportFormats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) export(cmd *cobra.Command, path string, opts exportOpts) error {
	if !slices.Contains(exportFormats, opts.format) {
		return errs.New(errs.ErrCodeInvalidInput, "unknown format %q (want %s)", opts.format, strings.Join(exportFormats, " or "))
	}
	res, err := savefile.Import(path)
	if err != nil {
		return err
	}

	data := []byte(dot.ToDOT(res.Composition, dot.Options{Detailed: opts.detailed}))
	if opts.format == formatSVG {
		if data, err = dot.RenderSVG(cmd.Context(), string(data)); err != nil {
			return err
		}
	}

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Exported %d blocks", res.Composition.Graph.Len())
	printFile(opts.output)
	return nil
}
