package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/blokdust/pkg/blocks"
	"github.com/matzehuels/blokdust/pkg/engine"
	"github.com/matzehuels/blokdust/pkg/savefile"
)

// loadCommand creates the load command for fetching stored compositions.
func (c *CLI) loadCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "load <id>",
		Short: "Load a composition from the configured store",
		Long: `Load a composition by id from the configured store (file, redis, mongo,
s3 or a blokdust server), decompress it and print its blocks.`,
		Example: `  blokdust load 6f1c2a9e-3b0d-4f43-9c55-0a8f2f0c1d2e
  blokdust load 6f1c2a9e-3b0d-4f43-9c55-0a8f2f0c1d2e --out patch.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			e, err := c.newEngine(ctx, cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			sp := newSpinnerWithContext(ctx, "Loading "+args[0])
			sp.Start()
			res, err := e.Run(ctx, engine.CmdLoad, args[0])
			if err != nil {
				sp.StopWithError("Load failed")
				return err
			}
			comp := res.(*blocks.Composition)
			sp.StopWithSuccess("Loaded composition " + comp.ID)

			printComposition(comp)
			if out != "" {
				if err := savefile.Export(comp, out); err != nil {
					return err
				}
				printFile(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the uncompressed save file to this path")

	return cmd
}
