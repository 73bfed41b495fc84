package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blokdust/pkg/engine"
	"github.com/matzehuels/blokdust/pkg/savefile"
)

type runOpts struct {
	save bool
	out  string
}

// runCommand creates the run command for executing command scripts.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run <script.toml>",
		Short: "Execute a command script against a new composition",
		Long: `Execute a TOML command script against a new, empty composition and print
the result.

Each [[step]] names a command (CREATE_BLOCK, CONNECT_BLOCKS, UNDO, ...) and
its arguments. Steps marked async = true run concurrently with their async
neighbours.`,
		Example: `  # Build and print a composition
  blokdust run patch.toml

  # Build it, store it and write the save file
  blokdust run patch.toml --save --out patch.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScriptFile(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.save, "save", false, "save the result to the configured store")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the uncompressed save file to this path")

	return cmd
}

func (c *CLI) runScriptFile(cmd *cobra.Command, path string, opts runOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	script, err := loadScript(path)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	sp := newSpinnerWithContext(ctx, "Saving composition")
	var e *engine.Engine
	if opts.save || script.needsStore() {
		e, err = c.newEngine(ctx, cfg, engine.WithProgress(sp.Progress()))
	} else {
		e, err = engine.New(engineConfig(cfg), engine.WithLogger(c.Logger))
	}
	if err != nil {
		return err
	}
	defer e.Close()

	prog := newProgress(logger)
	skipped, err := runScript(ctx, e, script, logger)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Ran %d steps", len(script.Steps)))
	for _, sk := range skipped {
		printWarning("Step %d (%s) skipped: %s", sk.Step, sk.Command, sk.Reason)
	}
	printNewline()

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return err
	}
	printComposition(snap)

	if opts.out != "" {
		if err := savefile.Export(snap, opts.out); err != nil {
			return err
		}
		printFile(opts.out)
	}

	if opts.save {
		sp.Start()
		out, err := e.Run(ctx, engine.CmdSave, nil)
		if err != nil {
			sp.StopWithError("Save failed")
			return err
		}
		id := out.(string)
		sp.StopWithSuccess(fmt.Sprintf("Saved composition %s", id))
		printNextStep("Load it again", "blokdust load "+id)
	}

	st, err := e.Status(ctx)
	if err != nil {
		return err
	}
	printStatus(st)
	return nil
}
