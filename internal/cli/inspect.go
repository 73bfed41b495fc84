package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blokdust/pkg/savefile"
)

// inspectCommand creates the inspect command for reading save files.
func (c *CLI) inspectCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect <file.json>",
		Short: "Print the blocks of a save file",
		Long: `Print the blocks of a save file in ZIndex order together with the saved
view state. Legacy (version 1) save files are accepted.`,
		Example: `  blokdust inspect patch.json
  blokdust inspect patch.json --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := savefile.Import(args[0])
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("imported save file",
				"path", args[0], "version", res.Version, "blocks", len(res.Blocks))

			if interactive {
				_, err := tea.NewProgram(NewBlockBrowserModel(res.Composition), tea.WithContext(cmd.Context())).Run()
				return err
			}
			printComposition(res.Composition)
			printDetail("save format version %d", res.Version)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse blocks interactively")

	return cmd
}
