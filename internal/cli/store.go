package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blokdust/pkg/storage"
)

// storeCommand creates the file store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the local composition store",
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeClearCommand())
	cmd.AddCommand(c.storePathCommand())

	return cmd
}

// openFileStore opens the file store at the configured directory.
func (c *CLI) openFileStore() (*storage.File, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return storage.NewFile(cfg.Storage.Dir)
}

// storeListCommand creates the "store list" subcommand.
func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored composition ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openFileStore()
			if err != nil {
				return err
			}
			ids, err := s.List()
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				printInfo("Store is empty")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

// storeClearCommand creates the "store clear" subcommand.
func (c *CLI) storeClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored composition",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openFileStore()
			if err != nil {
				return err
			}
			count, err := s.Clear()
			if err != nil {
				return err
			}
			printSuccess("Cleared %d compositions", count)
			printDetail("Directory: %s", s.Path())
			return nil
		},
	}
}

// storePathCommand creates the "store path" subcommand.
func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the store directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openFileStore()
			if err != nil {
				return err
			}
			fmt.Println(s.Path())
			return nil
		},
	}
}
