package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/tree"
)

// storeCommand creates the snapshot store command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage saved snapshots",
		Long: `Manage snapshots saved with "scan --save" or "explore --save".

Snapshots live in ~/.local/share/treemap/snapshots unless the config file
points "store" at another directory or a mongodb:// URI.`,
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved snapshots",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(cmd.Context())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close(cmd.Context())

			infos, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}
			if len(infos) == 0 {
				printInfo("No saved snapshots")
				return nil
			}

			rows := make([][]string, len(infos))
			for i, info := range infos {
				rows[i] = []string{
					info.Name,
					info.Kind,
					info.Location,
					tree.FormatSize(info.Size),
					info.Created.Local().Format(time.DateTime),
				}
			}
			fmt.Println(renderTable([]string{"Name", "Kind", "Location", "Size", "Created"}, rows))
			return nil
		},
	}
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [name...]",
		Aliases: []string{"rm"},
		Short:   "Delete saved snapshots",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(cmd.Context())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close(cmd.Context())

			for _, name := range args {
				if err := store.Delete(cmd.Context(), name); err != nil {
					return fmt.Errorf("delete %s: %w", name, err)
				}
				printSuccess("Deleted %s", name)
			}
			return nil
		},
	}
}
