package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"diagramio/internal/domain"
)

var listCmd = &cobra.Command{
	Use:   "list [folder-id]",
	Short: "List diagrams",
	Long: `List diagrams, either across all folders or within one folder.

Examples:
  diagramio-cli list
  diagramio-cli list 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var (
			items []domain.DiagramItem
			err   error
		)
		if len(args) == 0 {
			items, err = GetClient().ListDiagrams(ctx)
		} else {
			var folderID int64
			folderID, err = strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid folder id %q", args[0])
			}
			items, err = GetClient().FolderDiagrams(ctx, folderID)
		}
		if err != nil {
			return err
		}

		domain.SortDiagrams(items)
		for _, item := range items {
			fmt.Printf("[%d] %s  (folder %d, updated %s)\n",
				item.ID, item.DisplayName(), item.FolderID, item.LastUpdated)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
