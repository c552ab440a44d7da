package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"diagramio/internal/domain"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Display the folder hierarchy",
	Long: `Display the full folder hierarchy as an indented tree, with ids.

Example:
  diagramio-cli tree`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		tree, err := GetClient().ListFolders(ctx)
		if err != nil {
			return err
		}

		folders, hierarchy := domain.Normalize(tree)
		for _, ref := range domain.Flatten(folders, hierarchy) {
			fmt.Printf("%s[%d] %s\n", strings.Repeat("  ", ref.Depth), ref.ID, ref.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
