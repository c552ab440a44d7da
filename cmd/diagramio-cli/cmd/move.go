package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move <diagram-id> <folder-id>",
	Short: "Move a diagram to a different folder",
	Long: `Move a diagram into another folder.

Example:
  diagramio-cli move 42 3`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		diagramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid diagram id %q", args[0])
		}
		folderID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid folder id %q", args[1])
		}

		if err := GetClient().MoveDiagram(context.Background(), diagramID, folderID); err != nil {
			return err
		}
		fmt.Printf("Moved diagram %d to folder %d\n", diagramID, folderID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
}
