package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [folder|diagram] <id>",
	Short: "Delete a folder or diagram",
	Long: `Delete a folder or a diagram by id.

Folders must be empty; the backend refuses to delete a folder that still
contains diagrams.

Examples:
  diagramio-cli delete diagram 42
  diagramio-cli delete folder 3`,
}

var deleteFolderCmd = &cobra.Command{
	Use:   "folder <id>",
	Short: "Delete an empty folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid folder id %q", args[0])
		}
		if err := GetClient().DeleteFolder(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted folder %d\n", id)
		return nil
	},
}

var deleteDiagramCmd = &cobra.Command{
	Use:   "diagram <id>",
	Short: "Delete a diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid diagram id %q", args[0])
		}
		if err := GetClient().DeleteDiagram(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted diagram %d\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.AddCommand(deleteFolderCmd)
	deleteCmd.AddCommand(deleteDiagramCmd)
}
