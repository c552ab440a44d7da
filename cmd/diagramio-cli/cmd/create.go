package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	createName     string
	createFolderID int64
	createFile     string
)

var createCmd = &cobra.Command{
	Use:   "create [folder|diagram]",
	Short: "Create a folder or diagram",
	Long: `Create a folder or a diagram.

Diagram content is read from --file, or from stdin when the flag is omitted.

Examples:
  diagramio-cli create folder "Architecture" --folder 1
  diagramio-cli create diagram --name "Login flow" --folder 3 --file flow.mmd
  cat flow.mmd | diagramio-cli create diagram --name "Login flow"`,
}

var createFolderCmd = &cobra.Command{
	Use:   "folder <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		parentID := createFolderID
		if parentID == 0 {
			root, err := rootFolderID(ctx)
			if err != nil {
				return err
			}
			parentID = root
		}

		folder, err := GetClient().CreateFolder(ctx, args[0], parentID)
		if err != nil {
			return err
		}
		fmt.Printf("Created folder %d %q\n", folder.ID, folder.Name)
		return nil
	},
}

var createDiagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Create a diagram",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		content, err := readContent()
		if err != nil {
			return err
		}

		diagram, err := GetClient().CreateDiagram(ctx, content, createName, createFolderID)
		if err != nil {
			return err
		}
		fmt.Printf("Created diagram %d in folder %d\n", diagram.ID, diagram.FolderID)
		return nil
	},
}

func readContent() (string, error) {
	if createFile != "" {
		data, err := os.ReadFile(createFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func rootFolderID(ctx context.Context) (int64, error) {
	tree, err := GetClient().ListFolders(ctx)
	if err != nil {
		return 0, err
	}
	for _, f := range tree {
		if f.IsRoot {
			return f.ID, nil
		}
	}
	return 0, fmt.Errorf("no root folder found")
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.AddCommand(createFolderCmd)
	createCmd.AddCommand(createDiagramCmd)

	createCmd.PersistentFlags().Int64VarP(&createFolderID, "folder", "f", 0, "target folder id (root when omitted)")
	createDiagramCmd.Flags().StringVarP(&createName, "name", "n", "", "diagram name")
	createDiagramCmd.Flags().StringVar(&createFile, "file", "", "read content from a file instead of stdin")
}
