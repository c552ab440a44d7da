package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <diagram-id>",
	Short: "Export a diagram's definition",
	Long: `Write a diagram's definition text to a file, or to stdout when no
output path is given.

Examples:
  diagramio-cli export 42
  diagramio-cli export 42 -o flow.mmd`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid diagram id %q", args[0])
		}

		diagram, err := GetClient().GetDiagram(context.Background(), id)
		if err != nil {
			return err
		}

		if exportOutput == "" {
			fmt.Print(diagram.Content)
			if len(diagram.Content) > 0 && diagram.Content[len(diagram.Content)-1] != '\n' {
				fmt.Println()
			}
			return nil
		}

		if err := os.WriteFile(exportOutput, []byte(diagram.Content), 0o644); err != nil {
			return err
		}
		fmt.Printf("Exported diagram %d to %s\n", id, exportOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (stdout when omitted)")
}
