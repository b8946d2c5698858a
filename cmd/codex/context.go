package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var contextCmd = &cobra.Command{
	Use:   "context <file>",
	Short: "Show the latest scan's violations for one file",
	Long: `Reports the most recent scan's violations for a single file, grouped
by priority from most to least severe. The file path is matched as
recorded, relative to the scanned root.

Example:
  codex context src/app/service.py`,
	Args: cobra.ExactArgs(1),
	RunE: runContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	q, closeStore, err := openQueryInterface()
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := q.ContextForFile(args[0])
	if err != nil {
		return err
	}
	fmt.Print(report)
	return nil
}
