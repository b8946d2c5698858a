package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codex/internal/query"
)

var askFormat string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask which rules apply to an intent",
	Long: `Maps a natural-language question to a curated search query when a
known intent is recognized, then summarizes the strongest matches into
one actionable line.

Examples:
  codex ask "how do I make an http request"
  codex ask "error handling" --format=json`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askFormat, "format", "markdown", "Output format (markdown, json)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	format, err := query.ParseFormat(askFormat)
	if err != nil {
		return err
	}

	q, closeStore, err := openQueryInterface()
	if err != nil {
		return err
	}
	defer closeStore()

	result, err := q.SemanticSearch(args[0])
	if err != nil {
		return err
	}

	out, err := query.RenderSearch(result, format)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
