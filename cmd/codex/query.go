package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codex/internal/query"
)

var (
	queryLimit   int
	queryExplain bool
	queryFormat  string
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Search rules by free text",
	Long: `Runs a ranked full-text search over rule names, descriptions,
rationales, and fix guidance.

Examples:
  codex query "subprocess shell"
  codex query eval --explain
  codex query logging --limit=10 --format=json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Maximum results (0 = use config default)")
	queryCmd.Flags().BoolVar(&queryExplain, "explain", false, "Include rationale and example snippets")
	queryCmd.Flags().StringVar(&queryFormat, "format", "markdown", "Output format (markdown, json)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	format, err := query.ParseFormat(queryFormat)
	if err != nil {
		return err
	}

	q, closeStore, err := openQueryInterface()
	if err != nil {
		return err
	}
	defer closeStore()

	var result *query.Result
	if queryExplain {
		result, err = q.Explain(args[0], queryLimit)
	} else {
		result, err = q.Query(args[0], queryLimit)
	}
	if err != nil {
		return err
	}

	out, err := query.Render(result, format)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// openQueryInterface wires a query interface over the workspace store.
// The returned func closes the underlying database.
func openQueryInterface() (*query.Interface, func(), error) {
	root, cfg, logger, err := loadWorkspace()
	if err != nil {
		return nil, nil, err
	}
	db, st, err := openStore(root, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	// Keep the persisted rule table aligned with the loaded set so
	// queries see pack rules even before the first scan. When the table
	// already matches, the invocation stays read-only and never contends
	// with a recording scan for the write lock.
	set, err := loadRuleSet(root, cfg)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	inSync, err := st.RulesInSync(set)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	if !inSync {
		if err := st.SyncRules(set); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	return query.New(st, cfg, logger), func() { db.Close() }, nil
}
